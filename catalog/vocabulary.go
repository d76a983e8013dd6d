package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/agrorec/core"
)

// Vocabulary 是产品名规范化表：固定的产品范围（scope）加上原始名 → 范围内类别的映射。
// 合作社产品列表、产量记录与查询中的期望产品共用同一张表，保证跨表 join 有效。
type Vocabulary struct {
	scope   []string
	inScope map[string]struct{}
	mapping map[string]string
}

// VocabularyFile 是 YAML 形式的词表。
type VocabularyFile struct {
	Scope   []string          `yaml:"scope" json:"scope"`
	Mapping map[string]string `yaml:"mapping" json:"mapping"`
}

// NewVocabulary 构造词表；映射目标不在 scope 内的条目被忽略。
func NewVocabulary(scope []string, mapping map[string]string) (*Vocabulary, error) {
	if len(scope) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeMissingTable, "catalog: vocabulary scope is empty")
	}
	v := &Vocabulary{
		scope:   make([]string, 0, len(scope)),
		inScope: make(map[string]struct{}, len(scope)),
		mapping: make(map[string]string, len(mapping)),
	}
	for _, s := range scope {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := v.inScope[s]; dup {
			continue
		}
		v.inScope[s] = struct{}{}
		v.scope = append(v.scope, s)
	}
	for raw, target := range mapping {
		target = strings.TrimSpace(target)
		if _, ok := v.inScope[target]; !ok {
			continue
		}
		v.mapping[strings.TrimSpace(raw)] = target
	}
	return v, nil
}

// LoadVocabularyYAML 从 YAML 文件加载词表。
func LoadVocabularyYAML(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var f VocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	return NewVocabulary(f.Scope, f.Mapping)
}

// File 导出为可序列化的形式。
func (v *Vocabulary) File() VocabularyFile {
	m := make(map[string]string, len(v.mapping))
	for k, t := range v.mapping {
		m[k] = t
	}
	return VocabularyFile{Scope: v.Scope(), Mapping: m}
}

// Scope 返回范围内的产品（定义顺序）。
func (v *Vocabulary) Scope() []string {
	out := make([]string, len(v.scope))
	copy(out, v.scope)
	return out
}

// Contains 判断 name 是否为范围内的规范名。
func (v *Vocabulary) Contains(name string) bool {
	_, ok := v.inScope[name]
	return ok
}

// Canonicalize 将原始产品名映射到范围内类别。
// 先查映射表，再看原始名本身是否在范围内；都不满足返回 false。
func (v *Vocabulary) Canonicalize(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if target, ok := v.mapping[raw]; ok {
		return target, true
	}
	if _, ok := v.inScope[raw]; ok {
		return raw, true
	}
	return "", false
}

// CanonicalizeAll 规范化并去重，保留首次出现的顺序；无法识别的名称被静默丢弃。
func (v *Vocabulary) CanonicalizeAll(raws []string) []string {
	out := make([]string, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for _, raw := range raws {
		name, ok := v.Canonicalize(raw)
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Unmapped 返回 raws 中无法规范化的名称（排序、去重），用于数据质量日志。
func (v *Vocabulary) Unmapped(raws []string) []string {
	set := make(map[string]struct{})
	for _, raw := range raws {
		if _, ok := v.Canonicalize(raw); !ok {
			set[raw] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// DefaultVocabulary 返回 DF 项目的 35 种产品及文档名映射。
func DefaultVocabulary() *Vocabulary {
	v, _ := NewVocabulary(defaultScope, defaultMapping)
	return v
}

var defaultScope = []string{
	"Alface", "Mandioca", "Tomate", "Repolho", "Batata", "Cebola", "Couve",
	"Chuchu", "Morango", "Pimentão", "Brócolis", "Abóbora", "Berinjela",
	"Beterraba", "Pepino", "Cenoura", "Quiabo", "Agrião", "Jiló", "Gengibre",
	"Abacate", "Goiaba", "Banana", "Limão", "Tangerina", "Maracujá", "Manga",
	"Lichia", "Uva", "Atemóia", "Cajamanga", "Graviola", "Coco", "Pitaia", "Mamão",
}

var defaultMapping = map[string]string{
	"Abóbora Japonesa":                "Abóbora",
	"Abobrinha Italiana":              "Abóbora",
	"Acelga":                          "Couve",
	"Alface Americana":                "Alface",
	"Cebolinha Comum":                 "Cebola",
	"Coentro":                         "Couve",
	"Couve-Flor":                      "Brócolis",
	"Couve Manteiga":                  "Couve",
	"Espinafre":                       "Couve",
	"Hortelã":                         "Agrião",
	"Manjericão":                      "Agrião",
	"Pepino Comum":                    "Pepino",
	"Pimentão Verde":                  "Pimentão",
	"Repolho Verde":                   "Repolho",
	"Repolho Roxo":                    "Repolho",
	"Salsa":                           "Agrião",
	"Batata Doce":                     "Batata",
	"Brócolis Cabeça Única (Japonês)": "Brócolis",
	"Inhame":                          "Batata",
	"Limão Tahiti":                    "Limão",
	"Milho Verde":                     "Pepino",
	"Tangerina Ponkan":                "Tangerina",
	"Vagem":                           "Pepino",
	"Banana Prata":                    "Banana",
	"Alho":                            "Cebola",
}
