// Package dataset 负责加载推荐所需的全部输入表，并构建 Catalog 与评分矩阵。
//
// 数据来源：
//   - LoadEmbedded：二进制内嵌的默认数据（DF 17 家合作社、TACO 营养表、EMATER 产量、模拟评分）
//   - LoadDir：目录下同名的 YAML/CSV 文件
//   - LoadFromStore：KV 存储（由 SaveToStore / `agrorec seed` 写入）
package dataset

import (
	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/recall"
)

// 数据文件名
const (
	FileAssociations = "associations.yaml"
	FileNutrients    = "nutrients.yaml"
	FileProduction   = "production.yaml"
	FileVocabulary   = "vocabulary.yaml"
	FileRatings      = "ratings.csv"
)

// Tables 是原始输入表，尚未校验。
type Tables struct {
	Vocabulary   catalog.VocabularyFile
	Associations []catalog.AssociationRecord
	Nutrients    []catalog.NutrientRecord
	Production   []catalog.ProductionRecord
	Ratings      []recall.RatingRecord
}

// Build 校验输入表并构建 Catalog 与效用矩阵；任何配置形态错误都会在此返回。
func (t *Tables) Build() (*catalog.Catalog, *recall.UtilityMatrix, error) {
	vocab, err := catalog.NewVocabulary(t.Vocabulary.Scope, t.Vocabulary.Mapping)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Load(vocab, t.Associations, t.Nutrients, t.Production)
	if err != nil {
		return nil, nil, err
	}
	m, err := recall.NewUtilityMatrix(t.Ratings)
	if err != nil {
		return nil, nil, err
	}
	return cat, m, nil
}

// FromCatalog 从已加载的目录与矩阵导出 Tables，用于写回存储。
func FromCatalog(cat *catalog.Catalog, m *recall.UtilityMatrix) *Tables {
	return &Tables{
		Vocabulary:   cat.Vocabulary().File(),
		Associations: cat.Records(),
		Nutrients:    cat.Nutrients().Records(),
		Production:   cat.Production().Records(),
		Ratings:      m.Records(),
	}
}
