package dataset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
)

//go:embed data/*.yaml data/ratings.csv
var embedded embed.FS

type associationsFile struct {
	Associations []catalog.AssociationRecord `yaml:"associations"`
}

type nutrientsFile struct {
	Nutrients []catalog.NutrientRecord `yaml:"nutrients"`
}

type productionFile struct {
	Production []catalog.ProductionRecord `yaml:"production"`
}

// LoadEmbedded 加载内嵌的默认数据。
func LoadEmbedded() (*Tables, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir 从目录加载数据；ratingsCSV 非空时替代目录中的 ratings.csv。
// 目录中没有 ratings.csv 时评分为空，推荐退化为纯内容打分。
func LoadDir(dir, ratingsCSV string) (*Tables, error) {
	t, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	if ratingsCSV != "" {
		f, err := os.Open(ratingsCSV)
		if err != nil {
			return nil, fmt.Errorf("open ratings: %w", err)
		}
		defer f.Close()
		if t.Ratings, err = ReadRatingsCSV(f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// LoadFS 从文件系统读取全部数据文件。
func LoadFS(fsys fs.FS) (*Tables, error) {
	t := &Tables{}
	if err := readYAML(fsys, FileVocabulary, &t.Vocabulary); err != nil {
		return nil, err
	}
	var af associationsFile
	if err := readYAML(fsys, FileAssociations, &af); err != nil {
		return nil, err
	}
	var nf nutrientsFile
	if err := readYAML(fsys, FileNutrients, &nf); err != nil {
		return nil, err
	}
	var pf productionFile
	if err := readYAML(fsys, FileProduction, &pf); err != nil {
		return nil, err
	}
	t.Associations = af.Associations
	t.Nutrients = nf.Nutrients
	t.Production = pf.Production
	if t.Production == nil {
		t.Production = []catalog.ProductionRecord{}
	}

	f, err := fsys.Open(FileRatings)
	switch {
	case err == nil:
		defer f.Close()
		if t.Ratings, err = ReadRatingsCSV(f); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		log := logging.With("dataset")
		log.Warn().Msg("ratings.csv not found, collaborative score disabled")
	default:
		return nil, fmt.Errorf("open %s: %w", FileRatings, err)
	}
	return t, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.NewDomainError(core.ModuleDataset, core.ErrorCodeMissingTable,
				fmt.Sprintf("dataset: %s not found", name))
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: parse %s: %v", name, err))
	}
	return nil
}
