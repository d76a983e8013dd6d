package recommender

import (
	"github.com/rushteam/agrorec/catalog"
	"github.com/rushteam/agrorec/dataset"
	"github.com/rushteam/agrorec/pkg/metrics"
	"github.com/rushteam/agrorec/recall"
)

// Snapshot 是一份不可变的推荐数据：目录、评分矩阵，以及由矩阵派生的相似度与 Item-CF。
// 构建后只读，可被多个 Recommender 与并发查询共享。
type Snapshot struct {
	Catalog *catalog.Catalog
	Ratings *recall.UtilityMatrix
	CF      *recall.ItemBasedCF
}

// NewSnapshot 从目录与评分矩阵构建快照；ratings 为 nil 时协同分恒为 0。
func NewSnapshot(cat *catalog.Catalog, ratings *recall.UtilityMatrix) *Snapshot {
	s := &Snapshot{
		Catalog: cat,
		Ratings: ratings,
		CF:      recall.NewItemBasedCF(ratings),
	}
	metrics.SetSnapshotSize(cat.Len(), ratings.Len())
	return s
}

// FromTables 校验输入表并构建快照。
func FromTables(t *dataset.Tables) (*Snapshot, error) {
	cat, m, err := t.Build()
	if err != nil {
		return nil, err
	}
	return NewSnapshot(cat, m), nil
}
