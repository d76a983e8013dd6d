package recall

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
)

// RatingRecord 是长格式的一条评分：(消费者, 合作社) → 1..5。
type RatingRecord struct {
	ConsumerID    string  `json:"consumer_id" yaml:"consumer_id"`
	AssociationID int64   `json:"association_id" yaml:"association_id"`
	Rating        float64 `json:"rating" yaml:"rating"`
}

// UtilityMatrix 是消费者 × 合作社的评分矩阵。
//
// 行按消费者 ID 字典序，列按合作社 ID 升序。
// 稠密矩阵中 0 表示“无评价”；合法评分最小为 1，因此 0 永远不会作为真实评分进入矩阵。
type UtilityMatrix struct {
	consumers []string
	items     []int64
	rowIdx    map[string]int
	colIdx    map[int64]int
	dense     *mat.Dense
	nnz       int
}

type ratingCell struct {
	consumer string
	item     int64
}

// NewUtilityMatrix 将长格式评分透视为矩阵。
// 评分不是 [1,5] 内整数的记录被丢弃并记录日志；同一 (消费者, 合作社) 出现多次属于配置错误。
// records 为空时返回空矩阵（Len()==0），不是错误。
func NewUtilityMatrix(records []RatingRecord) (*UtilityMatrix, error) {
	log := logging.With("ratings")
	cells := make(map[ratingCell]float64, len(records))
	consumerSet := make(map[string]struct{})
	itemSet := make(map[int64]struct{})
	dropped := 0
	for _, rec := range records {
		if rec.ConsumerID == "" || !validRating(rec.Rating) {
			dropped++
			continue
		}
		k := ratingCell{consumer: rec.ConsumerID, item: rec.AssociationID}
		if _, dup := cells[k]; dup {
			return nil, core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
				fmt.Sprintf("ratings: duplicate rating for consumer %q and association %d", rec.ConsumerID, rec.AssociationID))
		}
		cells[k] = rec.Rating
		consumerSet[rec.ConsumerID] = struct{}{}
		itemSet[rec.AssociationID] = struct{}{}
	}
	if dropped > 0 {
		log.Warn().Int("records", dropped).Msg("ratings that are not integers in [1,5] dropped")
	}

	m := &UtilityMatrix{
		consumers: make([]string, 0, len(consumerSet)),
		items:     make([]int64, 0, len(itemSet)),
		rowIdx:    make(map[string]int, len(consumerSet)),
		colIdx:    make(map[int64]int, len(itemSet)),
		nnz:       len(cells),
	}
	for c := range consumerSet {
		m.consumers = append(m.consumers, c)
	}
	for i := range itemSet {
		m.items = append(m.items, i)
	}
	sort.Strings(m.consumers)
	sort.Slice(m.items, func(i, j int) bool { return m.items[i] < m.items[j] })
	for i, c := range m.consumers {
		m.rowIdx[c] = i
	}
	for j, id := range m.items {
		m.colIdx[id] = j
	}

	if len(cells) == 0 {
		return m, nil
	}
	m.dense = mat.NewDense(len(m.consumers), len(m.items), nil)
	for k, v := range cells {
		m.dense.Set(m.rowIdx[k.consumer], m.colIdx[k.item], v)
	}
	return m, nil
}

func validRating(v float64) bool {
	return v >= core.MinRating && v <= core.MaxRating && v == math.Trunc(v)
}

// Len 返回已知评分数。
func (m *UtilityMatrix) Len() int {
	if m == nil {
		return 0
	}
	return m.nnz
}

// Consumers 返回行标签（字典序）。
func (m *UtilityMatrix) Consumers() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.consumers...)
}

// Items 返回列标签（升序）。
func (m *UtilityMatrix) Items() []int64 {
	if m == nil {
		return nil
	}
	return append([]int64(nil), m.items...)
}

// HasConsumer 判断消费者是否有任何评分。
func (m *UtilityMatrix) HasConsumer(consumer string) bool {
	if m == nil {
		return false
	}
	_, ok := m.rowIdx[consumer]
	return ok
}

// Rating 返回评分；ok=false 表示“无评价”，与评分 0 区分。
func (m *UtilityMatrix) Rating(consumer string, item int64) (float64, bool) {
	if m == nil || m.dense == nil {
		return 0, false
	}
	r, ok := m.rowIdx[consumer]
	if !ok {
		return 0, false
	}
	c, ok := m.colIdx[item]
	if !ok {
		return 0, false
	}
	v := m.dense.At(r, c)
	return v, v != 0
}

// ConsumerRatings 返回消费者的全部已知评分。
func (m *UtilityMatrix) ConsumerRatings(consumer string) map[int64]float64 {
	out := make(map[int64]float64)
	if m == nil || m.dense == nil {
		return out
	}
	r, ok := m.rowIdx[consumer]
	if !ok {
		return out
	}
	for j, id := range m.items {
		if v := m.dense.At(r, j); v != 0 {
			out[id] = v
		}
	}
	return out
}

// Dense 返回零填充的稠密矩阵（只读）；矩阵为空时返回 nil。
func (m *UtilityMatrix) Dense() *mat.Dense {
	if m == nil {
		return nil
	}
	return m.dense
}

// Sparsity 返回未评价单元格占比；空矩阵为 1。
func (m *UtilityMatrix) Sparsity() float64 {
	if m == nil || m.dense == nil {
		return 1
	}
	size := len(m.consumers) * len(m.items)
	return 1 - float64(m.nnz)/float64(size)
}

// Records 以长格式导出，按 (消费者, 合作社) 排序。
func (m *UtilityMatrix) Records() []RatingRecord {
	out := make([]RatingRecord, 0, m.Len())
	if m == nil || m.dense == nil {
		return out
	}
	for i, c := range m.consumers {
		for j, id := range m.items {
			if v := m.dense.At(i, j); v != 0 {
				out = append(out, RatingRecord{ConsumerID: c, AssociationID: id, Rating: v})
			}
		}
	}
	return out
}
