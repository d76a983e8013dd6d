package recall

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ItemSimilarity 是合作社之间的余弦相似度矩阵（对称）。
//
// 在零填充的效用矩阵上按列计算；至少有一个评分的列对角线为 1，全零列与任何列相似度为 0。
// 矩阵为空或列数少于 2 时相似度不可用，所有 Score 返回 0。
type ItemSimilarity struct {
	items  []int64
	colIdx map[int64]int
	sim    *mat.SymDense
}

// Neighbor 是相似合作社及其相似度。
type Neighbor struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// NewItemSimilarity 从效用矩阵构建相似度；不会失败，条件不足时退化为不可用。
func NewItemSimilarity(m *UtilityMatrix) *ItemSimilarity {
	s := &ItemSimilarity{colIdx: map[int64]int{}}
	dense := m.Dense()
	if dense == nil {
		return s
	}
	rows, cols := dense.Dims()
	if rows == 0 || cols < 2 {
		return s
	}

	vecs := make([][]float64, cols)
	norms := make([]float64, cols)
	for j := 0; j < cols; j++ {
		vecs[j] = mat.Col(nil, j, dense)
		norms[j] = floats.Norm(vecs[j], 2)
	}
	sim := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		if norms[i] == 0 {
			continue
		}
		sim.SetSym(i, i, 1)
		for j := i + 1; j < cols; j++ {
			if norms[j] == 0 {
				continue
			}
			sim.SetSym(i, j, floats.Dot(vecs[i], vecs[j])/(norms[i]*norms[j]))
		}
	}

	s.items = m.Items()
	for j, id := range s.items {
		s.colIdx[id] = j
	}
	s.sim = sim
	return s
}

// Available 判断相似度是否已计算。
func (s *ItemSimilarity) Available() bool {
	return s != nil && s.sim != nil
}

// Has 判断合作社是否在相似度矩阵中。
func (s *ItemSimilarity) Has(id int64) bool {
	if !s.Available() {
		return false
	}
	_, ok := s.colIdx[id]
	return ok
}

// Items 返回矩阵的标签（升序）。
func (s *ItemSimilarity) Items() []int64 {
	if s == nil {
		return nil
	}
	return append([]int64(nil), s.items...)
}

// Score 返回 a 与 b 的相似度；任一不在矩阵中时为 0。
func (s *ItemSimilarity) Score(a, b int64) float64 {
	if !s.Available() {
		return 0
	}
	i, ok := s.colIdx[a]
	if !ok {
		return 0
	}
	j, ok := s.colIdx[b]
	if !ok {
		return 0
	}
	return s.sim.At(i, j)
}

// Similar 返回与 id 最相似的 k 个合作社（不含自身，只保留正相似度）。
// k<=0 返回全部。
func (s *ItemSimilarity) Similar(id int64, k int) []Neighbor {
	if !s.Has(id) {
		return nil
	}
	i := s.colIdx[id]
	out := make([]Neighbor, 0, len(s.items)-1)
	for j, other := range s.items {
		if j == i {
			continue
		}
		if v := s.sim.At(i, j); v > 0 {
			out = append(out, Neighbor{ID: other, Score: v})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
