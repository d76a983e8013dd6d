package recall

import "github.com/rushteam/agrorec/core"

// ItemBasedCF 是基于物品的协同过滤打分器（Item-CF）。
//
// 核心思想："被同一批消费者喜欢的合作社，相互相似"
//
// 对候选合作社 c，取消费者评分 >= LikedThreshold 的合作社集合 L（不含 c），
//
//	score(c) = mean_{l ∈ L} sim(c, l) · rating(l)
//
// 消费者无历史、相似度不可用或 c 不在矩阵中时为 0。
// 这里给出的是未归一化的原始分，候选集内的归一化由 rank 层完成。
type ItemBasedCF struct {
	Matrix     *UtilityMatrix
	Similarity *ItemSimilarity

	// LikedThreshold 是“喜欢”的评分下限（含），<=0 时取 core.LikedRatingThreshold。
	LikedThreshold float64
}

// NewItemBasedCF 从效用矩阵构建 Item-CF，并计算相似度。
func NewItemBasedCF(m *UtilityMatrix) *ItemBasedCF {
	return &ItemBasedCF{
		Matrix:         m,
		Similarity:     NewItemSimilarity(m),
		LikedThreshold: core.LikedRatingThreshold,
	}
}

func (r *ItemBasedCF) Name() string {
	return "recall.i2i"
}

func (r *ItemBasedCF) threshold() float64 {
	if r.LikedThreshold <= 0 {
		return core.LikedRatingThreshold
	}
	return r.LikedThreshold
}

// Available 判断是否具备打分条件（矩阵非空且相似度可用）。
func (r *ItemBasedCF) Available() bool {
	return r != nil && r.Matrix.Len() > 0 && r.Similarity.Available()
}

// HasHistory 判断消费者是否有评分历史。
func (r *ItemBasedCF) HasHistory(consumer string) bool {
	return r != nil && r.Matrix.HasConsumer(consumer)
}

// Liked 返回消费者喜欢的合作社（按 ID 升序）及其评分。
func (r *ItemBasedCF) Liked(consumer string) ([]int64, map[int64]float64) {
	if r == nil {
		return nil, nil
	}
	ratings := r.Matrix.ConsumerRatings(consumer)
	liked := make([]int64, 0, len(ratings))
	for _, id := range r.Matrix.Items() {
		if v, ok := ratings[id]; ok && v >= r.threshold() {
			liked = append(liked, id)
		}
	}
	return liked, ratings
}

// Score 返回候选的原始协同分。
func (r *ItemBasedCF) Score(consumer string, candidate int64) float64 {
	return r.ScoreAll(consumer, []int64{candidate})[0]
}

// ScoreAll 为一组候选打分，liked 集合只计算一次。
func (r *ItemBasedCF) ScoreAll(consumer string, candidates []int64) []float64 {
	out := make([]float64, len(candidates))
	if !r.Available() || !r.HasHistory(consumer) {
		return out
	}
	liked, ratings := r.Liked(consumer)
	for i, c := range candidates {
		if !r.Similarity.Has(c) {
			continue
		}
		var sum float64
		n := 0
		for _, id := range liked {
			if id == c {
				continue
			}
			sum += r.Similarity.Score(c, id) * ratings[id]
			n++
		}
		if n > 0 {
			out[i] = sum / float64(n)
		}
	}
	return out
}
