package core

// 默认参数，沿用原型系统的取值。
const (
	DefaultMaxDistanceKm = 30.0
	DefaultTopN          = 5

	// LikedRatingThreshold 是协同过滤中“喜欢”的评分下限（含）。
	LikedRatingThreshold = 3.5

	MinRating = 1
	MaxRating = 5
)

// DefaultWeights 返回默认权重：距离 .25 / 评分 .20 / 营养 .15 / 区域 .20 / 协同 .20。
func DefaultWeights() Weights {
	return Weights{
		Distance:      0.25,
		Rating:        0.20,
		Nutrition:     0.15,
		Regional:      0.20,
		Collaborative: 0.20,
	}
}

// DefaultPreferences 返回默认偏好；区域相关性默认开启。
func DefaultPreferences() Preferences {
	return Preferences{
		MaxDistanceKm:             DefaultMaxDistanceKm,
		ConsiderRegionalRelevance: true,
		Weights:                   DefaultWeights(),
		TopN:                      DefaultTopN,
	}
}
