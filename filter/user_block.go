package filter

import (
	"context"
	"slices"

	"github.com/rushteam/agrorec/core"
)

// UserBlockFilter 移除消费者自己屏蔽的合作社。
// 屏蔽列表存放在 {KeyPrefix}:{ConsumerID}，没有记录时不过滤。
type UserBlockFilter struct {
	// Store 用于从存储中读取消费者屏蔽列表
	Store UserBlockStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{ConsumerID}
	KeyPrefix string
}

// UserBlockStore 是消费者屏蔽列表存储接口。
type UserBlockStore interface {
	// GetUserBlocks 获取消费者屏蔽的合作社 ID 列表
	GetUserBlocks(ctx context.Context, consumerID string, keyPrefix string) ([]int64, error)
}

// NewUserBlockFilter 创建一个消费者屏蔽过滤器。
func NewUserBlockFilter(storeAdapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	var store UserBlockStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &UserBlockFilter{
		Store:     store,
		KeyPrefix: keyPrefix,
	}
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

func (f *UserBlockFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Store == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "agrorec:block"
	}

	blocked, err := f.Store.GetUserBlocks(ctx, rctx.UserID, keyPrefix)
	if err != nil {
		return false, err
	}
	return slices.Contains(blocked, item.ID), nil
}
