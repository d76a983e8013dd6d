package filter

import (
	"context"
	"slices"

	"github.com/rushteam/agrorec/core"
)

// BlacklistFilter 是排除列表过滤器，来源有三处：
//   - ItemIDs：配置中的静态列表
//   - 查询的 ExcludeIDs
//   - Store 中 Key 对应的列表（可选）
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单合作社 ID 列表
	ItemIDs []int64

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单合作社 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]int64, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []int64, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if slices.Contains(f.ItemIDs, item.ID) {
		return true, nil
	}
	if rctx != nil && slices.Contains(rctx.Prefs().ExcludeIDs, item.ID) {
		return true, nil
	}
	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			return false, err
		}
		if slices.Contains(blacklist, item.ID) {
			return true, nil
		}
	}
	return false, nil
}
