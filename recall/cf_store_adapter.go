package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/agrorec/core"
)

// StoreCFAdapter 是基于 core.Store 的评分数据适配器。
// 从 Redis/Memory 等存储中读取长格式评分，构建 UtilityMatrix。
type StoreCFAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀
	// 消费者评分：{KeyPrefix}:user:{consumerID} → {"associationID": rating}
	// 所有消费者：{KeyPrefix}:users → ["c1", "c2"]
	KeyPrefix string
}

// NewStoreCFAdapter 创建一个基于 core.Store 的评分适配器。
func NewStoreCFAdapter(s core.Store, keyPrefix string) *StoreCFAdapter {
	if keyPrefix == "" {
		keyPrefix = "cf"
	}
	return &StoreCFAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *StoreCFAdapter) userKey(consumerID string) string {
	return a.KeyPrefix + ":user:" + consumerID
}

func (a *StoreCFAdapter) usersKey() string {
	return a.KeyPrefix + ":users"
}

// GetUserItems 返回消费者的评分；不存在时返回空 map。
func (a *StoreCFAdapter) GetUserItems(ctx context.Context, consumerID string) (map[int64]float64, error) {
	data, err := a.store.Get(ctx, a.userKey(consumerID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return make(map[int64]float64), nil
		}
		return nil, err
	}
	var result map[int64]float64
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode ratings of %s: %w", consumerID, err)
	}
	return result, nil
}

// GetAllUsers 返回所有有评分的消费者。
func (a *StoreCFAdapter) GetAllUsers(ctx context.Context) ([]string, error) {
	data, err := a.store.Get(ctx, a.usersKey())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode consumer list: %w", err)
	}
	return result, nil
}

// LoadRatings 读取全部评分（长格式），按消费者、合作社排序。
func (a *StoreCFAdapter) LoadRatings(ctx context.Context) ([]RatingRecord, error) {
	users, err := a.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []RatingRecord{}, nil
	}
	keys := make([]string, len(users))
	for i, u := range users {
		keys[i] = a.userKey(u)
	}
	blobs, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	out := make([]RatingRecord, 0, len(users)*4)
	for _, u := range users {
		data, ok := blobs[a.userKey(u)]
		if !ok {
			continue
		}
		var items map[int64]float64
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode ratings of %s: %w", u, err)
		}
		ids := make([]int64, 0, len(items))
		for id := range items {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			out = append(out, RatingRecord{ConsumerID: u, AssociationID: id, Rating: items[id]})
		}
	}
	return out, nil
}

// SaveRatings 将长格式评分按消费者分组写入存储。
func (a *StoreCFAdapter) SaveRatings(ctx context.Context, records []RatingRecord) error {
	userItems := make(map[string]map[int64]float64)
	for _, r := range records {
		if userItems[r.ConsumerID] == nil {
			userItems[r.ConsumerID] = make(map[int64]float64)
		}
		userItems[r.ConsumerID][r.AssociationID] = r.Rating
	}

	kvs := make(map[string][]byte, len(userItems)+1)
	users := make([]string, 0, len(userItems))
	for u, items := range userItems {
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		kvs[a.userKey(u)] = data
		users = append(users, u)
	}
	sort.Strings(users)
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	kvs[a.usersKey()] = data
	return a.store.BatchSet(ctx, kvs)
}

// Name 返回适配器名称。
func (a *StoreCFAdapter) Name() string {
	return "store_cf_adapter"
}
