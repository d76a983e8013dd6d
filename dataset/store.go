package dataset

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/recall"
)

// StoreKeys 是快照在 KV 存储中的 key 布局。
//
//	{prefix}:vocabulary    → VocabularyFile
//	{prefix}:associations  → []AssociationRecord
//	{prefix}:nutrients     → []NutrientRecord
//	{prefix}:production    → []ProductionRecord
//	{prefix}:ratings:...   → 由 recall.StoreCFAdapter 管理
type StoreKeys struct {
	Prefix string
}

func (k StoreKeys) Vocabulary() string   { return k.Prefix + ":vocabulary" }
func (k StoreKeys) Associations() string { return k.Prefix + ":associations" }
func (k StoreKeys) Nutrients() string    { return k.Prefix + ":nutrients" }
func (k StoreKeys) Production() string   { return k.Prefix + ":production" }
func (k StoreKeys) Ratings() string      { return k.Prefix + ":ratings" }

// SaveToStore 将全部表写入存储。评分按消费者分片存储。
func SaveToStore(ctx context.Context, s core.Store, prefix string, t *Tables) error {
	keys := StoreKeys{Prefix: prefix}
	kvs := make(map[string][]byte, 4)
	for key, v := range map[string]any{
		keys.Vocabulary():   t.Vocabulary,
		keys.Associations(): t.Associations,
		keys.Nutrients():    t.Nutrients,
		keys.Production():   t.Production,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		kvs[key] = data
	}
	if err := s.BatchSet(ctx, kvs); err != nil {
		return fmt.Errorf("write tables: %w", err)
	}
	if err := recall.NewStoreCFAdapter(s, keys.Ratings()).SaveRatings(ctx, t.Ratings); err != nil {
		return fmt.Errorf("write ratings: %w", err)
	}
	return nil
}

// LoadFromStore 并发读取全部表；任一表缺失返回 MISSING_TABLE。
func LoadFromStore(ctx context.Context, s core.Store, prefix string) (*Tables, error) {
	keys := StoreKeys{Prefix: prefix}
	t := &Tables{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return getJSON(gctx, s, keys.Vocabulary(), &t.Vocabulary) })
	g.Go(func() error { return getJSON(gctx, s, keys.Associations(), &t.Associations) })
	g.Go(func() error { return getJSON(gctx, s, keys.Nutrients(), &t.Nutrients) })
	g.Go(func() error { return getJSON(gctx, s, keys.Production(), &t.Production) })
	g.Go(func() error {
		ratings, err := recall.NewStoreCFAdapter(s, keys.Ratings()).LoadRatings(gctx)
		if err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		t.Ratings = ratings
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func getJSON(ctx context.Context, s core.Store, key string, out any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return core.NewDomainError(core.ModuleDataset, core.ErrorCodeMissingTable,
				fmt.Sprintf("dataset: %s not found in store %s", key, s.Name()))
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("dataset: decode %s: %v", key, err))
	}
	return nil
}
