// Package store 提供 core.Store 的实现：MemoryStore（测试/开发）与 RedisStore（多实例共享快照）。
//
// 接口定义在 core 包：
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.Open(ctx, store.Options{Driver: "redis", Addr: "localhost:6379"})
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/agrorec/core"
)

// ErrNotFound 是 key 不存在时返回的错误。
var ErrNotFound = core.ErrStoreNotFound

// Options 描述要打开的存储后端。
type Options struct {
	Driver string // memory | redis
	Addr   string
	DB     int
}

// Open 按 Driver 打开存储；空 Driver 视为 memory。
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(ctx, opts.Addr, opts.DB)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput,
			fmt.Sprintf("store: unknown driver %q", opts.Driver))
	}
}
