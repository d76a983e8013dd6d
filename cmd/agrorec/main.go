// Command agrorec 提供推荐服务与离线工具：
//
//	agrorec serve                       # 启动 HTTP 服务
//	agrorec recommend --lat .. --lon .. # 命令行单次推荐
//	agrorec inspect                     # 查看快照统计
//	agrorec seed                        # 将数据表写入 KV 存储
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/agrorec/config"
	_ "github.com/rushteam/agrorec/config/builders"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/dataset"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/recommender"
	"github.com/rushteam/agrorec/store"
)

var (
	configPath string
	appCfg     *config.AppConfig
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "agrorec",
		Short: "Hybrid recommender for family-farming associations in the Federal District",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAppConfig(configPath)
			if err != nil {
				return err
			}
			logging.Init(cfg.Log)
			appCfg = cfg
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: $AGROREC_CONFIG or ./agrorec.yaml)")

	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createRecommendCmd())
	rootCmd.AddCommand(createInspectCmd())
	rootCmd.AddCommand(createSeedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore 仅在配置了 redis 或数据来源为 store 时打开存储；否则返回 nil。
func openStore(ctx context.Context, cfg *config.AppConfig, force bool) (core.Store, error) {
	if !force && cfg.Store.Driver != "redis" && cfg.Data.Source != config.SourceStore {
		return nil, nil
	}
	return store.Open(ctx, store.Options{
		Driver: cfg.Store.Driver,
		Addr:   cfg.Store.RedisAddr,
		DB:     cfg.Store.RedisDB,
	})
}

// loadTables 按 data.source 加载数据表。
func loadTables(ctx context.Context, cfg *config.AppConfig, s core.Store) (*dataset.Tables, error) {
	switch cfg.Data.Source {
	case config.SourceDir:
		return dataset.LoadDir(cfg.Data.Dir, cfg.Data.RatingsCSV)
	case config.SourceStore:
		if s == nil {
			return nil, fmt.Errorf("data source %q requires a store", cfg.Data.Source)
		}
		return dataset.LoadFromStore(ctx, s, cfg.Store.KeyPrefix)
	default:
		t, err := dataset.LoadEmbedded()
		if err != nil {
			return nil, err
		}
		if cfg.Data.RatingsCSV != "" {
			f, err := os.Open(cfg.Data.RatingsCSV)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			if t.Ratings, err = dataset.ReadRatingsCSV(f); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
}

// buildRecommender 加载快照并构建 Recommender；data.pipeline 非空时按 YAML 装配。
func buildRecommender(ctx context.Context, cfg *config.AppConfig, s core.Store) (*recommender.Recommender, error) {
	tables, err := loadTables(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	snap, err := recommender.FromTables(tables)
	if err != nil {
		return nil, err
	}
	if cfg.Data.Pipeline != "" {
		pcfg, err := loadPipelineConfig(cfg.Data.Pipeline)
		if err != nil {
			return nil, err
		}
		return recommender.NewFromPipelineConfig(snap, pcfg, s)
	}
	var opts []recommender.Option
	if s != nil {
		opts = append(opts, recommender.WithStore(s, cfg.Store.KeyPrefix))
	}
	return recommender.New(snap, opts...), nil
}
