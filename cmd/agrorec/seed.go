package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/agrorec/config"
	"github.com/rushteam/agrorec/dataset"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/recommender"
)

func createSeedCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Validate the data tables and write them to the configured store",
		Long: `Loads the tables from the embedded dataset (or --from dir), validates them by
building a snapshot, and writes them under {store.key_prefix}:* so that
instances started with data.source=store share the same snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if appCfg.Store.Driver != "redis" {
				return fmt.Errorf("seed requires store.driver=redis, got %q", appCfg.Store.Driver)
			}
			s, err := openStore(ctx, appCfg, true)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := *appCfg
			if from != "" {
				cfg.Data.Source, cfg.Data.Dir = config.SourceDir, from
			} else if cfg.Data.Source == config.SourceStore {
				cfg.Data.Source = config.SourceEmbedded
			}
			tables, err := loadTables(ctx, &cfg, nil)
			if err != nil {
				return err
			}
			// 写入前先构建一次快照，保证存储中的表可用。
			snap, err := recommender.FromTables(tables)
			if err != nil {
				return err
			}
			normalized := dataset.FromCatalog(snap.Catalog, snap.Ratings)
			if err := dataset.SaveToStore(ctx, s, cfg.Store.KeyPrefix, normalized); err != nil {
				return err
			}
			log := logging.With("seed")
			log.Info().
				Str("prefix", cfg.Store.KeyPrefix).
				Int("associations", snap.Catalog.Len()).
				Int("ratings", snap.Ratings.Len()).
				Msg("snapshot written to store")
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "read tables from this directory instead of the embedded dataset")
	return cmd
}
