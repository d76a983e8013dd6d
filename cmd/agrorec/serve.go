package main

import (
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/agrorec/pipeline"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/server"
)

func createServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP recommendation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if addr != "" {
				appCfg.Server.Addr = addr
			}

			s, err := openStore(ctx, appCfg, false)
			if err != nil {
				return err
			}
			if s != nil {
				defer s.Close()
			}
			rec, err := buildRecommender(ctx, appCfg, s)
			if err != nil {
				return err
			}
			stats := rec.Snapshot().Catalog.Stats()
			log := logging.With("main")
			log.Info().
				Str("source", appCfg.Data.Source).
				Int("associations", stats.Associations).
				Int("ratings", rec.Snapshot().Ratings.Len()).
				Msg("snapshot loaded")

			return server.New(rec, appCfg.Server, appCfg.Defaults).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// loadPipelineConfig 按扩展名选择 YAML 或 JSON。
func loadPipelineConfig(path string) (*pipeline.Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return pipeline.LoadFromJSON(path)
	}
	return pipeline.LoadFromYAML(path)
}
