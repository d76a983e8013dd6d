// Package server 提供推荐的 HTTP JSON API。
//
//	POST /v1/recommendations
//	GET  /v1/associations/{id}
//	GET  /v1/products/{product}/regions?n=5
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/agrorec/config"
	"github.com/rushteam/agrorec/core"
	"github.com/rushteam/agrorec/pkg/logging"
	"github.com/rushteam/agrorec/recommender"
)

// Server 持有推荐器与请求默认偏好。
type Server struct {
	rec      *recommender.Recommender
	cfg      config.ServerConfig
	defaults core.Preferences
	log      zerolog.Logger
}

// New 创建 Server；请求中省略的偏好字段取 defaults。
func New(rec *recommender.Recommender, cfg config.ServerConfig, defaults core.Preferences) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 5 * time.Second
	}
	return &Server{
		rec:      rec,
		cfg:      cfg,
		defaults: defaults,
		log:      logging.With("server"),
	}
}

// Handler 返回配置好路由与中间件的 http.Handler。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
		r.Post("/recommendations", s.recommend)
		r.Get("/associations/{id}", s.association)
		r.Get("/products/{product}/regions", s.productRegions)
	})
	return r
}

// ListenAndServe 监听 cfg.Addr，ctx 结束时优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
