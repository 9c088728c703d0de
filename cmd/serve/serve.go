// Package serve runs the HTTP classification service
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/cmd/root"
	"github.com/finsift/finsift/internal/api"
	"github.com/finsift/finsift/internal/cache"
	"github.com/finsift/finsift/internal/catalog"
	"github.com/finsift/finsift/internal/classify"
	"github.com/finsift/finsift/internal/history"
	"github.com/finsift/finsift/internal/logging"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP classification service",
	Long: `Run the classification service with the configured rule catalog. The
service caches results and records transaction history in Redis when enabled,
falling back to in-process storage otherwise.

Example:
  finsift serve --catalog categories.yaml`,
	Run: serveFunc,
}

func init() {
	Cmd.Flags().BoolVar(&root.NoRedis, "no-redis", false, "Use in-memory storage even when Redis is configured")
}

func serveFunc(cmd *cobra.Command, args []string) {
	cfg := root.Cfg

	cat, err := catalog.Load(root.CatalogFile())
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load category catalog")
	}
	engine := classify.NewEngine(catalog.NewHolder(cat), cfg.ClassifyConfig(), root.Log)

	redisEnabled := cfg.Redis.Enabled && !root.NoRedis

	resultCache, err := cache.New(&cache.Config{
		Enabled:   redisEnabled,
		URL:       cfg.Redis.URL,
		KeyPrefix: cfg.Redis.KeyPrefix,
		TTL:       time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
	})
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to connect result cache")
	}
	defer resultCache.Close()

	var store history.Store
	if redisEnabled {
		store, err = history.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			root.Log.WithError(err).Fatal("Failed to connect history store")
		}
	} else {
		store = history.NewMemoryStore()
	}
	defer store.Close()

	server := api.NewServer(engine, store, resultCache, root.CatalogFile(), root.Log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		root.Log.WithFields(
			logging.Field{Key: "addr", Value: httpServer.Addr},
			logging.Field{Key: "redis", Value: redisEnabled},
		).Info("finsift API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			root.Log.WithError(err).Fatal("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	root.Log.Info("Shutting down finsift")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		root.Log.WithError(err).Error("HTTP server shutdown error")
	}

	root.Log.Info("finsift stopped")
}
