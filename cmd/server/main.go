package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"threadline/internal/cache"
	"threadline/internal/config"
	"threadline/internal/db"
	"threadline/internal/logger"
	"threadline/internal/router"
	"threadline/internal/services"
	"threadline/internal/store"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg)
	if envErr != nil {
		log.Info().Msg("no .env file found, reading env vars from system")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	if err := db.SeedCommunities(ctx, st, log); err != nil {
		log.Error().Err(err).Msg("failed to seed communities")
	}

	c, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	// 初始化异步排名服务
	ranking := services.NewRankingService(st, cfg.RankingInterval, log)
	ranking.Start(ctx)
	go ranking.RefreshRecent(ctx)

	comments := services.NewCommentService(st, c, cfg.CacheTTL, ranking, log)
	votes := services.NewVoteService(st, ranking, log)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.New(router.Deps{
		Store:         st,
		Comments:      comments,
		Votes:         votes,
		Ranking:       ranking,
		Log:           log,
		SessionSecret: cfg.SessionSecret,
		SecureCookie:  !cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("threadline server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	select {
	case <-ranking.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("ranking worker did not stop in time")
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	case config.StoreDriverPostgres:
		conn, err := db.Open(cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(conn), nil
	}
	return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}

// openCache falls back to the in-process LRU when redis is unreachable.
func openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Cache, func()) {
	switch cfg.CacheDriver {
	case config.CacheDriverNone:
		return cache.Nop{}, func() {}
	case config.CacheDriverRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		client, err := cache.NewRedisClient(pingCtx, cfg.RedisURL)
		if err == nil {
			r := cache.NewRedis(client, log)
			return r, func() { _ = r.Close() }
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to lru cache")
	}

	l, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create lru cache, caching disabled")
		return cache.Nop{}, func() {}
	}
	return l, func() {}
}
