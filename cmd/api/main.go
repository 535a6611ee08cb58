package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookcollect/internal/admin"
	"bookcollect/internal/article"
	"bookcollect/internal/collection"
	"bookcollect/internal/config"
	"bookcollect/internal/httpx"
	"bookcollect/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg)
	defer dbPool.Close()

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatalf("cannot prepare upload dir %s: %v", cfg.UploadDir, err)
	}

	adminService := admin.NewService(cfg.JWTSecret, cfg.SessionTTL, admin.NewPostgresRepo(dbPool, cfg.DBTimeout))
	collectionService := collection.NewService(collection.NewPostgresRepo(dbPool, cfg.DBTimeout), files)
	articleService := article.NewService(article.NewPostgresRepo(dbPool, cfg.DBTimeout), files)

	deps := routerDeps{
		cfg:         cfg,
		db:          dbPool,
		admins:      adminService,
		adminAPI:    admin.NewHTTPHandler(adminService, cfg.CookieSecure),
		collections: collection.NewHTTPHandler(collectionService),
		articles:    article.NewHTTPHandler(articleService, cfg.MaxUploadBytes),
		submitLimit: httpx.NewRateLimitMiddleware(ctx, cfg.SubmitRPS, cfg.SubmitBurst, cfg.TrustProxy),
		loginLimit:  httpx.NewRateLimitMiddleware(ctx, cfg.SubmitRPS, cfg.SubmitBurst, cfg.TrustProxy),
	}

	go purgeRevokedTokens(ctx, adminService, time.Hour)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", cfg.Addr, "upload_dir", cfg.UploadDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	slog.Info("server stopped")
}

func mustOpenDB(ctx context.Context, cfg config.Config) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", cfg.RedactedDSN(), err)
	}
	slog.Info("database connection OK")
	return pool
}

type tokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func purgeRevokedTokens(ctx context.Context, p tokenPurger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("purge revoked tokens failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
