package main

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"bookcollect/internal/admin"
	"bookcollect/internal/article"
	"bookcollect/internal/collection"
	"bookcollect/internal/config"
	"bookcollect/internal/httpx"
	"bookcollect/internal/storage"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type routerDeps struct {
	cfg         config.Config
	db          pinger
	admins      httpx.RevocationChecker
	adminAPI    *admin.HTTPHandler
	collections *collection.HTTPHandler
	articles    *article.HTTPHandler
	submitLimit *httpx.RateLimitMiddleware
	loginLimit  *httpx.RateLimitMiddleware
}

const formOverhead = 1 << 20

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := d.db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// Public
	router.HandleFunc("GET /api/collections", d.collections.List)
	router.HandleFunc("GET /api/collections/{id}", d.collections.Get)
	router.Handle("POST /article", d.submitLimit.Middleware(http.HandlerFunc(d.articles.Submit)))
	router.Handle("POST /admin/login", d.loginLimit.Middleware(http.HandlerFunc(d.adminAPI.Login)))

	// Manuscripts are only reachable through the admin download route.
	for _, kind := range []storage.AssetKind{storage.KindCover, storage.KindPDF} {
		prefix := storage.PublicPrefix + string(kind) + "/"
		dir := http.Dir(filepath.Join(d.cfg.UploadDir, string(kind)))
		router.Handle("GET "+prefix, http.StripPrefix(prefix, noListing(http.FileServer(dir))))
	}

	// Admin
	adminOnly := httpx.AdminOnly(d.cfg.JWTSecret, d.admins)
	protect := func(h http.HandlerFunc) http.Handler { return adminOnly(h) }

	router.Handle("POST /admin/logout", protect(d.adminAPI.Logout))
	router.Handle("GET /admin/collections", protect(d.collections.AdminList))
	router.Handle("POST /admin/collection", protect(d.collections.Create))
	router.Handle("PUT /admin/collection/{id}", protect(d.collections.Update))
	router.Handle("DELETE /admin/collection/{id}", protect(d.collections.Delete))
	router.Handle("POST /admin/collection/{id}", adminOnly(httpx.MethodOverride(httpx.ByMethod(map[string]http.Handler{
		http.MethodPut:    http.HandlerFunc(d.collections.Update),
		http.MethodDelete: http.HandlerFunc(d.collections.Delete),
	}))))
	router.Handle("GET /admin/articles", protect(d.articles.List))
	router.Handle("GET /admin/articles/{id}", protect(d.articles.Get))
	router.Handle("DELETE /admin/articles/{id}", protect(d.articles.Delete))
	router.Handle("GET /admin/articles/{id}/download", protect(d.articles.Download))

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(nil),
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(d.cfg.EnableHSTS),
		httpx.CORSMiddleware(d.cfg.CORSOrigins),
		httpx.RequestSizeLimitMiddleware(2*d.cfg.MaxUploadBytes+formOverhead),
	)
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
