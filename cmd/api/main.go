package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"inkwell/api/internal/app"
	"inkwell/api/internal/authpw"
	"inkwell/api/internal/config"
	"inkwell/api/internal/docstore"
	"inkwell/api/internal/platform"
	"inkwell/api/internal/search"
	"inkwell/api/internal/session"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := docstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	engine := docstore.NewSQL(db)
	if err := engine.EnsureCollections(ctx,
		platform.CollectionPosts,
		platform.CollectionTags,
		platform.CollectionAccounts,
	); err != nil {
		log.Fatalf("collection setup failed: %v", err)
	}

	stores := platform.Stores{
		Posts:    engine.Collection(platform.CollectionPosts),
		Tags:     engine.Collection(platform.CollectionTags),
		Accounts: engine.Collection(platform.CollectionAccounts),
	}
	core := platform.New(stores)

	scan := search.NewScan(stores.Posts, stores.Tags, stores.Accounts)
	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient, scan)
	core.SetIndexer(searchService)
	if meiliClient != nil {
		searchService.ReindexAll(ctx)
	}

	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		log.Printf("Using in-memory refresh token storage")
		sessions = session.NewMemoryStore()
	}

	authService := authpw.NewService(core)
	service := app.New(cfg, core, authService, sessions, searchService, engine)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Inkwell API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
