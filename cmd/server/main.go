package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"textilreinigung/backend/internal/config"
	"textilreinigung/backend/internal/httpapi"
	"textilreinigung/backend/internal/persist"
	"textilreinigung/backend/internal/persist/localfile"
	pgstore "textilreinigung/backend/internal/persist/postgres"
	"textilreinigung/backend/internal/persist/redisdoc"
	"textilreinigung/backend/internal/pos"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var local persist.LocalStore
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with a file fallback", err)
		}
		local = pg
		closers = append(closers, pg.Close)
		log.Println("snapshot store: postgres")
	} else {
		local = localfile.New(cfg.DataFile)
		log.Printf("snapshot store: file %s", cfg.DataFile)
	}

	var remote persist.RemoteStore
	if cfg.RedisAddr != "" {
		mirror := redisdoc.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err := mirror.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), running local-only", err)
		} else {
			remote = mirror
			closers = append(closers, mirror.Close)
			log.Println("remote mirror: redis")
		}
	} else {
		log.Println("remote mirror: disabled")
	}

	repo := persist.NewRepository(local, remote)
	store := pos.New(repo)
	if err := store.LoadInitialData(ctx); err != nil {
		log.Fatalf("loading initial data: %v", err)
	}
	log.Printf("loaded %d orders, %d payments, %d complaints, %d cash entries",
		len(store.State().Orders), len(store.State().Payments),
		len(store.State().Complaints), len(store.State().CashEntries))

	api := httpapi.New(store, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("textilreinigung backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	// Drain pending snapshot writes before closing the storage backends.
	store.Close()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}
