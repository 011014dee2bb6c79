package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/config"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/router"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs, closeBlobs, err := config.OpenBlobs(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to open store: %v", err)
	}
	defer closeBlobs()

	store := db.NewStore(blobs)
	if store.Load(ctx) {
		log.Printf("[store] seeded fresh %s store", cfg.StoreDriver)
	}

	// Notification records always land in the store; Redis only adds the
	// delivery queue.
	var outbox alerts.Outbox = alerts.LogOutbox{}
	if cfg.RedisAddr != "" {
		queue := alerts.NewQueueOutbox(cfg.RedisAddr)
		defer queue.Close()
		outbox = queue

		worker := alerts.NewWorker(cfg.RedisAddr, nil)
		worker.Start()
		defer worker.Shutdown()
	}

	e := router.New(cfg, store, alerts.NewLedger(store, outbox))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server][WARN] shutdown: %v", err)
	}
	if err := store.Flush(shutdownCtx); err != nil {
		log.Printf("[store][WARN] final flush: %v", err)
	}
}
