package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/wikidoc/internal/api"
	"github.com/dgallion1/wikidoc/internal/cache"
	"github.com/dgallion1/wikidoc/internal/config"
	"github.com/dgallion1/wikidoc/internal/pipeline"
	"github.com/dgallion1/wikidoc/internal/translate"
	"github.com/dgallion1/wikidoc/internal/wiki"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Translation memory is optional.
	var memory *cache.Store
	var mem translate.Memory
	if cfg.CachePath != "" {
		var err error
		memory, err = cache.Open(cfg.CachePath)
		if err != nil {
			log.Error("open translation memory", "path", cfg.CachePath, "error", err)
			os.Exit(1)
		}
		mem = memory
		go pruneMemory(ctx, memory, log)
	}

	// Initialize clients.
	backend, err := translate.NewBackend(ctx, cfg)
	if err != nil {
		log.Error("init translation backend", "error", err)
		os.Exit(1)
	}
	stack := translate.NewStack(backend, cfg, mem, log)
	coord := translate.NewCoordinator(stack, translate.OptionsFromConfig(cfg), log)
	wc := wiki.NewClient(cfg.WikiAPIURL, cfg.WikiUserAgent)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, coord, wc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, coord, wc, stack, memory, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		wc.Close()
		if c, ok := backend.(interface{ Close() }); ok {
			c.Close()
		}
		if memory != nil {
			memory.Close()
		}
	}()

	log.Info("starting wikidoc", "port", cfg.Port, "backend", stack.Backend, "cache", cfg.CachePath != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// pruneMemory drops translations unused for 30 days, once a day.
func pruneMemory(ctx context.Context, store *cache.Store, log *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		n, err := store.Prune(ctx, 30*24*time.Hour)
		if err != nil {
			log.Warn("prune translation memory", "error", err)
		} else if n > 0 {
			log.Info("pruned translation memory", "entries", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
