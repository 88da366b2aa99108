package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/museboard/museboard/internal/asset"
	"github.com/museboard/museboard/internal/auth"
	"github.com/museboard/museboard/internal/config"
	"github.com/museboard/museboard/internal/discovery"
	"github.com/museboard/museboard/internal/generate"
	"github.com/museboard/museboard/internal/httpapi"
	"github.com/museboard/museboard/internal/session"
	"github.com/museboard/museboard/internal/share"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := asset.NewStore(cfg.AssetDir)
	if err != nil {
		slog.Error("open asset store", "error", err)
		os.Exit(1)
	}

	var generator generate.Generator = generate.Disabled{}
	if cfg.GenerationEnabled() {
		backoff := generate.DefaultBackoff()
		backoff.MaxAttempts = cfg.GenerateMaxAttempts
		gemini, err := generate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, store, backoff)
		if err != nil {
			slog.Error("create gemini client", "error", err)
			os.Exit(1)
		}
		generator = gemini
		slog.Info("image generation enabled", "model", cfg.GeminiModel)
	} else {
		slog.Warn("GEMINI_API_KEY not set, image generation disabled")
	}

	hub := session.NewHub(session.Options{
		Generator:       generator,
		Saver:           store,
		GenerateTimeout: cfg.GenerateTimeout,
	}, cfg.SessionIdleTimeout)
	go hub.Run()

	linker := share.NewLinker(cfg.PublicURL, cfg.Port)
	r := httpapi.NewRouter(httpapi.Deps{
		Hub:     hub,
		Auth:    auth.NewService(cfg.SessionSecret, cfg.SessionTTL),
		Linker:  linker,
		Assets:  store,
		Origins: cfg.Origins(),
	})

	if cfg.MDNSEnabled {
		adv, err := discovery.Advertise(cfg.MDNSInstance, cfg.Port, "url="+linker.Base())
		if err != nil {
			slog.Warn("mdns advertise failed", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop sessions first so websocket handlers return.
		hub.Stop()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "url", linker.Base())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
