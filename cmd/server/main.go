package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tableplan/tableplan/internal/auth"
	"github.com/tableplan/tableplan/internal/config"
	"github.com/tableplan/tableplan/internal/engine"
	"github.com/tableplan/tableplan/internal/plan"
	"github.com/tableplan/tableplan/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	authService, err := auth.NewService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		slog.Error("create token service", "error", err)
		os.Exit(1)
	}

	engineOpts := cfg.EngineOptions()
	hub := session.NewHub(func() *engine.Engine { return engine.NewEngine(engineOpts) }, cfg.PlanIdleTimeout)
	go hub.Run()

	planService := plan.NewService(hub, authService, cfg.MaxImportBytes)
	planHandler := plan.NewHandler(planService, hub, authService)
	planHandler.OriginPatterns = originPatterns(cfg.Origins())

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(planHandler, cfg.Origins()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Disconnect editors before draining requests.
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// originPatterns strips the scheme from allowed origins; websocket origin
// checks match on host.
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		out = append(out, o)
	}
	return out
}
