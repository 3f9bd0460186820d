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

	"cloud-agent/internal/di"
	"cloud-agent/internal/infrastructure/env"
)

func main() {
	cfg, err := di.LoadConfig(env.NewEnvService())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(sigCtx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer container.Close()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "addr", cfg.HTTPAddr)
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serverErrCh <- err
	}()

	select {
	case err := <-serverErrCh:
		if err != nil {
			container.Logger.Error("Server exited", "error", err)
		}
		return
	case <-sigCtx.Done():
	}

	container.Logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			container.Logger.Warn("Graceful shutdown timed out, forcing close")
			_ = server.Close()
		} else {
			container.Logger.Error("Shutdown failed", "error", err)
		}
	}

	if err := <-serverErrCh; err != nil {
		container.Logger.Error("Server stopped with error", "error", err)
	}
}
