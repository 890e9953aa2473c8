package system

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coderozzy/daily-habits-final/internal/cli"
	"github.com/coderozzy/daily-habits-final/internal/logger"
	"github.com/coderozzy/daily-habits-final/internal/server"
	"github.com/coderozzy/daily-habits-final/internal/storage"
)

type ServeCmd struct {
	Addr string `help:"Listen address, overrides the config file."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	store := storage.NewProvider(cfg.Database)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to initialize server storage: %w", err)
	}
	defer store.Close()

	srv := server.NewServer(store)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Sync server listening", "addr", cfg.Addr)
		fmt.Printf("Sync server listening on %s\n", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down sync server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
