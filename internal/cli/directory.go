package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rolelink/rolelink/internal/directory/directoryserver"
	"github.com/rolelink/rolelink/internal/storage"
	"github.com/rolelink/rolelink/internal/storage/memory"
	redisstorage "github.com/rolelink/rolelink/internal/storage/redis"
)

// newDirectoryCmd serves the identity-directory JSON API
func newDirectoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directory",
		Short: "Run the identity-directory service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDirectory()
		},
	}
}

func runDirectory() error {
	store, err := buildStorage()
	if err != nil {
		return err
	}

	router := directoryserver.NewRouter(logger, store, cfg.DirectoryServer.TokenHash)

	serverCfg := directoryserver.DefaultServerConfig()
	serverCfg.ListenAddr = cfg.DirectoryServer.ListenAddr
	server := directoryserver.NewServer(router, serverCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("directory server stopped")
	return nil
}

func buildStorage() (storage.Storage, error) {
	switch cfg.DirectoryServer.Storage {
	case "memory":
		logger.Warn("using in-memory storage, links will not survive a restart")
		return memory.New(), nil
	case "redis":
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.DirectoryServer.RedisURL
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("using redis storage", slog.String("url", cfg.DirectoryServer.RedisURL))
		return store, nil
	default:
		return nil, fmt.Errorf("invalid storage type %q: must be 'memory' or 'redis'", cfg.DirectoryServer.Storage)
	}
}
