package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"songshelf/cache"
	"songshelf/config"
	"songshelf/core/playlist"
	"songshelf/db"
	"songshelf/logger"
	"songshelf/repository"
	"songshelf/storage"
)

const sessionSweepInterval = 10 * time.Minute

// Start initializes and starts the HTTP server. It returns when the process
// receives SIGINT or SIGTERM and the server has shut down.
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	library, err := OpenLibrary(ctx, cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	handler := NewHandler(Options{
		Library:       library,
		Store:         store,
		SessionSecret: []byte(cfg.SessionSecret),
		SessionTTL:    cfg.SessionIdleTTL,
		DefaultLang:   cfg.DefaultLang,
		SecureCookies: cfg.CookieSecure,
	})
	go handler.sessions.sweepLoop(ctx, sessionSweepInterval)

	// 设置服务器超时；音频流可能很长，不设置写超时
	server := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			logger.String("addr", server.Addr),
			logger.String("library", cfg.LibraryBackend),
			logger.String("store", cfg.StoreBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

// OpenLibrary opens the configured music library behind a listing cache. The
// local backend also starts a filesystem watcher when enabled; it stops with ctx.
func OpenLibrary(ctx context.Context, cfg *config.Config) (storage.Library, error) {
	switch cfg.LibraryBackend {
	case config.LibraryLocal:
		local, err := storage.NewLocalLibrary(cfg.MusicDir)
		if err != nil {
			return nil, err
		}
		cached := storage.NewCachedLibrary(local)
		if cfg.WatchLibrary {
			if err := storage.WatchLocal(ctx, local, cached); err != nil {
				// 监听失败时仍可提供服务，只是列表不会自动刷新
				logger.Warn("Library watcher not started, listings are cached until restart",
					logger.ErrorField(err))
			}
		}
		logger.Info("Local library ready", logger.String("dir", cfg.MusicDir))
		return cached, nil
	case config.LibraryMinio:
		remote, err := storage.NewMinioLibrary(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewCachedLibrary(remote), nil
	default:
		return nil, fmt.Errorf("unknown library backend %q", cfg.LibraryBackend)
	}
}

// OpenStore opens the configured custom playlist store. The returned func
// releases its connections.
func OpenStore(cfg *config.Config) (playlist.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		repo, err := repository.NewFileCustomPlaylistRepository(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	case config.StoreMemory:
		logger.Warn("Using in-memory playlist store, custom playlists are lost on restart")
		return repository.NewMemoryCustomPlaylistRepository(), func() {}, nil
	case config.StoreRedis:
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Successfully connected to Redis",
			logger.String("host", cfg.RedisHost), logger.Int("db", cfg.RedisDB))
		return cache.NewCustomPlaylistCache(client), func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Redis client", logger.ErrorField(err))
			}
		}, nil
	case config.StoreMySQL:
		gdb, err := db.ConnectGormDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewGormCustomPlaylistRepository(gdb)
		if err != nil {
			db.CloseGormDB(gdb)
			return nil, nil, err
		}
		return repo, func() {
			if err := db.CloseGormDB(gdb); err != nil {
				logger.Warn("Failed to close database", logger.ErrorField(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
