// Package main はアプリケーションのエントリーポイントを提供します。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"syscall"

	"github.com/stsysd/gameshelf/api"
	"github.com/stsysd/gameshelf/config"
	"github.com/stsysd/gameshelf/db"
	"github.com/stsysd/gameshelf/logging"
	"github.com/stsysd/gameshelf/offline"
	"github.com/stsysd/gameshelf/store"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SQLiteデータベースの初期化（マイグレーション関数を渡す）
	database, err := store.NewDatabase(cfg.DataDir, db.Migrate)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	// アセットオリジンへのプロキシとオフラインワーカー
	fetcher, err := offline.NewHTTPFetcher(cfg.AssetOrigin, nil)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	assets := httputil.NewSingleHostReverseProxy(fetcher.Origin())

	storage, err := offline.OpenCacheStorage(ctx, cfg.CacheURL, fetcher)
	if err != nil {
		return fmt.Errorf("failed to open cache storage: %w", err)
	}
	defer storage.Close()

	workerLogger := offline.NewLogger(logger)
	strategy := offline.NewCacheFirstStrategy(storage, fetcher, workerLogger)
	worker := offline.NewController(offline.NewHandlers(cfg.Worker, storage, strategy, workerLogger), workerLogger)

	// サーバーインスタンスの作成
	server := api.NewServer(cfg, api.Deps{
		Repository: store.NewGameRepository(database),
		Worker:     worker,
		Assets:     assets,
		Logger:     logger,
	})

	// ワーカーの登録はサーバーの起動を待たない
	go func() {
		if err := offline.Register(ctx, worker, cfg.PublicOrigin, nil, workerLogger); err != nil {
			logger.Warn("Offline worker unavailable", zap.Error(err))
		}
	}()

	// サーバーの起動
	if err := server.Run(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
