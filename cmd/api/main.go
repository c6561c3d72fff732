package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefs-fridge/internal/api"
	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（.env 由 config 一併處理）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.ModelName()),
		zap.String("api_key", config.MaskAPIKey(cfg.ModelAPIKey())),
		zap.String("cache_backend", cfg.Cache.Backend),
	)
	if cfgErr := cfg.ConfigError(); cfgErr != nil {
		// 缺少金鑰時仍啟動，模型相關操作回傳 503
		common.LogWarn("模型設定不完整", zap.Error(cfgErr))
	}

	ctx := context.Background()

	// 初始化快取
	cacheStore, err := cache.New(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	// 初始化模型服務
	aiService, err := service.NewService(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize model service", zap.Error(err))
	}
	defer aiService.Close()

	sessions := session.NewStore(cfg.Session, api.SessionEvictor(cacheStore))
	defer sessions.Close()

	router, closeRouter := api.SetupRouter(cfg, aiService, cacheStore, sessions)
	defer closeRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
