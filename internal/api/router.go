package api

import (
	"context"
	"time"

	"chefs-fridge/internal/api/handlers/health"
	recipeHandler "chefs-fridge/internal/api/handlers/recipe"
	"chefs-fridge/internal/api/middleware"
	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/core/export"
	"chefs-fridge/internal/core/image"
	recipeService "chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionEvictor 會話結束時刪除其識別快取
func SessionEvictor(store cache.Store) session.EvictFunc {
	return func(st *session.State) {
		if store == nil {
			return
		}
		n, err := store.DeleteByPrefix(context.Background(), cache.SessionPrefix(st.ID))
		if err != nil {
			common.LogWarn("刪除會話快取失敗", zap.String("session_id", st.ID), zap.Error(err))
			return
		}
		common.LogDebug("會話快取已刪除", zap.String("session_id", st.ID), zap.Int("count", n))
	}
}

// SetupRouter 設置路由，回傳的 closer 停止中間件的背景清理協程
func SetupRouter(cfg *config.Config, aiService *service.Service, cacheStore cache.Store, sessions *session.Store) (*gin.Engine, func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound, false)
	})
	router.NoMethod(func(c *gin.Context) {
		common.WriteError(c, common.ErrMethodNotAllowed, false)
	})

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	var closers []func()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewClientLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		closers = append(closers, limiter.Close)
		router.Use(limiter.Middleware())
	}

	// 初始化服務
	base := recipeService.NewService(aiService, cacheStore)
	handler := recipeHandler.NewHandler(
		cfg,
		sessions,
		image.NewService(cfg.Image),
		recipeService.NewIngredientService(base),
		recipeService.NewRecipeService(base),
		export.NewRenderer(cfg.PDF),
		aiService,
	)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	closers = append(closers, dedup.Close)

	common.LogInfo("Services initialized",
		zap.Bool("cache_enabled", cacheStore != nil),
		zap.String("provider", aiService.ProviderName()),
		zap.String("model", aiService.Model()),
		zap.Bool("model_available", aiService.Available() == nil),
	)

	// 注入健康檢查需要的服務
	router.Use(func(c *gin.Context) {
		c.Set(health.ConfigKey, cfg)
		c.Set(health.AIServiceKey, aiService)
		c.Set(health.CacheStoreKey, cacheStore)
		c.Set(health.SessionStoreKey, sessions)
		c.Next()
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		api.GET("/options", handler.HandleOptions)
		api.POST("/sessions", handler.HandleCreateSession)
		api.DELETE("/sessions/:id", handler.HandleDeleteSession)

		// 以下路由在請求期間持有會話鎖
		sess := api.Group("/sessions/:id", middleware.Session(sessions, cfg.App.Debug))
		{
			sess.GET("", handler.HandleGetSession)
			sess.PUT("/page", handler.HandleNavigate)

			sess.POST("/images", handler.HandleUploadImages)
			sess.DELETE("/images/:index", handler.HandleDeleteImage)

			sess.POST("/ingredients/identify", dedup.Middleware(middleware.SessionImagesKey), handler.HandleIdentify)
			sess.POST("/ingredients", handler.HandleAddIngredients)
			sess.PUT("/ingredients/:index", handler.HandleEditIngredient)
			sess.PUT("/ingredients/:index/edit-mode", handler.HandleEditMode)
			sess.DELETE("/ingredients/:index", handler.HandleDeleteIngredient)

			sess.POST("/recipes", dedup.Middleware(middleware.SessionIngredientsKey), handler.HandleGenerate)
			sess.GET("/recipes", handler.HandleListRecipes)
			sess.GET("/recipes/pdf", handler.HandleRecipesPDF)
			sess.POST("/recipes/:index/save", handler.HandleSaveRecipe)

			sess.GET("/saved", handler.HandleListSaved)
			sess.GET("/saved/:rid", handler.HandleViewSaved)
			sess.DELETE("/saved/:rid", handler.HandleDeleteSaved)
			sess.GET("/saved/:rid/pdf", handler.HandleSavedPDF)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
	)

	return router, func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
}
