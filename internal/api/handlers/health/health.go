package health

import (
	"net/http"
	"runtime"
	"time"

	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/ai/queue"
	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 注入 gin context 的鍵
const (
	ConfigKey       = "config"
	AIServiceKey    = "ai_service"
	CacheStoreKey   = "cache_store"
	SessionStoreKey = "session_store"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     ModelStatus            `json:"model"`
	Queue     *queue.Status          `json:"queue"`
	Sessions  int                    `json:"sessions"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// ModelStatus 模型客戶端狀態
type ModelStatus struct {
	Available   bool   `json:"available"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	ConfigError string `json:"config_error,omitempty"`
}

func modelStatus(cfg *config.Config, aiSvc *service.Service) ModelStatus {
	st := ModelStatus{
		Available: aiSvc.Available() == nil,
		Provider:  aiSvc.ProviderName(),
		Model:     aiSvc.Model(),
	}
	if err := cfg.ConfigError(); err != nil {
		st.ConfigError = err.Error()
	}
	return st
}

// HealthCheck 健康檢查處理器；模型未設定時狀態為 degraded
func HealthCheck(c *gin.Context) {
	cfg, ok := c.MustGet(ConfigKey).(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		common.WriteError(c, common.ErrInternalError, false)
		return
	}
	aiSvc := c.MustGet(AIServiceKey).(*service.Service)

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Model:     modelStatus(cfg, aiSvc),
		Queue:     aiSvc.QueueStatus(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if !response.Model.Available {
		response.Status = "degraded"
	}
	if store, ok := c.Get(SessionStoreKey); ok {
		response.Sessions = store.(*session.Store).Len()
	}
	if v, ok := c.Get(CacheStoreKey); ok {
		if store, ok := v.(cache.Store); ok && store != nil {
			response.Cache = store.GetStats()
		}
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("status", response.Status),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，缺少模型金鑰仍可提供手動功能
func ReadinessCheck(c *gin.Context) {
	cfg := c.MustGet(ConfigKey).(*config.Config)
	aiSvc := c.MustGet(AIServiceKey).(*service.Service)

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"model":  modelStatus(cfg, aiSvc),
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
