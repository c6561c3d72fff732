package recipe

import (
	"context"
	"errors"

	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 食譜服務基礎結構
type Service struct {
	aiService  *service.Service
	cacheStore cache.Store
}

// NewService 創建新的食譜服務，cacheStore 可為 nil
func NewService(aiService *service.Service, cacheStore cache.Store) *Service {
	return &Service{
		aiService:  aiService,
		cacheStore: cacheStore,
	}
}

// Available 模型是否可用
func (s *Service) Available() error {
	return s.aiService.Available()
}

// getFromCache 從緩存獲取品項清單，未命中時 ok 為 false
func (s *Service) getFromCache(ctx context.Context, key string) ([]string, bool) {
	if s.cacheStore == nil {
		return nil, false
	}
	val, err := s.cacheStore.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		return nil, false
	}
	var items []string
	if err := common.ParseJSONBytes([]byte(val), &items); err != nil {
		common.LogWarn("快取內容無法解析", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

// setToCache 將品項清單存入緩存
func (s *Service) setToCache(ctx context.Context, key string, items []string) {
	if s.cacheStore == nil {
		return
	}
	data, err := common.ToJSON(items)
	if err != nil {
		return
	}
	if err := s.cacheStore.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入快取失敗", zap.Error(err))
	}
}
