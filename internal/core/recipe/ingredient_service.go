package recipe

import (
	"context"
	"fmt"

	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/image"
	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientService 食材識別服務
type IngredientService struct {
	*Service
}

// NewIngredientService 創建新的食材識別服務
func NewIngredientService(base *Service) *IngredientService {
	return &IngredientService{Service: base}
}

// IdentifyResult 識別結果
type IdentifyResult struct {
	Items    []string
	CacheKey string
	Cached   bool
}

// Identify 逐張圖片識別食材，結果依首次出現順序合併去重；
// 任何一張失敗即放棄整批並回傳錯誤
func (s *IngredientService) Identify(ctx context.Context, sessionID string, images []*image.Image) (*IdentifyResult, error) {
	if len(images) == 0 {
		return nil, common.ErrNoImages
	}
	if err := s.Available(); err != nil {
		return nil, err
	}

	hashes := make([]string, len(images))
	for i, img := range images {
		hashes[i] = img.Hash
	}
	key := cache.IdentificationKey(sessionID, hashes)

	if items, ok := s.getFromCache(ctx, key); ok {
		common.LogInfo("使用快取的識別結果",
			zap.String("session_id", sessionID),
			zap.Int("images", len(images)),
			zap.Int("items", len(items)),
		)
		return &IdentifyResult{Items: items, CacheKey: key, Cached: true}, nil
	}

	set := NewIngredientSet()
	for i, img := range images {
		content, err := s.aiService.ProcessRequest(ctx, "identify", IdentifyPrompt, img.Data)
		if err != nil {
			common.LogError("食材識別失敗",
				zap.String("session_id", sessionID),
				zap.Int("image", i),
				zap.String("name", img.Name),
				zap.Error(err),
			)
			return nil, fmt.Errorf("identify %s: %w", img.Name, err)
		}
		set.Add(ParseItemList(content)...)
	}

	items := set.Items()
	s.setToCache(ctx, key, items)

	common.LogInfo("食材識別完成",
		zap.String("session_id", sessionID),
		zap.Int("images", len(images)),
		zap.Int("items", len(items)),
	)
	return &IdentifyResult{Items: items, CacheKey: key}, nil
}
