package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"
)

// Store 辨識結果快取，未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// DeleteByPrefix 刪除某個會話的所有項目
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
	GetStats() map[string]interface{}
	Close() error
}

// New 依設定建立快取後端，停用時回傳 nil
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "redis":
		s, err := NewRedisStore(ctx, cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return NewManager(cfg.Cache), nil
	}
}

// SessionPrefix 會話的快取鍵前綴
func SessionPrefix(sessionID string) string {
	return "identify:" + sessionID + ":"
}

// IdentificationKey 以圖片內容雜湊的有序清單作為鍵，並加上會話前綴
func IdentificationKey(sessionID string, imageHashes []string) string {
	sum := sha256.Sum256([]byte(strings.Join(imageHashes, ",")))
	return fmt.Sprintf("%s%s", SessionPrefix(sessionID), hex.EncodeToString(sum[:]))
}
