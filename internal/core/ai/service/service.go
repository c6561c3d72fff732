package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chefs-fridge/internal/core/ai/gemini"
	"chefs-fridge/internal/core/ai/openrouter"
	"chefs-fridge/internal/core/ai/provider"
	"chefs-fridge/internal/core/ai/queue"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 服務，所有模型呼叫的唯一入口
type Service struct {
	config   *config.Config
	provider provider.Provider
	queue    *queue.Manager
}

// NewService 依設定建立供應商；缺少金鑰時回傳不可用的服務而非錯誤
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := cfg.ConfigError(); err != nil {
		common.LogWarn("模型未設定，辨識與生成功能停用", zap.Error(err))
		return &Service{config: cfg, queue: queue.NewManager(cfg.AI.MaxConcurrent)}, nil
	}

	p, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	common.LogInfo("AI 服務已初始化",
		zap.String("provider", p.Name()),
		zap.String("model", p.GetModel()),
		zap.String("api_key", config.MaskAPIKey(cfg.ModelAPIKey())),
		zap.Int("max_concurrent", cfg.AI.MaxConcurrent),
	)
	return NewServiceWithProvider(cfg, p), nil
}

// NewServiceWithProvider 使用指定的供應商
func NewServiceWithProvider(cfg *config.Config, p provider.Provider) *Service {
	return &Service{config: cfg, provider: p, queue: queue.NewManager(cfg.AI.MaxConcurrent)}
}

func newProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.AI.Provider {
	case config.ProviderOpenRouter:
		c, err := openrouter.NewClient(cfg.OpenRouter)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// Available 模型不可用時回傳 ErrModelUnavailable
func (s *Service) Available() error {
	if s.provider != nil {
		return nil
	}
	if err := s.config.ConfigError(); err != nil {
		return common.ErrModelUnavailable.WithMessage(err.Error())
	}
	return common.ErrModelUnavailable
}

// ProcessRequest 統一對外方法，task 只用於日誌
func (s *Service) ProcessRequest(ctx context.Context, task, prompt string, images ...[]byte) (string, error) {
	if err := s.Available(); err != nil {
		return "", err
	}

	if s.config.AI.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AI.Timeout)
		defer cancel()
	}

	var resp *provider.Response
	err := s.queue.Do(ctx, task, func(ctx context.Context) error {
		start := time.Now()
		var err error
		resp, err = s.provider.Generate(ctx, &provider.Request{Prompt: prompt, Images: images})
		common.LogAICall(task, time.Since(start), err)
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", common.ErrGatewayTimeout.Wrap(err)
		}
		return "", common.ErrAIServiceError.Wrap(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", common.ErrAIServiceError.Wrap(fmt.Errorf("empty response from %s", s.provider.Name()))
	}
	return content, nil
}

// ProviderName 目前供應商名稱
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return s.config.AI.Provider
	}
	return s.provider.Name()
}

// Model 目前模型名稱
func (s *Service) Model() string {
	if s.provider == nil {
		return s.config.ModelName()
	}
	return s.provider.GetModel()
}

// QueueStatus 模型呼叫隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	return s.queue.GetQueueStatus()
}

// Close 關閉隊列與供應商連線
func (s *Service) Close() error {
	s.queue.Close()
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}
