package openrouter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chefs-fridge/internal/core/ai/provider"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client OpenRouter 供應商（chat completions）
type Client struct {
	config config.OpenRouterConfig
	client *resty.Client
}

// ContentPart 多模態訊息片段
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL 圖片位址，這裡一律使用 data URI
type ImageURL struct {
	URL string `json:"url"`
}

// Message 對話訊息
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ChatRequest 請求內容
type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// ChatResponse 回應內容
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("OPENROUTER_API_KEY is empty")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("HTTP-Referer", "https://github.com/chefs-fridge").
		SetHeader("X-Title", "Chef's Fridge")

	return &Client{config: cfg, client: client}, nil
}

func (c *Client) Name() string     { return config.ProviderOpenRouter }
func (c *Client) GetModel() string { return c.config.Model }

// buildRequest 組合 chat completion 請求，圖片以 data URI 放在文字之後
func (c *Client) buildRequest(req *provider.Request) ChatRequest {
	parts := []ContentPart{{Type: "text", Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, ContentPart{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(img)},
		})
	}
	return ChatRequest{
		Model:     c.config.Model,
		Messages:  []Message{{Role: "user", Content: parts}},
		MaxTokens: c.config.MaxTokens,
	}
}

// Generate 發送請求到 OpenRouter
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()
	var result ChatResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(c.buildRequest(req)).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	common.LogDebug("OpenRouter 回應",
		zap.Int("status", resp.StatusCode()),
		zap.Int("images", len(req.Images)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode() != http.StatusOK {
		if result.Error != nil && result.Error.Message != "" {
			return nil, fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), result.Error.Message)
		}
		return nil, fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), resp.String())
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, errors.New("no choices in OpenRouter response")
	}

	return &provider.Response{Content: result.Choices[0].Message.Content, Usage: result.Usage}, nil
}

// Close resty 客戶端不需釋放資源
func (c *Client) Close() error { return nil }
