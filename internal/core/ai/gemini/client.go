package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chefs-fridge/internal/core/ai/provider"
	"chefs-fridge/internal/infrastructure/config"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client Gemini 供應商
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewClient 建立 Gemini 客戶端，金鑰為空時回傳錯誤
func NewClient(ctx context.Context, cfg config.GeminiConfig, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}

	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	m := cl.GenerativeModel(strings.TrimSpace(cfg.Model))
	applyGenerationConfig(m, cfg)

	return &Client{client: cl, model: m, name: cfg.Model}, nil
}

// applyGenerationConfig 套用取樣參數
func applyGenerationConfig(m *genai.GenerativeModel, cfg config.GeminiConfig) {
	m.SetTemperature(cfg.Temperature)
	m.SetTopP(cfg.TopP)
	m.SetTopK(cfg.TopK)
	m.SetMaxOutputTokens(cfg.MaxOutputTokens)
}

func (c *Client) Name() string     { return config.ProviderGemini }
func (c *Client) GetModel() string { return c.name }

// Generate 送出文字與圖片
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	parts := make([]genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.Text(req.Prompt))
	for _, img := range req.Images {
		parts = append(parts, genai.ImageData("jpeg", img))
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, errors.New("gemini: empty response")
	}

	out := &provider.Response{Content: txt}
	if resp.UsageMetadata != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// firstText 串接第一個有內容的候選回應中所有文字片段
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
