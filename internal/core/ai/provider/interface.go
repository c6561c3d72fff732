package provider

import (
	"context"
)

// Request 表示發送到模型的請求：一段文字指令，加上零到多張 JPEG 圖片
type Request struct {
	Prompt string
	Images [][]byte
}

// Response 表示模型的回應，內容視為不透明字串
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage token 使用量（供應商未回報時為 0）
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider 定義模型供應商介面
type Provider interface {
	// Generate 生成模型回應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name 供應商名稱
	Name() string

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}
