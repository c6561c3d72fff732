// Package aitest 提供測試用的假模型供應商
package aitest

import (
	"context"
	"errors"
	"sync"

	"chefs-fridge/internal/core/ai/provider"
)

// Call 一次呼叫紀錄
type Call struct {
	Prompt string
	Images int
}

// Provider 依序回傳預設回應的假供應商；回應用完後重複最後一個
type Provider struct {
	mu        sync.Mutex
	Responses []string
	Errors    []error
	// Block 為 true 時等待 context 結束
	Block bool
	calls []Call
}

// NewProvider 以固定回應建立假供應商
func NewProvider(responses ...string) *Provider {
	return &Provider{Responses: responses}
}

func (p *Provider) Name() string     { return "fake" }
func (p *Provider) GetModel() string { return "fake-model" }
func (p *Provider) Close() error     { return nil }

// Generate 記錄呼叫並回傳下一個回應；對應位置有錯誤時回傳錯誤
func (p *Provider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := len(p.calls)
	p.calls = append(p.calls, Call{Prompt: req.Prompt, Images: len(req.Images)})

	if p.Block {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < len(p.Errors) && p.Errors[i] != nil {
		return nil, p.Errors[i]
	}
	if len(p.Responses) == 0 {
		return nil, errors.New("no response configured")
	}
	if i >= len(p.Responses) {
		i = len(p.Responses) - 1
	}
	return &provider.Response{Content: p.Responses[i]}, nil
}

// Calls 回傳目前為止的呼叫紀錄
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}
