package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chefs-fridge/internal/core/ai/aitest"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRequest(t *testing.T) {
	fake := aitest.NewProvider("  eggs, milk \n")
	s := NewServiceWithProvider(&config.Config{}, fake)

	out, err := s.ProcessRequest(context.Background(), "identify", "list food", []byte{1}, []byte{2})
	require.NoError(t, err)
	assert.Equal(t, "eggs, milk", out)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "list food", calls[0].Prompt)
	assert.Equal(t, 2, calls[0].Images)
}

func TestProcessRequestErrors(t *testing.T) {
	t.Run("provider failure", func(t *testing.T) {
		fake := aitest.NewProvider("unused")
		fake.Errors = []error{errors.New("quota exceeded")}
		s := NewServiceWithProvider(&config.Config{}, fake)

		_, err := s.ProcessRequest(context.Background(), "generate", "p")
		assert.ErrorIs(t, err, common.ErrAIServiceError)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty response", func(t *testing.T) {
		s := NewServiceWithProvider(&config.Config{}, aitest.NewProvider("   "))
		_, err := s.ProcessRequest(context.Background(), "generate", "p")
		assert.ErrorIs(t, err, common.ErrAIServiceError)
	})

	t.Run("timeout is applied", func(t *testing.T) {
		cfg := &config.Config{AI: config.AIConfig{Timeout: 10 * time.Millisecond}}
		fake := aitest.NewProvider("late")
		fake.Block = true
		s := NewServiceWithProvider(cfg, fake)

		_, err := s.ProcessRequest(context.Background(), "generate", "p")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.ErrorIs(t, err, common.ErrGatewayTimeout)
	})
}

func TestUnavailableWithoutCredential(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{Provider: config.ProviderGemini}}
	cfg.SetConfigError(errors.New("API key not found! Please add GEMINI_API_KEY"))

	s, err := NewService(context.Background(), cfg)
	require.NoError(t, err)

	err = s.Available()
	assert.ErrorIs(t, err, common.ErrModelUnavailable)

	_, err = s.ProcessRequest(context.Background(), "identify", "p", []byte{1})
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
	assert.Equal(t, config.ProviderGemini, s.ProviderName())
}

func TestQueueStatus(t *testing.T) {
	cfg := &config.Config{AI: config.AIConfig{MaxConcurrent: 2}}
	fake := aitest.NewProvider("ok")
	fake.Errors = []error{nil, errors.New("boom")}
	s := NewServiceWithProvider(cfg, fake)
	defer s.Close()

	_, err := s.ProcessRequest(context.Background(), "generate", "p")
	require.NoError(t, err)
	_, err = s.ProcessRequest(context.Background(), "generate", "p")
	require.Error(t, err)

	status := s.QueueStatus()
	assert.Equal(t, 2, status.Workers)
	assert.Equal(t, 2, status.Processed)
	assert.Equal(t, 1, status.Failed)
}
