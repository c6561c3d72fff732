package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"chefs-fridge/internal/core/ai/aitest"
	"chefs-fridge/internal/core/ai/cache"
	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/core/image"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBase(t *testing.T, fake *aitest.Provider) (*Service, cache.Store) {
	t.Helper()
	store := cache.NewManager(config.CacheConfig{MaxSize: 10, TTL: time.Hour})
	t.Cleanup(func() { _ = store.Close() })
	return NewService(service.NewServiceWithProvider(&config.Config{}, fake), store), store
}

func testImages(hashes ...string) []*image.Image {
	out := make([]*image.Image, len(hashes))
	for i, h := range hashes {
		out[i] = &image.Image{Name: h + ".jpg", Hash: h, Data: []byte(h)}
	}
	return out
}

func TestIdentifyUnionsInFirstSeenOrder(t *testing.T) {
	fake := aitest.NewProvider("eggs, milk, - butter", "milk, cheese,  ")
	base, _ := newTestBase(t, fake)
	svc := NewIngredientService(base)

	res, err := svc.Identify(context.Background(), "s1", testImages("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "milk", "butter", "cheese"}, res.Items)
	assert.False(t, res.Cached)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, IdentifyPrompt, calls[0].Prompt)
	assert.Equal(t, 1, calls[0].Images)
}

func TestIdentifyUsesContentCache(t *testing.T) {
	fake := aitest.NewProvider("eggs")
	base, _ := newTestBase(t, fake)
	svc := NewIngredientService(base)
	ctx := context.Background()

	_, err := svc.Identify(ctx, "s1", testImages("a"))
	require.NoError(t, err)

	// 重新上傳相同內容的圖片仍命中快取
	res, err := svc.Identify(ctx, "s1", testImages("a"))
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, []string{"eggs"}, res.Items)
	assert.Len(t, fake.Calls(), 1)

	// 其他會話不共用
	res, err = svc.Identify(ctx, "s2", testImages("a"))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Len(t, fake.Calls(), 2)
}

func TestIdentifyFailureAbortsBatch(t *testing.T) {
	fake := aitest.NewProvider("eggs", "never")
	fake.Errors = []error{nil, errors.New("upstream 500")}
	base, store := newTestBase(t, fake)
	svc := NewIngredientService(base)

	res, err := svc.Identify(context.Background(), "s1", testImages("a", "b", "c"))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Len(t, fake.Calls(), 2, "remaining images are not sent")

	_, err = store.Get(context.Background(), cache.IdentificationKey("s1", []string{"a", "b", "c"}))
	assert.ErrorIs(t, err, common.ErrCacheMiss, "failures are not cached")
}

func TestIdentifyGuards(t *testing.T) {
	fake := aitest.NewProvider("eggs")
	base, _ := newTestBase(t, fake)
	svc := NewIngredientService(base)

	_, err := svc.Identify(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, common.ErrNoImages)
	assert.Empty(t, fake.Calls())

	cfg := &config.Config{}
	cfg.SetConfigError(errors.New("API key not found! Please add GEMINI_API_KEY"))
	unavailable := NewIngredientService(NewService(service.NewServiceWithProvider(cfg, nil), nil))
	_, err = unavailable.Identify(context.Background(), "s1", testImages("a"))
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestGenerate(t *testing.T) {
	fake := aitest.NewProvider("**Tacos**\n\nINGREDIENTS:\n- 2 tortillas", "unused", "## Soup\n1. Boil")
	fake.Errors = []error{nil, errors.New("rate limited"), nil}
	base, _ := newTestBase(t, fake)
	svc := NewRecipeService(base)

	drafts, notices, err := svc.Generate(context.Background(), []string{"tortillas"}, common.DietVegan, common.CuisineMexican, 3)
	require.NoError(t, err)
	require.Len(t, drafts, 3)

	assert.Equal(t, "Tacos\n\nINGREDIENTS:\n2 tortillas", drafts[0].Text)
	assert.Equal(t, UnableToGenerate, drafts[1].Text)
	assert.True(t, drafts[1].Failed)
	assert.Equal(t, "Soup\n1. Boil", drafts[2].Text)
	assert.Equal(t, common.DietVegan, drafts[0].Diet)
	assert.Equal(t, []string{"tortillas"}, drafts[2].Ingredients)

	require.Len(t, notices, 1)
	assert.Equal(t, common.NoticeError, notices[0].Level)
	assert.Contains(t, notices[0].Text, "rate limited")

	calls := fake.Calls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, calls[0].Prompt, c.Prompt)
		assert.Zero(t, c.Images)
	}
	assert.Contains(t, calls[0].Prompt, "The recipe should be vegan. The recipe should be Mexican cuisine.")
}

func TestGenerateGuards(t *testing.T) {
	fake := aitest.NewProvider("x")
	base, _ := newTestBase(t, fake)
	svc := NewRecipeService(base)

	_, _, err := svc.Generate(context.Background(), nil, common.DietNone, common.CuisineAny, 1)
	assert.ErrorIs(t, err, common.ErrNoIngredients)

	_, _, err = svc.Generate(context.Background(), []string{"eggs"}, common.DietNone, common.CuisineAny, 4)
	assert.True(t, common.IsValidationError(err))

	assert.Empty(t, fake.Calls())
}
