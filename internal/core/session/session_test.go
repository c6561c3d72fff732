package session

import (
	"sync"
	"testing"
	"time"

	"chefs-fridge/internal/core/image"
	"chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(onEvict EvictFunc) *Store {
	return NewStore(config.SessionConfig{TTL: time.Hour}, onEvict)
}

func TestFactoryDefaults(t *testing.T) {
	st := newTestStore(nil).Create()

	assert.NotEmpty(t, st.ID)
	assert.Equal(t, PageHome, st.Page)
	assert.Empty(t, st.Images)
	assert.Equal(t, 0, st.Ingredients.Len())
	assert.Empty(t, st.Drafts)
	assert.Empty(t, st.Saved)
	assert.Empty(t, st.Viewing)
}

func TestStoreGetDelete(t *testing.T) {
	var evicted []string
	s := newTestStore(func(st *State) { evicted = append(evicted, st.ID) })

	st := s.Create()
	got, err := s.Get(st.ID)
	require.NoError(t, err)
	assert.Same(t, st, got)

	require.NoError(t, s.Delete(st.ID))
	assert.Equal(t, []string{st.ID}, evicted)

	_, err = s.Get(st.ID)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(st.ID), common.ErrSessionNotFound)
}

func TestDeleteWaitsForInFlightRequest(t *testing.T) {
	tests := []struct {
		name string
		end  func(s *Store, st *State)
	}{
		{"delete", func(s *Store, st *State) { _ = s.Delete(st.ID) }},
		{"reaped after request started", func(s *Store, st *State) {
			s.mu.Lock()
			delete(s.sessions, st.ID)
			s.mu.Unlock()
			s.evict(st)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evicted := make(chan struct{})
			s := newTestStore(func(*State) { close(evicted) })
			st := s.Create()

			// 模擬進行中的請求
			st.Lock()
			done := make(chan struct{})
			go func() {
				tt.end(s, st)
				close(done)
			}()

			select {
			case <-evicted:
				t.Fatal("evicted while a request still holds the session")
			case <-time.After(50 * time.Millisecond):
			}
			assert.False(t, st.Ended())
			st.Unlock()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("eviction did not complete after the request finished")
			}
			<-evicted

			st.Lock()
			assert.True(t, st.Ended())
			st.Unlock()
		})
	}
}

func TestCleanupExpired(t *testing.T) {
	var mu sync.Mutex
	evicted := 0
	s := newTestStore(func(*State) {
		mu.Lock()
		evicted++
		mu.Unlock()
	})

	old := s.Create()
	old.LastAccess = time.Now().Add(-2 * time.Hour)
	fresh := s.Create()

	busy := s.Create()
	busy.LastAccess = time.Now().Add(-2 * time.Hour)
	busy.Lock()

	assert.Equal(t, 1, s.Cleanup(time.Now()))
	assert.Equal(t, 1, evicted)

	_, err := s.Get(old.ID)
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
	_, err = s.Get(busy.ID)
	assert.NoError(t, err, "sessions in use are not reaped")
	busy.Unlock()

	old.Lock()
	assert.True(t, old.Ended())
	old.Unlock()
}

func TestNavigate(t *testing.T) {
	st := newState()

	assert.Equal(t, PageUpload, st.Navigate(PageUpload))
	assert.Equal(t, PageHome, st.Navigate(PageView), "nothing being viewed")

	st.Drafts = []recipe.Draft{{Text: "Tacos\n\nINGREDIENTS:\ntortillas"}}
	saved, err := st.SaveDraft(0)
	require.NoError(t, err)

	_, err = st.View(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, PageView, st.Page)
	assert.Equal(t, PageView, st.Navigate(PageView))
}

func TestSavedRecipeLifecycle(t *testing.T) {
	st := newState()
	st.Drafts = []recipe.Draft{
		{Text: "Tacos\nINGREDIENTS:\n2 tortillas", Diet: common.DietVegan, Ingredients: []string{"tortillas"}},
		{Text: "\nno title here"},
	}

	tacos, err := st.SaveDraft(0)
	require.NoError(t, err)
	assert.Equal(t, "Tacos", tacos.Title)
	assert.Equal(t, common.DietVegan, tacos.Diet)
	assert.Equal(t, []string{"tortillas"}, tacos.Ingredients)

	untitled, err := st.SaveDraft(1)
	require.NoError(t, err)
	assert.Equal(t, "Recipe 2", untitled.Title)
	assert.NotEqual(t, tacos.ID, untitled.ID)

	_, err = st.SaveDraft(2)
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)

	_, err = st.View(tacos.ID)
	require.NoError(t, err)

	// 刪除其他食譜不影響目前檢視
	require.NoError(t, st.DeleteSaved(untitled.ID))
	assert.Equal(t, PageView, st.Page)

	require.NoError(t, st.DeleteSaved(tacos.ID))
	assert.Equal(t, PageHome, st.Page)
	assert.Empty(t, st.Viewing)
	assert.ErrorIs(t, st.DeleteSaved(tacos.ID), common.ErrRecipeNotFound)
}

func TestImages(t *testing.T) {
	st := newState()
	a := &image.Image{Name: "a", Hash: "h1"}
	b := &image.Image{Name: "b", Hash: "h2"}

	assert.True(t, st.AddImage(a))
	assert.False(t, st.AddImage(&image.Image{Name: "a-copy", Hash: "h1"}))
	assert.True(t, st.AddImage(b))
	assert.Equal(t, []string{"h1", "h2"}, st.ImageHashes())

	removed, err := st.RemoveImage(0)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Name)
	assert.Equal(t, []string{"h2"}, st.ImageHashes())

	_, err = st.RemoveImage(5)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPages(t *testing.T) {
	p, err := ParsePage("Generate Recipe")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Step())
	assert.Equal(t, 0, PageHome.Step())

	_, err = ParsePage("Settings")
	assert.True(t, common.IsValidationError(err))
}
