package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"chefs-fridge/internal/core/image"
	"chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/pkg/common"
)

// Page 畫面
type Page string

// 五個畫面
const (
	PageHome     Page = "Home"
	PageUpload   Page = "Upload Images"
	PageIdentify Page = "Identify Ingredients"
	PageGenerate Page = "Generate Recipe"
	PageView     Page = "View Recipe"
)

// Pages 所有畫面
var Pages = []Page{PageHome, PageUpload, PageIdentify, PageGenerate, PageView}

// ParsePage 驗證畫面名稱
func ParsePage(s string) (Page, error) {
	p := Page(s)
	if !slices.Contains(Pages, p) {
		return "", common.NewValidationError(fmt.Sprintf("unknown page %q", s))
	}
	return p, nil
}

// Step 進度指示（第幾步，共三步），非流程畫面回傳 0
func (p Page) Step() int {
	switch p {
	case PageUpload:
		return 1
	case PageIdentify:
		return 2
	case PageGenerate:
		return 3
	default:
		return 0
	}
}

// TotalSteps 流程總步數
const TotalSteps = 3

// State 單一會話的狀態；處理請求期間必須持有 Lock
type State struct {
	mu sync.Mutex

	ID          string
	Page        Page
	Images      []*image.Image
	Ingredients *recipe.IngredientSet
	Drafts      []recipe.Draft
	Saved       []recipe.SavedRecipe
	// Viewing 正在檢視的已儲存食譜 ID，空字串表示沒有
	Viewing    string
	CacheKeys  []string
	CreatedAt  time.Time
	LastAccess time.Time

	ended bool
}

// newState 會話工廠，所有預設值集中於此
func newState() *State {
	now := time.Now()
	return &State{
		ID:          common.GenerateUUID(),
		Page:        PageHome,
		Images:      []*image.Image{},
		Ingredients: recipe.NewIngredientSet(),
		Drafts:      []recipe.Draft{},
		Saved:       []recipe.SavedRecipe{},
		CacheKeys:   []string{},
		CreatedAt:   now,
		LastAccess:  now,
	}
}

func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// Ended 會話是否已從儲存中移除；等待鎖期間被刪除的請求應放棄處理
func (s *State) Ended() bool { return s.ended }

// Touch 更新最後存取時間
func (s *State) Touch() {
	s.LastAccess = time.Now()
}

// Navigate 切換畫面；沒有正在檢視的食譜時，View Recipe 會回到 Home
func (s *State) Navigate(p Page) Page {
	if p == PageView && s.viewingRecipe() == nil {
		p = PageHome
	}
	s.Page = p
	return p
}

// AddImage 加入圖片，重複時回傳 false
func (s *State) AddImage(img *image.Image) bool {
	if image.IsDuplicate(img, s.Images) {
		return false
	}
	s.Images = append(s.Images, img)
	return true
}

// RemoveImage 刪除第 i 張圖片
func (s *State) RemoveImage(i int) (*image.Image, error) {
	if i < 0 || i >= len(s.Images) {
		return nil, common.ErrNotFound.WithMessage(fmt.Sprintf("image index %d out of range", i))
	}
	removed := s.Images[i]
	s.Images = slices.Delete(s.Images, i, i+1)
	return removed, nil
}

// ImageHashes 依上傳順序的圖片雜湊
func (s *State) ImageHashes() []string {
	hashes := make([]string, len(s.Images))
	for i, img := range s.Images {
		hashes[i] = img.Hash
	}
	return hashes
}

// RememberCacheKey 記錄此會話寫入過的快取鍵
func (s *State) RememberCacheKey(key string) {
	if !slices.Contains(s.CacheKeys, key) {
		s.CacheKeys = append(s.CacheKeys, key)
	}
}

// SaveDraft 儲存第 i 份草稿
func (s *State) SaveDraft(i int) (recipe.SavedRecipe, error) {
	if i < 0 || i >= len(s.Drafts) {
		return recipe.SavedRecipe{}, common.ErrRecipeNotFound.WithMessage(fmt.Sprintf("recipe index %d out of range", i))
	}
	saved := recipe.Save(s.Drafts[i], i+1)
	s.Saved = append(s.Saved, saved)
	return saved, nil
}

func (s *State) findSaved(id string) int {
	return slices.IndexFunc(s.Saved, func(r recipe.SavedRecipe) bool { return r.ID == id })
}

// FindSaved 依 ID 取得已儲存食譜
func (s *State) FindSaved(id string) (recipe.SavedRecipe, error) {
	i := s.findSaved(id)
	if i < 0 {
		return recipe.SavedRecipe{}, common.ErrRecipeNotFound
	}
	return s.Saved[i], nil
}

// View 檢視已儲存食譜並切換到 View Recipe
func (s *State) View(id string) (recipe.SavedRecipe, error) {
	r, err := s.FindSaved(id)
	if err != nil {
		return r, err
	}
	s.Viewing = id
	s.Page = PageView
	return r, nil
}

// DeleteSaved 刪除已儲存食譜；刪除的是正在檢視的食譜時回到 Home
func (s *State) DeleteSaved(id string) error {
	i := s.findSaved(id)
	if i < 0 {
		return common.ErrRecipeNotFound
	}
	s.Saved = slices.Delete(s.Saved, i, i+1)
	if s.Viewing == id {
		s.Viewing = ""
		s.Page = PageHome
	}
	return nil
}

// viewingRecipe 正在檢視的食譜，不存在時為 nil
func (s *State) viewingRecipe() *recipe.SavedRecipe {
	if s.Viewing == "" {
		return nil
	}
	i := s.findSaved(s.Viewing)
	if i < 0 {
		return nil
	}
	return &s.Saved[i]
}

// ViewingRecipe 正在檢視的食譜
func (s *State) ViewingRecipe() *recipe.SavedRecipe {
	return s.viewingRecipe()
}
