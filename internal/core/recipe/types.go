package recipe

import (
	"time"

	"chefs-fridge/internal/pkg/common"
)

// Draft 一次生成請求的食譜草稿（已正規化）
type Draft struct {
	Text        string         `json:"text"`
	Diet        common.Diet    `json:"diet"`
	Cuisine     common.Cuisine `json:"cuisine"`
	Ingredients []string       `json:"ingredients"`
	Failed      bool           `json:"failed"`
}

// ParsedRecipe 食譜文字的解析結果，每次顯示時重新計算
type ParsedRecipe struct {
	Title               string   `json:"title"`
	Ingredients         []string `json:"ingredients"`
	Steps               []string `json:"steps"`
	IngredientsFallback string   `json:"ingredients_fallback,omitempty"`
	StepsFallback       string   `json:"steps_fallback,omitempty"`
	SourceText          string   `json:"source_text"`
}

// SavedRecipe 已儲存的食譜，生命週期與會話相同
type SavedRecipe struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Ingredients []string       `json:"ingredients"`
	Diet        common.Diet    `json:"diet"`
	Cuisine     common.Cuisine `json:"cuisine"`
	SavedAt     time.Time      `json:"saved_at"`
}

// Save 由草稿建立已儲存食譜，position 從 1 開始
func Save(d Draft, position int) SavedRecipe {
	return SavedRecipe{
		ID:          common.GenerateUUID(),
		Title:       ExtractTitle(d.Text, position),
		Content:     d.Text,
		Ingredients: append([]string(nil), d.Ingredients...),
		Diet:        d.Diet,
		Cuisine:     d.Cuisine,
		SavedAt:     time.Now(),
	}
}

// GenerateRequest 生成食譜請求
type GenerateRequest struct {
	Diet    string `json:"diet"`
	Cuisine string `json:"cuisine"`
	Count   int    `json:"count"`
}

// Validate 驗證並轉換偏好，數量為 0 時預設 1
func (r GenerateRequest) Validate() (common.Diet, common.Cuisine, int, error) {
	diet, err := common.ParseDiet(r.Diet)
	if err != nil {
		return "", "", 0, err
	}
	cuisine, err := common.ParseCuisine(r.Cuisine)
	if err != nil {
		return "", "", 0, err
	}
	count := r.Count
	if count == 0 {
		count = 1
	}
	if err := common.ValidateRecipeCount(count); err != nil {
		return "", "", 0, err
	}
	return diet, cuisine, count, nil
}
