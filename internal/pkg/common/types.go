package common

import (
	"fmt"
	"slices"
)

// Diet 飲食偏好
type Diet string

// 飲食偏好選項，DietNone 表示不限制
const (
	DietNone       Diet = "None"
	DietVegetarian Diet = "Vegetarian"
	DietVegan      Diet = "Vegan"
	DietGlutenFree Diet = "Gluten-Free"
	DietKeto       Diet = "Keto"
	DietLowCarb    Diet = "Low-Carb"
)

// Diets 所有飲食偏好（依畫面顯示順序）
var Diets = []Diet{DietNone, DietVegetarian, DietVegan, DietGlutenFree, DietKeto, DietLowCarb}

// Cuisine 料理風格
type Cuisine string

// 料理風格選項，CuisineAny 表示不限制
const (
	CuisineAny           Cuisine = "Any"
	CuisineItalian       Cuisine = "Italian"
	CuisineMexican       Cuisine = "Mexican"
	CuisineAsian         Cuisine = "Asian"
	CuisineIndian        Cuisine = "Indian"
	CuisineMediterranean Cuisine = "Mediterranean"
	CuisineAmerican      Cuisine = "American"
	CuisineFrench        Cuisine = "French"
)

// Cuisines 所有料理風格（依畫面顯示順序）
var Cuisines = []Cuisine{
	CuisineAny, CuisineItalian, CuisineMexican, CuisineAsian,
	CuisineIndian, CuisineMediterranean, CuisineAmerican, CuisineFrench,
}

// RecipeCounts 一次可生成的食譜數量
var RecipeCounts = []int{1, 2, 3}

// ParseDiet 驗證飲食偏好，空字串視為 None
func ParseDiet(s string) (Diet, error) {
	if s == "" {
		return DietNone, nil
	}
	d := Diet(s)
	if !slices.Contains(Diets, d) {
		return "", NewValidationError(fmt.Sprintf("unknown diet preference %q", s))
	}
	return d, nil
}

// ParseCuisine 驗證料理風格，空字串視為 Any
func ParseCuisine(s string) (Cuisine, error) {
	if s == "" {
		return CuisineAny, nil
	}
	c := Cuisine(s)
	if !slices.Contains(Cuisines, c) {
		return "", NewValidationError(fmt.Sprintf("unknown cuisine preference %q", s))
	}
	return c, nil
}

// ValidateRecipeCount 驗證食譜數量
func ValidateRecipeCount(n int) error {
	if !slices.Contains(RecipeCounts, n) {
		return NewValidationError(fmt.Sprintf("recipe count must be one of %v", RecipeCounts))
	}
	return nil
}

// Notice 回傳給使用者的暫時訊息
type Notice struct {
	Level string `json:"level"` // info / success / warning / error
	Text  string `json:"text"`
}

// 訊息等級
const (
	NoticeInfo    = "info"
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notices 暫時訊息集合
type Notices []Notice

// Add 新增一則訊息
func (n *Notices) Add(level, format string, args ...interface{}) {
	*n = append(*n, Notice{Level: level, Text: fmt.Sprintf(format, args...)})
}
