package recipe

import (
	"fmt"
	"slices"
	"strings"

	"chefs-fridge/internal/pkg/common"
)

// IngredientSet 有序且不重複的食材清單（區分大小寫）
type IngredientSet struct {
	items   []string
	editing map[int]bool
}

// NewIngredientSet 建立空食材清單
func NewIngredientSet() *IngredientSet {
	return &IngredientSet{editing: make(map[int]bool)}
}

// Items 回傳副本
func (s *IngredientSet) Items() []string {
	return append([]string{}, s.items...)
}

func (s *IngredientSet) Len() int { return len(s.items) }

func (s *IngredientSet) Contains(item string) bool {
	return slices.Contains(s.items, item)
}

// Add 依序合併新食材，回傳實際新增的數量
func (s *IngredientSet) Add(items ...string) int {
	added := 0
	for _, item := range items {
		item = cleanItem(item)
		if item == "" || s.Contains(item) {
			continue
		}
		s.items = append(s.items, item)
		added++
	}
	return added
}

func (s *IngredientSet) checkIndex(i int) error {
	if i < 0 || i >= len(s.items) {
		return common.ErrNotFound.WithMessage(fmt.Sprintf("ingredient index %d out of range", i))
	}
	return nil
}

// Replace 以新值取代第 i 項，空值不變更，並結束編輯模式
func (s *IngredientSet) Replace(i int, value string) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	value = cleanItem(value)
	if value == "" {
		delete(s.editing, i)
		return nil
	}
	if value != s.items[i] && s.Contains(value) {
		return common.ErrConflict.WithMessage(fmt.Sprintf("ingredient %q already exists", value))
	}
	s.items[i] = value
	delete(s.editing, i)
	return nil
}

// Remove 刪除第 i 項，之後的編輯旗標往前移
func (s *IngredientSet) Remove(i int) (string, error) {
	if err := s.checkIndex(i); err != nil {
		return "", err
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)

	editing := make(map[int]bool, len(s.editing))
	for idx, on := range s.editing {
		switch {
		case idx < i:
			editing[idx] = on
		case idx > i:
			editing[idx-1] = on
		}
	}
	s.editing = editing
	return removed, nil
}

// SetEditing 切換第 i 項的編輯模式
func (s *IngredientSet) SetEditing(i int, enabled bool) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if enabled {
		s.editing[i] = true
	} else {
		delete(s.editing, i)
	}
	return nil
}

func (s *IngredientSet) Editing(i int) bool { return s.editing[i] }

// EditingIndexes 目前處於編輯模式的索引（遞增）
func (s *IngredientSet) EditingIndexes() []int {
	out := make([]int, 0, len(s.editing))
	for i := range s.editing {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// cleanItem 去除前後空白與項目符號，新增與修改共用
func cleanItem(item string) string {
	return strings.TrimSpace(StripBullet(strings.TrimSpace(item)))
}
