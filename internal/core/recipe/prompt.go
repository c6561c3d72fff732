package recipe

import (
	"fmt"
	"strings"

	"chefs-fridge/internal/pkg/common"
)

// IdentifyPrompt 食材識別固定指令
const IdentifyPrompt = "List all food items in this fridge image in a comma-separated format. Be specific and concise."

// UnableToGenerate 生成失敗時該份食譜的替代文字
const UnableToGenerate = "Unable to generate recipe."

const formatTemplate = `IMPORTANT: Format your response using plain text only, with NO bullet points, NO asterisks, and NO special formatting.

Structure your response as follows:

[Recipe Title]

INGREDIENTS:
Ingredient 1 with quantity
Ingredient 2 with quantity
...

INSTRUCTIONS:
1. First step
2. Second step
...

For steps, use only numbers followed by a period, never bullet points or asterisks.
For ingredients, list each on its own line without bullet points or numbers.
`

// DietClause 飲食偏好子句，None 時為空字串
func DietClause(diet common.Diet) string {
	if diet == "" || diet == common.DietNone {
		return ""
	}
	return fmt.Sprintf("The recipe should be %s.", strings.ToLower(string(diet)))
}

// CuisineClause 料理風格子句，Any 時為空字串
func CuisineClause(cuisine common.Cuisine) string {
	if cuisine == "" || cuisine == common.CuisineAny {
		return ""
	}
	return fmt.Sprintf("The recipe should be %s cuisine.", cuisine)
}

// BuildPrompt 組合食譜生成提示
func BuildPrompt(ingredients []string, diet common.Diet, cuisine common.Cuisine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a recipe using these ingredients: %s.", strings.Join(ingredients, ", "))
	for _, clause := range []string{DietClause(diet), CuisineClause(cuisine)} {
		if clause != "" {
			b.WriteString(" ")
			b.WriteString(clause)
		}
	}
	b.WriteString("\n\n")
	b.WriteString(formatTemplate)
	return b.String()
}

// ParseItemList 解析逗號（或換行）分隔的品項，去除空白與項目符號
func ParseItemList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	items := make([]string, 0, len(fields))
	for _, f := range fields {
		item := strings.TrimSpace(StripBullet(strings.TrimSpace(f)))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
