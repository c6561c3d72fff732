package recipe

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	instructionsKeyword = regexp.MustCompile(`(?i)(instructions|directions|steps|method)`)
	ingredientsKeyword  = regexp.MustCompile(`(?i)ingredients`)
	stepNumberPrefix    = regexp.MustCompile(`^\s*\d+\.\s+`)
	stepMarker          = regexp.MustCompile(`^\d+\.`)
	numberedStep        = regexp.MustCompile(`^\s*(\d+)\.\s+(.*)$`)
)

// strategy 單一抽取策略，找不到結構時回傳空切片
type strategy func(lines []string) []string

// firstNonEmpty 依序執行策略，第一個非空結果勝出
func firstNonEmpty(lines []string, strategies ...strategy) []string {
	for _, s := range strategies {
		if out := s(lines); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// isInstructionsHeading 含有步驟關鍵字且本身不是編號步驟
func isInstructionsHeading(line string) bool {
	return instructionsKeyword.MatchString(line) && !stepMarker.MatchString(strings.TrimSpace(line))
}

// ExtractSteps 從食譜文字中取出步驟
func ExtractSteps(text string) []string {
	return firstNonEmpty(splitLines(text), stepsAfterHeading, numberedSteps)
}

// stepsAfterHeading 步驟標題之後的每個非空行都是一個步驟
func stepsAfterHeading(lines []string) []string {
	var steps []string
	inInstructions := false
	for _, line := range lines {
		if isInstructionsHeading(line) {
			inInstructions = true
			continue
		}
		if !inInstructions || strings.TrimSpace(line) == "" {
			continue
		}
		step := stepNumberPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		step = strings.TrimSpace(StripBullet(step))
		if step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}

type numbered struct {
	n    int
	text string
}

// numberedSteps 全文搜尋 "<n>. text"，依編號排序而非文件順序
func numberedSteps(lines []string) []string {
	var found []numbered
	for _, line := range lines {
		m := numberedStep.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			n = math.MaxInt
		}
		text := strings.TrimSpace(StripBullet(m[2]))
		if text == "" {
			continue
		}
		found = append(found, numbered{n: n, text: text})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].n < found[j].n })

	steps := make([]string, 0, len(found))
	for _, f := range found {
		steps = append(steps, f.text)
	}
	return steps
}

// ExtractIngredients 從食譜文字中取出食材行
func ExtractIngredients(text string) []string {
	return firstNonEmpty(splitLines(text), ingredientsSection, ingredientsAfterBlankLine)
}

// ingredientsSection 取 "ingredients" 標題與步驟標題之間的行；
// 含 "ingredients" 的行一律視為標題，不列入食材
func ingredientsSection(lines []string) []string {
	var ingredients []string
	inIngredients := false
	for _, line := range lines {
		if ingredientsKeyword.MatchString(line) {
			inIngredients = true
			continue
		}
		if !inIngredients {
			continue
		}
		if instructionsKeyword.MatchString(line) {
			break
		}
		if cleaned := cleanIngredient(line); cleaned != "" {
			ingredients = append(ingredients, cleaned)
		}
	}
	return ingredients
}

// ingredientsAfterBlankLine 標題後第一個空行之後、步驟標題之前的非編號行
func ingredientsAfterBlankLine(lines []string) []string {
	var ingredients []string
	blankFound := false
	for i, line := range lines {
		if i > 0 && strings.TrimSpace(line) == "" {
			blankFound = true
			continue
		}
		if !blankFound {
			continue
		}
		if instructionsKeyword.MatchString(line) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if stepMarker.MatchString(trimmed) {
			continue
		}
		if cleaned := cleanIngredient(trimmed); cleaned != "" {
			ingredients = append(ingredients, cleaned)
		}
	}
	return ingredients
}

func cleanIngredient(line string) string {
	return strings.TrimSpace(StripBullet(strings.TrimSpace(line)))
}

// ExtractTitle 取第一行作為標題，空白時使用 "Recipe N"（position 從 1 開始）
func ExtractTitle(text string, position int) string {
	first, _, _ := strings.Cut(text, "\n")
	if title := strings.TrimSpace(first); title != "" {
		return title
	}
	return fmt.Sprintf("Recipe %d", position)
}

// Body 去掉標題行後的內容
func Body(text string) string {
	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimSpace(first) == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(rest)
}

// firstParagraph 第一個空行之前的內容
func firstParagraph(text string) string {
	if before, _, ok := strings.Cut(text, "\n\n"); ok {
		return before
	}
	return text
}

// Parse 將正規化後的食譜文字解析為標題、食材與步驟
func Parse(text string, position int) ParsedRecipe {
	parsed := ParsedRecipe{
		Title:       ExtractTitle(text, position),
		Ingredients: ExtractIngredients(text),
		Steps:       ExtractSteps(text),
		SourceText:  text,
	}
	if len(parsed.Ingredients) == 0 {
		parsed.IngredientsFallback = firstParagraph(text)
	}
	if len(parsed.Steps) == 0 {
		parsed.StepsFallback = text
	}
	return parsed
}
