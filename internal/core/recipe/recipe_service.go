package recipe

import (
	"context"

	"chefs-fridge/internal/pkg/common"

	"go.uber.org/zap"
)

// RecipeService 食譜生成服務
// --------------------------------------------------
type RecipeService struct {
	*Service
}

// NewRecipeService 創建新的食譜生成服務
func NewRecipeService(base *Service) *RecipeService {
	return &RecipeService{Service: base}
}

// Generate 依序生成 count 份食譜；失敗的一份以替代文字表示並附上錯誤訊息
func (s *RecipeService) Generate(ctx context.Context, ingredients []string, diet common.Diet, cuisine common.Cuisine, count int) ([]Draft, common.Notices, error) {
	if len(ingredients) == 0 {
		return nil, nil, common.ErrNoIngredients
	}
	if err := common.ValidateRecipeCount(count); err != nil {
		return nil, nil, err
	}
	if err := s.Available(); err != nil {
		return nil, nil, err
	}

	prompt := BuildPrompt(ingredients, diet, cuisine)
	snapshot := append([]string(nil), ingredients...)

	var notices common.Notices
	drafts := make([]Draft, 0, count)
	for i := 0; i < count; i++ {
		draft := Draft{Diet: diet, Cuisine: cuisine, Ingredients: snapshot}

		content, err := s.aiService.ProcessRequest(ctx, "generate", prompt)
		if err != nil {
			common.LogError("食譜生成失敗", zap.Int("index", i), zap.Error(err))
			notices.Add(common.NoticeError, "Error generating recipe: %v", err)
			draft.Text = UnableToGenerate
			draft.Failed = true
		} else {
			draft.Text = Normalize(content)
		}
		drafts = append(drafts, draft)
	}

	common.LogInfo("食譜生成完成",
		zap.Int("count", count),
		zap.String("diet", string(diet)),
		zap.String("cuisine", string(cuisine)),
		zap.Int("failed", len(notices)),
	)
	return drafts, notices, nil
}
