package recipe

import (
	"strings"
	"testing"

	"chefs-fridge/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name    string
		diet    common.Diet
		cuisine common.Cuisine
		want    string
		absent  []string
	}{
		{
			name:    "no preferences",
			diet:    common.DietNone,
			cuisine: common.CuisineAny,
			want:    "Create a recipe using these ingredients: eggs, milk.\n\n",
			absent:  []string{"The recipe should be"},
		},
		{
			name:    "diet only",
			diet:    common.DietGlutenFree,
			cuisine: common.CuisineAny,
			want:    "Create a recipe using these ingredients: eggs, milk. The recipe should be gluten-free.\n\n",
			absent:  []string{"cuisine."},
		},
		{
			name:    "both",
			diet:    common.DietVegan,
			cuisine: common.CuisineItalian,
			want:    "Create a recipe using these ingredients: eggs, milk. The recipe should be vegan. The recipe should be Italian cuisine.\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt([]string{"eggs", "milk"}, tt.diet, tt.cuisine)
			assert.True(t, strings.HasPrefix(p, tt.want), p)
			assert.Contains(t, p, "INGREDIENTS:")
			assert.Contains(t, p, "INSTRUCTIONS:")
			assert.Contains(t, p, "NO bullet points")
			for _, s := range tt.absent {
				assert.NotContains(t, p, s)
			}
		})
	}
}

func TestParseItemList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eggs, milk , butter", []string{"eggs", "milk", "butter"}},
		{"- eggs,\n• milk,, ", []string{"eggs", "milk"}},
		{"Eggs, eggs", []string{"Eggs", "eggs"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseItemList(tt.in), tt.in)
	}
}
