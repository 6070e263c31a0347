package recipe_test

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/pkg/recipe"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderShoppingList(t *testing.T) {
	content := recipe.RenderShoppingList([]domain.ShoppingListItem{
		{Name: "Мука", MeasurementUnit: "г", Amount: 200},
		{Name: "Соль", MeasurementUnit: "г", Amount: 15},
	})

	require.Equal(t,
		"Продукты которые нужно купить:\n\n"+
			"- Мука(г) - 200\n"+
			"- Соль(г) - 15\n"+
			"\n\n\n\nПроект создан Filengun",
		content)
}

func TestRenderShoppingListEmpty(t *testing.T) {
	content := recipe.RenderShoppingList(nil)

	require.Equal(t,
		"Продукты которые нужно купить:\n\n"+
			"\n\n\n\nПроект создан Filengun",
		content)
}
