package recipe

import (
	"Foodgram-Backend/entities"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ingredientRow(name, unit string, amount int) *entities.RecipeIngredient {
	return &entities.RecipeIngredient{
		ID:     uuid.New(),
		Amount: amount,
		Ingredient: &entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: unit,
		},
	}
}

func TestAggregatePurchasesSumsSameIngredient(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		ingredientRow("salt", "g", 10),
		ingredientRow("flour", "g", 200),
		ingredientRow("salt", "g", 5),
	}

	items := AggregatePurchases(rows)

	assert.Len(t, items, 2)
	assert.Equal(t, "flour", items[0].Name)
	assert.Equal(t, 200, items[0].Amount)
	assert.Equal(t, "salt", items[1].Name)
	assert.Equal(t, 15, items[1].Amount)
	assert.Equal(t, "g", items[1].MeasurementUnit)
}

func TestAggregatePurchasesKeepsDifferentUnitsApart(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		ingredientRow("milk", "ml", 100),
		ingredientRow("milk", "l", 1),
	}

	items := AggregatePurchases(rows)

	assert.Len(t, items, 2)
	assert.Equal(t, "l", items[0].MeasurementUnit)
	assert.Equal(t, "ml", items[1].MeasurementUnit)
}

func TestAggregatePurchasesSkipsRowsWithoutIngredient(t *testing.T) {
	rows := []*entities.RecipeIngredient{
		{ID: uuid.New(), Amount: 3},
		ingredientRow("sugar", "g", 50),
	}

	items := AggregatePurchases(rows)

	assert.Len(t, items, 1)
	assert.Equal(t, "sugar", items[0].Name)
}

func TestRenderPurchaseList(t *testing.T) {
	items := AggregatePurchases([]*entities.RecipeIngredient{
		ingredientRow("salt", "g", 10),
		ingredientRow("flour", "g", 200),
	})

	list := RenderPurchaseList(items)

	assert.Equal(t, "Shopping list:\nflour, 200 g\nsalt, 10 g\n", list)
}

func TestRenderPurchaseListEmptyCart(t *testing.T) {
	list := RenderPurchaseList(nil)

	assert.Equal(t, "Shopping list:\n", list)
}
