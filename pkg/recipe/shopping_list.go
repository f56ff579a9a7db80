package recipe

import (
	"Foodgram-Backend/domain"
	"Foodgram-Backend/entities"
	"fmt"
	"sort"
	"strings"
)

// AggregatePurchases merges ingredient rows from every recipe in a cart into
// one line per ingredient, summing amounts. The result is sorted by
// ingredient name so the rendered list is deterministic for a given cart.
func AggregatePurchases(rows []*entities.RecipeIngredient) []domain.PurchaseItem {
	type key struct {
		name string
		unit string
	}

	totals := make(map[key]int)
	for _, row := range rows {
		if row.Ingredient == nil {
			continue
		}
		k := key{name: row.Ingredient.Name, unit: row.Ingredient.MeasurementUnit}
		totals[k] += row.Amount
	}

	items := make([]domain.PurchaseItem, 0, len(totals))
	for k, amount := range totals {
		items = append(items, domain.PurchaseItem{
			Name:            k.name,
			Amount:          amount,
			MeasurementUnit: k.unit,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items
}

// RenderPurchaseList renders the aggregated items as the plain-text
// attachment body: a header line followed by one line per ingredient.
func RenderPurchaseList(items []domain.PurchaseItem) string {
	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s, %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
