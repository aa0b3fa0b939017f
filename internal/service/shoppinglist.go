package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// ShoppingListFilename is the fixed attachment name for downloads.
const ShoppingListFilename = "shopping_list.txt"

const shoppingListHeader = "Shopping list:"

// ShoppingListItem is one aggregated ingredient line.
type ShoppingListItem struct {
	Name  string
	Unit  string
	Total uint64
}

// ShoppingListService sums ingredient quantities across every recipe in
// a user's cart into a flat list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Build aggregates the user's cart. Grouping is by ingredient id so two
// distinct ingredients sharing a display name stay separate lines; the
// result is ordered by name so the same cart always renders the same.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	if userID == uuid.Nil {
		return nil, NewUnauthorizedError("Authentication required.")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, NewInternalError(err.Error())
	}
	if count == 0 {
		return nil, NewConflictError("Shopping cart is empty.")
	}

	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&items).Error
	if err != nil {
		return nil, NewInternalError(err.Error())
	}
	return items, nil
}

// Render produces the plain-text document delivered as the attachment.
func (s *ShoppingListService) Render(items []ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteByte('\n')
	for _, item := range items {
		fmt.Fprintf(&b, "%s: %d %s\n", item.Name, item.Total, item.Unit)
	}
	return b.String()
}
