package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/testhelpers"
)

// Exercises the unique-violation translation and the aggregation SQL
// against a real PostgreSQL instance.
func TestPostgresToggleAndShoppingList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := testhelpers.SetupPostgres(t)
	relations := NewRelationService(db)
	lists := NewShoppingListService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	bread := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500})
	cake := testhelpers.CreateRecipe(t, db, author, "Cake", map[*models.Ingredient]uint{flour: 300})

	_, err := relations.Apply(ctx, RelationShoppingCart, viewer.ID, bread.ID, IntentAdd)
	require.NoError(t, err)
	_, err = relations.Apply(ctx, RelationShoppingCart, viewer.ID, cake.ID, IntentAdd)
	require.NoError(t, err)

	// duplicate insert must map the constraint error to a conflict
	err = db.Create(&models.ShoppingCart{UserID: viewer.ID, RecipeID: bread.ID}).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	items, err := lists.Build(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, ShoppingListItem{Name: "flour", Unit: "g", Total: 800}, items[0])
}
