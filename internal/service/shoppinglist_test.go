package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/testhelpers"
)

func TestBuildSumsAcrossRecipes(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShoppingListService(db)
	relations := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	sugar := testhelpers.CreateIngredient(t, db, "sugar", "g")

	bread := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500, sugar: 20})
	cake := testhelpers.CreateRecipe(t, db, author, "Cake", map[*models.Ingredient]uint{flour: 300})
	// not in the cart, must not contribute
	testhelpers.CreateRecipe(t, db, author, "Pie", map[*models.Ingredient]uint{flour: 1000})

	_, err := relations.Apply(ctx, RelationShoppingCart, viewer.ID, bread.ID, IntentAdd)
	require.NoError(t, err)
	_, err = relations.Apply(ctx, RelationShoppingCart, viewer.ID, cake.ID, IntentAdd)
	require.NoError(t, err)

	items, err := svc.Build(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, ShoppingListItem{Name: "flour", Unit: "g", Total: 800}, items[0])
	assert.Equal(t, ShoppingListItem{Name: "sugar", Unit: "g", Total: 20}, items[1])
}

func TestBuildEmptyCart(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShoppingListService(db)

	viewer := testhelpers.CreateUser(t, db, "viewer")
	_, err := svc.Build(context.Background(), viewer.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.EqualError(t, err, "Shopping cart is empty.")
}

func TestBuildOrdersByName(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShoppingListService(db)
	relations := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	zucchini := testhelpers.CreateIngredient(t, db, "zucchini", "pcs")
	apple := testhelpers.CreateIngredient(t, db, "apple", "pcs")
	milk := testhelpers.CreateIngredient(t, db, "milk", "ml")

	recipe := testhelpers.CreateRecipe(t, db, author, "Salad",
		map[*models.Ingredient]uint{zucchini: 2, apple: 3, milk: 100})
	_, err := relations.Apply(ctx, RelationShoppingCart, viewer.ID, recipe.ID, IntentAdd)
	require.NoError(t, err)

	items, err := svc.Build(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "apple", items[0].Name)
	assert.Equal(t, "milk", items[1].Name)
	assert.Equal(t, "zucchini", items[2].Name)
}

func TestRender(t *testing.T) {
	svc := NewShoppingListService(nil)
	text := svc.Render([]ShoppingListItem{
		{Name: "flour", Unit: "g", Total: 800},
		{Name: "sugar", Unit: "g", Total: 20},
	})
	assert.Equal(t, "Shopping list:\nflour: 800 g\nsugar: 20 g\n", text)
}
