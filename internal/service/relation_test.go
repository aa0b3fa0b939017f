package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/testhelpers"
)

func rowCount(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestFavoriteToggle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500})

	result, err := svc.Apply(ctx, RelationFavorite, viewer.ID, recipe.ID, IntentAdd)
	require.NoError(t, err)
	require.NotNil(t, result.Recipe)
	assert.Equal(t, recipe.ID, result.Recipe.ID)
	assert.Equal(t, int64(1), rowCount(t, db, &models.Favorite{}))

	_, err = svc.Apply(ctx, RelationFavorite, viewer.ID, recipe.ID, IntentAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.EqualError(t, err, "Recipe is already in favorites.")
	assert.Equal(t, int64(1), rowCount(t, db, &models.Favorite{}))

	_, err = svc.Apply(ctx, RelationFavorite, viewer.ID, recipe.ID, IntentRemove)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rowCount(t, db, &models.Favorite{}))

	_, err = svc.Apply(ctx, RelationFavorite, viewer.ID, recipe.ID, IntentRemove)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.EqualError(t, err, "Recipe is not in favorites.")
}

func TestShoppingCartToggle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	viewer := testhelpers.CreateUser(t, db, "viewer")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500})

	_, err := svc.Apply(ctx, RelationShoppingCart, viewer.ID, recipe.ID, IntentAdd)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rowCount(t, db, &models.ShoppingCart{}))

	_, err = svc.Apply(ctx, RelationShoppingCart, viewer.ID, recipe.ID, IntentAdd)
	require.Error(t, err)
	assert.EqualError(t, err, "Recipe is already in the shopping cart.")

	_, err = svc.Apply(ctx, RelationShoppingCart, viewer.ID, recipe.ID, IntentRemove)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, RelationShoppingCart, viewer.ID, recipe.ID, IntentRemove)
	require.Error(t, err)
	assert.EqualError(t, err, "Recipe is not in the shopping cart.")
}

func TestSubscriptionToggle(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	follower := testhelpers.CreateUser(t, db, "follower")

	_, err := svc.Apply(ctx, RelationSubscription, follower.ID, follower.ID, IntentAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.EqualError(t, err, "You cannot subscribe to yourself.")

	result, err := svc.Apply(ctx, RelationSubscription, follower.ID, author.ID, IntentAdd)
	require.NoError(t, err)
	require.NotNil(t, result.Author)
	assert.Equal(t, author.ID, result.Author.ID)

	_, err = svc.Apply(ctx, RelationSubscription, follower.ID, author.ID, IntentAdd)
	require.Error(t, err)
	assert.EqualError(t, err, "You are already subscribed to this author.")

	_, err = svc.Apply(ctx, RelationSubscription, follower.ID, author.ID, IntentRemove)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, RelationSubscription, follower.ID, author.ID, IntentRemove)
	require.Error(t, err)
	assert.EqualError(t, err, "You are not subscribed to this author.")
}

func TestApplyTargetNotFound(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	viewer := testhelpers.CreateUser(t, db, "viewer")

	_, err := svc.Apply(context.Background(), RelationFavorite, viewer.ID, uuid.New(), IntentAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))

	_, err = svc.Apply(context.Background(), RelationSubscription, viewer.ID, uuid.New(), IntentAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestApplyRequiresAuth(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)

	_, err := svc.Apply(context.Background(), RelationFavorite, uuid.Nil, uuid.New(), IntentAdd)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestListSubscriptions(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	baker := testhelpers.CreateUser(t, db, "baker")
	brewer := testhelpers.CreateUser(t, db, "brewer")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")

	testhelpers.CreateRecipe(t, db, baker, "Bread", map[*models.Ingredient]uint{flour: 500})
	testhelpers.CreateRecipe(t, db, baker, "Buns", map[*models.Ingredient]uint{flour: 300})
	testhelpers.CreateRecipe(t, db, baker, "Bagels", map[*models.Ingredient]uint{flour: 400})

	_, err := svc.Apply(ctx, RelationSubscription, follower.ID, baker.ID, IntentAdd)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, RelationSubscription, follower.ID, brewer.ID, IntentAdd)
	require.NoError(t, err)

	limit := 2
	total, entries, err := svc.ListSubscriptions(ctx, follower.ID, &limit, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)

	byAuthor := make(map[uuid.UUID]SubscriptionEntry, len(entries))
	for _, entry := range entries {
		byAuthor[entry.Author.ID] = entry
	}
	bakerEntry := byAuthor[baker.ID]
	assert.Equal(t, int64(3), bakerEntry.RecipesCount)
	assert.Len(t, bakerEntry.Recipes, 2)
	brewerEntry := byAuthor[brewer.ID]
	assert.Equal(t, int64(0), brewerEntry.RecipesCount)
	assert.Empty(t, brewerEntry.Recipes)

	// without a limit every recipe comes back
	_, entries, err = svc.ListSubscriptions(ctx, follower.ID, nil, 1, 10)
	require.NoError(t, err)
	byAuthor = make(map[uuid.UUID]SubscriptionEntry, len(entries))
	for _, entry := range entries {
		byAuthor[entry.Author.ID] = entry
	}
	assert.Len(t, byAuthor[baker.ID].Recipes, 3)
}

func TestIsSubscribed(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	follower := testhelpers.CreateUser(t, db, "follower")
	baker := testhelpers.CreateUser(t, db, "baker")
	brewer := testhelpers.CreateUser(t, db, "brewer")

	_, err := svc.Apply(ctx, RelationSubscription, follower.ID, baker.ID, IntentAdd)
	require.NoError(t, err)

	flags, err := svc.IsSubscribed(ctx, follower.ID, []uuid.UUID{baker.ID, brewer.ID})
	require.NoError(t, err)
	assert.True(t, flags[baker.ID])
	assert.False(t, flags[brewer.ID])

	flags, err = svc.IsSubscribed(ctx, uuid.Nil, []uuid.UUID{baker.ID})
	require.NoError(t, err)
	assert.Empty(t, flags)
}
