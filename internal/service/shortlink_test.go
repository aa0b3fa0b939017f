package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/testhelpers"
)

func TestGetOrCreateIsStable(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShortLinkService(db, nil)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500})

	code, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, code, shortCodeLength)
	for _, r := range code {
		assert.Contains(t, shortCodeAlphabet, string(r))
	}

	again, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, code, again)
	assert.Equal(t, int64(1), rowCount(t, db, &models.ShortLink{}))
}

func TestGetOrCreateUnknownRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShortLinkService(db, nil)

	_, err := svc.GetOrCreate(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.EqualError(t, err, "Recipe not found.")
}

func TestResolve(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := NewShortLinkService(db, nil)
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author")
	flour := testhelpers.CreateIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Bread", map[*models.Ingredient]uint{flour: 500})

	code, err := svc.GetOrCreate(ctx, recipe.ID)
	require.NoError(t, err)

	id, err := svc.Resolve(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, id)

	_, err = svc.Resolve(ctx, "nosuch")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
	assert.EqualError(t, err, "Short link not found.")
}

func TestGenerateShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateShortCode()
		assert.Len(t, code, shortCodeLength)
		seen[code] = true
	}
	// 62^6 codes make a repeat in 100 draws effectively impossible
	assert.Len(t, seen, 100)
}
