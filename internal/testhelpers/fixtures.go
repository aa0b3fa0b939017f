package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateRecipe inserts a recipe with the given ingredient amounts and
// tags directly, bypassing service validation.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]uint, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "test recipe",
		CookingTime: 10,
	}
	require.NoError(t, db.Create(recipe).Error)

	for ingredient, amount := range amounts {
		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		require.NoError(t, db.Create(row).Error)
	}
	for _, tag := range tags {
		require.NoError(t, db.Model(recipe).Association("Tags").Append(tag))
	}
	return recipe
}
