package api

import (
	"github.com/google/uuid"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/service"
)

// Response shapes are explicit per endpoint: handlers pick one of these
// constructors instead of branching on the request path.

// RecipeSummaryResponse is the trimmed projection used inside favorite,
// shopping-cart and subscription contexts.
type RecipeSummaryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func newRecipeSummary(r *models.Recipe) RecipeSummaryResponse {
	return RecipeSummaryResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

type TagResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

func newTag(t *models.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

func newIngredient(i *models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// RecipeIngredientResponse is an ingredient with the recipe's quantity.
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          uint      `json:"amount"`
}

// ProfileResponse is the user profile shape, with the viewer-relative
// subscription flag.
type ProfileResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       string    `json:"avatar"`
}

func newProfile(u *models.User, isSubscribed bool) ProfileResponse {
	return ProfileResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
		Avatar:       u.AvatarURL,
	}
}

// RecipeDetailResponse is the full recipe shape.
type RecipeDetailResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Name             string                     `json:"name"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	Tags             []TagResponse              `json:"tags"`
	Image            string                     `json:"image"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Author           ProfileResponse            `json:"author"`
}

func newRecipeDetail(r *models.Recipe, isFavorited, isInShoppingCart, authorSubscribed bool) RecipeDetailResponse {
	ingredients := make([]RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	tags := make([]TagResponse, 0, len(r.Tags))
	for i := range r.Tags {
		tags = append(tags, newTag(&r.Tags[i]))
	}
	return RecipeDetailResponse{
		ID:               r.ID,
		Name:             r.Name,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Ingredients:      ingredients,
		Tags:             tags,
		Image:            r.ImageURL,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInShoppingCart,
		Author:           newProfile(&r.Author, authorSubscribed),
	}
}

// SubscriptionResponse is a followed author with their recent recipes.
type SubscriptionResponse struct {
	ProfileResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

func newSubscription(entry *service.SubscriptionEntry) SubscriptionResponse {
	recipes := make([]RecipeSummaryResponse, 0, len(entry.Recipes))
	for i := range entry.Recipes {
		recipes = append(recipes, newRecipeSummary(&entry.Recipes[i]))
	}
	return SubscriptionResponse{
		// the caller is subscribed by definition
		ProfileResponse: newProfile(&entry.Author, true),
		Recipes:         recipes,
		RecipesCount:    entry.RecipesCount,
	}
}
