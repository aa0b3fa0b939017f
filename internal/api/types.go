package api

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount uint      `json:"amount"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time"`
	Image       string                    `json:"image"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
	Tags        []uuid.UUID               `json:"tags"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
