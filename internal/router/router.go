package router

import (
	"github.com/gin-gonic/gin"

	"github.com/platefull/backend/internal/api"
	"github.com/platefull/backend/internal/middleware"
)

// Setup configures the application routes. rateLimiter is nil when
// redis is not configured, which disables recipe-creation limiting.
func Setup(
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	catalogHandler *api.CatalogHandler,
	recipeHandler *api.RecipeHandler,
	authService middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
	mediaDir string,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	required := middleware.AuthMiddleware(authService)
	optional := middleware.OptionalAuthMiddleware(authService)

	// short-link redirects live outside the API prefix
	router.GET("/s/:code", recipeHandler.RedirectShortLink)

	if mediaDir != "" {
		router.Static("/media", mediaDir)
	}

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	users := v1.Group("/users")
	{
		users.GET("", optional, userHandler.ListUsers)
		users.GET("/me", required, userHandler.GetMe)
		users.PUT("/me/avatar", required, userHandler.UpdateAvatar)
		users.DELETE("/me/avatar", required, userHandler.DeleteAvatar)
		users.GET("/subscriptions", required, userHandler.ListSubscriptions)
		users.GET("/:id", optional, userHandler.GetUser)
		users.POST("/:id/subscribe", required, userHandler.Subscribe)
		users.DELETE("/:id/subscribe", required, userHandler.Unsubscribe)
	}

	createChain := []gin.HandlerFunc{required}
	if rateLimiter != nil {
		createChain = append(createChain, rateLimiter.RateLimitMiddleware())
	}

	recipes := v1.Group("/recipes")
	{
		recipes.GET("", optional, recipeHandler.ListRecipes)
		recipes.POST("", append(createChain, recipeHandler.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", required, recipeHandler.DownloadShoppingCart)
		recipes.GET("/:id", optional, recipeHandler.GetRecipe)
		recipes.PATCH("/:id", required, recipeHandler.UpdateRecipe)
		recipes.DELETE("/:id", required, recipeHandler.DeleteRecipe)
		recipes.POST("/:id/favorite", required, recipeHandler.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", required, recipeHandler.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", required, recipeHandler.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", required, recipeHandler.RemoveFromShoppingCart)
		recipes.GET("/:id/get-link", optional, recipeHandler.GetRecipeLink)
	}

	return router
}
