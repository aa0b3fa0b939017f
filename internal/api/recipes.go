package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/service"
)

type RecipeHandler struct {
	recipes       *service.RecipeService
	relations     *service.RelationService
	shoppingLists *service.ShoppingListService
	shortLinks    *service.ShortLinkService
	images        *service.ImageService
	siteDomain    string
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shoppingLists *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	images *service.ImageService,
	siteDomain string,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		relations:     relations,
		shoppingLists: shoppingLists,
		shortLinks:    shortLinks,
		images:        images,
		siteDomain:    siteDomain,
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filters := service.ListFilters{Viewer: currentUserID(c)}
	filters.Page, filters.Limit = pagination(c)

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid author id."})
			return
		}
		filters.AuthorID = &authorID
	}
	filters.TagSlugs = c.QueryArray("tags")
	switch c.Query("is_favorited") {
	case "1", "true":
		val := true
		filters.IsFavorited = &val
	case "0", "false":
		val := false
		filters.IsFavorited = &val
	}
	switch c.Query("is_in_shopping_cart") {
	case "1", "true":
		filters.InShoppingCart = true
	}

	total, recipes, err := h.recipes.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.detailResponses(c, recipes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(total, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Recipe not found."})
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.detailResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "The image field cannot be empty."})
		return
	}

	imageURL, err := h.images.SaveBase64(c.Request.Context(), req.Image, "recipes/images")
	if err != nil {
		respondError(c, err)
		return
	}

	input := recipeInput(&req)
	input.ImageURL = imageURL
	recipe, err := h.recipes.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.detailResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, results[0])
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Recipe not found."})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	input := recipeInput(&req)
	if req.Image != "" {
		imageURL, err := h.images.SaveBase64(c.Request.Context(), req.Image, "recipes/images")
		if err != nil {
			respondError(c, err)
			return
		}
		input.ImageURL = imageURL
	}

	recipe, err := h.recipes.Update(c.Request.Context(), currentUserID(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.detailResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Recipe not found."})
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FavoriteRecipe and the shopping-cart handlers below all route into the
// same generic toggle; only the relation kind differs.
func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.toggleRecipe(c, service.RelationFavorite, service.IntentAdd)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.toggleRecipe(c, service.RelationFavorite, service.IntentRemove)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.toggleRecipe(c, service.RelationShoppingCart, service.IntentAdd)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.toggleRecipe(c, service.RelationShoppingCart, service.IntentRemove)
}

func (h *RecipeHandler) toggleRecipe(c *gin.Context, kind service.RelationKind, intent service.Intent) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Recipe not found."})
		return
	}

	result, err := h.relations.Apply(c.Request.Context(), kind, currentUserID(c), id, intent)
	if err != nil {
		respondError(c, err)
		return
	}

	if intent == service.IntentRemove {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, newRecipeSummary(result.Recipe))
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	items, err := h.shoppingLists.Build(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	content := h.shoppingLists.Render(items)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

func (h *RecipeHandler) GetRecipeLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Recipe not found."})
		return
	}

	code, err := h.shortLinks.GetOrCreate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"short-link": fmt.Sprintf("https://%s/s/%s", h.siteDomain, code)})
}

// RedirectShortLink serves GET /s/:code outside the API prefix.
func (h *RecipeHandler) RedirectShortLink(c *gin.Context) {
	recipeID, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("https://%s/recipes/%s", h.siteDomain, recipeID))
}

func recipeInput(req *RecipeRequest) *service.RecipeInput {
	ingredients := make([]service.IngredientAmount, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientAmount{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Ingredients: ingredients,
		TagIDs:      req.Tags,
	}
}

// detailResponses resolves the viewer-relative flags for a batch of
// recipes and builds their detail shapes.
func (h *RecipeHandler) detailResponses(c *gin.Context, recipes []models.Recipe) ([]RecipeDetailResponse, error) {
	viewer := currentUserID(c)

	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for i := range recipes {
		recipeIDs = append(recipeIDs, recipes[i].ID)
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, inCart, err := h.recipes.ViewerFlags(c.Request.Context(), viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := h.relations.IsSubscribed(c.Request.Context(), viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	results := make([]RecipeDetailResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		results = append(results, newRecipeDetail(r, favorited[r.ID], inCart[r.ID], subscribed[r.AuthorID]))
	}
	return results, nil
}
