package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/middleware"
	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/service"
	"github.com/platefull/backend/internal/testhelpers"
)

const testDomain = "platefull.test"

type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

// newAPIFixture wires the handlers onto a test engine the same way the
// production router does, backed by an in-memory database.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	images := service.NewImageService(testhelpers.NewMemoryImageStore())
	auth := service.NewAuthService(db, "test-secret")
	recipes := service.NewRecipeService(db)
	relations := service.NewRelationService(db)

	authHandler := NewAuthHandler(auth)
	userHandler := NewUserHandler(service.NewUserService(db, images), relations)
	recipeHandler := NewRecipeHandler(
		recipes,
		relations,
		service.NewShoppingListService(db),
		service.NewShortLinkService(db, nil),
		images,
		testDomain,
	)

	router := gin.New()
	required := middleware.AuthMiddleware(auth)
	optional := middleware.OptionalAuthMiddleware(auth)

	router.GET("/s/:code", recipeHandler.RedirectShortLink)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	users := v1.Group("/users")
	users.GET("/me", required, userHandler.GetMe)
	users.POST("/:id/subscribe", required, userHandler.Subscribe)
	users.DELETE("/:id/subscribe", required, userHandler.Unsubscribe)
	users.GET("/subscriptions", required, userHandler.ListSubscriptions)

	group := v1.Group("/recipes")
	group.GET("", optional, recipeHandler.ListRecipes)
	group.GET("/download_shopping_cart", required, recipeHandler.DownloadShoppingCart)
	group.GET("/:id", optional, recipeHandler.GetRecipe)
	group.POST("/:id/favorite", required, recipeHandler.FavoriteRecipe)
	group.DELETE("/:id/favorite", required, recipeHandler.UnfavoriteRecipe)
	group.POST("/:id/shopping_cart", required, recipeHandler.AddToShoppingCart)
	group.DELETE("/:id/shopping_cart", required, recipeHandler.RemoveFromShoppingCart)
	group.GET("/:id/get-link", optional, recipeHandler.GetRecipeLink)

	return &apiFixture{db: db, router: router, auth: auth}
}

func (f *apiFixture) token(t *testing.T, username string) string {
	t.Helper()
	token, err := f.auth.Register(context.Background(), username+"@example.com", username, "Test", "User", "s3cretpass")
	require.NoError(t, err)
	return token
}

func (f *apiFixture) do(method, path, token string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (f *apiFixture) seedRecipe(t *testing.T, name string) *models.Recipe {
	t.Helper()
	author := testhelpers.CreateUser(t, f.db, "author-"+name)
	flour := testhelpers.CreateIngredient(t, f.db, "flour-"+name, "g")
	return testhelpers.CreateRecipe(t, f.db, author, name, map[*models.Ingredient]uint{flour: 500})
}

func TestFavoriteEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")
	token := f.token(t, "viewer")
	path := "/api/v1/recipes/" + recipe.ID.String() + "/favorite"

	w := f.do(http.MethodPost, path, token, "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, recipe.ID.String(), body["id"])
	assert.Equal(t, "Bread", body["name"])
	assert.Equal(t, float64(10), body["cooking_time"])
	assert.NotContains(t, body, "text")

	w = f.do(http.MethodPost, path, token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is already in favorites.", decodeJSON(t, w)["detail"])

	w = f.do(http.MethodDelete, path, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, path, token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Recipe is not in favorites.", decodeJSON(t, w)["detail"])
}

func TestFavoriteRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")

	w := f.do(http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/favorite", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/favorite", "garbage-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")
	token := f.token(t, "viewer")

	w := f.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Shopping cart is empty.", decodeJSON(t, w)["detail"])

	w = f.do(http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/shopping_cart", token, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="shopping_list.txt"`)
	assert.Equal(t, "Shopping list:\nflour-Bread: 500 g\n", w.Body.String())
}

func TestRecipeLinkAndRedirect(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")

	w := f.do(http.MethodGet, "/api/v1/recipes/"+recipe.ID.String()+"/get-link", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	link, ok := decodeJSON(t, w)["short-link"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(link, "https://"+testDomain+"/s/"))

	code := strings.TrimPrefix(link, "https://"+testDomain+"/s/")
	w = f.do(http.MethodGet, "/s/"+code, "", "")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://"+testDomain+"/recipes/"+recipe.ID.String(), w.Header().Get("Location"))

	w = f.do(http.MethodGet, "/s/nosuch", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesEnvelope(t *testing.T) {
	f := newAPIFixture(t)
	f.seedRecipe(t, "Bread")
	f.seedRecipe(t, "Cake")

	w := f.do(http.MethodGet, "/api/v1/recipes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, float64(2), body["count"])
	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 2)

	first, ok := results[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Bread", first["name"])
	assert.Contains(t, first, "ingredients")
	assert.Contains(t, first, "author")
	assert.Equal(t, false, first["is_favorited"])
}

func TestGetRecipeViewerFlags(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")
	token := f.token(t, "viewer")

	w := f.do(http.MethodPost, "/api/v1/recipes/"+recipe.ID.String()+"/favorite", token, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), token, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, true, body["is_favorited"])
	assert.Equal(t, false, body["is_in_shopping_cart"])

	// the same recipe looks unfavorited to an anonymous viewer
	w = f.do(http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeJSON(t, w)["is_favorited"])
}

func TestSubscriptionEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	recipe := f.seedRecipe(t, "Bread")
	token := f.token(t, "follower")
	path := "/api/v1/users/" + recipe.AuthorID.String() + "/subscribe"

	w := f.do(http.MethodPost, path, token, "")
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, recipe.AuthorID.String(), body["id"])
	assert.Equal(t, true, body["is_subscribed"])

	w = f.do(http.MethodGet, "/api/v1/users/subscriptions?recipes_limit=1", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeJSON(t, w)
	assert.Equal(t, float64(1), body["count"])
	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	entry := results[0].(map[string]interface{})
	assert.Equal(t, float64(1), entry["recipes_count"])
	assert.Len(t, entry["recipes"], 1)

	w = f.do(http.MethodDelete, path, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRegisterAndLoginEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(http.MethodPost, "/api/v1/auth/register", "",
		`{"email":"cook@example.com","username":"cook","first_name":"Pat","last_name":"Miller","password":"s3cretpass"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	token, ok := decodeJSON(t, w)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	w = f.do(http.MethodGet, "/api/v1/users/me", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cook", decodeJSON(t, w)["username"])

	w = f.do(http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"cook@example.com","password":"s3cretpass"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"cook@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
