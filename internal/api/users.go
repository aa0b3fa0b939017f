package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefull/backend/internal/models"
	"github.com/platefull/backend/internal/service"
)

type UserHandler struct {
	users     *service.UserService
	relations *service.RelationService
}

func NewUserHandler(users *service.UserService, relations *service.RelationService) *UserHandler {
	return &UserHandler{users: users, relations: relations}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pagination(c)
	total, users, err := h.users.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles, err := h.profiles(c, users)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginated(total, profiles))
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfile(user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found."})
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles, err := h.profiles(c, []models.User{*user})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles[0])
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No avatar provided."})
		return
	}

	url, err := h.users.SetAvatar(c.Request.Context(), currentUserID(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.ClearAvatar(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	h.toggleSubscription(c, service.IntentAdd)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	h.toggleSubscription(c, service.IntentRemove)
}

func (h *UserHandler) toggleSubscription(c *gin.Context, intent service.Intent) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found."})
		return
	}

	result, err := h.relations.Apply(c.Request.Context(), service.RelationSubscription, currentUserID(c), id, intent)
	if err != nil {
		respondError(c, err)
		return
	}

	if intent == service.IntentRemove {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, newProfile(result.Author, true))
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, limit := pagination(c)

	// a recipes_limit that does not parse is ignored, not an error
	var recipesLimit *int
	if raw := c.Query("recipes_limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			recipesLimit = &n
		}
	}

	total, entries, err := h.relations.ListSubscriptions(c.Request.Context(), currentUserID(c), recipesLimit, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(entries))
	for i := range entries {
		results = append(results, newSubscription(&entries[i]))
	}
	c.JSON(http.StatusOK, paginated(total, results))
}

func (h *UserHandler) profiles(c *gin.Context, users []models.User) ([]ProfileResponse, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	subscribed, err := h.relations.IsSubscribed(c.Request.Context(), currentUserID(c), ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]ProfileResponse, 0, len(users))
	for i := range users {
		profiles = append(profiles, newProfile(&users[i], subscribed[users[i].ID]))
	}
	return profiles, nil
}
