package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

const (
	shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	shortCodeLength   = 6
	// attempts before a persistent unique-constraint collision surfaces
	// as an internal error
	maxShortCodeAttempts = 5

	shortLinkCachePrefix = "shortlink:"
	shortLinkCacheTTL    = time.Hour
)

// ShortLinkService hands out stable share codes for recipes. The redis
// client is optional; a nil client just disables resolution caching.
type ShortLinkService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewShortLinkService(db *gorm.DB, redisClient *redis.Client) *ShortLinkService {
	return &ShortLinkService{db: db, redis: redisClient}
}

func generateShortCode() string {
	code := make([]byte, shortCodeLength)
	for i := range code {
		code[i] = shortCodeAlphabet[rand.IntN(len(shortCodeAlphabet))]
	}
	return string(code)
}

// GetOrCreate returns the recipe's existing code or mints a new one.
// Two calls for the same recipe always return the same code.
func (s *ShortLinkService) GetOrCreate(ctx context.Context, recipeID uuid.UUID) (string, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewNotFoundError("Recipe not found.")
		}
		return "", NewInternalError(err.Error())
	}

	var link models.ShortLink
	err := s.db.WithContext(ctx).First(&link, "recipe_id = ?", recipeID).Error
	if err == nil {
		return link.ShortCode, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", NewInternalError(err.Error())
	}

	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		link = models.ShortLink{RecipeID: recipeID, ShortCode: generateShortCode()}
		createErr := s.db.WithContext(ctx).Create(&link).Error
		if createErr == nil {
			return link.ShortCode, nil
		}
		if !isUniqueViolation(createErr) {
			return "", NewInternalError(createErr.Error())
		}
		// either the code collided or a concurrent request created the
		// recipe's link first; prefer the winner's code
		var existing models.ShortLink
		if err := s.db.WithContext(ctx).First(&existing, "recipe_id = ?", recipeID).Error; err == nil {
			return existing.ShortCode, nil
		}
	}
	return "", NewInternalError("could not generate a unique short code")
}

// Resolve maps a code back to its recipe id, going through the cache
// when one is configured.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, shortLinkCachePrefix+code).Result(); err == nil {
			if id, parseErr := uuid.Parse(cached); parseErr == nil {
				return id, nil
			}
		}
	}

	var link models.ShortLink
	if err := s.db.WithContext(ctx).First(&link, "short_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, NewNotFoundError("Short link not found.")
		}
		return uuid.Nil, NewInternalError(err.Error())
	}

	if s.redis != nil {
		s.redis.Set(ctx, shortLinkCachePrefix+code, link.RecipeID.String(), shortLinkCacheTTL)
	}
	return link.RecipeID, nil
}
