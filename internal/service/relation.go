package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// RelationKind selects which user-to-target membership a toggle acts on.
type RelationKind int

const (
	RelationFavorite RelationKind = iota
	RelationShoppingCart
	RelationSubscription
)

// Intent is the requested toggle direction.
type Intent int

const (
	IntentAdd Intent = iota
	IntentRemove
)

type relationMessages struct {
	duplicate string
	missing   string
}

var relationDetails = map[RelationKind]relationMessages{
	RelationFavorite: {
		duplicate: "Recipe is already in favorites.",
		missing:   "Recipe is not in favorites.",
	},
	RelationShoppingCart: {
		duplicate: "Recipe is already in the shopping cart.",
		missing:   "Recipe is not in the shopping cart.",
	},
	RelationSubscription: {
		duplicate: "You are already subscribed to this author.",
		missing:   "You are not subscribed to this author.",
	},
}

// ToggleResult carries the target entity for the caller to render.
// Recipe is set for favorite/shopping-cart toggles, Author for
// subscription toggles.
type ToggleResult struct {
	Recipe *models.Recipe
	Author *models.User
}

// RelationService applies add/remove intent to Favorite, ShoppingCart
// and Subscription rows. All three kinds share one code path; only the
// row type, the target lookup and the messages differ.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// Apply performs a single-row toggle. Add on an existing pair and
// remove on a missing pair both fail with a kind-specific detail; the
// unique constraint backs up the existence check under concurrent adds.
func (s *RelationService) Apply(ctx context.Context, kind RelationKind, actorID, targetID uuid.UUID, intent Intent) (*ToggleResult, error) {
	if actorID == uuid.Nil {
		return nil, NewUnauthorizedError("Authentication required.")
	}
	if kind == RelationSubscription && actorID == targetID {
		return nil, NewConflictError("You cannot subscribe to yourself.")
	}

	result, err := s.loadTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	switch intent {
	case IntentAdd:
		if err := s.add(ctx, kind, actorID, targetID); err != nil {
			return nil, err
		}
	case IntentRemove:
		if err := s.remove(ctx, kind, actorID, targetID); err != nil {
			return nil, err
		}
	default:
		return nil, NewInternalError("unknown toggle intent")
	}
	return result, nil
}

func (s *RelationService) loadTarget(ctx context.Context, kind RelationKind, targetID uuid.UUID) (*ToggleResult, error) {
	if kind == RelationSubscription {
		var author models.User
		if err := s.db.WithContext(ctx).First(&author, "id = ?", targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NewNotFoundError("User not found.")
			}
			return nil, NewInternalError(err.Error())
		}
		return &ToggleResult{Author: &author}, nil
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Recipe not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	return &ToggleResult{Recipe: &recipe}, nil
}

func (s *RelationService) add(ctx context.Context, kind RelationKind, actorID, targetID uuid.UUID) error {
	details := relationDetails[kind]

	var count int64
	if err := s.pairQuery(ctx, kind, actorID, targetID).Count(&count).Error; err != nil {
		return NewInternalError(err.Error())
	}
	if count > 0 {
		return NewConflictError(details.duplicate)
	}

	if err := s.db.WithContext(ctx).Create(s.newRow(kind, actorID, targetID)).Error; err != nil {
		if isUniqueViolation(err) {
			return NewConflictError(details.duplicate)
		}
		return NewInternalError(err.Error())
	}
	return nil
}

func (s *RelationService) remove(ctx context.Context, kind RelationKind, actorID, targetID uuid.UUID) error {
	details := relationDetails[kind]

	res := s.pairQuery(ctx, kind, actorID, targetID).Delete(s.newRow(kind, uuid.Nil, uuid.Nil))
	if res.Error != nil {
		return NewInternalError(res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return NewConflictError(details.missing)
	}
	return nil
}

func (s *RelationService) pairQuery(ctx context.Context, kind RelationKind, actorID, targetID uuid.UUID) *gorm.DB {
	q := s.db.WithContext(ctx)
	switch kind {
	case RelationFavorite:
		return q.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", actorID, targetID)
	case RelationShoppingCart:
		return q.Model(&models.ShoppingCart{}).Where("user_id = ? AND recipe_id = ?", actorID, targetID)
	default:
		return q.Model(&models.Subscription{}).Where("user_id = ? AND author_id = ?", actorID, targetID)
	}
}

func (s *RelationService) newRow(kind RelationKind, actorID, targetID uuid.UUID) interface{} {
	switch kind {
	case RelationFavorite:
		return &models.Favorite{UserID: actorID, RecipeID: targetID}
	case RelationShoppingCart:
		return &models.ShoppingCart{UserID: actorID, RecipeID: targetID}
	default:
		return &models.Subscription{UserID: actorID, AuthorID: targetID}
	}
}

// SubscriptionEntry is one subscribed author with their recent recipes.
type SubscriptionEntry struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// ListSubscriptions returns the authors the user follows, ordered by
// subscription age, each with up to recipesLimit recipes and the total
// recipe count. A nil recipesLimit means no truncation.
func (s *RelationService) ListSubscriptions(ctx context.Context, userID uuid.UUID, recipesLimit *int, page, limit int) (int64, []SubscriptionEntry, error) {
	if userID == uuid.Nil {
		return 0, nil, NewUnauthorizedError("Authentication required.")
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, NewInternalError(err.Error())
	}

	var subs []models.Subscription
	if err := s.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&subs).Error; err != nil {
		return 0, nil, NewInternalError(err.Error())
	}

	entries := make([]SubscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
			Where("author_id = ?", sub.AuthorID).Count(&count).Error; err != nil {
			return 0, nil, NewInternalError(err.Error())
		}

		q := s.db.WithContext(ctx).
			Where("author_id = ?", sub.AuthorID).
			Order("created_at DESC")
		if recipesLimit != nil && *recipesLimit >= 0 {
			q = q.Limit(*recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return 0, nil, NewInternalError(err.Error())
		}

		entries = append(entries, SubscriptionEntry{
			Author:       sub.Author,
			Recipes:      recipes,
			RecipesCount: count,
		})
	}
	return total, entries, nil
}

// IsSubscribed reports, for each author id, whether viewer follows them.
// An anonymous viewer gets an empty map.
func (s *RelationService) IsSubscribed(ctx context.Context, viewerID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	flags := make(map[uuid.UUID]bool, len(authorIDs))
	if viewerID == uuid.Nil || len(authorIDs) == 0 {
		return flags, nil
	}
	var rows []models.Subscription
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id IN ?", viewerID, authorIDs).
		Find(&rows).Error; err != nil {
		return nil, NewInternalError(err.Error())
	}
	for _, row := range rows {
		flags[row.AuthorID] = true
	}
	return flags, nil
}
