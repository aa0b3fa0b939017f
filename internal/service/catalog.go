package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// CatalogService serves the Ingredient and Tag reference data.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListIngredients returns all ingredients, optionally narrowed by a
// case-insensitive name substring. Unpaginated, like the tags list.
func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name")
	if name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, NewInternalError(err.Error())
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Ingredient not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	return &ingredient, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, NewInternalError(err.Error())
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Tag not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	return &tag, nil
}
