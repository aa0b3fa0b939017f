package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// IngredientAmount is one validated ingredient-quantity entry.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       uint
}

// RecipeInput is the validated payload for creating or updating a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	Ingredients []IngredientAmount
	TagIDs      []uuid.UUID
}

// ListFilters narrows a recipe listing. Viewer is uuid.Nil for anonymous
// callers, which silently disables the favorite/cart filters.
type ListFilters struct {
	AuthorID       *uuid.UUID
	TagSlugs       []string
	IsFavorited    *bool
	InShoppingCart bool
	Viewer         uuid.UUID
	Page           int
	Limit          int
}

// RecipeService handles recipe reads and atomic writes of the recipe
// row together with its ingredient quantities and tag set.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// validate checks the payload before any mutation starts, so a failing
// update never touches the existing rows.
func (s *RecipeService) validate(ctx context.Context, in *RecipeInput) error {
	if len(in.Ingredients) == 0 {
		return NewValidationError("The ingredients field cannot be empty.")
	}
	seen := make(map[uuid.UUID]bool, len(in.Ingredients))
	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if item.Amount < 1 {
			return NewValidationError("Ingredient amount must be at least 1.")
		}
		if seen[item.IngredientID] {
			return NewValidationError("Ingredients must not repeat.")
		}
		seen[item.IngredientID] = true
		ids = append(ids, item.IngredientID)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return NewInternalError(err.Error())
	}
	if count != int64(len(ids)) {
		return NewValidationError("Ingredient with this ID does not exist.")
	}

	if len(in.TagIDs) == 0 {
		return NewValidationError("The tags field cannot be empty.")
	}
	seenTags := make(map[uuid.UUID]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTags[id] {
			return NewValidationError("Tags must not repeat.")
		}
		seenTags[id] = true
	}
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("id IN ?", in.TagIDs).Count(&count).Error; err != nil {
		return NewInternalError(err.Error())
	}
	if count != int64(len(in.TagIDs)) {
		return NewValidationError("Tag with this ID does not exist.")
	}

	if in.CookingTime < 1 {
		return NewValidationError("Cooking time must be at least 1 minute.")
	}
	return nil
}

// Create inserts the recipe, its ingredient rows and its tag links as
// one transaction. A failure at any step leaves no partial recipe.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if authorID == uuid.Nil {
		return nil, NewUnauthorizedError("Authentication required.")
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		ImageURL:    in.ImageURL,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		if err := s.replaceIngredients(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return s.replaceTags(tx, recipe, in.TagIDs)
	})
	if err != nil {
		return nil, NewInternalError(err.Error())
	}
	return s.Get(ctx, recipe.ID)
}

// Update rewrites the recipe atomically; ingredient rows and the tag set
// are replaced wholesale rather than diffed. Only the author may update.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if actorID == uuid.Nil {
		return nil, NewUnauthorizedError("Authentication required.")
	}

	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Recipe not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	if recipe.AuthorID != actorID {
		return nil, NewForbiddenError("You cannot edit another user's recipe.")
	}

	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	recipe.Name = in.Name
	recipe.Text = in.Text
	recipe.CookingTime = in.CookingTime
	if in.ImageURL != "" {
		recipe.ImageURL = in.ImageURL
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := s.replaceIngredients(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return s.replaceTags(tx, &recipe, in.TagIDs)
	})
	if err != nil {
		return nil, NewInternalError(err.Error())
	}
	return s.Get(ctx, recipe.ID)
}

func (s *RecipeService) replaceIngredients(tx *gorm.DB, recipeID uuid.UUID, items []IngredientAmount) error {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
		})
	}
	return tx.Create(&rows).Error
}

func (s *RecipeService) replaceTags(tx *gorm.DB, recipe *models.Recipe, tagIDs []uuid.UUID) error {
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Replace(&tags)
}

// Delete removes a recipe; ingredient rows, tag links and relationship
// rows cascade. Only the author may delete.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	if actorID == uuid.Nil {
		return NewUnauthorizedError("Authentication required.")
	}
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("Recipe not found.")
		}
		return NewInternalError(err.Error())
	}
	if recipe.AuthorID != actorID {
		return NewForbiddenError("You cannot delete another user's recipe.")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShortLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return NewInternalError(err.Error())
	}
	return nil
}

// Get loads a recipe with its ingredient quantities, tags and author.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Preload("Author").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("Recipe not found.")
		}
		return nil, NewInternalError(err.Error())
	}
	return &recipe, nil
}

// List returns a page of recipes ordered by name plus the total count.
// Tag slugs are OR-combined and duplicates from the join are collapsed.
func (s *RecipeService) List(ctx context.Context, f ListFilters) (int64, []models.Recipe, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		q = q.Where("EXISTS (SELECT 1 FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id "+
			"WHERE recipe_tags.recipe_id = recipes.id AND tags.slug IN ?)", f.TagSlugs)
	}
	// anonymous callers get the unfiltered set, not an error
	if f.IsFavorited != nil && f.Viewer != uuid.Nil {
		sub := "SELECT 1 FROM favorites WHERE favorites.recipe_id = recipes.id AND favorites.user_id = ?"
		if *f.IsFavorited {
			q = q.Where("EXISTS ("+sub+")", f.Viewer)
		} else {
			q = q.Where("NOT EXISTS ("+sub+")", f.Viewer)
		}
	}
	if f.InShoppingCart && f.Viewer != uuid.Nil {
		q = q.Where("EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.recipe_id = recipes.id AND shopping_carts.user_id = ?)", f.Viewer)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, NewInternalError(err.Error())
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var recipes []models.Recipe
	err := q.
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Preload("Author").
		Order("recipes.name").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return 0, nil, NewInternalError(err.Error())
	}
	return total, recipes, nil
}

// ViewerFlags returns the viewer-relative favorite and shopping-cart
// membership for each recipe id. Anonymous viewers get all-false maps.
func (s *RecipeService) ViewerFlags(ctx context.Context, viewerID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool, len(recipeIDs))
	inCart := make(map[uuid.UUID]bool, len(recipeIDs))
	if viewerID == uuid.Nil || len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favs []models.Favorite
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Find(&favs).Error; err != nil {
		return nil, nil, NewInternalError(err.Error())
	}
	for _, f := range favs {
		favorited[f.RecipeID] = true
	}

	var carts []models.ShoppingCart
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Find(&carts).Error; err != nil {
		return nil, nil, NewInternalError(err.Error())
	}
	for _, c := range carts {
		inCart[c.RecipeID] = true
	}
	return favorited, inCart, nil
}
