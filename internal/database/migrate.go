package database

import (
	"gorm.io/gorm"

	"github.com/platefull/backend/internal/models"
)

// Migrate applies the schema for every persistent entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Tag{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCart{},
		&models.Subscription{},
		&models.ShortLink{},
	)
}
