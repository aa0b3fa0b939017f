package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShortLink maps a stable six character code to a recipe. Created lazily
// on the first get-link request and never regenerated after that.
type ShortLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"recipe_id"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	ShortCode string    `gorm:"size:10;uniqueIndex;not null" json:"short_code"`
}

func (sl *ShortLink) BeforeCreate(tx *gorm.DB) error {
	if sl.ID == uuid.Nil {
		sl.ID = uuid.New()
	}
	return nil
}
