package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is read-mostly reference data. Names are not unique; the
// id is the real key and (name, measurement_unit) only matters for display.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"size:64;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:16;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Slug string    `gorm:"size:64;uniqueIndex;not null" json:"slug"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
