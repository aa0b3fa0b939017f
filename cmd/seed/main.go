package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/platefull/backend/config"
	"github.com/platefull/backend/internal/database"
	"github.com/platefull/backend/internal/models"
)

type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagSeed struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Loads ingredient and tag reference data from JSON files into the
// database. Rows that already exist (by name) are left untouched.
func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to ingredients JSON")
	tagsPath := flag.String("tags", "data/tags.json", "path to tags JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var ingredients []ingredientSeed
	if err := loadJSON(*ingredientsPath, &ingredients); err != nil {
		log.Fatalf("Failed to read %s: %v", *ingredientsPath, err)
	}
	created := 0
	for _, seed := range ingredients {
		var count int64
		db.Model(&models.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", seed.Name, seed.MeasurementUnit).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Ingredient{Name: seed.Name, MeasurementUnit: seed.MeasurementUnit}).Error; err != nil {
			log.Fatalf("Failed to create ingredient %q: %v", seed.Name, err)
		}
		created++
	}
	log.Printf("Seeded %d ingredients (%d already present)", created, len(ingredients)-created)

	var tags []tagSeed
	if err := loadJSON(*tagsPath, &tags); err != nil {
		log.Fatalf("Failed to read %s: %v", *tagsPath, err)
	}
	created = 0
	for _, seed := range tags {
		var count int64
		db.Model(&models.Tag{}).Where("slug = ?", seed.Slug).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Tag{Name: seed.Name, Slug: seed.Slug}).Error; err != nil {
			log.Fatalf("Failed to create tag %q: %v", seed.Name, err)
		}
		created++
	}
	log.Printf("Seeded %d tags (%d already present)", created, len(tags)-created)
}

func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
