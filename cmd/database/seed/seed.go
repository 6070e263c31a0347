package seed

import (
	"Foodgram-Backend/entities"
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"
)

var defaultTags = []entities.Tag{
	{Name: "Завтрак", Color: "#1A85FF", Slug: "breakfast"},
	{Name: "Обед", Color: "#D41159", Slug: "dinner"},
	{Name: "Ужин", Color: "#FFC20A", Slug: "supper"},
	{Name: "Перекус", Color: "#0ACF83", Slug: "snack"},
}

// Seed loads the ingredient catalog from a CSV file and creates the default
// tag set. Both steps are idempotent: rows that already exist are skipped.
func Seed(db *gorm.DB, ingredientsCSV string) error {
	if err := seedIngredients(db, ingredientsCSV); err != nil {
		return err
	}
	if err := seedTags(db); err != nil {
		return err
	}
	fmt.Println("Database seeding complete")
	return nil
}

// seedIngredients reads name,measurement_unit rows.
func seedIngredients(db *gorm.DB, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	created := 0
	for _, record := range records {
		name, unit := record[0], record[1]
		if name == "" || unit == "" {
			continue
		}

		var count int64
		if err := db.Model(&entities.Ingredient{}).
			Where("name = ? AND measurement_unit = ?", name, unit).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&entities.Ingredient{
			Name:            name,
			MeasurementUnit: unit,
		}).Error; err != nil {
			return err
		}
		created++
	}

	log.Printf("ingredients seeded: %d new of %d rows", created, len(records))
	return nil
}

func seedTags(db *gorm.DB) error {
	for _, tag := range defaultTags {
		var count int64
		if err := db.Model(&entities.Tag{}).
			Where("slug = ?", tag.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&entities.Tag{
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}
