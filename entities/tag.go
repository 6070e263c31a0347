package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"uniqueIndex;size:200" json:"name"`
	Color string    `gorm:"uniqueIndex;size:7" json:"color"`
	Slug  string    `gorm:"uniqueIndex;size:200" json:"slug"`

	Recipes []*Recipe `gorm:"many2many:recipe_tags" json:"-"`
	Timestamp
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
