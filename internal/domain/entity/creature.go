package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Creature is the local copy of one upstream record, keyed by its canonical name.
type Creature struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name      string         `gorm:"not null;uniqueIndex:ux_creatures_name"`
	Payload   datatypes.JSON `gorm:"type:json;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (Creature) TableName() string {
	return "creatures"
}

func (c *Creature) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CanonicalName lowercases and trims a creature name so it can be used as the natural key.
func CanonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PayloadName returns the canonical form of the payload's own "name" field.
// It reports false when the payload is not an object or carries no usable name.
func PayloadName(payload datatypes.JSON) (string, bool) {
	var doc struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil || doc.Name == nil {
		return "", false
	}
	name := CanonicalName(*doc.Name)
	return name, name != ""
}
