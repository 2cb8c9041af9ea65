package models

import (
	"time"

	"gorm.io/gorm"
)

// Filter represents a saved rule search
type Filter struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:text;not null;index"`
	Query       string `gorm:"type:text;not null"` // URL-encoded raw query, e.g., "languages=java&types=BUG"
	Description string `gorm:"type:text"`
	// Canonical is the order-insensitive form of Query. Live filters never share it.
	Canonical string `gorm:"type:text;not null;default:'';uniqueIndex:idx_filters_canonical,where:deleted_at IS NULL"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
