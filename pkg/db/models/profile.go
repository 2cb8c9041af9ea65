package models

import "time"

// QualityProfile represents a named set of activated rules for one language
type QualityProfile struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"column:profile_key;type:text;not null;uniqueIndex"`
	Name      string `gorm:"type:text;not null"`
	Language  string `gorm:"type:text;not null;index"`
	ParentKey string `gorm:"type:text"` // Empty for root profiles
	IsBuiltIn bool   `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveRule tracks the activation of a rule within a quality profile
type ActiveRule struct {
	ID         uint   `gorm:"primaryKey"`
	ProfileKey string `gorm:"type:text;not null;uniqueIndex:idx_profile_rule"`
	RuleKey    string `gorm:"type:text;not null;uniqueIndex:idx_profile_rule;index"`
	Severity   string `gorm:"type:text;not null"`
	Inherit    string `gorm:"type:text;not null;default:NONE"` // "NONE", "INHERITED", "OVERRIDES"

	CreatedAt time.Time
	UpdatedAt time.Time
}
