package models

import "time"

// RuleStatusReady is the status of rules without an explicit one
const RuleStatusReady = "READY"

// Rule represents a coding rule of an analyzer repository
type Rule struct {
	ID           uint   `gorm:"primaryKey"`
	Key          string `gorm:"column:rule_key;type:text;not null;uniqueIndex"` // e.g., "squid:S1067"
	Repository   string `gorm:"type:text;not null;index"`
	Name         string `gorm:"type:text;not null"`
	Language     string `gorm:"type:text;not null;index"`
	LanguageName string `gorm:"type:text"`
	Severity     string `gorm:"type:text;not null;index"` // Default severity
	Status       string `gorm:"type:text;not null;default:READY"`
	Type         string `gorm:"type:text;not null;index"` // "BUG", "VULNERABILITY", "CODE_SMELL"
	IsTemplate   bool   `gorm:"default:false"`
	TemplateKey  string `gorm:"type:text"`
	Description  string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	// Relationships
	Tags []RuleTag `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE"`
}

// RuleTag represents a tag attached to a rule, either by users or by the analyzer
type RuleTag struct {
	ID     uint   `gorm:"primaryKey"`
	RuleID uint   `gorm:"not null;index:idx_rule_tags"`
	Value  string `gorm:"type:text;not null;index:idx_tag_value"`
	System bool   `gorm:"default:false"`

	CreatedAt time.Time
}
