// Package rules holds the rule and quality profile records served by the
// API and the display model of one row in the rule list.
package rules

import (
	"time"

	"github.com/mwantia/codingrules/pkg/db/models"
)

const StatusReady = "READY"

type Rule struct {
	Key         string    `json:"key"`
	Repository  string    `json:"repo"`
	Name        string    `json:"name"`
	Lang        string    `json:"lang"`
	LangName    string    `json:"langName"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Type        string    `json:"type"`
	IsTemplate  bool      `json:"isTemplate"`
	TemplateKey string    `json:"templateKey,omitempty"`
	Tags        []string  `json:"tags"`
	SysTags     []string  `json:"sysTags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AllTags returns user tags followed by system tags.
func (r Rule) AllTags() []string {
	all := make([]string, 0, len(r.Tags)+len(r.SysTags))
	all = append(all, r.Tags...)
	return append(all, r.SysTags...)
}

type Profile struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Language   string `json:"language"`
	ParentKey  string `json:"parentKey,omitempty"`
	ParentName string `json:"parentName,omitempty"`
	IsBuiltIn  bool   `json:"isBuiltIn"`
	CanEdit    bool   `json:"canEdit"`
}

// FromModel converts a stored rule, splitting its tags by kind.
func FromModel(m models.Rule) Rule {
	rule := Rule{
		Key:         m.Key,
		Repository:  m.Repository,
		Name:        m.Name,
		Lang:        m.Language,
		LangName:    m.LanguageName,
		Severity:    m.Severity,
		Status:      m.Status,
		Type:        m.Type,
		IsTemplate:  m.IsTemplate,
		TemplateKey: m.TemplateKey,
		Tags:        []string{},
		SysTags:     []string{},
		CreatedAt:   m.CreatedAt,
	}

	for _, tag := range m.Tags {
		if tag.System {
			rule.SysTags = append(rule.SysTags, tag.Value)
		} else {
			rule.Tags = append(rule.Tags, tag.Value)
		}
	}

	return rule
}

// ProfileFromModel converts a stored profile. parent may be nil.
func ProfileFromModel(m models.QualityProfile, parent *models.QualityProfile) Profile {
	profile := Profile{
		Key:       m.Key,
		Name:      m.Name,
		Language:  m.Language,
		ParentKey: m.ParentKey,
		IsBuiltIn: m.IsBuiltIn,
		CanEdit:   !m.IsBuiltIn,
	}
	if parent != nil {
		profile.ParentName = parent.Name
	}
	return profile
}
