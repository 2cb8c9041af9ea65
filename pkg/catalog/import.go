package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/query"
	"gorm.io/gorm"
)

// ImportStats counts what an Import wrote.
type ImportStats struct {
	Profiles    int `json:"profiles"`
	Rules       int `json:"rules"`
	Activations int `json:"activations"`
	// Skipped counts profiles and rules already present in the store
	Skipped int `json:"skipped"`
}

// Import writes the catalog to s. Existing profiles and rules are kept as they
// are; activations are created or updated.
func Import(ctx context.Context, s store.RuleStore, c *Catalog) (ImportStats, error) {
	stats := ImportStats{}

	for _, p := range c.Profiles {
		created, err := importProfile(ctx, s, p)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Profiles++
		} else {
			stats.Skipped++
		}
	}

	severities := make(map[string]string, len(c.Rules))
	for _, r := range c.Rules {
		severities[r.Key] = r.Severity

		created, err := importRule(ctx, s, r)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Rules++
		} else {
			stats.Skipped++
		}
	}

	for _, a := range c.Activations {
		severity := a.Severity
		if severity == "" {
			severity = severities[a.Rule]
		}

		active := &models.ActiveRule{
			ProfileKey: a.Profile,
			RuleKey:    a.Rule,
			Severity:   severity,
			Inherit:    string(query.ParseInheritance(a.Inherit)),
		}
		if err := s.ActivateRule(ctx, active); err != nil {
			return stats, fmt.Errorf("failed to activate rule '%s' in '%s': %w", a.Rule, a.Profile, err)
		}
		stats.Activations++
	}

	return stats, nil
}

func importProfile(ctx context.Context, s store.RuleStore, p Profile) (bool, error) {
	_, err := s.GetProfile(ctx, p.Key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up profile '%s': %w", p.Key, err)
	}

	profile := &models.QualityProfile{
		Key:       p.Key,
		Name:      p.Name,
		Language:  p.Language,
		ParentKey: p.Parent,
		IsBuiltIn: p.BuiltIn,
	}
	if err := s.CreateProfile(ctx, profile); err != nil {
		return false, fmt.Errorf("failed to create profile '%s': %w", p.Key, err)
	}
	return true, nil
}

func importRule(ctx context.Context, s store.RuleStore, r Rule) (bool, error) {
	_, err := s.GetRule(ctx, r.Key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up rule '%s': %w", r.Key, err)
	}

	rule := &models.Rule{
		Key:          r.Key,
		Repository:   r.Repository,
		Name:         r.Name,
		Language:     r.Language,
		LanguageName: r.LanguageName,
		Severity:     r.Severity,
		Status:       r.Status,
		Type:         r.Type,
		IsTemplate:   r.Template,
		TemplateKey:  r.TemplateKey,
		Description:  r.Description,
		CreatedAt:    r.createdAt(),
	}
	if rule.LanguageName == "" {
		rule.LanguageName = r.Language
	}
	if rule.Status == "" {
		rule.Status = models.RuleStatusReady
	}
	for _, tag := range r.Tags {
		rule.Tags = append(rule.Tags, models.RuleTag{Value: tag})
	}
	for _, tag := range r.SystemTags {
		rule.Tags = append(rule.Tags, models.RuleTag{Value: tag, System: true})
	}

	if err := s.CreateRule(ctx, rule); err != nil {
		return false, fmt.Errorf("failed to create rule '%s': %w", r.Key, err)
	}
	return true, nil
}
