package store

import (
	"context"

	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/query"
)

// RuleStore defines the interface for database operations
type RuleStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Rule operations
	CreateRule(ctx context.Context, rule *models.Rule) error
	GetRule(ctx context.Context, key string) (*models.Rule, error)
	CountRules(ctx context.Context) (int64, error)
	SearchRules(ctx context.Context, search Search) (*SearchResult, error)
	FacetCounts(ctx context.Context, search Search, facets []query.FacetKey) (query.Facets, error)

	// Quality profile operations
	CreateProfile(ctx context.Context, profile *models.QualityProfile) error
	GetProfile(ctx context.Context, key string) (*models.QualityProfile, error)
	ListProfiles(ctx context.Context, language string) ([]models.QualityProfile, error)

	// Activation operations
	ActivateRule(ctx context.Context, active *models.ActiveRule) error
	ListActivations(ctx context.Context, profileKeys, ruleKeys []string) ([]models.ActiveRule, error)

	// Filter operations
	// CreateFilter fails with *DuplicateFilterError when an equal query is saved
	CreateFilter(ctx context.Context, filter *models.Filter) error
	GetFilter(ctx context.Context, id uint) (*models.Filter, error)
	ListFilters(ctx context.Context) ([]models.Filter, error)
	DeleteFilter(ctx context.Context, id uint) error
}

// Sort fields accepted by SearchRules.
const (
	SortByName      = "name"
	SortByKey       = "key"
	SortByCreatedAt = "createdAt"
)

// Search selects one page of rules.
type Search struct {
	Query query.Query
	// Text matches rule names and keys, case-insensitive
	Text string
	// Page is 1-based; values below 1 are treated as 1
	Page     int
	PageSize int
	Sort     string
	Asc      bool
}

type SearchResult struct {
	Rules    []models.Rule
	Total    int64
	Page     int
	PageSize int
}
