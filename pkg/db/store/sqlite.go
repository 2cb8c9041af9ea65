package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mwantia/codingrules/pkg/db/migrations"
	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements RuleStore using SQLite
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// DB returns the underlying GORM database instance
func (s *SQLiteStore) DB() *gorm.DB {
	return s.db
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	LogLevel     logger.LogLevel
}

// NewSQLiteStore creates a new SQLite-backed rule store
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	// Default to silent logging
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &SQLiteStore{
		db:   db,
		path: cfg.Path,
	}, nil
}

// OpenSQLiteStore creates and connects a store, applying pending migrations
// when migrate is set. Nothing stays open when a step fails.
func OpenSQLiteStore(ctx context.Context, cfg SQLiteConfig, migrate bool) (*SQLiteStore, error) {
	st, err := NewSQLiteStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := st.open(ctx, migrate); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) open(ctx context.Context, migrate bool) error {
	err := s.Connect(ctx)
	if err != nil {
		err = fmt.Errorf("failed to connect to store: %w", err)
	} else if migrate {
		if err = s.Migrate(ctx); err != nil {
			err = fmt.Errorf("failed to migrate store: %w", err)
		}
	}

	if err != nil {
		s.Close()
		return err
	}
	return nil
}

// Connect initializes the database connection
func (s *SQLiteStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending schema migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *SQLiteStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Rule operations

func (s *SQLiteStore) CreateRule(ctx context.Context, rule *models.Rule) error {
	return s.db.WithContext(ctx).Create(rule).Error
}

func (s *SQLiteStore) GetRule(ctx context.Context, key string) (*models.Rule, error) {
	var rule models.Rule
	err := s.db.WithContext(ctx).Preload("Tags").Where("rule_key = ?", key).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *SQLiteStore) CountRules(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Rule{}).Count(&count).Error
	return count, err
}

var sortColumns = map[string]string{
	SortByName:      "rules.name",
	SortByKey:       "rules.rule_key",
	SortByCreatedAt: "rules.created_at",
}

func (s *SQLiteStore) SearchRules(ctx context.Context, search Search) (*SearchResult, error) {
	scopes := s.filters(search, "")

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Rule{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	page := search.Page
	if page < 1 {
		page = 1
	}

	column, ok := sortColumns[search.Sort]
	if !ok {
		column = sortColumns[SortByName]
	}
	order := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column, Raw: true}, Desc: !search.Asc},
		{Column: clause.Column{Name: "rules.rule_key", Raw: true}},
	}}

	stmt := s.db.WithContext(ctx).
		Model(&models.Rule{}).
		Scopes(scopes...).
		Preload("Tags").
		Order(order)

	if search.PageSize > 0 {
		stmt = stmt.Limit(search.PageSize).Offset((page - 1) * search.PageSize)
	}

	var found []models.Rule
	if err := stmt.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to search rules: %w", err)
	}

	return &SearchResult{
		Rules:    found,
		Total:    total,
		Page:     page,
		PageSize: search.PageSize,
	}, nil
}

type facetRow struct {
	Value string
	Count int
}

// FacetCounts counts rules per value of every facet in facets. The filter of
// a facet is left out while counting that facet, so values next to the
// selected ones keep their counts.
func (s *SQLiteStore) FacetCounts(ctx context.Context, search Search, facets []query.FacetKey) (query.Facets, error) {
	result := query.Facets{}

	for _, facet := range facets {
		base := s.db.WithContext(ctx).Model(&models.Rule{}).Scopes(s.filters(search, facet)...)

		var stmt *gorm.DB
		switch facet {
		case query.FacetLanguages:
			stmt = groupByColumn(base, "rules.language")
		case query.FacetRepositories:
			stmt = groupByColumn(base, "rules.repository")
		case query.FacetSeverities:
			stmt = groupByColumn(base, "rules.severity")
		case query.FacetStatuses:
			stmt = groupByColumn(base, "rules.status")
		case query.FacetTypes:
			stmt = groupByColumn(base, "rules.type")
		case query.FacetTags:
			stmt = base.
				Joins("JOIN rule_tags ON rule_tags.rule_id = rules.id").
				Select("rule_tags.value AS value, COUNT(DISTINCT rules.id) AS count").
				Group("rule_tags.value")
		case query.FacetActivationSeverities:
			if search.Query.Profile == "" {
				result[facet] = query.Facet{}
				continue
			}
			stmt = base.
				Joins("JOIN active_rules ON active_rules.rule_key = rules.rule_key AND active_rules.profile_key = ?", search.Query.Profile).
				Select("active_rules.severity AS value, COUNT(*) AS count").
				Group("active_rules.severity")
		default:
			return nil, fmt.Errorf("facet '%s' can not be aggregated", facet)
		}

		var rows []facetRow
		if err := stmt.Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate facet '%s': %w", facet, err)
		}

		counts := make(query.Facet, len(rows))
		for _, row := range rows {
			counts[row.Value] = row.Count
		}
		result[facet] = counts
	}

	return result, nil
}

func groupByColumn(db *gorm.DB, column string) *gorm.DB {
	return db.Select(column + " AS value, COUNT(*) AS count").Group(column)
}

type scope = func(*gorm.DB) *gorm.DB

func where(cond string, args ...any) scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, args...)
	}
}

// filters turns a search into WHERE scopes, skipping the filter of exclude.
func (s *SQLiteStore) filters(search Search, exclude query.FacetKey) []scope {
	q := search.Query
	var scopes []scope

	in := func(facet query.FacetKey, column string, values []string) {
		if facet != exclude && len(values) > 0 {
			scopes = append(scopes, where(column+" IN ?", values))
		}
	}

	in(query.FacetLanguages, "rules.language", q.Languages)
	in(query.FacetRepositories, "rules.repository", q.Repositories)
	in(query.FacetSeverities, "rules.severity", q.Severities)
	in(query.FacetStatuses, "rules.status", q.Statuses)
	in(query.FacetTypes, "rules.type", q.Types)

	if exclude != query.FacetTags && len(q.Tags) > 0 {
		tagged := s.db.Model(&models.RuleTag{}).Select("rule_id").Where("value IN ?", q.Tags)
		scopes = append(scopes, where("rules.id IN (?)", tagged))
	}
	if exclude != query.FacetTemplate && q.Template != nil {
		scopes = append(scopes, where("rules.is_template = ?", *q.Template))
	}
	if exclude != query.FacetAvailableSince && !q.AvailableSince.IsZero() {
		scopes = append(scopes, where("rules.created_at >= ?", q.AvailableSince))
	}
	if text := strings.ToLower(strings.TrimSpace(search.Text)); text != "" {
		pattern := "%" + text + "%"
		scopes = append(scopes, where("(LOWER(rules.name) LIKE ? OR LOWER(rules.rule_key) LIKE ?)", pattern, pattern))
	}

	if q.Profile != "" {
		if activation := s.activationFilter(q, exclude); activation != nil {
			scopes = append(scopes, activation)
		}
	}

	return scopes
}

// activationFilter restricts rules by their activation in q.Profile. Severity
// and inheritance filters imply an active rule.
func (s *SQLiteStore) activationFilter(q query.Query, exclude query.FacetKey) scope {
	active := s.db.Model(&models.ActiveRule{}).Select("rule_key").Where("profile_key = ?", q.Profile)

	if q.Activation != nil && !*q.Activation {
		if exclude == query.FacetActivation {
			return nil
		}
		return where("rules.rule_key NOT IN (?)", active)
	}

	restricted := false
	if exclude != query.FacetActivationSeverities && len(q.ActivationSeverities) > 0 {
		active = active.Where("severity IN ?", q.ActivationSeverities)
		restricted = true
	}
	if exclude != query.FacetInheritance && q.Inheritance != "" {
		active = active.Where("inherit = ?", string(q.Inheritance))
		restricted = true
	}

	if (q.Activation != nil && exclude != query.FacetActivation) || restricted {
		return where("rules.rule_key IN (?)", active)
	}
	return nil
}

// Quality profile operations

func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *models.QualityProfile) error {
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *SQLiteStore) GetProfile(ctx context.Context, key string) (*models.QualityProfile, error) {
	var profile models.QualityProfile
	err := s.db.WithContext(ctx).Where("profile_key = ?", key).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context, language string) ([]models.QualityProfile, error) {
	var profiles []models.QualityProfile
	stmt := s.db.WithContext(ctx).Order("language, name")
	if language != "" {
		stmt = stmt.Where("language = ?", language)
	}
	err := stmt.Find(&profiles).Error
	return profiles, err
}

// Activation operations

// ActivateRule creates the activation or updates severity and inheritance
// of an existing one.
func (s *SQLiteStore) ActivateRule(ctx context.Context, active *models.ActiveRule) error {
	if active.Inherit == "" {
		active.Inherit = string(query.NotInherited)
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_key"}, {Name: "rule_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"severity", "inherit", "updated_at"}),
	}).Create(active).Error
}

func (s *SQLiteStore) ListActivations(ctx context.Context, profileKeys, ruleKeys []string) ([]models.ActiveRule, error) {
	var actives []models.ActiveRule
	if len(profileKeys) == 0 || len(ruleKeys) == 0 {
		return actives, nil
	}

	err := s.db.WithContext(ctx).
		Where("profile_key IN ? AND rule_key IN ?", profileKeys, ruleKeys).
		Find(&actives).Error
	return actives, err
}

// Filter operations

// DuplicateFilterError is returned by CreateFilter when a live filter already
// selects the same rules.
type DuplicateFilterError struct {
	Existing models.Filter
}

func (e *DuplicateFilterError) Error() string {
	return fmt.Sprintf("filter %d '%s' has an equal query", e.Existing.ID, e.Existing.Name)
}

// CreateFilter stores filter with its canonical query. Lookup and insert share
// one transaction, and the unique index catches whatever slips past it.
func (s *SQLiteStore) CreateFilter(ctx context.Context, filter *models.Filter) error {
	raw, err := url.ParseQuery(filter.Query)
	if err != nil {
		return fmt.Errorf("invalid filter query '%s': %w", filter.Query, err)
	}
	filter.Canonical = query.Canonical(raw)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := filterByCanonical(tx, filter.Canonical)
		if err != nil {
			return err
		}
		if existing != nil {
			return &DuplicateFilterError{Existing: *existing}
		}
		return tx.Create(filter).Error
	})

	var duplicate *DuplicateFilterError
	if err == nil || errors.As(err, &duplicate) {
		return err
	}
	if existing, lookupErr := filterByCanonical(s.db.WithContext(ctx), filter.Canonical); lookupErr == nil && existing != nil {
		return &DuplicateFilterError{Existing: *existing}
	}
	return err
}

func filterByCanonical(db *gorm.DB, canonical string) (*models.Filter, error) {
	var filter models.Filter
	err := db.Where("canonical = ?", canonical).Take(&filter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (s *SQLiteStore) GetFilter(ctx context.Context, id uint) (*models.Filter, error) {
	var filter models.Filter
	err := s.db.WithContext(ctx).First(&filter, id).Error
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (s *SQLiteStore) ListFilters(ctx context.Context) ([]models.Filter, error) {
	var filters []models.Filter
	err := s.db.WithContext(ctx).Order("name").Find(&filters).Error
	return filters, err
}

func (s *SQLiteStore) DeleteFilter(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Filter{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
