package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/query"
	"github.com/mwantia/codingrules/pkg/urlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SQLiteStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *SQLiteStore
}

func TestSQLiteStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreTestSuite))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *SQLiteStoreTestSuite) SetupTest() {
	s.ctx = context.Background()

	store, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(s.T().TempDir(), "rules.db")})
	s.Require().NoError(err)
	s.Require().NoError(store.Connect(s.ctx))
	s.Require().NoError(store.Migrate(s.ctx))
	s.store = store

	s.seed()
}

func (s *SQLiteStoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *SQLiteStoreTestSuite) seed() {
	profiles := []models.QualityProfile{
		{Key: "java-sonar-way", Name: "Sonar way", Language: "java", IsBuiltIn: true},
		{Key: "java-child", Name: "Child", Language: "java", ParentKey: "java-sonar-way"},
		{Key: "js-sonar-way", Name: "Sonar way", Language: "js", IsBuiltIn: true},
	}
	for i := range profiles {
		s.Require().NoError(s.store.CreateProfile(s.ctx, &profiles[i]))
	}

	rules := []models.Rule{
		{
			Key: "squid:S100", Repository: "squid", Name: "Method names should comply with a naming convention",
			Language: "java", LanguageName: "Java", Severity: "MINOR", Status: "READY", Type: "CODE_SMELL",
			CreatedAt: date(2017, time.January, 10),
			Tags:      []models.RuleTag{{Value: "convention"}},
		},
		{
			Key: "squid:S2259", Repository: "squid", Name: "Null pointers should not be dereferenced",
			Language: "java", LanguageName: "Java", Severity: "MAJOR", Status: "READY", Type: "BUG",
			CreatedAt: date(2018, time.February, 1),
			Tags:      []models.RuleTag{{Value: "cwe", System: true}},
		},
		{
			Key: "squid:S2077", Repository: "squid", Name: "SQL binding mechanisms should be used",
			Language: "java", LanguageName: "Java", Severity: "CRITICAL", Status: "BETA", Type: "VULNERABILITY",
			CreatedAt: date(2018, time.March, 5),
			Tags:      []models.RuleTag{{Value: "cwe", System: true}, {Value: "sql", System: true}},
		},
		{
			Key: "javascript:S1067", Repository: "javascript", Name: "Expressions should not be too complex",
			Language: "js", LanguageName: "JavaScript", Severity: "CRITICAL", Status: "READY", Type: "CODE_SMELL",
			CreatedAt: date(2018, time.January, 15),
			Tags:      []models.RuleTag{{Value: "brain-overload"}},
		},
		{
			Key: "javascript:XPath", Repository: "javascript", Name: "XPath rule template",
			Language: "js", LanguageName: "JavaScript", Severity: "MAJOR", Status: "READY", Type: "CODE_SMELL",
			IsTemplate: true, CreatedAt: date(2016, time.May, 1),
		},
	}
	for i := range rules {
		s.Require().NoError(s.store.CreateRule(s.ctx, &rules[i]))
	}

	actives := []models.ActiveRule{
		{ProfileKey: "java-child", RuleKey: "squid:S100", Severity: "MINOR", Inherit: "NONE"},
		{ProfileKey: "java-child", RuleKey: "squid:S2259", Severity: "MAJOR", Inherit: "INHERITED"},
		{ProfileKey: "java-child", RuleKey: "squid:S2077", Severity: "BLOCKER", Inherit: "OVERRIDES"},
		{ProfileKey: "java-sonar-way", RuleKey: "squid:S2259", Severity: "MAJOR"},
	}
	for i := range actives {
		s.Require().NoError(s.store.ActivateRule(s.ctx, &actives[i]))
	}
}

func (s *SQLiteStoreTestSuite) search(raw map[string][]string) *SearchResult {
	result, err := s.store.SearchRules(s.ctx, Search{Query: query.Parse(raw), Asc: true})
	s.Require().NoError(err)
	return result
}

func ruleKeys(result *SearchResult) []string {
	keys := make([]string, 0, len(result.Rules))
	for _, r := range result.Rules {
		keys = append(keys, r.Key)
	}
	return keys
}

func (s *SQLiteStoreTestSuite) TestHealth() {
	s.NoError(s.store.Health(s.ctx))

	count, err := s.store.CountRules(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(5), count)
}

func (s *SQLiteStoreTestSuite) TestGetRule() {
	rule, err := s.store.GetRule(s.ctx, "squid:S2077")
	s.Require().NoError(err)
	s.Equal("SQL binding mechanisms should be used", rule.Name)
	s.Len(rule.Tags, 2)

	_, err = s.store.GetRule(s.ctx, "squid:missing")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *SQLiteStoreTestSuite) TestSearchAllSortedByName() {
	result := s.search(nil)

	s.Equal(int64(5), result.Total)
	s.Equal([]string{
		"javascript:S1067",
		"squid:S100",
		"squid:S2259",
		"squid:S2077",
		"javascript:XPath",
	}, ruleKeys(result))
	s.Len(result.Rules[3].Tags, 2)
}

func (s *SQLiteStoreTestSuite) TestSearchFilters() {
	tests := []struct {
		name string
		raw  map[string][]string
		want []string
	}{
		{"languages", map[string][]string{"languages": {"js"}}, []string{"javascript:S1067", "javascript:XPath"}},
		{"repositories and types", map[string][]string{"repositories": {"squid"}, "types": {"BUG,VULNERABILITY"}}, []string{"squid:S2259", "squid:S2077"}},
		{"severities", map[string][]string{"severities": {"CRITICAL"}}, []string{"javascript:S1067", "squid:S2077"}},
		{"statuses", map[string][]string{"statuses": {"BETA"}}, []string{"squid:S2077"}},
		{"system tags", map[string][]string{"tags": {"cwe"}}, []string{"squid:S2259", "squid:S2077"}},
		{"any tag", map[string][]string{"tags": {"convention,sql"}}, []string{"squid:S100", "squid:S2077"}},
		{"templates", map[string][]string{"is_template": {"true"}}, []string{"javascript:XPath"}},
		{"available since", map[string][]string{"available_since": {"2018-01-15"}}, []string{"javascript:S1067", "squid:S2259", "squid:S2077"}},
		{"activation ignored without profile", map[string][]string{"activation": {"true"}}, []string{"javascript:S1067", "squid:S100", "squid:S2259", "squid:S2077", "javascript:XPath"}},
		{"active in profile", map[string][]string{"qprofile": {"java-child"}, "activation": {"true"}}, []string{"squid:S100", "squid:S2259", "squid:S2077"}},
		{"inactive in profile", map[string][]string{"qprofile": {"java-child"}, "activation": {"false"}}, []string{"javascript:S1067", "javascript:XPath"}},
		{"active severity", map[string][]string{"qprofile": {"java-child"}, "active_severities": {"BLOCKER"}}, []string{"squid:S2077"}},
		{"inheritance", map[string][]string{"qprofile": {"java-child"}, "inheritance": {"INHERITED"}}, []string{"squid:S2259"}},
		{"profile alone", map[string][]string{"qprofile": {"java-child"}}, []string{"javascript:S1067", "squid:S100", "squid:S2259", "squid:S2077", "javascript:XPath"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, ruleKeys(s.search(tt.raw)))
		})
	}
}

func (s *SQLiteStoreTestSuite) TestSearchText() {
	result, err := s.store.SearchRules(s.ctx, Search{Query: query.Parse(nil), Text: "NULL", Asc: true})
	s.Require().NoError(err)
	s.Equal([]string{"squid:S2259"}, ruleKeys(result))

	result, err = s.store.SearchRules(s.ctx, Search{Query: query.Parse(nil), Text: "javascript:", Asc: true})
	s.Require().NoError(err)
	s.Equal(int64(2), result.Total)
}

func (s *SQLiteStoreTestSuite) TestSearchPagingAndSort() {
	result, err := s.store.SearchRules(s.ctx, Search{Query: query.Parse(nil), Page: 3, PageSize: 2, Asc: true})
	s.Require().NoError(err)
	s.Equal(int64(5), result.Total)
	s.Equal(3, result.Page)
	s.Equal([]string{"javascript:XPath"}, ruleKeys(result))

	result, err = s.store.SearchRules(s.ctx, Search{Query: query.Parse(nil), Sort: SortByCreatedAt, PageSize: 2})
	s.Require().NoError(err)
	s.Equal([]string{"squid:S2077", "squid:S2259"}, ruleKeys(result))

	result, err = s.store.SearchRules(s.ctx, Search{Query: query.Parse(nil), Sort: SortByKey, Page: 0, PageSize: 1, Asc: true})
	s.Require().NoError(err)
	s.Equal(1, result.Page)
	s.Equal([]string{"javascript:S1067"}, ruleKeys(result))
}

func (s *SQLiteStoreTestSuite) TestFacetCountsIgnoreOwnFilter() {
	search := Search{Query: query.Parse(map[string][]string{"languages": {"java"}})}

	facets, err := s.store.FacetCounts(s.ctx, search, []query.FacetKey{
		query.FacetLanguages,
		query.FacetTypes,
		query.FacetTags,
		query.FacetStatuses,
		query.FacetRepositories,
	})
	s.Require().NoError(err)

	s.Equal(query.Facet{"java": 3, "js": 2}, facets[query.FacetLanguages])
	s.Equal(query.Facet{"CODE_SMELL": 1, "BUG": 1, "VULNERABILITY": 1}, facets[query.FacetTypes])
	s.Equal(query.Facet{"convention": 1, "cwe": 2, "sql": 1}, facets[query.FacetTags])
	s.Equal(query.Facet{"READY": 2, "BETA": 1}, facets[query.FacetStatuses])
	s.Equal(query.Facet{"squid": 3}, facets[query.FacetRepositories])
}

func (s *SQLiteStoreTestSuite) TestFacetCountsTagsWithTagFilter() {
	search := Search{Query: query.Parse(map[string][]string{"tags": {"sql"}})}

	facets, err := s.store.FacetCounts(s.ctx, search, []query.FacetKey{query.FacetTags, query.FacetLanguages})
	s.Require().NoError(err)

	s.Equal(query.Facet{"convention": 1, "cwe": 2, "sql": 1, "brain-overload": 1}, facets[query.FacetTags])
	s.Equal(query.Facet{"java": 1}, facets[query.FacetLanguages])
}

func (s *SQLiteStoreTestSuite) TestFacetCountsActivationSeverities() {
	withProfile := Search{Query: query.Parse(map[string][]string{
		"qprofile":          {"java-child"},
		"active_severities": {"BLOCKER"},
	})}

	facets, err := s.store.FacetCounts(s.ctx, withProfile, []query.FacetKey{query.FacetActivationSeverities, query.FacetSeverities})
	s.Require().NoError(err)
	s.Equal(query.Facet{"MINOR": 1, "MAJOR": 1, "BLOCKER": 1}, facets[query.FacetActivationSeverities])
	s.Equal(query.Facet{"CRITICAL": 1}, facets[query.FacetSeverities])

	facets, err = s.store.FacetCounts(s.ctx, Search{Query: query.Parse(nil)}, []query.FacetKey{query.FacetActivationSeverities})
	s.Require().NoError(err)
	s.Empty(facets[query.FacetActivationSeverities])
}

func (s *SQLiteStoreTestSuite) TestFacetCountsRejectsUnknownFacet() {
	_, err := s.store.FacetCounts(s.ctx, Search{Query: query.Parse(nil)}, []query.FacetKey{query.FacetProfile})
	s.Error(err)
}

func (s *SQLiteStoreTestSuite) TestProfiles() {
	profiles, err := s.store.ListProfiles(s.ctx, "java")
	s.Require().NoError(err)
	s.Len(profiles, 2)
	s.Equal("Child", profiles[0].Name)

	all, err := s.store.ListProfiles(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)

	profile, err := s.store.GetProfile(s.ctx, "java-child")
	s.Require().NoError(err)
	s.Equal("java-sonar-way", profile.ParentKey)
}

func (s *SQLiteStoreTestSuite) TestActivateRuleUpserts() {
	s.Require().NoError(s.store.ActivateRule(s.ctx, &models.ActiveRule{
		ProfileKey: "java-child", RuleKey: "squid:S100", Severity: "CRITICAL", Inherit: "OVERRIDES",
	}))

	actives, err := s.store.ListActivations(s.ctx, []string{"java-child"}, []string{"squid:S100"})
	s.Require().NoError(err)
	s.Require().Len(actives, 1)
	s.Equal("CRITICAL", actives[0].Severity)
	s.Equal("OVERRIDES", actives[0].Inherit)
}

func (s *SQLiteStoreTestSuite) TestActivateRuleDefaultsInheritance() {
	s.Require().NoError(s.store.ActivateRule(s.ctx, &models.ActiveRule{
		ProfileKey: "js-sonar-way", RuleKey: "javascript:S1067", Severity: "CRITICAL",
	}))

	result := s.search(map[string][]string{"qprofile": {"js-sonar-way"}, "inheritance": {"NONE"}})
	s.Equal([]string{"javascript:S1067"}, ruleKeys(result))
}

func (s *SQLiteStoreTestSuite) TestListActivations() {
	actives, err := s.store.ListActivations(s.ctx,
		[]string{"java-child", "java-sonar-way"},
		[]string{"squid:S2259", "squid:S100"})
	s.Require().NoError(err)
	s.Len(actives, 3)

	none, err := s.store.ListActivations(s.ctx, nil, []string{"squid:S100"})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *SQLiteStoreTestSuite) TestFilters() {
	filter := &models.Filter{
		Name:  "Java bugs",
		Query: query.Serialize(query.Query{Languages: []string{"java"}, Types: []string{"BUG"}, Template: urlquery.Bool(false)}).Encode(),
	}
	s.Require().NoError(s.store.CreateFilter(s.ctx, filter))
	s.NotZero(filter.ID)

	got, err := s.store.GetFilter(s.ctx, filter.ID)
	s.Require().NoError(err)
	s.Equal("is_template=false&languages=java&types=BUG", got.Query)

	list, err := s.store.ListFilters(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.Require().NoError(s.store.DeleteFilter(s.ctx, filter.ID))
	s.ErrorIs(s.store.DeleteFilter(s.ctx, filter.ID), gorm.ErrRecordNotFound)

	_, err = s.store.GetFilter(s.ctx, filter.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *SQLiteStoreTestSuite) TestCreateFilterRejectsEqualQuery() {
	first := &models.Filter{Name: "Java bugs", Query: "languages=java,js&types=BUG"}
	s.Require().NoError(s.store.CreateFilter(s.ctx, first))
	s.Equal("languages=java%2Cjs&types=BUG", first.Canonical)

	var duplicate *DuplicateFilterError
	err := s.store.CreateFilter(s.ctx, &models.Filter{Name: "Same", Query: "types=BUG&languages=js&languages=java&tags="})
	s.Require().ErrorAs(err, &duplicate)
	s.Equal(first.ID, duplicate.Existing.ID)

	s.Require().NoError(s.store.CreateFilter(s.ctx, &models.Filter{Name: "JS only", Query: "languages=js"}))

	// Deleting frees the query for a new filter
	s.Require().NoError(s.store.DeleteFilter(s.ctx, first.ID))
	s.Require().NoError(s.store.CreateFilter(s.ctx, &models.Filter{Name: "Again", Query: "types=BUG&languages=java,js"}))
}

func (s *SQLiteStoreTestSuite) TestCreateFilterConcurrently() {
	const writers = 8

	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.store.CreateFilter(s.ctx, &models.Filter{
				Name:  fmt.Sprintf("writer %d", i),
				Query: "types=BUG&languages=java",
			})
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		var duplicate *DuplicateFilterError
		s.ErrorAs(err, &duplicate)
	}
	s.Equal(1, created)

	list, err := s.store.ListFilters(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *SQLiteStoreTestSuite) TestCreateFilterInvalidQuery() {
	s.Error(s.store.CreateFilter(s.ctx, &models.Filter{Name: "Broken", Query: "languages=%zz"}))
}

func TestOpenClosesStoreOnFailure(t *testing.T) {
	st, err := NewSQLiteStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "rules.db")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = st.open(ctx, true)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "failed to connect to store")

	sqlDB, err := st.DB().DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestOpenSQLiteStore(t *testing.T) {
	ctx := context.Background()

	st, err := OpenSQLiteStore(ctx, SQLiteConfig{Path: filepath.Join(t.TempDir(), "rules.db")}, true)
	require.NoError(t, err)
	defer st.Close()

	assert.NoError(t, st.Health(ctx))
	assert.True(t, st.DB().Migrator().HasTable(&models.Filter{}))
}
