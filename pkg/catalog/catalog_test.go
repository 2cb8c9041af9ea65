package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })

	return s
}

func TestLoadFile(t *testing.T) {
	cat, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Len(t, cat.Profiles, 3)
	assert.Len(t, cat.Rules, 5)
	assert.Len(t, cat.Activations, 4)

	assert.Equal(t, "java-sonar-way", cat.Profiles[1].Parent)
	assert.Equal(t, []string{"cwe", "sql"}, cat.Rules[2].SystemTags)
	assert.Equal(t, time.Date(2018, 3, 5, 0, 0, 0, 0, time.UTC), cat.Rules[2].createdAt())
}

func TestLoadEmpty(t *testing.T) {
	cat, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cat.Rules)
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown field",
			doc:     "rules:\n  - key: a\n    owner: me\n",
			wantErr: "failed to decode catalog",
		},
		{
			name:    "missing rule fields",
			doc:     "rules:\n  - key: a\n",
			wantErr: "key, repository, name and language are required",
		},
		{
			name:    "duplicate rule",
			doc:     "rules:\n  - {key: a, repository: r, name: n, language: java, severity: MAJOR, type: BUG}\n  - {key: a, repository: r, name: n, language: java, severity: MAJOR, type: BUG}\n",
			wantErr: "duplicate key 'a'",
		},
		{
			name:    "malformed date",
			doc:     "rules:\n  - {key: a, repository: r, name: n, language: java, severity: MAJOR, type: BUG, created_at: yesterday}\n",
			wantErr: "malformed created_at",
		},
		{
			name:    "unknown parent",
			doc:     "profiles:\n  - {key: p, name: P, language: java, parent: q}\n",
			wantErr: "unknown parent 'q'",
		},
		{
			name:    "activation of unknown rule",
			doc:     "profiles:\n  - {key: p, name: P, language: java}\nactivations:\n  - {profile: p, rule: x}\n",
			wantErr: "unknown rule 'x'",
		},
		{
			name:    "lowercase inheritance",
			doc:     "profiles:\n  - {key: p, name: P, language: java}\nrules:\n  - {key: a, repository: r, name: n, language: java, severity: MAJOR, type: BUG}\nactivations:\n  - {profile: p, rule: a, inherit: inherited}\n",
			wantErr: "unknown inheritance 'inherited'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cat, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	stats, err := Import(ctx, s, cat)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Profiles: 3, Rules: 5, Activations: 4}, stats)

	xpath, err := s.GetRule(ctx, "javascript:XPath")
	require.NoError(t, err)
	assert.Equal(t, "js", xpath.LanguageName)
	assert.Equal(t, "READY", xpath.Status)
	assert.True(t, xpath.IsTemplate)

	actives, err := s.ListActivations(ctx, []string{"java-sonar-way", "java-team"}, []string{"squid:S2259", "squid:S2077"})
	require.NoError(t, err)
	require.Len(t, actives, 3)
	for _, active := range actives {
		switch {
		case active.ProfileKey == "java-sonar-way":
			assert.Equal(t, "MAJOR", active.Severity)
			assert.Equal(t, "NONE", active.Inherit)
		case active.RuleKey == "squid:S2077":
			assert.Equal(t, "BLOCKER", active.Severity)
			assert.Equal(t, "OVERRIDES", active.Inherit)
		default:
			assert.Equal(t, "INHERITED", active.Inherit)
		}
	}

	since, err := s.SearchRules(ctx, store.Search{
		Query: query.Parse(map[string][]string{"available_since": {"2018-03-05"}}),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), since.Total)
	assert.Equal(t, "squid:S2077", since.Rules[0].Key)
}

func TestImportTwiceSkipsExisting(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cat, err := LoadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	_, err = Import(ctx, s, cat)
	require.NoError(t, err)

	stats, err := Import(ctx, s, cat)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Activations: 4, Skipped: 8}, stats)

	count, err := s.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
