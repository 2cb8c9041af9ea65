package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/facet"
	"github.com/mwantia/codingrules/pkg/query"
	"github.com/mwantia/codingrules/pkg/rules"
	"github.com/mwantia/codingrules/pkg/urlquery"
	"gorm.io/gorm"
)

// Request parameters of /api/rules/search besides the query keys.
const (
	ParamText     = "q"
	ParamPage     = "p"
	ParamPageSize = "ps"
	ParamSort     = "s"
	ParamAsc      = "asc"
	ParamFacets   = "f"
	ParamActives  = "actives"
	ParamSelected = "selected"
)

type SearchResponse struct {
	// Query is the parsed selection and Raw its canonical encoding
	Query    query.Query      `json:"query"`
	Raw      string           `json:"raw"`
	Total    int64            `json:"total"`
	Page     int              `json:"p"`
	PageSize int              `json:"ps"`
	Rules    []rules.Rule     `json:"rules"`
	Items    []rules.ListItem `json:"items"`
	Facets   []facet.View     `json:"facets,omitempty"`
	Actives  query.Actives    `json:"actives,omitempty"`
}

type searchParams struct {
	search   store.Search
	facets   []query.FacetKey
	actives  bool
	selected string
}

func (s *Server) parseSearchParams(c *gin.Context) (searchParams, error) {
	raw := c.Request.URL.Query()

	params := searchParams{
		search: store.Search{
			Query:    query.Parse(raw),
			Text:     strings.TrimSpace(urlquery.ParseAsString(raw[ParamText])),
			Page:     1,
			PageSize: s.opts.DefaultPageSize,
			Sort:     store.SortByName,
			Asc:      true,
		},
		selected: urlquery.ParseAsOptionalString(raw[ParamSelected]),
	}

	if value := urlquery.ParseAsString(raw[ParamPage]); value != "" {
		page, err := strconv.Atoi(value)
		if err != nil || page < 1 {
			return params, fmt.Errorf("'%s' must be a positive integer", ParamPage)
		}
		params.search.Page = page
	}

	if value := urlquery.ParseAsString(raw[ParamPageSize]); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil || size < 1 {
			return params, fmt.Errorf("'%s' must be a positive integer", ParamPageSize)
		}
		params.search.PageSize = min(size, s.opts.MaxPageSize)
	}

	if value := urlquery.ParseAsString(raw[ParamSort]); value != "" {
		switch value {
		case store.SortByName, store.SortByKey, store.SortByCreatedAt:
			params.search.Sort = value
		default:
			return params, fmt.Errorf("unsupported sort field '%s'", value)
		}
	}

	if asc := urlquery.ParseAsOptionalBoolean(raw[ParamAsc]); asc != nil {
		params.search.Asc = *asc
	}
	if actives := urlquery.ParseAsOptionalBoolean(raw[ParamActives]); actives != nil {
		params.actives = *actives
	}

	for _, name := range urlquery.ParseAsArray(raw[ParamFacets], strings.TrimSpace) {
		key := query.AppFacet(name)
		if !query.ShouldRequestFacet(key) {
			return params, fmt.Errorf("unsupported facet '%s'", name)
		}
		params.facets = append(params.facets, key)
	}

	return params, nil
}

func (s *Server) searchRules(c *gin.Context) {
	params, err := s.parseSearchParams(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	q := params.search.Query

	profile, err := s.loadProfile(ctx, q.Profile)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		badRequest(c, fmt.Sprintf("unknown quality profile '%s'", q.Profile))
		return
	}
	if err != nil {
		s.fail(c, err, "")
		return
	}

	start := time.Now()

	result, err := s.store.SearchRules(ctx, params.search)
	if err != nil {
		s.fail(c, err, "")
		return
	}

	var counts query.Facets
	if len(params.facets) > 0 {
		counts, err = s.store.FacetCounts(ctx, params.search, params.facets)
		if err != nil {
			s.fail(c, err, "")
			return
		}
	}

	s.metrics.RecordSearch(time.Since(start), result.Total)

	found := make([]rules.Rule, 0, len(result.Rules))
	ruleKeys := make([]string, 0, len(result.Rules))
	for _, m := range result.Rules {
		found = append(found, rules.FromModel(m))
		ruleKeys = append(ruleKeys, m.Key)
	}

	actives, err := s.loadActives(ctx, ruleKeys, q.Profile, q.CompareToProfile)
	if err != nil {
		s.fail(c, err, "")
		return
	}

	items := make([]rules.ListItem, 0, len(found))
	for _, rule := range found {
		in := rules.ListItemInput{
			Rule:     rule,
			Selected: rule.Key == params.selected,
			Profile:  profile,
		}
		if activation, ok := actives[rule.Key][q.Profile]; ok && profile != nil {
			in.Activation = &activation
		}
		items = append(items, rules.BuildListItem(in, s.l10n))
	}

	resp := SearchResponse{
		Query:    q,
		Raw:      query.Serialize(q).Encode(),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Rules:    found,
		Items:    items,
	}
	for _, key := range params.facets {
		resp.Facets = append(resp.Facets, s.facetView(q, key, counts[key]))
	}
	if params.actives {
		resp.Actives = actives
	}

	c.JSON(http.StatusOK, NewSuccessResponse(resp))
}

// loadProfile resolves key and its parent name. It returns nil for an empty key.
func (s *Server) loadProfile(ctx context.Context, key string) (*rules.Profile, error) {
	if key == "" {
		return nil, nil
	}

	m, err := s.store.GetProfile(ctx, key)
	if err != nil {
		return nil, err
	}

	var parent *models.QualityProfile
	if m.ParentKey != "" {
		parent, err = s.store.GetProfile(ctx, m.ParentKey)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	profile := rules.ProfileFromModel(*m, parent)
	return &profile, nil
}

// loadActives collects the activations of ruleKeys in the given profiles,
// skipping empty profile keys.
func (s *Server) loadActives(ctx context.Context, ruleKeys []string, profileKeys ...string) (query.Actives, error) {
	keys := make([]string, 0, len(profileKeys))
	for _, key := range profileKeys {
		if key != "" {
			keys = append(keys, key)
		}
	}

	found, err := s.store.ListActivations(ctx, keys, ruleKeys)
	if err != nil {
		return nil, err
	}

	actives := query.Actives{}
	for _, a := range found {
		if actives[a.RuleKey] == nil {
			actives[a.RuleKey] = map[string]query.Activation{}
		}
		actives[a.RuleKey][a.ProfileKey] = query.Activation{Inherit: a.Inherit, Severity: a.Severity}
	}
	return actives, nil
}

func (s *Server) facetView(q query.Query, key query.FacetKey, stats query.Facet) facet.View {
	if stats == nil {
		stats = query.Facet{}
	}
	// Selected values stay visible even when nothing matches them
	for _, value := range q.Values(key) {
		if _, ok := stats[value]; !ok {
			stats[value] = 0
		}
	}

	return facet.Build(facet.Props{
		Property:   key,
		Open:       true,
		Values:     q.Values(key),
		Stats:      stats,
		RenderName: s.valueName(key),
	}, s.l10n)
}

// valueName translates enumerated facet values.
func (s *Server) valueName(key query.FacetKey) func(string) string {
	var prefix string
	switch key {
	case query.FacetTypes:
		prefix = "issue.type"
	case query.FacetStatuses:
		prefix = "rules.status"
	case query.FacetActivationSeverities, query.FacetSeverities:
		prefix = "severity"
	default:
		return nil
	}

	return func(value string) string {
		return s.l10n.Translate(prefix, value)
	}
}
