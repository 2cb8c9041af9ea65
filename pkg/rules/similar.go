package rules

import "github.com/mwantia/codingrules/pkg/query"

// SimilarFilter narrows the search to rules sharing one attribute with a rule.
type SimilarFilter struct {
	Facet query.FacetKey `json:"facet"`
	Value string         `json:"value"`
}

// SimilarRules returns the language, type, severity and tag shortcuts of rule.
func SimilarRules(rule Rule) []SimilarFilter {
	filters := []SimilarFilter{}

	if rule.Lang != "" {
		filters = append(filters, SimilarFilter{Facet: query.FacetLanguages, Value: rule.Lang})
	}
	if rule.Type != "" {
		filters = append(filters, SimilarFilter{Facet: query.FacetTypes, Value: rule.Type})
	}
	if rule.Severity != "" {
		filters = append(filters, SimilarFilter{Facet: query.FacetSeverities, Value: rule.Severity})
	}
	for _, tag := range rule.AllTags() {
		filters = append(filters, SimilarFilter{Facet: query.FacetTags, Value: tag})
	}

	return filters
}

// Apply replaces the filter's facet selection in q with the single value.
func (f SimilarFilter) Apply(q query.Query) query.Query {
	updated, _ := q.WithValues(f.Facet, []string{f.Value})
	return updated
}
