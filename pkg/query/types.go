package query

import "time"

// Inheritance describes how a rule activation relates to the parent profile.
// The zero value means no inheritance filter.
type Inheritance string

const (
	NotInherited Inheritance = "NONE"
	Inherited    Inheritance = "INHERITED"
	Overridden   Inheritance = "OVERRIDES"
)

// Query is the typed filter selection of the rules browser. Optional fields
// use their zero value (nil, "", zero time) for "undefined"; list fields use
// an empty slice.
type Query struct {
	Activation           *bool       `json:"activation,omitempty"`
	ActivationSeverities []string    `json:"activationSeverities"`
	AvailableSince       time.Time   `json:"availableSince,omitzero"`
	CompareToProfile     string      `json:"compareToProfile,omitempty"`
	Inheritance          Inheritance `json:"inheritance,omitempty"`
	Languages            []string    `json:"languages"`
	Profile              string      `json:"profile,omitempty"`
	Repositories         []string    `json:"repositories"`
	Severities           []string    `json:"severities"`
	Statuses             []string    `json:"statuses"`
	Tags                 []string    `json:"tags"`
	Template             *bool       `json:"template,omitempty"`
	Types                []string    `json:"types"`
}

// FacetKey names one Query field.
type FacetKey string

const (
	FacetActivation           FacetKey = "activation"
	FacetActivationSeverities FacetKey = "activationSeverities"
	FacetAvailableSince       FacetKey = "availableSince"
	FacetCompareToProfile     FacetKey = "compareToProfile"
	FacetInheritance          FacetKey = "inheritance"
	FacetLanguages            FacetKey = "languages"
	FacetProfile              FacetKey = "profile"
	FacetRepositories         FacetKey = "repositories"
	FacetSeverities           FacetKey = "severities"
	FacetStatuses             FacetKey = "statuses"
	FacetTags                 FacetKey = "tags"
	FacetTemplate             FacetKey = "template"
	FacetTypes                FacetKey = "types"
)

// FacetKeys lists every FacetKey in field order.
func FacetKeys() []FacetKey {
	return []FacetKey{
		FacetActivation,
		FacetActivationSeverities,
		FacetAvailableSince,
		FacetCompareToProfile,
		FacetInheritance,
		FacetLanguages,
		FacetProfile,
		FacetRepositories,
		FacetSeverities,
		FacetStatuses,
		FacetTags,
		FacetTemplate,
		FacetTypes,
	}
}

// Facet maps a facet value to the number of matching rules.
type Facet map[string]int

type Facets map[FacetKey]Facet

// OpenFacets tracks which facet panels are expanded.
type OpenFacets map[FacetKey]bool

// Activation of one rule in one quality profile.
type Activation struct {
	Inherit  string `json:"inherit"`
	Severity string `json:"severity"`
}

// Actives is keyed by rule key, then profile key.
type Actives map[string]map[string]Activation
