// Package query converts between the rules browser's typed Query and the flat
// URL parameters it travels in.
//
// Raw keys do not always match field names:
//
//	activation        -> Activation
//	active_severities -> ActivationSeverities
//	available_since   -> AvailableSince
//	compareToProfile  -> CompareToProfile
//	inheritance       -> Inheritance
//	is_template       -> Template
//	languages         -> Languages
//	qprofile          -> Profile
//	repositories      -> Repositories
//	severities        -> Severities
//	statuses          -> Statuses
//	tags              -> Tags
//	types             -> Types
//
// All conversions are total. Unknown or malformed values are treated as absent.
package query

import (
	"net/url"

	"github.com/mwantia/codingrules/pkg/urlquery"
)

// Raw parameter names.
const (
	KeyActivation           = "activation"
	KeyActivationSeverities = "active_severities"
	KeyAvailableSince       = "available_since"
	KeyCompareToProfile     = "compareToProfile"
	KeyInheritance          = "inheritance"
	KeyTemplate             = "is_template"
	KeyLanguages            = "languages"
	KeyProfile              = "qprofile"
	KeyRepositories         = "repositories"
	KeySeverities           = "severities"
	KeyStatuses             = "statuses"
	KeyTags                 = "tags"
	KeyTypes                = "types"
)

func parseAsString(s string) string {
	return s
}

// Parse builds a Query from raw URL parameters.
func Parse(raw url.Values) Query {
	return Query{
		Activation:           urlquery.ParseAsOptionalBoolean(raw[KeyActivation]),
		ActivationSeverities: urlquery.ParseAsArray(raw[KeyActivationSeverities], parseAsString),
		AvailableSince:       urlquery.ParseAsDate(raw[KeyAvailableSince]),
		CompareToProfile:     urlquery.ParseAsOptionalString(raw[KeyCompareToProfile]),
		Inheritance:          ParseInheritance(urlquery.ParseAsString(raw[KeyInheritance])),
		Languages:            urlquery.ParseAsArray(raw[KeyLanguages], parseAsString),
		Profile:              urlquery.ParseAsOptionalString(raw[KeyProfile]),
		Repositories:         urlquery.ParseAsArray(raw[KeyRepositories], parseAsString),
		Severities:           urlquery.ParseAsArray(raw[KeySeverities], parseAsString),
		Statuses:             urlquery.ParseAsArray(raw[KeyStatuses], parseAsString),
		Tags:                 urlquery.ParseAsArray(raw[KeyTags], parseAsString),
		Template:             urlquery.ParseAsOptionalBoolean(raw[KeyTemplate]),
		Types:                urlquery.ParseAsArray(raw[KeyTypes], parseAsString),
	}
}

// Serialize is the inverse of Parse. Undefined fields and empty lists are
// left out entirely rather than sent as "key=".
func Serialize(q Query) url.Values {
	return urlquery.Clean(url.Values{
		KeyActivation:           urlquery.SerializeOptionalBoolean(q.Activation),
		KeyActivationSeverities: urlquery.SerializeStringArray(q.ActivationSeverities),
		KeyAvailableSince:       urlquery.SerializeDateShort(q.AvailableSince),
		KeyCompareToProfile:     urlquery.SerializeString(q.CompareToProfile),
		KeyInheritance:          serializeInheritance(q.Inheritance),
		KeyTemplate:             urlquery.SerializeOptionalBoolean(q.Template),
		KeyLanguages:            urlquery.SerializeStringArray(q.Languages),
		KeyProfile:              urlquery.SerializeString(q.Profile),
		KeyRepositories:         urlquery.SerializeStringArray(q.Repositories),
		KeySeverities:           urlquery.SerializeStringArray(q.Severities),
		KeyStatuses:             urlquery.SerializeStringArray(q.Statuses),
		KeyTags:                 urlquery.SerializeStringArray(q.Tags),
		KeyTypes:                urlquery.SerializeStringArray(q.Types),
	})
}

// Equal reports whether two raw queries select the same rules, so callers can
// skip navigation that would not change anything.
func Equal(a, b url.Values) bool {
	return urlquery.Equal(a, b)
}

// Canonical is the stable key of the rules a raw query selects. Unknown keys
// and empty values do not contribute, and list order does not matter.
func Canonical(raw url.Values) string {
	return urlquery.Canonical(Serialize(Parse(raw)))
}

// ParseInheritance matches the wire tokens exactly; "none" is not NONE.
func ParseInheritance(value string) Inheritance {
	switch Inheritance(value) {
	case Inherited:
		return Inherited
	case NotInherited:
		return NotInherited
	case Overridden:
		return Overridden
	default:
		return ""
	}
}

func serializeInheritance(value Inheritance) []string {
	return urlquery.SerializeString(string(value))
}

// ShouldRequestFacet reports whether the facet's values come from a server
// aggregation rather than a fixed option list.
func ShouldRequestFacet(facet FacetKey) bool {
	switch facet {
	case FacetActivationSeverities,
		FacetLanguages,
		FacetRepositories,
		FacetStatuses,
		FacetTags,
		FacetTypes:
		return true
	default:
		return false
	}
}

// ServerFacet returns the name the server uses for facet.
func ServerFacet(facet FacetKey) string {
	if facet == FacetActivationSeverities {
		return KeyActivationSeverities
	}
	return string(facet)
}

// AppFacet is the inverse of ServerFacet.
func AppFacet(serverFacet string) FacetKey {
	if serverFacet == KeyActivationSeverities {
		return FacetActivationSeverities
	}
	return FacetKey(serverFacet)
}

// Values returns the selection of a multi-select facet, or nil for any
// other key.
func (q Query) Values(facet FacetKey) []string {
	switch facet {
	case FacetActivationSeverities:
		return q.ActivationSeverities
	case FacetLanguages:
		return q.Languages
	case FacetRepositories:
		return q.Repositories
	case FacetSeverities:
		return q.Severities
	case FacetStatuses:
		return q.Statuses
	case FacetTags:
		return q.Tags
	case FacetTypes:
		return q.Types
	default:
		return nil
	}
}

// WithValues returns a copy of q with the selection of a multi-select facet
// replaced. The boolean is false, and q is returned unchanged, when facet is
// not a multi-select facet.
func (q Query) WithValues(facet FacetKey, values []string) (Query, bool) {
	if values == nil {
		values = []string{}
	}

	switch facet {
	case FacetActivationSeverities:
		q.ActivationSeverities = values
	case FacetLanguages:
		q.Languages = values
	case FacetRepositories:
		q.Repositories = values
	case FacetSeverities:
		q.Severities = values
	case FacetStatuses:
		q.Statuses = values
	case FacetTags:
		q.Tags = values
	case FacetTypes:
		q.Types = values
	default:
		return q, false
	}

	return q, true
}

// IsEmpty reports whether q selects nothing.
func (q Query) IsEmpty() bool {
	return len(Serialize(q)) == 0
}
