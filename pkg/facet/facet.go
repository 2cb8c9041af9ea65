// Package facet builds the display model of a rules browser facet panel:
// a header with the current selection and, when open, one item per value
// with its rule count.
package facet

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/codingrules/pkg/query"
)

// Translator resolves message keys.
type Translator interface {
	Translate(keys ...string) string
}

type Props struct {
	Property  query.FacetKey
	Open      bool
	Values    []string
	HalfWidth bool
	// Stats is nil until counts were fetched
	Stats query.Facet
	// Options replaces the stats-derived item list when set
	Options []string
	// RenderName and RenderTextName default to the identity
	RenderName     func(value string) string
	RenderTextName func(value string) string
}

type Item struct {
	Value     string `json:"value"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Disabled  bool   `json:"disabled"`
	HalfWidth bool   `json:"halfWidth,omitempty"`
	// Stat is the formatted count, empty when unknown
	Stat string `json:"stat,omitempty"`
}

type View struct {
	Property query.FacetKey `json:"property"`
	Name     string         `json:"name"`
	Values   []string       `json:"values"`
	Open     bool           `json:"open"`
	Items    []Item         `json:"items,omitempty"`
}

func identity(value string) string {
	return value
}

// Build renders props into a View.
func Build(props Props, tr Translator) View {
	renderName := props.RenderName
	if renderName == nil {
		renderName = identity
	}
	renderTextName := props.RenderTextName
	if renderTextName == nil {
		renderTextName = identity
	}

	values := make([]string, 0, len(props.Values))
	for _, v := range props.Values {
		values = append(values, renderTextName(v))
	}

	view := View{
		Property: props.Property,
		Name:     tr.Translate("coding_rules.facet", string(props.Property)),
		Values:   values,
		Open:     props.Open,
	}
	if !props.Open {
		return view
	}

	items := props.Options
	if items == nil && props.Stats != nil {
		items = Order(props.Stats, renderTextName)
	}

	for _, value := range items {
		active := contains(props.Values, value)
		count, known := props.Stats[value]

		item := Item{
			Value:     value,
			Name:      renderName(value),
			Active:    active,
			Disabled:  known && count == 0 && !active,
			HalfWidth: props.HalfWidth,
		}
		if known {
			item.Stat = FormatShortInt(count)
		}
		view.Items = append(view.Items, item)
	}

	return view
}

// Order sorts facet values by count, highest first, then by lower-cased
// display name.
func Order(stats query.Facet, textName func(string) string) []string {
	if textName == nil {
		textName = identity
	}

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := stats[keys[i]], stats[keys[j]]
		if ci != cj {
			return ci > cj
		}
		ni, nj := strings.ToLower(textName(keys[i])), strings.ToLower(textName(keys[j]))
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})

	return keys
}

// Toggle adds item to values, or removes it when already selected. The
// result is sorted and values is left untouched.
func Toggle(values []string, item string) []string {
	result := make([]string, 0, len(values)+1)
	found := false
	for _, v := range values {
		if v == item {
			found = true
			continue
		}
		result = append(result, v)
	}
	if !found {
		result = append(result, item)
	}

	sort.Strings(result)
	return result
}

// Click applies a click on item of the property facet to q.
func Click(q query.Query, property query.FacetKey, item string) (query.Query, bool) {
	return q.WithValues(property, Toggle(q.Values(property), item))
}

// Clear empties the selection of the property facet.
func Clear(q query.Query, property query.FacetKey) (query.Query, bool) {
	return q.WithValues(property, []string{})
}

// nextPrefix follows an SI prefix once rounding reaches 1000 of it.
var nextPrefix = map[string]string{"k": "M", "M": "G", "G": "T", "T": "P", "P": "E"}

// FormatShortInt formats a count the way facet items show it. Below 1000 the
// value is printed as is, below 10k it is rounded to one decimal (1.2k) and
// above that to whole units (12k, 3M).
func FormatShortInt(value int) string {
	if value > -1000 && value < 1000 {
		return strconv.Itoa(value)
	}

	scale := 10.0
	if value >= 10000 || value <= -10000 {
		scale = 1
	}

	scaled, prefix := humanize.ComputeSI(float64(value))
	scaled = math.Round(scaled*scale) / scale
	if next, ok := nextPrefix[prefix]; ok && math.Abs(scaled) >= 1000 {
		scaled, prefix = scaled/1000, next
	}

	return humanize.Ftoa(scaled) + prefix
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
