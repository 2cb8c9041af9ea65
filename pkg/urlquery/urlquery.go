// Package urlquery contains the parse and serialize primitives used to map
// URL query parameters onto typed filter fields.
//
// Every function here is total: absent or malformed input degrades to the
// zero value instead of returning an error.
package urlquery

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

// DateShortLayout is the wire format of date-only values.
const DateShortLayout = "2006-01-02"

// ListSeparator joins multi-value parameters into a single value.
const ListSeparator = ","

// ParseAsString returns the first value, or "" when there is none.
func ParseAsString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// ParseAsOptionalString is ParseAsString where "" means the parameter is
// undefined. Values are kept verbatim so SerializeString restores them.
func ParseAsOptionalString(values []string) string {
	return ParseAsString(values)
}

// ParseAsArray splits every value on ListSeparator, so both "k=a,b" and
// "k=a&k=b" yield [a b]. Empty tokens are dropped, others are kept verbatim.
// The result is never nil.
func ParseAsArray[T any](values []string, parse func(string) T) []T {
	result := make([]T, 0, len(values))
	for _, value := range values {
		for _, token := range strings.Split(value, ListSeparator) {
			if token == "" {
				continue
			}
			result = append(result, parse(token))
		}
	}
	return result
}

// ParseAsDate accepts YYYY-MM-DD or an RFC 3339 timestamp, which is cut down
// to its UTC date. Anything else yields the zero time.
func ParseAsDate(values []string) time.Time {
	value := strings.TrimSpace(ParseAsString(values))
	if value == "" {
		return time.Time{}
	}

	if date, err := time.Parse(DateShortLayout, value); err == nil {
		return date
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		ts = ts.UTC()
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}

	return time.Time{}
}

// ParseAsOptionalBoolean recognises exactly "true" and "false".
func ParseAsOptionalBoolean(values []string) *bool {
	switch ParseAsString(values) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	default:
		return nil
	}
}

// SerializeString returns nil for "", which Clean then drops.
func SerializeString(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}

func SerializeStringArray(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return []string{strings.Join(values, ListSeparator)}
}

func SerializeDateShort(value time.Time) []string {
	if value.IsZero() {
		return nil
	}
	return []string{value.Format(DateShortLayout)}
}

func SerializeOptionalBoolean(value *bool) []string {
	if value == nil {
		return nil
	}
	if *value {
		return []string{"true"}
	}
	return []string{"false"}
}

// Clean returns a copy of raw without keys whose values are all empty.
func Clean(raw url.Values) url.Values {
	cleaned := url.Values{}
	for key, values := range raw {
		kept := make([]string, 0, len(values))
		for _, value := range values {
			if value != "" {
				kept = append(kept, value)
			}
		}
		if len(kept) > 0 {
			cleaned[key] = kept
		}
	}
	return cleaned
}

// Equal compares two raw queries after cleaning them. Values of a key are
// split into list tokens and compared without regard to order, so
// "k=a,b", "k=b,a" and "k=b&k=a" are all the same query.
func Equal(a, b url.Values) bool {
	na, nb := normalize(a), normalize(b)
	if len(na) != len(nb) {
		return false
	}

	for key, tokensA := range na {
		tokensB, ok := nb[key]
		if !ok || len(tokensA) != len(tokensB) {
			return false
		}
		for i := range tokensA {
			if tokensA[i] != tokensB[i] {
				return false
			}
		}
	}

	return true
}

// Canonical encodes raw so that two queries are Equal exactly when their
// canonical strings match: list tokens sorted and joined, keys sorted.
func Canonical(raw url.Values) string {
	values := url.Values{}
	for key, tokens := range normalize(raw) {
		values[key] = []string{strings.Join(tokens, ListSeparator)}
	}
	return values.Encode()
}

func normalize(raw url.Values) map[string][]string {
	normalized := make(map[string][]string, len(raw))
	for key, values := range Clean(raw) {
		tokens := ParseAsArray(values, func(s string) string { return s })
		if len(tokens) == 0 {
			continue
		}
		sort.Strings(tokens)
		normalized[key] = tokens
	}
	return normalized
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
