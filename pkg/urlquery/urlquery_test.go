package urlquery

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAsArray(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"absent", nil, []string{}},
		{"single", []string{"java"}, []string{"java"}},
		{"comma list", []string{"java,js"}, []string{"java", "js"}},
		{"repeated keys", []string{"java", "js"}, []string{"java", "js"}},
		{"mixed", []string{"java,js", "py"}, []string{"java", "js", "py"}},
		{"empty tokens dropped", []string{",java,,js,"}, []string{"java", "js"}},
		{"only separators", []string{",,"}, []string{}},
		{"blanks kept", []string{" java, js"}, []string{" java", " js"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAsArray(tt.values, func(s string) string { return s })
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAsArrayAppliesParser(t *testing.T) {
	got := ParseAsArray([]string{"a,b"}, strings.ToUpper)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestParseAsOptionalBoolean(t *testing.T) {
	assert.Equal(t, Bool(true), ParseAsOptionalBoolean([]string{"true"}))
	assert.Equal(t, Bool(false), ParseAsOptionalBoolean([]string{"false"}))
	assert.Nil(t, ParseAsOptionalBoolean([]string{"TRUE"}))
	assert.Nil(t, ParseAsOptionalBoolean([]string{"yes"}))
	assert.Nil(t, ParseAsOptionalBoolean([]string{""}))
	assert.Nil(t, ParseAsOptionalBoolean(nil))
}

func TestParseAsOptionalString(t *testing.T) {
	assert.Equal(t, "java-sonar-way", ParseAsOptionalString([]string{"java-sonar-way"}))
	assert.Equal(t, "  ", ParseAsOptionalString([]string{"  "}))
	assert.Equal(t, "", ParseAsOptionalString([]string{""}))
	assert.Equal(t, "", ParseAsOptionalString(nil))
}

func TestParseAsDate(t *testing.T) {
	want := time.Date(2018, time.March, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, want, ParseAsDate([]string{"2018-03-14"}))
	assert.Equal(t, want, ParseAsDate([]string{"2018-03-14T22:15:00Z"}))
	assert.Equal(t, want, ParseAsDate([]string{"2018-03-15T01:00:00+02:00"}))
	assert.True(t, ParseAsDate([]string{"14/03/2018"}).IsZero())
	assert.True(t, ParseAsDate([]string{"2018-02-30"}).IsZero())
	assert.True(t, ParseAsDate(nil).IsZero())
}

func TestSerializers(t *testing.T) {
	assert.Nil(t, SerializeString(""))
	assert.Equal(t, []string{"x"}, SerializeString("x"))

	assert.Nil(t, SerializeStringArray(nil))
	assert.Nil(t, SerializeStringArray([]string{}))
	assert.Equal(t, []string{"a,b"}, SerializeStringArray([]string{"a", "b"}))

	assert.Nil(t, SerializeDateShort(time.Time{}))
	assert.Equal(t, []string{"2018-03-14"}, SerializeDateShort(time.Date(2018, 3, 14, 0, 0, 0, 0, time.UTC)))

	assert.Nil(t, SerializeOptionalBoolean(nil))
	assert.Equal(t, []string{"true"}, SerializeOptionalBoolean(Bool(true)))
	assert.Equal(t, []string{"false"}, SerializeOptionalBoolean(Bool(false)))
}

func TestClean(t *testing.T) {
	raw := url.Values{
		"tags":      {"a"},
		"languages": nil,
		"qprofile":  {""},
		"types":     {"", "BUG"},
	}

	assert.Equal(t, url.Values{"tags": {"a"}, "types": {"BUG"}}, Clean(raw))
	assert.Len(t, raw, 4, "input must not be modified")
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b url.Values
		want bool
	}{
		{"both empty", url.Values{}, nil, true},
		{"empty values ignored", url.Values{"tags": {""}}, url.Values{}, true},
		{"list order", url.Values{"tags": {"a,b"}}, url.Values{"tags": {"b,a"}}, true},
		{"repeated vs joined", url.Values{"tags": {"b", "a"}}, url.Values{"tags": {"a,b"}}, true},
		{"different value", url.Values{"tags": {"a"}}, url.Values{"tags": {"b"}}, false},
		{"extra key", url.Values{"tags": {"a"}}, url.Values{"tags": {"a"}, "types": {"BUG"}}, false},
		{"different length", url.Values{"tags": {"a"}}, url.Values{"tags": {"a,b"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
			assert.Equal(t, tt.want, Canonical(tt.a) == Canonical(tt.b))
		})
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "", Canonical(url.Values{"tags": {""}}))
	assert.Equal(t, "tags=a%2Cb&types=BUG", Canonical(url.Values{"types": {"BUG"}, "tags": {"b", "a"}}))
}
