// Package catalog reads rule catalogs from YAML and imports them into a
// RuleStore. A catalog lists quality profiles, rules and the activations of
// rules in profiles:
//
//	profiles:
//	  - key: java-sonar-way
//	    name: Sonar way
//	    language: java
//	    built_in: true
//	rules:
//	  - key: squid:S2259
//	    repository: squid
//	    name: Null pointers should not be dereferenced
//	    language: java
//	    severity: MAJOR
//	    type: BUG
//	    system_tags: [cwe]
//	    created_at: 2018-02-01
//	activations:
//	  - profile: java-sonar-way
//	    rule: squid:S2259
//	    severity: MAJOR
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mwantia/codingrules/pkg/query"
	"github.com/mwantia/codingrules/pkg/urlquery"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Profiles    []Profile    `yaml:"profiles"`
	Rules       []Rule       `yaml:"rules"`
	Activations []Activation `yaml:"activations"`
}

type Profile struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Language string `yaml:"language"`
	Parent   string `yaml:"parent,omitempty"`
	BuiltIn  bool   `yaml:"built_in,omitempty"`
}

type Rule struct {
	Key          string   `yaml:"key"`
	Repository   string   `yaml:"repository"`
	Name         string   `yaml:"name"`
	Language     string   `yaml:"language"`
	LanguageName string   `yaml:"language_name,omitempty"`
	Severity     string   `yaml:"severity"`
	Status       string   `yaml:"status,omitempty"`
	Type         string   `yaml:"type"`
	Template     bool     `yaml:"template,omitempty"`
	TemplateKey  string   `yaml:"template_key,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	SystemTags   []string `yaml:"system_tags,omitempty"`
	// CreatedAt is a YYYY-MM-DD date or an RFC 3339 timestamp
	CreatedAt string `yaml:"created_at,omitempty"`
}

type Activation struct {
	Profile  string `yaml:"profile"`
	Rule     string `yaml:"rule"`
	Severity string `yaml:"severity,omitempty"`
	Inherit  string `yaml:"inherit,omitempty"`
}

// Load decodes and validates a catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	cat := &Catalog{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return cat, nil
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks that keys are present and unique and that every
// activation and parent references an entry of the catalog.
func (c *Catalog) Validate() error {
	profiles := make(map[string]bool, len(c.Profiles))
	for i, p := range c.Profiles {
		if p.Key == "" || p.Name == "" || p.Language == "" {
			return fmt.Errorf("profiles[%d]: key, name and language are required", i)
		}
		if profiles[p.Key] {
			return fmt.Errorf("profiles[%d]: duplicate key '%s'", i, p.Key)
		}
		profiles[p.Key] = true
	}
	for _, p := range c.Profiles {
		if p.Parent != "" && !profiles[p.Parent] {
			return fmt.Errorf("profile '%s': unknown parent '%s'", p.Key, p.Parent)
		}
	}

	rules := make(map[string]bool, len(c.Rules))
	for i, r := range c.Rules {
		if r.Key == "" || r.Repository == "" || r.Name == "" || r.Language == "" {
			return fmt.Errorf("rules[%d]: key, repository, name and language are required", i)
		}
		if r.Severity == "" || r.Type == "" {
			return fmt.Errorf("rule '%s': severity and type are required", r.Key)
		}
		if rules[r.Key] {
			return fmt.Errorf("rules[%d]: duplicate key '%s'", i, r.Key)
		}
		if r.CreatedAt != "" && r.createdAt().IsZero() {
			return fmt.Errorf("rule '%s': malformed created_at '%s'", r.Key, r.CreatedAt)
		}
		rules[r.Key] = true
	}

	for i, a := range c.Activations {
		if !profiles[a.Profile] {
			return fmt.Errorf("activations[%d]: unknown profile '%s'", i, a.Profile)
		}
		if !rules[a.Rule] {
			return fmt.Errorf("activations[%d]: unknown rule '%s'", i, a.Rule)
		}
		if a.Inherit != "" && query.ParseInheritance(a.Inherit) == "" {
			return fmt.Errorf("activations[%d]: unknown inheritance '%s'", i, a.Inherit)
		}
	}

	return nil
}

func (r Rule) createdAt() time.Time {
	return urlquery.ParseAsDate([]string{r.CreatedAt})
}
