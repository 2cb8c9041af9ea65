// Package l10n resolves UI message keys to localized text.
package l10n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Bundle holds the messages of one language.
type Bundle struct {
	tag     language.Tag
	known   map[string]bool
	printer *message.Printer
}

// NewBundle builds a bundle from key -> format pairs. Formats use fmt verbs
// for parameters.
func NewBundle(tag language.Tag, messages map[string]string) (*Bundle, error) {
	builder := catalog.NewBuilder(catalog.Fallback(tag))
	known := make(map[string]bool, len(messages))

	for key, msg := range messages {
		if err := builder.SetString(tag, key, msg); err != nil {
			return nil, fmt.Errorf("failed to register message '%s': %w", key, err)
		}
		known[key] = true
	}

	return &Bundle{
		tag:     tag,
		known:   known,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
	}, nil
}

// Translate joins keys with "." and returns the message, or the joined key
// when no message exists.
func (b *Bundle) Translate(keys ...string) string {
	key := strings.Join(keys, ".")
	if !b.known[key] {
		return key
	}
	return b.printer.Sprintf(key)
}

// TranslateWithParameters formats the message for key with params. Unknown
// keys yield the key followed by the parameters.
func (b *Bundle) TranslateWithParameters(key string, params ...any) string {
	if !b.known[key] {
		parts := []string{key}
		for _, p := range params {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ".")
	}
	return b.printer.Sprintf(key, params...)
}

// Has reports whether key has a message.
func (b *Bundle) Has(key string) bool {
	return b.known[key]
}

// Language returns the bundle's language tag.
func (b *Bundle) Language() language.Tag {
	return b.tag
}
