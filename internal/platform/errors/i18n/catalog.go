// Package i18n renders localized error messages for command output.
package i18n

import (
	"maps"
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/empiregen/internal/platform/i18n/catalog"
)

// namespace is the locale file section holding error messages.
const namespace = "errors"

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// Catalog holds the parsed error messages of one locale.
type Catalog struct {
	locale    string
	raw       map[Code]string
	templates map[Code]*template.Template
}

var (
	catalogsMu sync.RWMutex
	// catalogs caches built catalogs, and registered overrides, by locale.
	catalogs = map[string]*Catalog{}
)

// GetCatalog returns the error catalog for locale. POSIX values such as
// "pt_BR.UTF-8" are accepted. Codes a locale does not translate keep the
// en-US text, and unknown locales get en-US.
func GetCatalog(locale string) *Catalog {
	requested := normalizeLocale(locale)
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	bundle := i18ncatalog.Default()
	resolved, messages := bundle.NamespaceMessagesWithFallback(requested, namespace)
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}

	merged := bundle.NamespaceMessages(i18ncatalog.BaseLocale, namespace)
	maps.Copy(merged, messages)
	return storeCatalogIfAbsent(resolved, NewCatalog(resolved, merged))
}

// normalizeLocale turns a LANG-style value into a BCP 47 tag.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || strings.EqualFold(locale, "C") || strings.EqualFold(locale, "POSIX") {
		return i18ncatalog.BaseLocale
	}
	return locale
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Missing metadata
// renders empty. An unknown code is returned as is, and a message that is
// not a valid template is returned unrendered.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	t, ok := c.templates[code]
	if !ok {
		if raw, ok := c.raw[code]; ok {
			return raw
		}
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := t.Execute(&b, metadata); err != nil {
		return c.raw[code]
	}
	return b.String()
}

// RegisterCatalog installs cat for locale, replacing any cached catalog.
// Intended for tests.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog parses messages into a catalog for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		raw:       maps.Clone(messages),
		templates: make(map[Code]*template.Template, len(messages)),
	}
	if c.raw == nil {
		c.raw = map[Code]string{}
	}
	for code, text := range messages {
		t, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err != nil {
			continue
		}
		c.templates[code] = t
	}
	return c
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
