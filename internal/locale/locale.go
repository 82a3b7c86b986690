// Package locale translates user-facing messages.
package locale

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed catalog/*.toml
var catalog embed.FS

// Translations holds the message bundle and the fallback language.
type Translations struct {
	bundle   *i18n.Bundle
	fallback string
}

// New loads the embedded catalogs. fallback is used when a request names no
// supported language.
func New(fallback string) (*Translations, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := catalog.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read catalogs: %w", err)
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(catalog, "catalog/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", entry.Name(), err)
		}
	}

	supported := false
	for _, tag := range bundle.LanguageTags() {
		if tag.String() == fallback {
			supported = true
			break
		}
	}
	if !supported {
		return nil, fmt.Errorf("language %q not supported", fallback)
	}

	return &Translations{bundle: bundle, fallback: fallback}, nil
}

// Localizer returns a message lookup for the given Accept-Language values.
func (t *Translations) Localizer(langs ...string) *Localizer {
	langs = append(langs, t.fallback)
	return &Localizer{l: i18n.NewLocalizer(t.bundle, langs...)}
}

// Localizer resolves message ids for one request.
type Localizer struct {
	l *i18n.Localizer
}

// T returns the message for id. Missing ids render as the id itself.
func (l *Localizer) T(id string) string {
	return l.Format(id, nil)
}

// Format returns the message for id rendered with data.
func (l *Localizer) Format(id string, data map[string]any) string {
	msg, err := l.l.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return msg
}

// Plural returns the plural form of id for count.
func (l *Localizer) Plural(id string, count int) string {
	msg, err := l.l.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
	if err != nil {
		return id
	}
	return msg
}

// Lang reports the language the localizer resolved to.
func (l *Localizer) Lang() string {
	_, tag, err := l.l.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: "app_title"})
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}
