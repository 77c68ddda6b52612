// Package present turns an ordered group into the option list a reorder UI
// offers: a "First" sentinel, one option per record, and a "Last" sentinel.
package present

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of the sentinel labels.
const (
	msgFirst = "ordering.first"
	msgLast  = "ordering.last"
)

// DefaultLanguage is used when a caller states no language preference.
var DefaultLanguage = language.English

// Sentinel option keys.
const (
	FirstKey = ""
	LastKey  = "-1"
)

var translations = map[language.Tag][2]string{
	language.English: {"« First »", "« Last »"},
	language.Russian: {"« Первый »", "« Последний »"},
	language.German:  {"« Erster »", "« Letzter »"},
}

// Labels are the localized sentinel labels.
type Labels struct {
	First string
	Last  string
}

// Localizer resolves sentinel labels. It is built once and read-only
// afterwards, so one instance can serve all requests.
type Localizer struct {
	catalog   catalog.Catalog
	supported []language.Tag
	matcher   language.Matcher
}

// NewLocalizer builds the label catalog. fallback is used for languages
// without a translation; it falls back to English when unsupported itself.
func NewLocalizer(fallback language.Tag) *Localizer {
	if _, ok := translations[fallback]; !ok {
		fallback = language.English
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	// The fallback goes first: the matcher prefers earlier tags on ties.
	supported := []language.Tag{fallback}
	for _, tag := range []language.Tag{language.English, language.Russian, language.German} {
		labels := translations[tag]
		// SetString only fails for malformed keys; ours are constants.
		_ = b.SetString(tag, msgFirst, labels[0])
		_ = b.SetString(tag, msgLast, labels[1])
		if tag != fallback {
			supported = append(supported, tag)
		}
	}

	return &Localizer{
		catalog:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}
}

// Match picks the best supported language for an Accept-Language header.
func (l *Localizer) Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.supported[0]
	}
	_, idx, _ := l.matcher.Match(tags...)
	return l.supported[idx]
}

// Labels returns the sentinel labels in the given language.
func (l *Localizer) Labels(tag language.Tag) Labels {
	p := message.NewPrinter(tag, message.Catalog(l.catalog))
	return Labels{
		First: p.Sprintf(msgFirst),
		Last:  p.Sprintf(msgLast),
	}
}
