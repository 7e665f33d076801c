package airalo

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys of the plan label catalog.
const (
	msgDays          = "plan.days"
	msgUnlimitedData = "plan.unlimited_data"
)

// supportedLocales lists the label locales; the first one is the fallback.
var supportedLocales = []language.Tag{language.Spanish, language.English}

var (
	labelCatalog  = newLabelCatalog()
	localeMatcher = language.NewMatcher(supportedLocales)
)

func newLabelCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))

	mustSet(b.Set(language.Spanish, msgDays,
		plural.Selectf(1, "%d", "=1", "%[1]d día", plural.Other, "%[1]d días")))
	mustSet(b.SetString(language.Spanish, msgUnlimitedData, "Datos ilimitados"))

	mustSet(b.Set(language.English, msgDays,
		plural.Selectf(1, "%d", "=1", "%[1]d day", plural.Other, "%[1]d days")))
	mustSet(b.SetString(language.English, msgUnlimitedData, "Unlimited data"))

	return b
}

func mustSet(err error) {
	if err != nil {
		panic(err)
	}
}

// Labels renders the human readable parts of plan titles for one locale.
type Labels struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLabels returns labels for locale. Unknown or malformed locales fall back
// to Spanish.
func NewLabels(locale string) *Labels {
	tag := supportedLocales[0]
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, _ := localeMatcher.Match(parsed)
		tag = supportedLocales[idx]
	}
	return &Labels{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(labelCatalog)),
	}
}

// Locale returns the resolved locale.
func (l *Labels) Locale() string { return l.tag.String() }

// Days renders a day count with its noun, e.g. "1 día" or "7 días".
func (l *Labels) Days(days int) string {
	return l.printer.Sprintf(msgDays, days)
}

// UnlimitedData returns the phrase used in place of a data amount for
// unlimited plans.
func (l *Labels) UnlimitedData() string {
	return l.printer.Sprintf(msgUnlimitedData)
}
