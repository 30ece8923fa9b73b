// Package themes assigns free text to keyword weighted themes.
package themes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/types"
)

const Unknown = "Unknown"

var (
	emailPattern       = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	boilerplatePattern = regexp.MustCompile(`(?i)<external\s*email>|\[external\s*email\]|sent from my (?:iphone|ipad|android)`)
)

type keyword struct {
	phrase string
	weight int
}

type theme struct {
	name     string
	keywords []keyword
}

// Classifier scores text against a fixed theme table. It is safe for
// concurrent use.
type Classifier struct {
	themes []theme
	fold   bool
}

type Option func(*Classifier)

// WithAccentFolding transliterates text to ASCII before matching, so
// "reembolsó" and typographic apostrophes match plain keywords.
func WithAccentFolding() Option {
	return func(c *Classifier) { c.fold = true }
}

// New builds a classifier. Themes are kept in alphabetical order, which is
// also the tie-break order.
func New(table []config.Theme, opts ...Option) *Classifier {
	c := &Classifier{}
	for _, o := range opts {
		o(c)
	}
	for _, t := range table {
		th := theme{name: t.Name}
		for phrase, w := range t.Keywords {
			th.keywords = append(th.keywords, keyword{phrase: c.normalize(phrase), weight: w})
		}
		sort.Slice(th.keywords, func(i, j int) bool { return th.keywords[i].phrase < th.keywords[j].phrase })
		c.themes = append(c.themes, th)
	}
	sort.SliceStable(c.themes, func(i, j int) bool { return c.themes[i].name < c.themes[j].name })
	return c
}

func (c *Classifier) normalize(s string) string {
	if c.fold {
		s = unidecode.Unidecode(s)
	}
	return strings.ToLower(s)
}

// Clean lowercases text, strips email addresses and mail boilerplate, and
// collapses whitespace.
func (c *Classifier) Clean(text string) string {
	s := c.normalize(text)
	s = emailPattern.ReplaceAllString(s, " ")
	s = boilerplatePattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Classify returns the highest scoring theme. Each keyword counts once no
// matter how often it occurs. Equal scores go to the alphabetically first
// theme; a zero score is ("Unknown", 0).
func (c *Classifier) Classify(text string) types.ThemeAssignment {
	cleaned := c.Clean(text)
	if cleaned == "" {
		return types.ThemeAssignment{Theme: Unknown}
	}
	best := types.ThemeAssignment{Theme: Unknown}
	for _, th := range c.themes {
		score := 0
		for _, kw := range th.keywords {
			if strings.Contains(cleaned, kw.phrase) {
				score += kw.weight
			}
		}
		if score > best.Score {
			best = types.ThemeAssignment{Theme: th.name, Score: score}
		}
	}
	return best
}

// Scores returns every theme's score for text, alphabetically.
func (c *Classifier) Scores(text string) []types.ThemeAssignment {
	cleaned := c.Clean(text)
	out := make([]types.ThemeAssignment, 0, len(c.themes))
	for _, th := range c.themes {
		score := 0
		if cleaned != "" {
			for _, kw := range th.keywords {
				if strings.Contains(cleaned, kw.phrase) {
					score += kw.weight
				}
			}
		}
		out = append(out, types.ThemeAssignment{Theme: th.name, Score: score})
	}
	return out
}

// AnalyzeColumn classifies every row of textColumn, using fallbackColumn
// when the primary text is null or empty. It returns nil when textColumn
// does not exist.
func (c *Classifier) AnalyzeColumn(t *dataset.Table, textColumn, fallbackColumn string) []types.ThemeAssignment {
	primary, ok := t.Column(textColumn)
	if !ok {
		return nil
	}
	fallback, _ := t.Column(fallbackColumn)

	out := make([]types.ThemeAssignment, t.NumRows())
	for i := range out {
		text := primary.String(i)
		if text == "" && fallback != nil {
			text = fallback.String(i)
		}
		out[i] = c.Classify(text)
	}
	return out
}
