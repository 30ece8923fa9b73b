package actionable

import (
	"strings"

	"github.com/oklog/ulid/v2"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/columns"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
)

const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelInfo     = "info"
	LevelSuccess  = "success"
)

// ActionCard is one finding with the action it calls for.
type ActionCard struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Level   string `json:"level"`
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

func newCard(section, level, insight, action, impact string) ActionCard {
	return ActionCard{
		ID:      ulid.Make().String(),
		Section: section,
		Level:   level,
		Insight: insight,
		Action:  action,
		Impact:  impact,
	}
}

// Generator turns aggregates into report sections and cards.
type Generator struct {
	cfg config.Analytics
}

func New(cfg config.Analytics) *Generator {
	return &Generator{cfg: cfg}
}

// issueColumn is the physical subcategory column, else category.
func issueColumn(e *aggregator.Engine) (string, bool) {
	return e.Columns().Issue()
}

func countryColumn(e *aggregator.Engine) (string, bool) {
	name, ok := e.Columns().Get(columns.Country)
	if !ok {
		return "", false
	}
	_, ok = e.Table().Column(name)
	return name, ok
}

// equals keeps rows whose column key is value.
func equals(c *dataset.Column, value string) func(int) bool {
	return func(row int) bool {
		k, ok := c.Key(row)
		return ok && k == value
	}
}

func containsAny(s string, words ...string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
