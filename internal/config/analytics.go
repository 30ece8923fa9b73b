package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PositionalColumn binds a logical name to a fixed column index.
type PositionalColumn struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
}

// PatternColumn binds a logical name to the first column whose lowercased
// header contains one of Patterns.
type PatternColumn struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type ColumnLayout struct {
	Positional []PositionalColumn `yaml:"positional"`
	Patterns   []PatternColumn    `yaml:"patterns"`
}

// SeverityThresholds are percentages of total volume.
type SeverityThresholds struct {
	Critical float64 `yaml:"critical"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
}

// TrendThresholds are week-over-week percentages.
type TrendThresholds struct {
	Spike float64 `yaml:"spike"`
	Up    float64 `yaml:"up"`
	Down  float64 `yaml:"down"`
}

// StrengthThresholds are shares (0..1) of a group's rows.
type StrengthThresholds struct {
	Dominant float64 `yaml:"dominant"`
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
}

type Limits struct {
	CrossTab       int `yaml:"crosstab"`
	TopN           int `yaml:"top_n"`
	RegionalGroups int `yaml:"regional_groups"`
	IssueTable     int `yaml:"issue_table"`
}

type Theme struct {
	Name           string         `yaml:"name"`
	Title          string         `yaml:"title"`
	Description    string         `yaml:"description"`
	Recommendation string         `yaml:"recommendation"`
	Keywords       map[string]int `yaml:"keywords"`
}

// Analytics is the static configuration shared by every analysis component.
// It is built once at startup and passed by value into constructors.
type Analytics struct {
	Columns        ColumnLayout       `yaml:"columns"`
	Severity       SeverityThresholds `yaml:"severity"`
	Trend          TrendThresholds    `yaml:"trend"`
	Strength       StrengthThresholds `yaml:"strength"`
	Limits         Limits             `yaml:"limits"`
	PartnerKeyword string             `yaml:"partner_keyword"`
	CostPerCase    float64            `yaml:"cost_per_case"`
	Themes         []Theme            `yaml:"themes"`
}

func Default() Analytics {
	return Analytics{
		Columns: ColumnLayout{
			Positional: []PositionalColumn{
				{Name: "queue", Index: 0},
				{Name: "date", Index: 9},
				{Name: "description", Index: 12},
				{Name: "partner", Index: 18},
				{Name: "country", Index: 20},
				{Name: "description_translated", Index: 21},
			},
			Patterns: []PatternColumn{
				{Name: "category", Patterns: []string{"category", "cat"}},
				{Name: "subcategory", Patterns: []string{"sub-category", "subcategory", "issue", "reason"}},
			},
		},
		Severity:       SeverityThresholds{Critical: 15, High: 8, Medium: 4},
		Trend:          TrendThresholds{Spike: 15, Up: 5, Down: -10},
		Strength:       StrengthThresholds{Dominant: 0.30, High: 0.20, Moderate: 0.10},
		Limits:         Limits{CrossTab: 50, TopN: 10, RegionalGroups: 5, IssueTable: 15},
		PartnerKeyword: "sky",
		CostPerCase:    10,
		Themes:         DefaultThemes(),
	}
}

func DefaultThemes() []Theme {
	return []Theme{
		{
			Name:           "Cancellation",
			Title:          "Cancellation / unsubscribe difficulties",
			Description:    "Customers attempting to cancel subscriptions or free trials, difficulty finding or completing the cancellation process and requests for support to cancel on their behalf.",
			Recommendation: "Redesign cancellation UX with retention offers",
			Keywords: map[string]int{
				"cancel": 1, "unsubscribe": 1, "terminate": 1,
				"how to cancel": 2, "cannot cancel": 2, "unable to cancel": 2,
				"stop subscription": 2, "end subscription": 2, "free trial": 1,
			},
		},
		{
			Name:           "Billing",
			Title:          "Billing issues & refunds",
			Description:    "Unexpected charges, charges after cancellation, disputed renewals, refund requests and double billing.",
			Recommendation: "Implement proactive billing notifications",
			Keywords: map[string]int{
				"refund": 2, "charged": 2, "unexpected charge": 3,
				"double bill": 3, "charge after cancel": 3, "billing": 1,
				"invoice": 1, "money back": 2,
			},
		},
		{
			Name:           "Login",
			Title:          "Login & account access problems",
			Description:    "Inability to log in, password reset issues, reset emails not received and access inconsistencies across devices.",
			Recommendation: "Deploy SMS-based password reset",
			Keywords: map[string]int{
				"password": 2, "forgot password": 3, "reset password": 3,
				"cannot login": 3, "can't log in": 3, "unable to login": 3,
				"locked out": 3, "reset email": 2, "email not received": 2,
			},
		},
		{
			Name:           "Technical",
			Title:          "Technical / app issues",
			Description:    "App not loading, playback or streaming errors, buffering and general instability across devices.",
			Recommendation: "Prioritize app stability fixes",
			Keywords: map[string]int{
				"not working": 2, "app crash": 3, "buffering": 2,
				"streaming": 1, "playback": 2, "error code": 2,
				"video not load": 2, "app not load": 3, "frozen": 2,
			},
		},
		{
			Name:           "Payment",
			Title:          "Payment failures & payment method issues",
			Description:    "Card declined, payment rejected, difficulty updating payment details and subscriptions not activating due to payment errors.",
			Recommendation: "Add payment retry logic",
			Keywords: map[string]int{
				"card declined": 3, "payment failed": 3, "payment rejected": 3,
				"update payment": 2, "card error": 2, "payment method": 2,
			},
		},
		{
			Name:           "Partner",
			Title:          "Partner subscription confusion",
			Description:    "Uncertainty about where to manage subscriptions billed via partners and difficulty linking partner subscriptions to accounts.",
			Recommendation: "Escalate partner API issues",
			Keywords: map[string]int{
				"amazon": 1, "apple": 1, "google": 1, "sky": 2, "partner": 1,
			},
		},
		{
			Name:           "Content",
			Title:          "Content availability & catalog issues",
			Description:    "Missing shows or episodes, content availability questions and catalog expectations not being met.",
			Recommendation: "Address content availability gaps",
			Keywords: map[string]int{
				"ufc": 3, "yellowstone": 3, "content missing": 2,
				"show missing": 2, "episode": 1, "season": 1,
			},
		},
	}
}

// LoadAnalytics reads a YAML override on top of Default. Scalars and maps
// merge into the defaults; lists (column bindings, themes) replace them.
func LoadAnalytics(path string) (Analytics, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read analytics config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse analytics config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid analytics config %s: %w", path, err)
	}
	return cfg, nil
}

func (a Analytics) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for _, p := range a.Columns.Positional {
		if p.Name == "" || p.Index < 0 {
			errs = append(errs, fmt.Errorf("positional column %q: index %d", p.Name, p.Index))
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("logical column %q bound twice", p.Name))
		}
		seen[p.Name] = true
	}
	for _, p := range a.Columns.Patterns {
		if p.Name == "" || len(p.Patterns) == 0 {
			errs = append(errs, fmt.Errorf("pattern column %q has no patterns", p.Name))
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("logical column %q bound twice", p.Name))
		}
		seen[p.Name] = true
	}
	if !(a.Severity.Critical > a.Severity.High && a.Severity.High > a.Severity.Medium) {
		errs = append(errs, errors.New("severity thresholds must be strictly decreasing"))
	}
	if !(a.Trend.Spike > a.Trend.Up && a.Trend.Up > a.Trend.Down) {
		errs = append(errs, errors.New("trend thresholds must be strictly decreasing"))
	}
	if a.Limits.CrossTab <= 0 {
		errs = append(errs, errors.New("limits.crosstab must be positive"))
	}
	names := map[string]bool{}
	for _, t := range a.Themes {
		if t.Name == "" {
			errs = append(errs, errors.New("theme without name"))
			continue
		}
		if names[t.Name] {
			errs = append(errs, fmt.Errorf("theme %q defined twice", t.Name))
		}
		names[t.Name] = true
		for kw, w := range t.Keywords {
			if strings.TrimSpace(kw) == "" || w <= 0 {
				errs = append(errs, fmt.Errorf("theme %q: keyword %q weight %d", t.Name, kw, w))
			}
		}
	}
	return errors.Join(errs...)
}

// ThemeNames returns theme names in alphabetical order.
func (a Analytics) ThemeNames() []string {
	out := make([]string, 0, len(a.Themes))
	for _, t := range a.Themes {
		out = append(out, t.Name)
	}
	sort.Strings(out)
	return out
}

// Theme looks up a theme by name.
func (a Analytics) Theme(name string) (Theme, bool) {
	for _, t := range a.Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}
