package actionable

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/numeric"
)

const (
	SectionPlan = "recommendations"

	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"

	unknownTopIssue = "Unknown Issue"
)

// Action is one line of the prioritised plan.
type Action struct {
	Priority     string  `json:"priority"`
	Action       string  `json:"action"`
	Detail       string  `json:"detail"`
	Effort       string  `json:"effort"`
	Reduction    int     `json:"reduction"`
	ReductionPct float64 `json:"reduction_pct"`
}

type Plan struct {
	TotalCases     int          `json:"total_cases"`
	Actions        []Action     `json:"actions"`
	TotalReduction int          `json:"total_reduction"`
	ReductionPct   float64      `json:"reduction_pct"`
	CostPerCase    float64      `json:"cost_per_case"`
	Savings        float64      `json:"estimated_savings"`
	Cards          []ActionCard `json:"cards"`
}

// Plan sizes the standard interventions against this dataset. Reductions
// are whole cases; the rate-based actions report their fixed rate.
func (g *Generator) Plan(e *aggregator.Engine) Plan {
	total := e.Total()
	topIssue, topCount := unknownTopIssue, 0
	if col, ok := issueColumn(e); ok {
		if name, n := e.TopValue(col); n > 0 {
			topIssue, topCount = name, n
		}
	}
	partnerCases := e.PartnerCount()

	rated := func(n int, rate float64) (int, float64) {
		if total == 0 {
			return 0, 0
		}
		return numeric.Portion(n, rate), numeric.Round(numeric.Ratio(n, total)*rate*100, 1)
	}
	fixed := func(rate float64) (int, float64) {
		if total == 0 {
			return 0, 0
		}
		return numeric.Portion(total, rate), numeric.Round(rate*100, 1)
	}

	p := Plan{TotalCases: total, CostPerCase: g.cfg.CostPerCase}
	add := func(priority, action, detail, effort string, reduction int, pct float64) {
		p.Actions = append(p.Actions, Action{
			Priority: priority, Action: action, Detail: detail, Effort: effort,
			Reduction: reduction, ReductionPct: pct,
		})
	}

	r, pct := rated(topCount, 0.7)
	add(PriorityP0, fmt.Sprintf("Fix %q", topIssue),
		"Address the highest-volume issue with targeted fix based on root cause analysis", "2-3 weeks", r, pct)
	r, pct = rated(partnerCases, 0.8)
	add(PriorityP0, partnerLabel(e.PartnerKeyword())+" API Integration Rewrite",
		"Partner Engineering handshake and sync overhaul", "3-4 weeks", r, pct)
	r, pct = fixed(0.10)
	add(PriorityP1, "Cancellation UX Redesign",
		`Add prominent "Manage Subscription" button and pause options`, "1-2 weeks", r, pct)
	r, pct = fixed(0.05)
	add(PriorityP1, "Proactive Billing Notifications",
		"Send email/SMS reminders 48hrs before any charge", "1 week", r, pct)
	r, pct = fixed(0.08)
	add(PriorityP2, "Self-Service FAQ Expansion",
		"Create localized FAQ content targeting top 3 issues with video tutorials", "2 weeks", r, pct)

	for _, a := range p.Actions {
		p.TotalReduction += a.Reduction
	}
	p.ReductionPct = numeric.Percent(p.TotalReduction, total, 1)
	p.Savings = decimal.NewFromInt(int64(p.TotalReduction)).
		Mul(decimal.NewFromFloat(g.cfg.CostPerCase)).
		Round(2).
		InexactFloat64()

	for _, a := range p.Actions {
		level := LevelInfo
		switch a.Priority {
		case PriorityP0:
			level = LevelCritical
		case PriorityP1:
			level = LevelWarning
		}
		p.Cards = append(p.Cards, newCard(SectionPlan, level,
			fmt.Sprintf("%s | %s | %s", a.Priority, a.Action, a.Effort),
			a.Detail,
			fmt.Sprintf("%d cases reduced (%.1f%%)", a.Reduction, a.ReductionPct)))
	}
	return p
}

// partnerLabel turns the configured partner keyword into a display name.
func partnerLabel(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "Partner"
	}
	r, n := utf8.DecodeRuneInString(keyword)
	return string(unicode.ToUpper(r)) + keyword[n:]
}
