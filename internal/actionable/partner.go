package actionable

import (
	"fmt"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/columns"
	"case-insights-go/internal/numeric"
)

const (
	SectionPartner = "partner"

	partnerMarketRows = 10
	partnerIssueRows  = 10
	partnerIssueCards = 5
)

// Market is one (country, partner) pair inside the partner slice.
type Market struct {
	Country        string  `json:"country"`
	Partner        string  `json:"partner"`
	Volume         int     `json:"volume"`
	ShareOfPartner float64 `json:"pct_of_partner"`
	ShareOfGlobal  float64 `json:"pct_of_global"`
	Impact         string  `json:"impact"`
}

type PartnerIssue struct {
	Name           string  `json:"issue"`
	Volume         int     `json:"volume"`
	ShareOfPartner float64 `json:"pct_of_partner"`
	Severity       string  `json:"severity"`
	RootCause      string  `json:"root_cause"`
}

type PartnerReport struct {
	Available          bool           `json:"available"`
	Reason             string         `json:"reason,omitempty"`
	Keyword            string         `json:"keyword"`
	Cases              int            `json:"cases"`
	Share              float64        `json:"share"`
	ReductionPotential int            `json:"reduction_potential"`
	Markets            []Market       `json:"markets"`
	Issues             []PartnerIssue `json:"issues"`
	Cards              []ActionCard   `json:"cards"`
}

// Partner analyses the rows whose partner column contains the configured
// keyword: where they come from and what they are about.
func (g *Generator) Partner(e *aggregator.Engine) PartnerReport {
	return g.PartnerFor(e, "")
}

// PartnerFor is Partner for another keyword. An empty keyword means the
// configured one.
func (g *Generator) PartnerFor(e *aggregator.Engine, keyword string) PartnerReport {
	if keyword == "" {
		keyword = e.PartnerKeyword()
	}
	sub := e.With(e.FilterByPartnerContains(keyword))
	total := e.Total()
	r := PartnerReport{
		Keyword: keyword,
		Cases:   sub.Total(),
		Markets: []Market{},
		Issues:  []PartnerIssue{},
		Cards:   []ActionCard{},
	}
	if r.Cases == 0 {
		r.Reason = reasonNoPartner
		return r
	}
	r.Available = true
	r.Share = numeric.Percent(r.Cases, total, 2)
	r.ReductionPotential = numeric.Portion(r.Cases, 0.7)

	country, hasCountry := countryColumn(e)
	partner, hasPartner := e.Columns().Get(columns.Partner)
	if hasCountry && hasPartner {
		for _, grp := range sub.CrossTabulate(country, partner, 0) {
			if len(r.Markets) == partnerMarketRows {
				break
			}
			m := Market{
				Country:        grp.Keys[0],
				Partner:        grp.Keys[1],
				Volume:         grp.Count,
				ShareOfPartner: numeric.Percent(grp.Count, r.Cases, 2),
				ShareOfGlobal:  numeric.Percent(grp.Count, total, 2),
				Impact:         SeverityMedium,
			}
			if m.ShareOfGlobal > 3 {
				m.Impact = SeverityHigh
			}
			r.Markets = append(r.Markets, m)
		}
	}

	if issue, ok := issueColumn(e); ok {
		for _, grp := range sub.TopN(issue, partnerIssueRows) {
			pct := numeric.Percent(grp.Count, r.Cases, 2)
			r.Issues = append(r.Issues, PartnerIssue{
				Name:           grp.Key(),
				Volume:         grp.Count,
				ShareOfPartner: pct,
				Severity:       partnerSeverity(pct),
				RootCause:      partnerRootCause(grp.Key()),
			})
		}
	}

	for i, iss := range r.Issues {
		if i == partnerIssueCards {
			break
		}
		level := LevelInfo
		action := "Monitor"
		switch iss.Severity {
		case SeverityCritical:
			level, action = LevelCritical, "Immediate escalation required"
		case SeverityHigh:
			level, action = LevelWarning, "Address in the next sprint"
		}
		r.Cards = append(r.Cards, newCard(SectionPartner, level,
			fmt.Sprintf("%s: %d cases (%.1f%% of %s volume). %s", iss.Name, iss.Volume, iss.ShareOfPartner, r.Keyword, iss.RootCause),
			action,
			iss.Severity))
	}
	r.Cards = append(r.Cards, newCard(SectionPartner, LevelSuccess,
		fmt.Sprintf("%s partner integrations represent %.1f%% of total case volume (%d cases)", r.Keyword, r.Share, r.Cases),
		"Escalate to Partner Engineering for API audit and integration rewrite",
		fmt.Sprintf("60-80%% fewer partner contacts, about %d cases", r.ReductionPotential)))
	return r
}
