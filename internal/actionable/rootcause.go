package actionable

import (
	"fmt"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/numeric"
)

const (
	SectionRootCause = "root_cause"

	reasonNoIssueColumn = "no category or sub-category column resolved"
	reasonNoCountry     = "no country column resolved"
	reasonNoPartner     = "no partner cases found"
)

// Issue is one row of the prioritisation matrix.
type Issue struct {
	Name     string  `json:"issue"`
	Volume   int     `json:"volume"`
	Impact   float64 `json:"pct_impact"`
	Severity string  `json:"severity"`
}

// DeepDive is the playbook applied to one of the top issues.
type DeepDive struct {
	Rank               int        `json:"rank"`
	Issue              Issue      `json:"issue"`
	Playbook           Playbook   `json:"playbook"`
	PotentialReduction int        `json:"potential_reduction"`
	Card               ActionCard `json:"card"`
}

type RootCause struct {
	Available     bool       `json:"available"`
	Reason        string     `json:"reason,omitempty"`
	IssueColumn   string     `json:"issue_column,omitempty"`
	TotalCases    int        `json:"total_cases"`
	CriticalCount int        `json:"critical_count"`
	HighCount     int        `json:"high_count"`
	Top3Volume    int        `json:"top3_volume"`
	Top3Share     float64    `json:"top3_share"`
	Issues        []Issue    `json:"issues"`
	DeepDives     []DeepDive `json:"deep_dives"`
}

// RootCause grades every issue by its share of all cases and applies the
// playbook to the three largest.
func (g *Generator) RootCause(e *aggregator.Engine) RootCause {
	rc := RootCause{TotalCases: e.Total(), Issues: []Issue{}, DeepDives: []DeepDive{}}
	col, ok := issueColumn(e)
	if !ok {
		rc.Reason = reasonNoIssueColumn
		return rc
	}
	rc.Available = true
	rc.IssueColumn = col

	var issues []Issue
	for _, grp := range e.Distribution(col) {
		pct := numeric.Percent(grp.Count, rc.TotalCases, 2)
		iss := Issue{Name: grp.Key(), Volume: grp.Count, Impact: pct, Severity: Severity(pct, g.cfg.Severity)}
		switch iss.Severity {
		case SeverityCritical:
			rc.CriticalCount++
		case SeverityHigh:
			rc.HighCount++
		}
		issues = append(issues, iss)
	}

	for i := 0; i < len(issues) && i < 3; i++ {
		iss := issues[i]
		rc.Top3Volume += iss.Volume
		pb := PlaybookFor(iss.Name)
		level := LevelInfo
		switch iss.Severity {
		case SeverityCritical:
			level = LevelCritical
		case SeverityHigh:
			level = LevelWarning
		}
		potential := numeric.Portion(iss.Volume, 0.7)
		rc.DeepDives = append(rc.DeepDives, DeepDive{
			Rank:               i + 1,
			Issue:              iss,
			Playbook:           pb,
			PotentialReduction: potential,
			Card: newCard(SectionRootCause, level,
				fmt.Sprintf("#%d %s: %d cases (%.1f%%), %s. Root cause: %s", i+1, iss.Name, iss.Volume, iss.Impact, iss.Severity, pb.RootCause),
				pb.Fix,
				fmt.Sprintf("Expected reduction %s, up to %d cases", pb.ExpectedReduction, potential)),
		})
	}
	rc.Top3Share = numeric.Percent(rc.Top3Volume, rc.TotalCases, 1)

	if limit := g.cfg.Limits.IssueTable; limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	if issues != nil {
		rc.Issues = issues
	}
	return rc
}
