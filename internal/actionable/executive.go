package actionable

import (
	"fmt"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/columns"
	"case-insights-go/internal/numeric"
	"case-insights-go/internal/types"
)

const SectionExecutive = "executive"

// Executive is the headline KPI block.
type Executive struct {
	TotalCases         int           `json:"total_cases"`
	UniqueMarkets      int           `json:"unique_markets"`
	PartnerCases       int           `json:"partner_cases"`
	PartnerShare       float64       `json:"partner_share"`
	TopCountry         string        `json:"top_country"`
	TopCountryCases    int           `json:"top_country_cases"`
	TopCountryShare    float64       `json:"top_country_share"`
	TopIssue           string        `json:"top_issue"`
	TopIssueCases      int           `json:"top_issue_cases"`
	TopIssueShare      float64       `json:"top_issue_share"`
	ReductionPotential int           `json:"reduction_potential_pct"`
	TopCountries       []types.Group `json:"top_countries"`
	Categories         []types.Group `json:"categories"`
	Cards              []ActionCard  `json:"cards"`
}

// Executive summarises the whole dataset. Missing columns degrade to "N/A"
// and zero counts.
func (g *Generator) Executive(e *aggregator.Engine) Executive {
	total := e.Total()
	ex := Executive{
		TotalCases:   total,
		PartnerCases: e.PartnerCount(),
		PartnerShare: e.PartnerShare(),
		TopCountry:   aggregator.NotAvailable,
		TopIssue:     aggregator.NotAvailable,
		TopCountries: []types.Group{},
		Categories:   []types.Group{},
	}

	if country, ok := countryColumn(e); ok {
		ex.UniqueMarkets = e.Unique(country)
		ex.TopCountry, ex.TopCountryCases = e.TopValue(country)
		ex.TopCountryShare = numeric.Percent(ex.TopCountryCases, total, 1)
		ex.TopCountries = e.TopN(country, g.cfg.Limits.TopN)
	}

	issue, hasIssue := issueColumn(e)
	if hasIssue {
		ex.TopIssue, ex.TopIssueCases = e.TopValue(issue)
		ex.TopIssueShare = numeric.Percent(ex.TopIssueCases, total, 1)
		ex.ReductionPotential = numeric.Scale(ex.TopIssueShare, 0.7)
	}
	if cat, ok := e.Columns().Get(columns.Category); ok {
		ex.Categories = e.TopN(cat, 8)
	} else if hasIssue {
		ex.Categories = e.TopN(issue, 8)
	}

	ex.Cards = []ActionCard{
		newCard(SectionExecutive, LevelInfo,
			fmt.Sprintf("Top Issue: %s accounts for %.1f%% of total volume (%d cases)", ex.TopIssue, ex.TopIssueShare, ex.TopIssueCases),
			"Treat it as the primary driver of contact center load",
			fmt.Sprintf("%d cases", ex.TopIssueCases)),
		newCard(SectionExecutive, LevelInfo,
			fmt.Sprintf("%s partner impact: %.1f%% (%d cases)", e.PartnerKeyword(), ex.PartnerShare, ex.PartnerCases),
			"Track partner integrations as a separate escalation pathway",
			fmt.Sprintf("%d cases", ex.PartnerCases)),
		newCard(SectionExecutive, LevelInfo,
			fmt.Sprintf("Market Concentration: %s leads with %d cases (%.1f%% of global)", ex.TopCountry, ex.TopCountryCases, ex.TopCountryShare),
			"Consider market-specific interventions",
			fmt.Sprintf("%d markets", ex.UniqueMarkets)),
		newCard(SectionExecutive, LevelSuccess,
			"Strategic Recommendation",
			fmt.Sprintf("Prioritize %q", ex.TopIssue),
			fmt.Sprintf("Could reduce overall contact volume by up to %d%%", ex.ReductionPotential)),
	}
	return ex
}
