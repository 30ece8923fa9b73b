package actionable

import (
	"fmt"
	"math"

	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/numeric"
	"case-insights-go/internal/types"
)

const (
	SectionRegional = "regional"

	BandHigh  = "High Volume Market"
	BandAbove = "Above Average Volume"
	BandBelow = "Below Average Volume"

	unknownIssue    = "Unknown"
	regionalMarkets = 10
	regionalIssues  = 5
	deflectionRate  = 0.15
)

// MarketDive is the deep dive for one country.
type MarketDive struct {
	Country        string        `json:"country"`
	Volume         int           `json:"volume"`
	ShareOfGlobal  float64       `json:"pct_of_global"`
	VsAverage      float64       `json:"vs_average_pct"`
	Band           string        `json:"band"`
	PartnerShare   float64       `json:"partner_share"`
	TopIssues      []types.Group `json:"top_issues"`
	TopIssue       string        `json:"top_issue"`
	TopIssueShare  float64       `json:"top_issue_share"`
	Concentrated   bool          `json:"concentrated"`
	Recommendation string        `json:"recommendation"`
	Deflection     int           `json:"deflection_estimate"`
	Card           ActionCard    `json:"card"`
}

type Regional struct {
	Available        bool         `json:"available"`
	Reason           string       `json:"reason,omitempty"`
	Markets          int          `json:"markets"`
	AveragePerMarket float64      `json:"average_per_market"`
	Dives            []MarketDive `json:"dives"`
}

// Regional builds a deep dive for each of the largest markets, compared
// against the average volume per market.
func (g *Generator) Regional(e *aggregator.Engine) Regional {
	r := Regional{Dives: []MarketDive{}}
	country, ok := countryColumn(e)
	if !ok {
		r.Reason = reasonNoCountry
		return r
	}
	r.Markets = e.Unique(country)
	if r.Markets == 0 {
		r.Reason = reasonNoCountry
		return r
	}
	r.Available = true
	total := e.Total()
	avg := float64(total) / float64(r.Markets)
	r.AveragePerMarket = numeric.Round(avg, 1)

	cc, _ := e.Table().Column(country)
	issue, hasIssue := issueColumn(e)
	for _, grp := range e.TopN(country, regionalMarkets) {
		name := grp.Key()
		sub := e.With(e.Table().Filter(equals(cc, name)))
		d := MarketDive{
			Country:      name,
			Volume:       sub.Total(),
			TopIssue:     unknownIssue,
			TopIssues:    []types.Group{},
			PartnerShare: numeric.Percent(sub.PartnerCount(), sub.Total(), 2),
		}
		d.ShareOfGlobal = numeric.Percent(d.Volume, total, 2)
		d.VsAverage = numeric.Round((float64(d.Volume)/avg-1)*100, 1)
		switch {
		case d.VsAverage > 20:
			d.Band = BandHigh
		case d.VsAverage > 0:
			d.Band = BandAbove
		default:
			d.Band = BandBelow
		}

		if hasIssue {
			for _, ig := range sub.TopN(issue, regionalIssues) {
				ig.Percentage = numeric.Percent(ig.Count, d.Volume, 2)
				d.TopIssues = append(d.TopIssues, ig)
			}
			if len(d.TopIssues) > 0 {
				d.TopIssue = d.TopIssues[0].Key()
				d.TopIssueShare = d.TopIssues[0].Percentage
			}
		}
		d.Concentrated = d.TopIssueShare > 20
		d.Recommendation = marketRecommendation(d.TopIssue, d.PartnerShare, name)
		d.Deflection = numeric.Portion(d.Volume, deflectionRate)

		level := LevelSuccess
		switch d.Band {
		case BandHigh:
			level = LevelCritical
		case BandAbove:
			level = LevelWarning
		}
		direction := "above"
		if d.VsAverage <= 0 {
			direction = "below"
		}
		d.Card = newCard(SectionRegional, level,
			fmt.Sprintf("%s: %s, %.0f%% %s the global average per market. Dominant issue %s at %.1f%%",
				name, d.Band, math.Abs(d.VsAverage), direction, d.TopIssue, d.TopIssueShare),
			d.Recommendation,
			fmt.Sprintf("Estimated case reduction %d cases (15%% deflection rate)", d.Deflection))
		r.Dives = append(r.Dives, d)
	}
	return r
}
