package actionable

import (
	"fmt"
	"math"

	"case-insights-go/internal/themes"
	"case-insights-go/internal/trend"
)

const (
	SectionTrend  = "trend"
	SectionThemes = "themes"
)

// TrendCards narrates the latest week-over-week move and the volatility of
// the series. Fewer than two weeks produce no cards.
func TrendCards(st trend.Stats) []ActionCard {
	if st.TotalWeeks < 2 {
		return []ActionCard{}
	}
	var wow ActionCard
	switch st.Direction {
	case trend.DirectionUp:
		wow = newCard(SectionTrend, LevelWarning,
			fmt.Sprintf("Volume Increasing: up %.1f%% (%+d cases) from last week", st.LatestPct, st.LatestChange),
			"Ensure capacity planning addresses this rise",
			fmt.Sprintf("%+d cases", st.LatestChange))
	case trend.DirectionDown:
		wow = newCard(SectionTrend, LevelSuccess,
			fmt.Sprintf("Volume Decreasing: down %.1f%% (%+d cases) from last week", math.Abs(st.LatestPct), st.LatestChange),
			"No action; workload is falling",
			fmt.Sprintf("%+d cases", st.LatestChange))
	default:
		wow = newCard(SectionTrend, LevelInfo,
			fmt.Sprintf("Volume Stable: %+.1f%% change from last week", st.LatestPct),
			"Operations are normal",
			fmt.Sprintf("%+d cases", st.LatestChange))
	}

	var vol ActionCard
	if st.Stability == trend.StabilityVolatile {
		vol = newCard(SectionTrend, LevelWarning,
			fmt.Sprintf("High Volatility Detected (CV: %.2f)", st.CV),
			"Investigate root causes of spikes",
			"Unpredictable volume makes resource planning difficult")
	} else {
		vol = newCard(SectionTrend, LevelSuccess,
			fmt.Sprintf("Process Stability: %s (CV: %.2f)", st.Stability, st.CV),
			"Standard forecasting models should perform well",
			fmt.Sprintf("%d spike weeks out of %d", st.SpikeWeeks, st.TotalWeeks))
	}
	return []ActionCard{wow, vol}
}

// ThemeCards turns theme insights into a dominant theme card and a
// concentration card.
func ThemeCards(in themes.Insight) []ActionCard {
	level := LevelInfo
	switch in.ConcentrationLevel {
	case themes.ConcentrationHigh:
		level = LevelWarning
	case themes.ConcentrationDistributed:
		level = LevelSuccess
	}
	return []ActionCard{
		newCard(SectionThemes, LevelInfo, in.DominantPattern, in.Recommendation, in.Description),
		newCard(SectionThemes, level, in.Concentration,
			"Focus on the top 3 themes first",
			fmt.Sprintf("%.1f%% of cases", in.Top3Share)),
	}
}
