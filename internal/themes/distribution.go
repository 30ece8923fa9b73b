package themes

import (
	"fmt"
	"sort"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/numeric"
	"case-insights-go/internal/types"
)

const (
	StrengthDominant = "DOMINANT"
	StrengthHigh     = "HIGH"
	StrengthModerate = "MODERATE"
	StrengthLow      = "LOW"
)

// Distribution counts themes over all assignments, most frequent first.
func Distribution(assignments []types.ThemeAssignment) []types.ThemeShare {
	return share(assignments, nil, nil)
}

func share(assignments []types.ThemeAssignment, rows []int, th *config.StrengthThresholds) []types.ThemeShare {
	index := map[string]int{}
	var out []types.ThemeShare
	total := 0
	visit := func(a types.ThemeAssignment) {
		total++
		if pos, ok := index[a.Theme]; ok {
			out[pos].Count++
			return
		}
		index[a.Theme] = len(out)
		out = append(out, types.ThemeShare{Theme: a.Theme, Count: 1})
	}
	if rows == nil {
		for _, a := range assignments {
			visit(a)
		}
	} else {
		for _, r := range rows {
			visit(assignments[r])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	for i := range out {
		out[i].Percentage = numeric.Percent(out[i].Count, total, 2)
		if th != nil {
			out[i].Strength = Strength(numeric.Ratio(out[i].Count, total), *th)
		}
	}
	if out == nil {
		out = []types.ThemeShare{}
	}
	return out
}

// Strength labels a theme's share (0..1) of a group.
func Strength(ratio float64, th config.StrengthThresholds) string {
	switch {
	case ratio > th.Dominant:
		return StrengthDominant
	case ratio > th.High:
		return StrengthHigh
	case ratio > th.Moderate:
		return StrengthModerate
	default:
		return StrengthLow
	}
}

// Regional returns the theme mix of the topN largest groups of groupColumn.
// Rows with a null group are ignored. assignments must be aligned with the
// table rows.
func Regional(t *dataset.Table, assignments []types.ThemeAssignment, groupColumn string, topN int, th config.StrengthThresholds) []types.RegionThemes {
	gc, ok := t.Column(groupColumn)
	if !ok || len(assignments) != t.NumRows() {
		return []types.RegionThemes{}
	}

	index := map[string]int{}
	type region struct {
		name string
		rows []int
	}
	var regions []region
	for i := 0; i < t.NumRows(); i++ {
		key, ok := gc.Key(i)
		if !ok {
			continue
		}
		pos, seen := index[key]
		if !seen {
			pos = len(regions)
			index[key] = pos
			regions = append(regions, region{name: key})
		}
		regions[pos].rows = append(regions[pos].rows, i)
	}
	sort.SliceStable(regions, func(i, j int) bool { return len(regions[i].rows) > len(regions[j].rows) })
	if topN > 0 && len(regions) > topN {
		regions = regions[:topN]
	}

	out := make([]types.RegionThemes, 0, len(regions))
	for _, r := range regions {
		out = append(out, types.RegionThemes{
			Region: r.name,
			Total:  len(r.rows),
			Themes: share(assignments, r.rows, &th),
		})
	}
	return out
}

const (
	ConcentrationHigh        = "HIGH"
	ConcentrationModerate    = "MODERATE"
	ConcentrationDistributed = "DISTRIBUTED"

	defaultRecommendation = "Expand self-service FAQ"
)

// Insight is the narrative summary of a theme distribution.
type Insight struct {
	DominantTheme      string  `json:"dominant_theme"`
	DominantPattern    string  `json:"dominant_pattern"`
	Top3Share          float64 `json:"top3_share"`
	ConcentrationLevel string  `json:"concentration_level"`
	Concentration      string  `json:"concentration"`
	Recommendation     string  `json:"recommendation"`
	Title              string  `json:"title,omitempty"`
	Description        string  `json:"description,omitempty"`
}

// Insights describes the dominant theme and how concentrated the
// distribution is across its top three themes. ok is false for an empty
// distribution.
func Insights(dist []types.ThemeShare, table []config.Theme) (Insight, bool) {
	if len(dist) == 0 {
		return Insight{}, false
	}
	top := dist[0]
	in := Insight{
		DominantTheme:   top.Theme,
		DominantPattern: fmt.Sprintf("%s is the primary theme at %.1f%% (%d mentions).", top.Theme, top.Percentage, top.Count),
		Recommendation:  defaultRecommendation,
	}
	sum := 0.0
	for i := 0; i < len(dist) && i < 3; i++ {
		sum += dist[i].Percentage
	}
	in.Top3Share = numeric.Round(sum, 1)
	switch {
	case sum > 70:
		in.ConcentrationLevel = ConcentrationHigh
	case sum > 50:
		in.ConcentrationLevel = ConcentrationModerate
	default:
		in.ConcentrationLevel = ConcentrationDistributed
	}
	in.Concentration = fmt.Sprintf("%s concentration (%.1f%% in top 3 themes).", in.ConcentrationLevel, sum)

	for _, t := range table {
		if t.Name != top.Theme {
			continue
		}
		if t.Recommendation != "" {
			in.Recommendation = t.Recommendation
		}
		in.Title = t.Title
		in.Description = t.Description
	}
	return in, true
}
