package themes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/types"
)

func classifier(opts ...Option) *Classifier {
	return New(config.DefaultThemes(), opts...)
}

func TestClassify(t *testing.T) {
	c := classifier()
	tests := []struct {
		name  string
		text  string
		theme string
		score int
	}{
		{"weights add up", "I need a refund for my double bill", "Billing", 5},
		{"repeats count once", "refund refund REFUND", "Billing", 2},
		{"empty", "", Unknown, 0},
		{"whitespace", "   \n\t", Unknown, 0},
		{"no keyword", "hello there", Unknown, 0},
		{"case insensitive", "FORGOT PASSWORD again", "Login", 5},
		{"placeholders score nothing", "[EMAIL_REDACTED] [PHONE_REDACTED] [NAME_REDACTED]", Unknown, 0},
		{"email address stripped", "write to cancel.team@sky.com please", Unknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.theme, got.Theme)
			assert.Equal(t, tt.score, got.Score)
		})
	}
}

func TestClassifyTieGoesToFirstThemeAlphabetically(t *testing.T) {
	c := New([]config.Theme{
		{Name: "Zulu", Keywords: map[string]int{"widget": 2}},
		{Name: "Alpha", Keywords: map[string]int{"broken": 2}},
	})
	got := c.Classify("broken widget")
	assert.Equal(t, types.ThemeAssignment{Theme: "Alpha", Score: 2}, got)

	scores := c.Scores("broken widget")
	require.Len(t, scores, 2)
	assert.Equal(t, "Alpha", scores[0].Theme)
	assert.Equal(t, "Zulu", scores[1].Theme)
}

func TestClean(t *testing.T) {
	c := classifier()
	got := c.Clean("Hello <External Email>  Please CANCEL [external email]\nSent from my iPhone")
	assert.Equal(t, "hello please cancel", got)
	assert.Equal(t, "call me", c.Clean("call  me  jo.doe+x@mail.example.org"))
}

func TestAccentFolding(t *testing.T) {
	text := "I can’t log in since Tuesday"
	assert.Equal(t, Unknown, classifier().Classify(text).Theme)

	got := classifier(WithAccentFolding()).Classify(text)
	assert.Equal(t, "Login", got.Theme)
	assert.Equal(t, 3, got.Score)
}

func TestAnalyzeColumnFallback(t *testing.T) {
	tbl := dataset.MustTable(
		dataset.Text("description", []string{"", "refund please", ""}),
		dataset.Text("translated", []string{"forgot password", "locked out", ""}),
	)
	got := classifier().AnalyzeColumn(tbl, "description", "translated")
	require.Len(t, got, 3)
	assert.Equal(t, "Login", got[0].Theme)
	assert.Equal(t, "Billing", got[1].Theme)
	assert.Equal(t, Unknown, got[2].Theme)

	assert.Nil(t, classifier().AnalyzeColumn(tbl, "missing", "translated"))

	noFallback := classifier().AnalyzeColumn(tbl, "description", "")
	assert.Equal(t, Unknown, noFallback[0].Theme)
}

func assignments(themes ...string) []types.ThemeAssignment {
	out := make([]types.ThemeAssignment, len(themes))
	for i, th := range themes {
		out[i] = types.ThemeAssignment{Theme: th, Score: 1}
	}
	return out
}

func TestDistribution(t *testing.T) {
	dist := Distribution(assignments("Billing", "Login", "Billing", Unknown))
	require.Len(t, dist, 3)
	assert.Equal(t, types.ThemeShare{Theme: "Billing", Count: 2, Percentage: 50}, dist[0])
	assert.Equal(t, "Login", dist[1].Theme)
	assert.Equal(t, 25.0, dist[1].Percentage)
	assert.Equal(t, Unknown, dist[2].Theme)

	assert.Empty(t, Distribution(nil))
}

func TestStrength(t *testing.T) {
	th := config.Default().Strength
	tests := []struct {
		ratio float64
		want  string
	}{
		{0.31, StrengthDominant},
		{0.30, StrengthHigh},
		{0.21, StrengthHigh},
		{0.20, StrengthModerate},
		{0.10, StrengthLow},
		{0, StrengthLow},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.ratio), func(t *testing.T) {
			assert.Equal(t, tt.want, Strength(tt.ratio, th))
		})
	}
}

func TestRegional(t *testing.T) {
	tbl := dataset.MustTable(dataset.Text("country", []string{"US", "US", "UK", "US", ""}))
	as := assignments("Billing", "Billing", "Login", "Login", "Billing")
	th := config.Default().Strength

	got := Regional(tbl, as, "country", 5, th)
	require.Len(t, got, 2)

	us := got[0]
	assert.Equal(t, "US", us.Region)
	assert.Equal(t, 3, us.Total)
	require.Len(t, us.Themes, 2)
	assert.Equal(t, "Billing", us.Themes[0].Theme)
	assert.Equal(t, 66.67, us.Themes[0].Percentage)
	assert.Equal(t, StrengthDominant, us.Themes[0].Strength)

	uk := got[1]
	assert.Equal(t, 1, uk.Total)
	assert.Equal(t, 100.0, uk.Themes[0].Percentage)

	assert.Len(t, Regional(tbl, as, "country", 1, th), 1)
	assert.Empty(t, Regional(tbl, as, "region", 5, th))
	assert.Empty(t, Regional(tbl, as[:2], "country", 5, th), "misaligned assignments")
}

func TestInsights(t *testing.T) {
	table := config.DefaultThemes()
	dist := Distribution(assignments("Billing", "Login", "Billing", Unknown))

	in, ok := Insights(dist, table)
	require.True(t, ok)
	assert.Equal(t, "Billing", in.DominantTheme)
	assert.Equal(t, "Billing is the primary theme at 50.0% (2 mentions).", in.DominantPattern)
	assert.Equal(t, 100.0, in.Top3Share)
	assert.Equal(t, ConcentrationHigh, in.ConcentrationLevel)
	assert.Equal(t, "Implement proactive billing notifications", in.Recommendation)
	assert.Equal(t, "Billing issues & refunds", in.Title)

	unknown, _ := Insights(Distribution(assignments(Unknown)), table)
	assert.Equal(t, "Expand self-service FAQ", unknown.Recommendation)

	var spread []string
	for i := 0; i < 10; i++ {
		spread = append(spread, fmt.Sprintf("t%d", i))
	}
	flat, _ := Insights(Distribution(assignments(spread...)), table)
	assert.Equal(t, ConcentrationDistributed, flat.ConcentrationLevel)
	assert.Equal(t, 30.0, flat.Top3Share)

	_, ok = Insights(nil, table)
	assert.False(t, ok)
}
