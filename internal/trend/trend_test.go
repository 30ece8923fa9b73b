package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"case-insights-go/internal/columns"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
)

func ptr(v float64) *float64 { return &v }

func engine() *Engine { return New(config.Default().Trend) }

func dateLayout() config.ColumnLayout {
	return config.ColumnLayout{Positional: []config.PositionalColumn{{Name: columns.Date, Index: 0}}}
}

func weekly(t *testing.T, c *dataset.Column) Series {
	t.Helper()
	tbl := dataset.MustTable(c)
	return engine().Weekly(tbl, columns.Resolve(tbl.ColumnNames(), dateLayout()))
}

func volumes(s Series) []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

func TestClassifyBoundaries(t *testing.T) {
	e := engine()
	tests := []struct {
		pct  *float64
		want string
	}{
		{nil, "N/A"},
		{ptr(15.1), "SPIKE"},
		{ptr(15.0), "UP"},
		{ptr(5.1), "UP"},
		{ptr(5.0), "FLAT"},
		{ptr(0), "FLAT"},
		{ptr(-10.0), "FLAT"},
		{ptr(-10.1), "DOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Classify(tt.pct))
	}
}

func TestWeeklyGapFill(t *testing.T) {
	// 2024-01-01 is a Monday. Weeks 1 and 4 only.
	s := weekly(t, dataset.Text("created", []string{
		"2024-01-01", "2024-01-03", "2024-01-07",
		"2024-01-22", "2024-01-28",
	}))
	require.Equal(t, StatusOK, s.Status)
	assert.Equal(t, []int{3, 0, 0, 2}, volumes(s))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), s.Points[2].WeekStart)
	assert.Equal(t, "2024-W01", s.Points[0].Label)
	assert.Equal(t, "2006-1-2", s.Strategy)
}

func TestWeekOverWeek(t *testing.T) {
	var dates []time.Time
	add := func(day time.Time, n int) {
		for i := 0; i < n; i++ {
			dates = append(dates, day)
		}
	}
	mon := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	add(mon, 4)
	add(mon.AddDate(0, 0, 7), 6)
	add(mon.AddDate(0, 0, 21), 3)

	s := weekly(t, dataset.Times("opened", dates))
	require.Len(t, s.Points, 4)
	assert.Equal(t, "native", s.Strategy)

	first := s.Points[0]
	assert.Nil(t, first.WowPct)
	assert.Nil(t, first.WowChange)
	assert.Equal(t, "N/A", first.Trend)

	second := s.Points[1]
	require.NotNil(t, second.WowPct)
	assert.Equal(t, 2, *second.WowChange)
	assert.Equal(t, 50.0, *second.WowPct)
	assert.Equal(t, "SPIKE", second.Trend)

	third := s.Points[2]
	assert.Equal(t, -6, *third.WowChange)
	assert.Equal(t, -100.0, *third.WowPct)
	assert.Equal(t, "DOWN", third.Trend)

	fourth := s.Points[3]
	assert.Equal(t, 0, *fourth.PriorVolume)
	assert.Equal(t, 3, *fourth.WowChange)
	assert.Nil(t, fourth.WowPct, "undefined after an empty week")
	assert.Equal(t, "N/A", fourth.Trend)
}

func TestWowPctRoundsToOneDecimal(t *testing.T) {
	var vals []string
	for i := 0; i < 3; i++ {
		vals = append(vals, "2024-01-01")
	}
	for i := 0; i < 4; i++ {
		vals = append(vals, "2024-01-08")
	}
	s := weekly(t, dataset.Text("d", vals))
	require.Len(t, s.Points, 2)
	assert.Equal(t, 33.3, *s.Points[1].WowPct)
	assert.Equal(t, "SPIKE", s.Points[1].Trend)
}

func TestDateCascadeOrder(t *testing.T) {
	tests := []struct {
		name     string
		col      *dataset.Column
		strategy string
		first    string
	}{
		{"iso date", dataset.Text("d", []string{"2024-02-05"}), "2006-1-2", "2024-02-05"},
		{"iso datetime", dataset.Text("d", []string{"2024-02-05 13:45:00"}), "2006-1-2 15:04:05", "2024-02-05"},
		// ambiguous day/month: day-first wins because it is tried first
		{"day first", dataset.Text("d", []string{"03/02/2024"}), "2/1/2006", "2024-02-03"},
		{"month first", dataset.Text("d", []string{"12/31/2024"}), "1/2/2006", "2024-12-31"},
		{"dashes", dataset.Text("d", []string{"31-12-2024"}), "2-1-2006", "2024-12-31"},
		{"slashes ymd", dataset.Text("d", []string{"2024/12/31"}), "2006/1/2", "2024-12-31"},
		{"rfc3339", dataset.Text("d", []string{"2024-02-05T13:45:00Z"}), "datetime-cast", "2024-02-05"},
		{"epoch days", dataset.Ints("d", []int64{19758}, nil), "days-since-epoch", "2024-02-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParseDates(tt.col)
			require.True(t, ok)
			assert.Equal(t, tt.strategy, p.Strategy)
			assert.Equal(t, tt.first, p.Dates[0].Format("2006-01-02"))
		})
	}
}

func TestFirstMatchingLayoutWinsPerColumn(t *testing.T) {
	// The first layout parses one row, so the datetime row is dropped rather
	// than parsed with a later layout.
	p, ok := ParseDates(dataset.Text("d", []string{"2024-01-01", "2024-01-09 10:00:00", "garbage"}))
	require.True(t, ok)
	assert.Equal(t, []bool{true, false, false}, p.Valid)
}

func TestInsufficientData(t *testing.T) {
	s := weekly(t, dataset.Text("d", []string{"soon", "later", ""}))
	assert.Equal(t, StatusInsufficient, s.Status)
	assert.Empty(t, s.Points)

	tbl := dataset.MustTable(dataset.Text("other", []string{"2024-01-01"}))
	s = engine().Weekly(tbl, columns.Resolve(tbl.ColumnNames(), config.ColumnLayout{}))
	assert.Equal(t, StatusInsufficient, s.Status)
}

func TestYearBoundaryOrdering(t *testing.T) {
	s := weekly(t, dataset.Text("d", []string{"2024-12-23", "2024-12-30", "2025-01-06", "2025-01-06"}))
	require.Len(t, s.Points, 3)
	assert.Equal(t, []int{1, 1, 2}, volumes(s))
	assert.Equal(t, "2025-W01", s.Points[1].Label)
	assert.Equal(t, "2025-W02", s.Points[2].Label)
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(monday))
}

func TestSummarize(t *testing.T) {
	s := weekly(t, dataset.Text("d", []string{
		"2024-01-01", "2024-01-01",
		"2024-01-08", "2024-01-08", "2024-01-08", "2024-01-08",
		"2024-01-15", "2024-01-15",
	}))
	st := Summarize(s)
	assert.Equal(t, 3, st.TotalWeeks)
	assert.Equal(t, 4, st.PeakVolume)
	assert.Equal(t, 2, st.LowestVolume)
	assert.InDelta(t, 2.7, st.AverageVolume, 0.001)
	assert.Equal(t, 1, st.SpikeWeeks)
	assert.Equal(t, 0.43, st.CV)
	assert.Equal(t, StabilityVariable, st.Stability)
	assert.Equal(t, -2, st.LatestChange)
	assert.Equal(t, -50.0, st.LatestPct)
	assert.Equal(t, DirectionDown, st.Direction)

	empty := Summarize(Series{})
	assert.Equal(t, StabilityStable, empty.Stability)
	assert.Equal(t, 0, empty.TotalWeeks)
}

func TestImplausibleDatesAreDropped(t *testing.T) {
	s := weekly(t, dataset.Ints("ticket", []int64{1, 7_000_000}, nil))
	require.Equal(t, StatusOK, s.Status)
	assert.Equal(t, "days-since-epoch", s.Strategy)
	assert.Len(t, s.Points, 1)

	s = weekly(t, dataset.Ints("ticket", []int64{5_000_000_000, -90_000}, nil))
	assert.Equal(t, StatusInsufficient, s.Status)

	s = weekly(t, dataset.Text("d", []string{"2024-01-01", "9999-12-31", "0001-01-01"}))
	require.Equal(t, StatusOK, s.Status)
	assert.Len(t, s.Points, 1)

	p, ok := ParseDates(dataset.Ints("d", []int64{-25567, 84_000}, nil))
	require.True(t, ok)
	assert.Equal(t, []bool{true, true}, p.Valid, "1900-01-01 and 2199 are inside the window")
}
