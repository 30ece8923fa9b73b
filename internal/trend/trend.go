// Package trend builds gap-free weekly volume series with week-over-week
// change and trend labels.
package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"case-insights-go/internal/columns"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/numeric"
)

const (
	LabelNA    = "N/A"
	LabelSpike = "SPIKE"
	LabelUp    = "UP"
	LabelDown  = "DOWN"
	LabelFlat  = "FLAT"

	StatusOK           = "ok"
	StatusInsufficient = "insufficient_data"
)

type Point struct {
	WeekStart   time.Time `json:"week_start"`
	Label       string    `json:"week_label"`
	Volume      int       `json:"volume"`
	PriorVolume *int      `json:"prior_volume"`
	WowChange   *int      `json:"wow_change"`
	WowPct      *float64  `json:"wow_pct"`
	Trend       string    `json:"trend"`
}

type Series struct {
	Status     string  `json:"status"`
	DateColumn string  `json:"date_column,omitempty"`
	Strategy   string  `json:"strategy,omitempty"`
	Points     []Point `json:"points"`
}

func insufficient(col string) Series {
	return Series{Status: StatusInsufficient, DateColumn: col, Points: []Point{}}
}

type Engine struct {
	th config.TrendThresholds
}

func New(th config.TrendThresholds) *Engine {
	return &Engine{th: th}
}

// Weekly buckets rows by the Monday of their resolved date. Every week
// between the first and last observed week is present; weeks with no rows
// have volume 0. An unresolved or unparseable date column yields an
// insufficient data series.
func (e *Engine) Weekly(t *dataset.Table, m columns.Map) Series {
	name, ok := m.Get(columns.Date)
	if !ok {
		return insufficient("")
	}
	c, ok := t.Column(name)
	if !ok {
		return insufficient(name)
	}
	parsed, ok := ParseDates(c)
	if !ok {
		return insufficient(name)
	}

	counts := make(map[time.Time]int)
	for i, valid := range parsed.Valid {
		if valid {
			counts[WeekStart(parsed.Dates[i])]++
		}
	}
	weeks := make([]time.Time, 0, len(counts))
	for w := range counts {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	s := Series{Status: StatusOK, DateColumn: name, Strategy: parsed.Strategy}
	first, last := weeks[0], weeks[len(weeks)-1]
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		s.Points = append(s.Points, Point{WeekStart: w, Label: weekLabel(w), Volume: counts[w]})
	}
	e.annotate(s.Points)
	return s
}

func (e *Engine) annotate(points []Point) {
	for i := range points {
		if i == 0 {
			points[i].Trend = e.Classify(nil)
			continue
		}
		prev := points[i-1].Volume
		change := points[i].Volume - prev
		points[i].PriorVolume = &prev
		points[i].WowChange = &change
		if prev > 0 {
			pct := numeric.Percent(change, prev, 1)
			points[i].WowPct = &pct
		}
		points[i].Trend = e.Classify(points[i].WowPct)
	}
}

// Classify maps a week-over-week percentage onto a trend label. Rules are
// evaluated in order: null, spike, up, down, flat.
func (e *Engine) Classify(pct *float64) string {
	switch {
	case pct == nil:
		return LabelNA
	case *pct > e.th.Spike:
		return LabelSpike
	case *pct > e.th.Up:
		return LabelUp
	case *pct < e.th.Down:
		return LabelDown
	default:
		return LabelFlat
	}
}

func weekLabel(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

const (
	StabilityVolatile = "Highly Volatile"
	StabilityVariable = "Variable"
	StabilityStable   = "Stable"

	DirectionUp     = "increasing"
	DirectionDown   = "decreasing"
	DirectionSteady = "stable"
)

// Stats summarises a series for the time intelligence cards.
type Stats struct {
	TotalWeeks    int     `json:"total_weeks"`
	AverageVolume float64 `json:"average_volume"`
	PeakVolume    int     `json:"peak_volume"`
	LowestVolume  int     `json:"lowest_volume"`
	SpikeWeeks    int     `json:"spike_weeks"`
	CV            float64 `json:"coefficient_of_variation"`
	Stability     string  `json:"stability"`
	LatestChange  int     `json:"latest_change"`
	LatestPct     float64 `json:"latest_pct"`
	Direction     string  `json:"direction"`
}

// Summarize computes volume statistics. The coefficient of variation uses
// the sample standard deviation.
func Summarize(s Series) Stats {
	st := Stats{TotalWeeks: len(s.Points), Stability: StabilityStable, Direction: DirectionSteady}
	if len(s.Points) == 0 {
		return st
	}
	sum := 0
	st.PeakVolume = s.Points[0].Volume
	st.LowestVolume = s.Points[0].Volume
	for _, p := range s.Points {
		sum += p.Volume
		if p.Volume > st.PeakVolume {
			st.PeakVolume = p.Volume
		}
		if p.Volume < st.LowestVolume {
			st.LowestVolume = p.Volume
		}
		if p.Trend == LabelSpike {
			st.SpikeWeeks++
		}
	}
	mean := float64(sum) / float64(len(s.Points))
	st.AverageVolume = numeric.Round(mean, 1)

	if len(s.Points) >= 2 && mean > 0 {
		var ss float64
		for _, p := range s.Points {
			d := float64(p.Volume) - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(s.Points)-1))
		st.CV = numeric.Round(std/mean, 2)
	}
	switch {
	case st.CV > 0.5:
		st.Stability = StabilityVolatile
	case st.CV > 0.2:
		st.Stability = StabilityVariable
	}

	if n := len(s.Points); n >= 2 {
		last, prev := s.Points[n-1].Volume, s.Points[n-2].Volume
		st.LatestChange = last - prev
		st.LatestPct = numeric.Percent(st.LatestChange, prev, 1)
		switch {
		case st.LatestPct > 5:
			st.Direction = DirectionUp
		case st.LatestPct < -5:
			st.Direction = DirectionDown
		}
	}
	return st
}
