package trend

import (
	"math"
	"strings"
	"time"

	"case-insights-go/internal/dataset"
)

// textLayouts is the ordered list of text date formats tried before the
// generic casts: YYYY-MM-DD, YYYY-MM-DD HH:MM:SS, DD/MM/YYYY, MM/DD/YYYY,
// DD-MM-YYYY, YYYY/MM/DD, DD/MM/YYYY HH:MM:SS, MM/DD/YYYY HH:MM:SS.
// Day and month accept one or two digits.
var textLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"2006/1/2",
	"2/1/2006 15:04:05",
	"1/2/2006 15:04:05",
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
}

// Dates outside this window are treated as unparseable. It keeps ids or
// amounts in a numeric date column from stretching the gap-filled series.
var (
	earliestDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	latestDate   = time.Date(2200, 12, 31, 0, 0, 0, 0, time.UTC)
)

const secondsPerDay = 24 * 60 * 60

// Parsed is the outcome of the date cascade. Dates are calendar days at UTC
// midnight; Valid marks rows that parsed.
type Parsed struct {
	Dates    []time.Time
	Valid    []bool
	Strategy string
}

func (p Parsed) count() int {
	n := 0
	for _, v := range p.Valid {
		if v {
			n++
		}
	}
	return n
}

// ParseDates runs the cascade: native time, then each text layout (the first
// layout that parses at least one row wins, other rows become null), then a
// generic date cast, then a generic datetime cast. ok is false when nothing
// parsed.
func ParseDates(c *dataset.Column) (Parsed, bool) {
	if c == nil || c.Len() == 0 {
		return Parsed{}, false
	}
	if c.Kind == dataset.KindTime {
		p := newParsed(c.Len(), "native")
		for i := 0; i < c.Len(); i++ {
			if t, ok := c.Time(i); ok {
				p.set(i, t)
			}
		}
		return p, p.count() > 0
	}

	if c.Kind == dataset.KindText {
		for _, layout := range textLayouts {
			p := parseWith(c, layout, func(s string) (time.Time, bool) {
				t, err := time.Parse(layout, s)
				return t, err == nil
			})
			if p.count() > 0 {
				return p, true
			}
		}
	}

	if p := dateCast(c); p.count() > 0 {
		return p, true
	}
	if p := datetimeCast(c); p.count() > 0 {
		return p, true
	}
	return Parsed{}, false
}

func newParsed(n int, strategy string) Parsed {
	return Parsed{Dates: make([]time.Time, n), Valid: make([]bool, n), Strategy: strategy}
}

func (p *Parsed) set(i int, t time.Time) {
	d := day(t)
	if d.Before(earliestDate) || d.After(latestDate) {
		return
	}
	p.Dates[i] = d
	p.Valid[i] = true
}

func parseWith(c *dataset.Column, strategy string, parse func(string) (time.Time, bool)) Parsed {
	p := newParsed(c.Len(), strategy)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if t, ok := parse(strings.TrimSpace(c.String(i))); ok {
			p.set(i, t)
		}
	}
	return p
}

var (
	minEpochDay = float64(earliestDate.Unix() / secondsPerDay)
	maxEpochDay = float64(latestDate.Unix() / secondsPerDay)
)

// dateCast reads numbers as days since the Unix epoch and text as ISO dates.
func dateCast(c *dataset.Column) Parsed {
	switch c.Kind {
	case dataset.KindInt, dataset.KindFloat:
		p := newParsed(c.Len(), "days-since-epoch")
		for i := 0; i < c.Len(); i++ {
			v, ok := c.Float(i)
			if !ok || math.IsNaN(v) || v < minEpochDay || v > maxEpochDay {
				continue
			}
			p.set(i, time.Unix(0, 0).UTC().AddDate(0, 0, int(math.Floor(v))))
		}
		return p
	case dataset.KindText:
		return parseWith(c, "date-cast", func(s string) (time.Time, bool) {
			t, err := time.Parse(time.DateOnly, s)
			return t, err == nil
		})
	}
	return Parsed{}
}

// datetimeCast reads ISO-8601 timestamps and truncates them to the day.
func datetimeCast(c *dataset.Column) Parsed {
	if c.Kind != dataset.KindText {
		return Parsed{}
	}
	return parseWith(c, "datetime-cast", func(s string) (time.Time, bool) {
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	})
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's week.
func WeekStart(t time.Time) time.Time {
	d := day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
