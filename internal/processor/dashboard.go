package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"case-insights-go/internal/actionable"
	"case-insights-go/internal/columns"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/logger"
	"case-insights-go/internal/redact"
	"case-insights-go/internal/themes"
	"case-insights-go/internal/trend"
	"case-insights-go/internal/types"
)

const (
	SectionOverview        = "overview"
	SectionExecutive       = actionable.SectionExecutive
	SectionTrend           = actionable.SectionTrend
	SectionPartner         = actionable.SectionPartner
	SectionRegional        = actionable.SectionRegional
	SectionRootCause       = actionable.SectionRootCause
	SectionRecommendations = actionable.SectionPlan
	SectionThemes          = actionable.SectionThemes
)

// SectionNames lists the dashboard sections in display order.
var SectionNames = []string{
	SectionOverview,
	SectionExecutive,
	SectionTrend,
	SectionPartner,
	SectionRegional,
	SectionRootCause,
	SectionRecommendations,
	SectionThemes,
}

var ErrUnknownSection = errors.New("unknown section")

type Overview struct {
	SessionID string            `json:"session_id"`
	Source    string            `json:"source"`
	LoadedAt  time.Time         `json:"loaded_at"`
	Summary   dataset.Summary   `json:"summary"`
	Columns   []columns.Binding `json:"columns"`
	PII       redact.Stats      `json:"pii_found"`
	Redacted  bool              `json:"redacted"`
}

type TrendSection struct {
	Series trend.Series            `json:"series"`
	Stats  trend.Stats             `json:"stats"`
	Cards  []actionable.ActionCard `json:"cards"`
}

type ThemeSection struct {
	Available    bool                    `json:"available"`
	Reason       string                  `json:"reason,omitempty"`
	Distribution []types.ThemeShare      `json:"distribution"`
	Regional     []types.RegionThemes    `json:"regional"`
	Insight      *themes.Insight         `json:"insight,omitempty"`
	Cards        []actionable.ActionCard `json:"cards"`
}

// Dashboard holds every section. A section that failed is nil and has an
// entry in Errors.
type Dashboard struct {
	SessionID       string                    `json:"session_id"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Overview        *Overview                 `json:"overview,omitempty"`
	Executive       *actionable.Executive     `json:"executive,omitempty"`
	Trend           *TrendSection             `json:"trend,omitempty"`
	Partner         *actionable.PartnerReport `json:"partner,omitempty"`
	Regional        *actionable.Regional      `json:"regional,omitempty"`
	RootCause       *actionable.RootCause     `json:"root_cause,omitempty"`
	Recommendations *actionable.Plan          `json:"recommendations,omitempty"`
	Themes          *ThemeSection             `json:"themes,omitempty"`
	Errors          map[string]string         `json:"errors,omitempty"`
}

func (s *Session) overview() any {
	return &Overview{
		SessionID: s.ID,
		Source:    s.Source,
		LoadedAt:  s.LoadedAt,
		Summary:   s.Summary,
		Columns:   s.Columns.Bindings(),
		PII:       s.PII,
		Redacted:  s.Redacted,
	}
}

func (s *Session) trendSection() any {
	series := s.Weekly()
	st := trend.Summarize(series)
	return &TrendSection{Series: series, Stats: st, Cards: actionable.TrendCards(st)}
}

func (s *Session) themeSection() any {
	sec := &ThemeSection{
		Distribution: []types.ThemeShare{},
		Regional:     []types.RegionThemes{},
		Cards:        []actionable.ActionCard{},
	}
	as := s.ThemeAssignments()
	if as == nil {
		sec.Reason = "no description column resolved"
		return sec
	}
	sec.Available = true
	sec.Distribution = themes.Distribution(as)
	sec.Regional = s.RegionalThemes(0)
	if in, ok := themes.Insights(sec.Distribution, s.Config.Themes); ok {
		sec.Insight = &in
		sec.Cards = actionable.ThemeCards(in)
	}
	return sec
}

func (s *Session) compute(name string) (any, error) {
	switch name {
	case SectionOverview:
		return s.overview(), nil
	case SectionExecutive:
		ex := s.Generator.Executive(s.Aggregator)
		return &ex, nil
	case SectionTrend:
		return s.trendSection(), nil
	case SectionPartner:
		p := s.Generator.Partner(s.Aggregator)
		return &p, nil
	case SectionRegional:
		r := s.Generator.Regional(s.Aggregator)
		return &r, nil
	case SectionRootCause:
		rc := s.Generator.RootCause(s.Aggregator)
		return &rc, nil
	case SectionRecommendations:
		p := s.Generator.Plan(s.Aggregator)
		return &p, nil
	case SectionThemes:
		return s.themeSection(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Section computes one section. A panic inside the section is returned as
// an error.
func (s *Session) Section(name string) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("section %s: %v", name, r)
		}
	}()
	return s.compute(name)
}

type sectionResult struct {
	name  string
	value any
	err   error
	took  time.Duration
}

// BuildDashboard computes every section concurrently. Sections are isolated:
// one failing section leaves the others intact. Sections still running when
// ctx is done are reported as errors.
func BuildDashboard(ctx context.Context, s *Session, log *logger.Logger) Dashboard {
	log = log.Component("processor.dashboard")
	d := Dashboard{SessionID: s.ID, GeneratedAt: time.Now().UTC(), Errors: map[string]string{}}

	results := make(chan sectionResult, len(SectionNames))
	for _, name := range SectionNames {
		go func(name string) {
			start := time.Now()
			v, err := s.Section(name)
			results <- sectionResult{name: name, value: v, err: err, took: time.Since(start)}
		}(name)
	}

	pending := make(map[string]bool, len(SectionNames))
	for _, name := range SectionNames {
		pending[name] = true
	}
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			for name := range pending {
				d.Errors[name] = ctx.Err().Error()
			}
			log.WithError(ctx.Err()).WithField("pending", len(pending)).Warn("dashboard incomplete")
			return d
		case r := <-results:
			delete(pending, r.name)
			entry := log.WithField("section", r.name).WithField("duration_ms", r.took.Milliseconds())
			if r.err != nil {
				d.Errors[r.name] = r.err.Error()
				entry.WithField("error", r.err.Error()).Error("section failed")
				continue
			}
			entry.Debug("section built")
			d.set(r.value)
		}
	}
	if len(d.Errors) == 0 {
		d.Errors = nil
	}
	return d
}

func (d *Dashboard) set(v any) {
	switch v := v.(type) {
	case *Overview:
		d.Overview = v
	case *actionable.Executive:
		d.Executive = v
	case *TrendSection:
		d.Trend = v
	case *actionable.PartnerReport:
		d.Partner = v
	case *actionable.Regional:
		d.Regional = v
	case *actionable.RootCause:
		d.RootCause = v
	case *actionable.Plan:
		d.Recommendations = v
	case *ThemeSection:
		d.Themes = v
	}
}
