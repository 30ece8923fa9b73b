package processor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"case-insights-go/internal/actionable"
	"case-insights-go/internal/aggregator"
	"case-insights-go/internal/columns"
	"case-insights-go/internal/config"
	"case-insights-go/internal/dataset"
	"case-insights-go/internal/redact"
	"case-insights-go/internal/themes"
	"case-insights-go/internal/trend"
	"case-insights-go/internal/types"
)

// Options control how a dataset is prepared for a session.
type Options struct {
	RedactPII   bool
	RedactURLs  bool
	FoldAccents bool
}

// Session is everything derived from one loaded dataset. It is built once
// and never modified; loading another dataset means building a new Session.
type Session struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`

	Table      *dataset.Table
	Columns    columns.Map
	Summary    dataset.Summary
	PII        redact.Stats
	Redacted   bool
	Config     config.Analytics
	Aggregator *aggregator.Engine
	Trend      *trend.Engine
	Classifier *themes.Classifier
	Generator  *actionable.Generator

	themesOnce  sync.Once
	assignments []types.ThemeAssignment

	weeklyOnce sync.Once
	weekly     trend.Series
}

// NewSession resolves columns, optionally redacts the free text columns and
// wires the engines.
func NewSession(t *dataset.Table, source string, cfg config.Analytics, opts Options) (*Session, error) {
	m := columns.Resolve(t.ColumnNames(), cfg.Columns)

	var textCols []string
	for _, name := range []string{columns.Description, columns.DescriptionTranslated} {
		if phys, ok := m.Get(name); ok {
			textCols = append(textCols, phys)
		}
	}
	pii := redact.CountTable(t, textCols...)
	if opts.RedactPII {
		r := redact.New()
		r.URLs = opts.RedactURLs
		redacted, err := r.Table(t, textCols...)
		if err != nil {
			return nil, err
		}
		t = redacted
	}

	var classifierOpts []themes.Option
	if opts.FoldAccents {
		classifierOpts = append(classifierOpts, themes.WithAccentFolding())
	}

	return &Session{
		ID:         uuid.New().String(),
		Source:     source,
		LoadedAt:   time.Now().UTC(),
		Table:      t,
		Columns:    m,
		Summary:    dataset.Summarize(t),
		PII:        pii,
		Redacted:   opts.RedactPII,
		Config:     cfg,
		Aggregator: aggregator.New(t, m, cfg),
		Trend:      trend.New(cfg.Trend),
		Classifier: themes.New(cfg.Themes, classifierOpts...),
		Generator:  actionable.New(cfg),
	}, nil
}

// Weekly is the session's weekly series, computed on first use.
func (s *Session) Weekly() trend.Series {
	s.weeklyOnce.Do(func() {
		s.weekly = s.Trend.Weekly(s.Table, s.Columns)
	})
	return s.weekly
}

// ThemeAssignments classifies every row's text on first use. It is nil when
// no text column resolved.
func (s *Session) ThemeAssignments() []types.ThemeAssignment {
	s.themesOnce.Do(func() {
		primary, fallback, ok := s.Columns.Text()
		if !ok {
			return
		}
		s.assignments = s.Classifier.AnalyzeColumn(s.Table, primary, fallback)
	})
	return s.assignments
}

// RegionalThemes is the theme mix of the topN largest countries. topN <= 0
// uses the configured default.
func (s *Session) RegionalThemes(topN int) []types.RegionThemes {
	as := s.ThemeAssignments()
	country, ok := s.Columns.Get(columns.Country)
	if as == nil || !ok {
		return []types.RegionThemes{}
	}
	if topN <= 0 {
		topN = s.Config.Limits.RegionalGroups
	}
	return themes.Regional(s.Table, as, country, topN, s.Config.Strength)
}

// Store holds the current session. Readers always see a complete session.
type Store struct {
	mu      sync.RWMutex
	current *Session
}

func NewStore() *Store {
	return &Store{}
}

func (st *Store) Current() (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current, st.current != nil
}

// Replace swaps in s and returns the session it replaced, if any.
func (st *Store) Replace(s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	prev := st.current
	st.current = s
	return prev
}
