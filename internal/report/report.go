// Package report renders a dashboard as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"case-insights-go/internal/actionable"
	"case-insights-go/internal/processor"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Renderer writes dashboard sections one table at a time.
type Renderer struct {
	w      io.Writer
	format Format
	err    error
}

func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

func (r *Renderer) newTable(title string, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetTitle("%s", title)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func (r *Renderer) flush(t table.Writer) {
	if r.err != nil {
		return
	}
	var out string
	if r.format == FormatMarkdown {
		out = t.RenderMarkdown()
	} else {
		out = t.Render()
	}
	_, r.err = fmt.Fprintf(r.w, "%s\n\n", out)
}

// Dashboard renders every section present in d, then the action cards and
// any section errors.
func (r *Renderer) Dashboard(d processor.Dashboard) error {
	if d.Overview != nil {
		r.overview(d.Overview)
	}
	if d.Executive != nil {
		r.executive(d.Executive)
	}
	if d.Trend != nil {
		r.trend(d.Trend)
	}
	if d.Partner != nil {
		r.partner(d.Partner)
	}
	if d.Regional != nil {
		r.regional(d.Regional)
	}
	if d.RootCause != nil {
		r.rootCause(d.RootCause)
	}
	if d.Recommendations != nil {
		r.plan(d.Recommendations)
	}
	if d.Themes != nil {
		r.themes(d.Themes)
	}
	r.cards(collectCards(d))
	if len(d.Errors) > 0 {
		r.errors(d.Errors)
	}
	return r.err
}

func (r *Renderer) overview(o *processor.Overview) {
	t := r.newTable("Dataset", table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Source", o.Source},
		{"Session", o.SessionID},
		{"Rows", o.Summary.TotalRows},
		{"Columns", o.Summary.TotalColumns},
		{"Memory (MB)", o.Summary.MemoryMB},
		{"PII found", o.PII.Total()},
		{"Redacted", o.Redacted},
	})
	r.flush(t)

	b := r.newTable("Column bindings", table.Row{"Field", "Column"})
	for _, bind := range o.Columns {
		b.AppendRow(table.Row{bind.Logical, bind.Column})
	}
	r.flush(b)
}

func (r *Renderer) executive(ex *actionable.Executive) {
	t := r.newTable("Executive summary", table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total cases", ex.TotalCases},
		{"Markets", ex.UniqueMarkets},
		{"Partner cases", fmt.Sprintf("%d (%.1f%%)", ex.PartnerCases, ex.PartnerShare)},
		{"Top market", fmt.Sprintf("%s (%d, %.1f%%)", ex.TopCountry, ex.TopCountryCases, ex.TopCountryShare)},
		{"Top issue", fmt.Sprintf("%s (%d, %.1f%%)", ex.TopIssue, ex.TopIssueCases, ex.TopIssueShare)},
		{"Reduction potential", fmt.Sprintf("%d%%", ex.ReductionPotential)},
	})
	r.flush(t)

	if len(ex.TopCountries) > 0 {
		c := r.newTable("Top markets", table.Row{"Country", "Cases", "%"})
		for _, g := range ex.TopCountries {
			c.AppendRow(table.Row{g.Key(), g.Count, g.Percentage})
		}
		r.flush(c)
	}
}

func (r *Renderer) trend(ts *processor.TrendSection) {
	t := r.newTable("Weekly volume", table.Row{"Week", "Cases", "WoW %", "Trend"})
	for _, p := range ts.Series.Points {
		wow := "-"
		if p.WowPct != nil {
			wow = fmt.Sprintf("%+.1f", *p.WowPct)
		}
		t.AppendRow(table.Row{p.Label, p.Volume, wow, p.Trend})
	}
	if len(ts.Series.Points) == 0 {
		t.AppendRow(table.Row{ts.Series.Status, "", "", ""})
	}
	t.AppendFooter(table.Row{"Stability", ts.Stats.Stability, "CV", ts.Stats.CV})
	r.flush(t)
}

func (r *Renderer) partner(p *actionable.PartnerReport) {
	if !p.Available {
		r.unavailable("Partner", p.Reason)
		return
	}
	m := r.newTable(fmt.Sprintf("Partner %q: %d cases (%.1f%%)", p.Keyword, p.Cases, p.Share),
		table.Row{"Country", "Partner", "Cases", "% partner", "% global", "Impact"})
	for _, mk := range p.Markets {
		m.AppendRow(table.Row{mk.Country, mk.Partner, mk.Volume, mk.ShareOfPartner, mk.ShareOfGlobal, mk.Impact})
	}
	r.flush(m)

	i := r.newTable("Partner issues", table.Row{"Issue", "Cases", "% partner", "Severity", "Root cause"})
	for _, iss := range p.Issues {
		i.AppendRow(table.Row{iss.Name, iss.Volume, iss.ShareOfPartner, iss.Severity, iss.RootCause})
	}
	r.flush(i)
}

func (r *Renderer) regional(rg *actionable.Regional) {
	if !rg.Available {
		r.unavailable("Regional", rg.Reason)
		return
	}
	t := r.newTable(fmt.Sprintf("Regional deep dive (%d markets, %.1f avg)", rg.Markets, rg.AveragePerMarket),
		table.Row{"Country", "Cases", "% global", "vs avg", "Band", "Top issue", "Deflection"})
	for _, d := range rg.Dives {
		t.AppendRow(table.Row{d.Country, d.Volume, d.ShareOfGlobal, d.VsAverage, d.Band, d.TopIssue, d.Deflection})
	}
	r.flush(t)
}

func (r *Renderer) rootCause(rc *actionable.RootCause) {
	if !rc.Available {
		r.unavailable("Root cause", rc.Reason)
		return
	}
	t := r.newTable("Issue matrix", table.Row{"Issue", "Cases", "% impact", "Severity"})
	for _, iss := range rc.Issues {
		t.AppendRow(table.Row{iss.Name, iss.Volume, iss.Impact, iss.Severity})
	}
	t.AppendFooter(table.Row{"Top 3", rc.Top3Volume, rc.Top3Share, fmt.Sprintf("%d critical", rc.CriticalCount)})
	r.flush(t)

	for _, dd := range rc.DeepDives {
		d := r.newTable(fmt.Sprintf("#%d %s", dd.Rank, dd.Issue.Name), table.Row{"Root cause", "Fix", "Expected", "Cases saved"})
		d.AppendRow(table.Row{dd.Playbook.RootCause, dd.Playbook.Fix, dd.Playbook.ExpectedReduction, dd.PotentialReduction})
		r.flush(d)
	}
}

func (r *Renderer) plan(p *actionable.Plan) {
	t := r.newTable("Recommendations", table.Row{"Priority", "Action", "Effort", "Cases", "%"})
	for _, a := range p.Actions {
		t.AppendRow(table.Row{a.Priority, a.Action, a.Effort, a.Reduction, a.ReductionPct})
	}
	t.AppendFooter(table.Row{"", "Total", fmt.Sprintf("savings %.2f", p.Savings), p.TotalReduction, p.ReductionPct})
	r.flush(t)
}

func (r *Renderer) themes(ts *processor.ThemeSection) {
	if !ts.Available {
		r.unavailable("Themes", ts.Reason)
		return
	}
	t := r.newTable("Themes", table.Row{"Theme", "Cases", "%"})
	for _, s := range ts.Distribution {
		t.AppendRow(table.Row{s.Theme, s.Count, s.Percentage})
	}
	if ts.Insight != nil {
		t.AppendFooter(table.Row{ts.Insight.ConcentrationLevel, "", ts.Insight.Top3Share})
	}
	r.flush(t)
}

func (r *Renderer) cards(cards []actionable.ActionCard) {
	if len(cards) == 0 {
		return
	}
	t := r.newTable("Actions", table.Row{"Level", "Section", "Insight", "Action"})
	for _, c := range cards {
		t.AppendRow(table.Row{strings.ToUpper(c.Level), c.Section, c.Insight, c.Action})
	}
	r.flush(t)
}

func (r *Renderer) errors(errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	t := r.newTable("Failed sections", table.Row{"Section", "Error"})
	for _, name := range names {
		t.AppendRow(table.Row{name, errs[name]})
	}
	r.flush(t)
}

func (r *Renderer) unavailable(section, reason string) {
	t := r.newTable(section, table.Row{"Status"})
	t.AppendRow(table.Row{"unavailable: " + reason})
	r.flush(t)
}

// collectCards gathers the cards of every section, critical first.
func collectCards(d processor.Dashboard) []actionable.ActionCard {
	var cards []actionable.ActionCard
	if d.Executive != nil {
		cards = append(cards, d.Executive.Cards...)
	}
	if d.Trend != nil {
		cards = append(cards, d.Trend.Cards...)
	}
	if d.Partner != nil {
		cards = append(cards, d.Partner.Cards...)
	}
	if d.Regional != nil {
		for _, dv := range d.Regional.Dives {
			cards = append(cards, dv.Card)
		}
	}
	if d.RootCause != nil {
		for _, dd := range d.RootCause.DeepDives {
			cards = append(cards, dd.Card)
		}
	}
	if d.Recommendations != nil {
		cards = append(cards, d.Recommendations.Cards...)
	}
	if d.Themes != nil {
		cards = append(cards, d.Themes.Cards...)
	}
	rank := map[string]int{
		actionable.LevelCritical: 0,
		actionable.LevelWarning:  1,
		actionable.LevelInfo:     2,
		actionable.LevelSuccess:  3,
	}
	sort.SliceStable(cards, func(i, j int) bool { return rank[cards[i].Level] < rank[cards[j].Level] })
	return cards
}
