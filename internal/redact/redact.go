// Package redact replaces personal data in free text with fixed placeholders.
package redact

import (
	"regexp"
	"strings"

	"case-insights-go/internal/dataset"
)

const (
	EmailPlaceholder = "[EMAIL_REDACTED]"
	PhonePlaceholder = "[PHONE_REDACTED]"
	CardPlaceholder  = "[CREDIT_CARD_REDACTED]"
	IPPlaceholder    = "[IP_REDACTED]"
	URLPlaceholder   = "[URL_REDACTED]"
	NamePlaceholder  = "[NAME_REDACTED]"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	cardPattern  = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
	ipPattern    = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)

	// Greetings match in any case; the name itself must be capitalised.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Miss|Dr|Prof)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b`),
		regexp.MustCompile(`\b(?i:dear)\s+[A-Z][a-z]+\b`),
		regexp.MustCompile(`\b(?i:hi)\s+[A-Z][a-z]+\b`),
		regexp.MustCompile(`\b(?i:hello)\s+[A-Z][a-z]+\b`),
	}
)

// Redactor selects which kinds of personal data are replaced.
type Redactor struct {
	Emails bool
	Phones bool
	Cards  bool
	IPs    bool
	URLs   bool
	Names  bool
}

// New returns a redactor with every kind enabled except URLs.
func New() Redactor {
	return Redactor{Emails: true, Phones: true, Cards: true, IPs: true, Names: true}
}

// Text redacts s. Emails go first so their digits never reach the phone
// pattern; names go last.
func (r Redactor) Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	if r.Emails {
		s = emailPattern.ReplaceAllLiteralString(s, EmailPlaceholder)
	}
	if r.Phones {
		s = phonePattern.ReplaceAllLiteralString(s, PhonePlaceholder)
	}
	if r.Cards {
		s = cardPattern.ReplaceAllLiteralString(s, CardPlaceholder)
	}
	if r.IPs {
		s = ipPattern.ReplaceAllLiteralString(s, IPPlaceholder)
	}
	if r.URLs {
		s = urlPattern.ReplaceAllLiteralString(s, URLPlaceholder)
	}
	if r.Names {
		for _, p := range namePatterns {
			s = p.ReplaceAllLiteralString(s, NamePlaceholder)
		}
	}
	return s
}

// Table returns a copy of t with the named text columns redacted. Unknown
// columns are skipped. Nulls stay null.
func (r Redactor) Table(t *dataset.Table, columns ...string) (*dataset.Table, error) {
	out := t
	for _, name := range columns {
		c, ok := out.Column(name)
		if !ok || c.Kind != dataset.KindText {
			continue
		}
		next, err := out.WithColumn(c.MapText(r.Text))
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// Stats counts personal data found in text, whether or not it would be
// redacted. SSNs are only counted.
type Stats struct {
	Emails int `json:"emails"`
	Phones int `json:"phones"`
	Cards  int `json:"credit_cards"`
	IPs    int `json:"ip_addresses"`
	URLs   int `json:"urls"`
	SSNs   int `json:"ssns"`
	Names  int `json:"names"`
}

func (s Stats) Total() int {
	return s.Emails + s.Phones + s.Cards + s.IPs + s.URLs + s.SSNs + s.Names
}

func (s *Stats) add(o Stats) {
	s.Emails += o.Emails
	s.Phones += o.Phones
	s.Cards += o.Cards
	s.IPs += o.IPs
	s.URLs += o.URLs
	s.SSNs += o.SSNs
	s.Names += o.Names
}

// Count scans text without modifying it. Every pattern runs over the
// original text, so one digit run can count under several kinds.
func Count(text string) Stats {
	if text == "" {
		return Stats{}
	}
	st := Stats{
		Emails: len(emailPattern.FindAllStringIndex(text, -1)),
		Phones: len(phonePattern.FindAllStringIndex(text, -1)),
		Cards:  len(cardPattern.FindAllStringIndex(text, -1)),
		IPs:    len(ipPattern.FindAllStringIndex(text, -1)),
		URLs:   len(urlPattern.FindAllStringIndex(text, -1)),
		SSNs:   len(ssnPattern.FindAllStringIndex(text, -1)),
	}
	for _, p := range namePatterns {
		st.Names += len(p.FindAllStringIndex(text, -1))
	}
	return st
}

// CountTable sums Count over the named text columns.
func CountTable(t *dataset.Table, columns ...string) Stats {
	var st Stats
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			if !c.IsNull(i) {
				st.add(Count(c.String(i)))
			}
		}
	}
	return st
}
