package scan

import (
	"fmt"

	"docsentry/config"
)

// Finding is one candidate indicator, tagged with where it came from.
// Findings are values and are never modified after a scan produces them.
type Finding struct {
	Member string
	Offset int
	Text   string
	Family Family
}

// String formats the finding as "member:offset:text", which is also the
// form the browser filters on.
func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%s", f.Member, f.Offset, f.Text)
}

// Flag is a coarse structural indicator about a whole member.
type Flag struct {
	Kind   FlagKind
	Member string
}

// FlagKind enumerates the structural checks.
type FlagKind int

const (
	FlagMacro FlagKind = iota
	FlagEmbeddedObject
	FlagExternalLink
	FlagScriptInjection
)

func (k FlagKind) String() string {
	switch k {
	case FlagMacro:
		return "macro project"
	case FlagEmbeddedObject:
		return "embedded OLE object"
	case FlagExternalLink:
		return "external link"
	case FlagScriptInjection:
		return "HTML/JS injection"
	default:
		return "unknown"
	}
}

// Report is the outcome of scanning one container.
type Report struct {
	Findings  []Finding
	Flags     []Flag
	Skipped   []string // members that could not be read
	Members   int
	Truncated bool // the findings cap was reached
}

// NewReport builds a report from findings produced outside the engine,
// applying the same trust filter and cap.
func NewReport(findings []Finding, members int, trust *TrustFilter, limit int) *Report {
	if limit <= 0 {
		limit = config.MaxFindings
	}
	r := &Report{Members: members}
	for _, f := range findings {
		if f.Text == "" || trust.IsTrusted(f.Text) {
			continue
		}
		r.add(f, limit)
	}
	return r
}

// add appends f unless the cap is reached.
func (r *Report) add(f Finding, limit int) {
	if len(r.Findings) >= limit {
		r.Truncated = true
		return
	}
	r.Findings = append(r.Findings, f)
}

// Summary is a one-line description for status bars.
func (r *Report) Summary() string {
	s := fmt.Sprintf("%d findings in %d members", len(r.Findings), r.Members)
	if len(r.Flags) > 0 {
		s += fmt.Sprintf(", %d structural flags", len(r.Flags))
	}
	if len(r.Skipped) > 0 {
		s += fmt.Sprintf(", %d unreadable", len(r.Skipped))
	}
	if r.Truncated {
		s += " (capped)"
	}
	return s
}
