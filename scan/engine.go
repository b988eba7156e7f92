// Package scan implements the heuristic indicator extractor, the trust
// filter and the aggregation of findings over a container.
package scan

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"docsentry/config"
	"docsentry/container"
)

// ProgressFunc is an optional callback to report progress: processed, total, member
type ProgressFunc func(processed, total int, member string)

// Engine runs the extractor over every member of a container.
type Engine struct {
	Trust       *TrustFilter
	Extractor   *Extractor
	MaxFindings int
	Log         logrus.FieldLogger

	// Optional progress callback (nil if unused)
	OnProgress ProgressFunc
}

// NewEngine creates an engine with the default extractor and cap.
// A nil logger discards output.
func NewEngine(trust *TrustFilter, log logrus.FieldLogger) *Engine {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Engine{
		Trust:       trust,
		Extractor:   NewExtractor(),
		MaxFindings: config.MaxFindings,
		Log:         log,
	}
}

// Scan fetches every member once, extracts matches, drops trusted ones and
// returns the findings in extraction order. Unreadable members are logged
// and skipped; the scan itself does not fail.
func (e *Engine) Scan(c container.Container) *Report {
	start := time.Now()
	members := c.Members()
	r := &Report{Members: len(members)}
	limit := e.MaxFindings
	if limit <= 0 {
		limit = config.MaxFindings
	}

	for i, m := range members {
		if e.OnProgress != nil {
			e.OnProgress(i+1, len(members), m.Name)
		}
		for _, kind := range NameFlags(m.Name) {
			e.flag(r, kind, m.Name, 0, limit)
		}

		data, err := c.ReadMember(m.Name)
		if err != nil {
			e.Log.WithFields(logrus.Fields{
				"container": c.Path(),
				"member":    m.Name,
			}).WithError(err).Warn("skipping unreadable member")
			r.Skipped = append(r.Skipped, m.Name)
			continue
		}

		kinds, offsets := ContentFlags(m.Name, data)
		for j, kind := range kinds {
			e.flag(r, kind, m.Name, offsets[j], limit)
		}

		for _, match := range e.Extractor.Extract(data) {
			if e.Trust.IsTrusted(match.Text) {
				continue
			}
			r.add(Finding{Member: m.Name, Offset: match.Offset, Text: match.Text, Family: match.Family}, limit)
		}
	}

	e.Log.WithFields(logrus.Fields{
		"container": c.Path(),
		"members":   r.Members,
		"findings":  len(r.Findings),
		"flags":     len(r.Flags),
		"truncated": r.Truncated,
		"elapsed":   time.Since(start).String(),
	}).Info("scan complete")
	return r
}

// flag records kind for member. The matching structure finding goes through
// the trust filter like any other; the Flag itself is always kept.
func (e *Engine) flag(r *Report, kind FlagKind, member string, offset, limit int) {
	r.Flags = append(r.Flags, Flag{Kind: kind, Member: member})
	text := "[" + kind.String() + "]"
	if e.Trust.IsTrusted(text) {
		return
	}
	r.add(Finding{Member: member, Offset: offset, Text: text, Family: FamilyStructure}, limit)
}
