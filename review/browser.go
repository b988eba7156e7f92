package review

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docsentry/scan"
)

// BrowserMode is the input mode of the match browser.
type BrowserMode int

const (
	ModeListing BrowserMode = iota
	ModeEditingFilter
)

// Browser pages through formatted findings with a substring filter.
// It is a value; Handle returns the next state.
type Browser struct {
	title  string
	lines  []string // Finding.String() per finding, in scan order
	filter string
	draft  string
	top    int
	mode   BrowserMode
	height int
}

// NewBrowser formats the findings once; they are not modified afterwards.
func NewBrowser(title string, findings []scan.Finding, height int) Browser {
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = f.String()
	}
	return Browser{title: title, lines: lines, height: max(1, height)}
}

func (b Browser) Filter() string    { return b.filter }
func (b Browser) Draft() string     { return b.draft }
func (b Browser) Top() int          { return b.top }
func (b Browser) Mode() BrowserMode { return b.mode }

// Resize sets the number of rows available for findings.
func (b Browser) Resize(height int) Browser {
	b.height = max(1, height)
	return b
}

// Visible returns the formatted findings containing the filter, in order.
func (b Browser) Visible() []string {
	return filterLines(b.lines, b.filter)
}

func filterLines(lines []string, filter string) []string {
	if filter == "" {
		return lines
	}
	var out []string
	for _, l := range lines {
		if strings.Contains(l, filter) {
			out = append(out, l)
		}
	}
	return out
}

// Handle applies one key. closed is true when the browser should be left.
func (b Browser) Handle(k Key) (next Browser, closed bool) {
	if b.mode == ModeEditingFilter {
		return b.handleEdit(k), false
	}

	if k.closes() {
		return b, true
	}
	n := len(b.Visible())
	switch k.Code {
	case KeyFilter:
		b.mode = ModeEditingFilter
		b.draft = ""
	case KeyUp:
		b.top = clamp(b.top-1, 0, n-1)
	case KeyDown:
		b.top = clamp(b.top+1, 0, n-1)
	case KeyPageUp:
		b.top = clamp(b.top-b.height, 0, n-1)
	case KeyPageDown:
		b.top = clamp(b.top+b.height, 0, n-1)
	}
	return b, false
}

func (b Browser) handleEdit(k Key) Browser {
	switch k.Code {
	case KeyEscape:
		b.mode = ModeListing
		b.draft = ""
		return b
	case KeyEnter:
		b.mode = ModeListing
		b.filter = b.draft
		b.draft = ""
		b.top = 0
		return b
	case KeyBackspace:
		if b.draft != "" {
			_, size := utf8.DecodeLastRuneInString(b.draft)
			b.draft = b.draft[:len(b.draft)-size]
		}
		return b
	}
	if r, ok := k.Printable(); ok {
		b.draft += string(r)
	}
	return b
}

// Frame renders the current window. Filter hits are marked for reverse video.
func (b Browser) Frame() Frame {
	visible := b.Visible()
	rows := window(visible, b.top, b.height)

	f := Frame{
		Title:     fmt.Sprintf("Suspicious content: %s (ESC/q to return, / or ctrl+f to filter)", b.title),
		Lines:     rows,
		CursorRow: -1,
		CursorCol: -1,
	}
	if b.filter != "" {
		for i, l := range rows {
			if j := strings.Index(l, b.filter); j >= 0 {
				start := utf8.RuneCountInString(l[:j])
				f.Reverse = append(f.Reverse, Span{Row: i, Start: start, End: start + utf8.RuneCountInString(b.filter)})
			}
		}
	}

	switch {
	case b.mode == ModeEditingFilter:
		f.Status = "Filter: " + b.draft
		f.CursorRow = len(rows)
		f.CursorCol = utf8.RuneCountInString(f.Status)
	case len(visible) == 0 && len(b.lines) == 0:
		f.Status = "No suspicious content found"
	case len(visible) == 0:
		f.Status = fmt.Sprintf("Filter: %s (no matches of %d)", b.filter, len(b.lines))
	default:
		f.Status = fmt.Sprintf("%d-%d of %d", b.top+1, b.top+len(rows), len(visible))
		if b.filter != "" {
			f.Status = fmt.Sprintf("Filter: %s  %s (total %d)", b.filter, f.Status, len(b.lines))
		}
	}
	return f
}
