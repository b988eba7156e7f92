package review

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"docsentry/config"
)

// Viewer shows decoded document text with a cursor and a reversible
// "strip markup" transform. current and pristine never share backing arrays.
type Viewer struct {
	title     string
	pristine  []string
	current   []string
	rows      []string // current, wrapped at width
	stripped  bool
	truncated bool

	top, row, col int
	width, height int
}

// NewViewer decodes data and splits it into at most config.MaxViewerLines
// lines.
func NewViewer(title string, data []byte, width, height int) Viewer {
	lines, truncated := splitLines(Decode(data), config.MaxViewerLines)
	v := Viewer{
		title:     title,
		pristine:  lines,
		current:   slices.Clone(lines),
		truncated: truncated,
		width:     max(1, width),
		height:    max(1, height),
	}
	v.rows = wrapLines(v.current, v.width)
	return v
}

func splitLines(text string, limit int) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	parts := strings.SplitN(text, "\n", limit+1)
	truncated := false
	if len(parts) > limit {
		truncated = parts[limit] != ""
		parts = parts[:limit]
	} else if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\r")
	}
	return parts, truncated
}

// StripMarkup keeps the first '>' of a run and drops everything after it,
// later '>' included, up to the next '<' on the same line.
func StripMarkup(line string) string {
	if !strings.Contains(line, ">") {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	skipping := false
	for _, r := range line {
		switch {
		case skipping && r != '<':
			continue
		case r == '>':
			b.WriteRune(r)
			skipping = true
		case r == '<':
			b.WriteRune(r)
			skipping = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrapLines splits each line into rows no wider than width cells. An empty
// line still takes one row.
func wrapLines(lines []string, width int) []string {
	rows := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			rows = append(rows, "")
			continue
		}
		var (
			b strings.Builder
			w int
		)
		for _, r := range l {
			rw := runewidth.RuneWidth(r)
			if w > 0 && w+rw > width {
				rows = append(rows, b.String())
				b.Reset()
				w = 0
			}
			b.WriteRune(r)
			w += rw
		}
		rows = append(rows, b.String())
	}
	return rows
}

func (v Viewer) Lines() []string { return slices.Clone(v.current) }
func (v Viewer) Stripped() bool  { return v.stripped }
func (v Viewer) Truncated() bool { return v.truncated }
func (v Viewer) Top() int        { return v.top }
func (v Viewer) Row() int        { return v.row }
func (v Viewer) Col() int        { return v.col }
func (v Viewer) RowCount() int   { return len(v.rows) }

// Resize rewraps for a new viewport and keeps the cursor on screen.
func (v Viewer) Resize(width, height int) Viewer {
	v.width = max(1, width)
	v.height = max(1, height)
	v.rows = wrapLines(v.current, v.width)
	v.row = clamp(v.row, 0, len(v.rows)-1)
	v.top = clamp(v.top, 0, v.row)
	if v.row >= v.top+v.height {
		v.top = v.row - v.height + 1
	}
	return v
}

// Toggle switches between stripped and pristine text and resets the cursor.
func (v Viewer) Toggle() Viewer {
	if v.stripped {
		v.current = slices.Clone(v.pristine)
	} else {
		next := make([]string, len(v.pristine))
		for i, l := range v.pristine {
			next[i] = StripMarkup(l)
		}
		v.current = next
	}
	v.stripped = !v.stripped
	v.rows = wrapLines(v.current, v.width)
	v.top, v.row, v.col = 0, 0, 0
	return v
}

// Handle applies one key. closed is true when the viewer should be left.
func (v Viewer) Handle(k Key) (next Viewer, closed bool) {
	if k.closes() {
		return v, true
	}
	last := len(v.rows) - 1
	switch k.Code {
	case KeyToggleStrip:
		return v.Toggle(), false
	case KeyDown:
		if v.row < last {
			v.row++
		}
	case KeyUp:
		if v.row > 0 {
			v.row--
		}
	case KeyPageDown:
		v.row = clamp(v.row+v.height, 0, last)
	case KeyPageUp:
		v.row = clamp(v.row-v.height, 0, last)
	case KeyRight:
		v.col++
	case KeyLeft:
		if v.col > 0 {
			v.col--
		}
	}
	if v.row < v.top {
		v.top = v.row
	}
	if v.row >= v.top+v.height {
		v.top = v.row - v.height + 1
	}
	return v, false
}

// Sanitize replaces control runes so they cannot drive the terminal.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return '.'
		}
		return r
	}, s)
}

// Frame renders the visible rows with the cursor cell reversed.
func (v Viewer) Frame() Frame {
	rows := window(v.rows, v.top, v.height)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = Sanitize(r)
	}

	f := Frame{
		Title:     fmt.Sprintf("File: %s (ESC/q to return, ctrl+t to strip markup)", v.title),
		Lines:     lines,
		CursorRow: v.row - v.top,
		CursorCol: v.col,
		Reverse:   []Span{{Row: v.row - v.top, Start: v.col, End: v.col + 1}},
	}
	if len(v.rows) == 0 {
		f.CursorRow, f.CursorCol, f.Reverse = -1, -1, nil
	}

	f.Status = fmt.Sprintf("Row %d/%d  Col %d", min(v.row+1, len(v.rows)), len(v.rows), v.col+1)
	if v.stripped {
		f.Status += "  [markup stripped]"
	}
	if v.truncated {
		f.Status += fmt.Sprintf("  (first %d lines)", config.MaxViewerLines)
	}
	return f
}
