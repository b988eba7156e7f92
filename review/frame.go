package review

// Span marks runes [Start, End) of row Row for reverse video.
type Span struct {
	Row, Start, End int
}

// Frame is everything needed to paint one screen of a view. Lines are
// already windowed to the viewport.
type Frame struct {
	Title   string
	Lines   []string
	Status  string
	Reverse []Span

	// Cursor position within Lines; -1 when the view has no cursor.
	CursorRow int
	CursorCol int
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func window(lines []string, top, height int) []string {
	if top >= len(lines) || height <= 0 {
		return nil
	}
	end := top + height
	if end > len(lines) {
		end = len(lines)
	}
	return lines[top:end]
}
