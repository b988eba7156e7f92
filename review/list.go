package review

import (
	"fmt"
	"unicode/utf8"
)

// ListAction is what the caller should do after a key on the member list.
type ListAction int

const (
	ListNone ListAction = iota
	ListOpen
	ListScan
	ListClose
)

// List is a cursor over item names: container members, PDF pages or
// salvage blocks.
type List struct {
	title  string
	help   string
	items  []string
	cursor int
	offset int
	height int
}

// NewList builds a list; help is shown in the status line.
func NewList(title string, items []string, help string, height int) List {
	return List{title: title, help: help, items: items, height: max(1, height)}
}

func (l List) Cursor() int { return l.cursor }
func (l List) Offset() int { return l.offset }
func (l List) Len() int    { return len(l.items) }

// Selected returns the index under the cursor, if the list is not empty.
func (l List) Selected() (int, bool) {
	if len(l.items) == 0 {
		return 0, false
	}
	return l.cursor, true
}

// Resize sets the number of visible rows and keeps the cursor on screen.
func (l List) Resize(height int) List {
	l.height = max(1, height)
	return l.follow()
}

func (l List) follow() List {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.height {
		l.offset = l.cursor - l.height + 1
	}
	return l
}

// Handle applies one key and reports the resulting action.
func (l List) Handle(k Key) (List, ListAction) {
	last := len(l.items) - 1
	switch k.Code {
	case KeyEscape, KeyQuit:
		return l, ListClose
	case KeyUp:
		if l.cursor > 0 {
			l.cursor--
		}
	case KeyDown:
		if l.cursor < last {
			l.cursor++
		}
	case KeyPageUp:
		l.cursor = clamp(l.cursor-l.height, 0, last)
	case KeyPageDown:
		l.cursor = clamp(l.cursor+l.height, 0, last)
	case KeyEnter, KeyRight:
		if len(l.items) > 0 {
			return l, ListOpen
		}
	case KeyRune:
		if k.Rune == 's' || k.Rune == 'S' {
			return l, ListScan
		}
	}
	return l.follow(), ListNone
}

// Frame renders the visible items with the cursor row reversed.
func (l List) Frame() Frame {
	rows := window(l.items, l.offset, l.height)
	f := Frame{
		Title:     l.title,
		Lines:     rows,
		CursorRow: -1,
		CursorCol: -1,
	}
	if len(l.items) == 0 {
		f.Status = "Empty. " + l.help
		return f
	}
	r := l.cursor - l.offset
	f.Reverse = []Span{{Row: r, Start: 0, End: max(1, utf8.RuneCountInString(rows[r]))}}
	f.Status = fmt.Sprintf("%d of %d  %s", l.cursor+1, len(l.items), l.help)
	return f
}
