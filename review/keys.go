// Package review holds the interactive state machines behind the terminal
// UI: the member list, the match browser and the document text viewer.
// They consume Keys and produce Frames; painting is left to the caller.
package review

import "unicode"

// KeyCode identifies a logical key.
type KeyCode int

const (
	KeyNone KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyEscape
	KeyQuit
	KeyFilter
	KeyToggleStrip
	KeyEnter
	KeyBackspace
	KeyRune
)

// Key is one key press. Rune is set for KeyRune, and also for KeyQuit and
// KeyFilter when they came from a printable character, so text entry can
// still type them.
type Key struct {
	Code KeyCode
	Rune rune
}

// RuneKey builds a printable key press.
func RuneKey(r rune) Key { return Key{Code: KeyRune, Rune: r} }

// Printable returns the rune to insert into a text field, if any.
func (k Key) Printable() (rune, bool) {
	if k.Rune == 0 || !unicode.IsPrint(k.Rune) {
		return 0, false
	}
	switch k.Code {
	case KeyRune, KeyQuit, KeyFilter:
		return k.Rune, true
	}
	return 0, false
}

// closes reports whether k leaves a non-editing view.
func (k Key) closes() bool {
	return k.Code == KeyEscape || k.Code == KeyQuit
}
