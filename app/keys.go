package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"docsentry/review"
)

// translateKey maps a bubbletea key press to review keys. Pasted text
// arrives as several runes and becomes one key per rune.
func translateKey(msg tea.KeyMsg) []review.Key {
	switch msg.Type {
	case tea.KeyUp:
		return []review.Key{{Code: review.KeyUp}}
	case tea.KeyDown:
		return []review.Key{{Code: review.KeyDown}}
	case tea.KeyLeft:
		return []review.Key{{Code: review.KeyLeft}}
	case tea.KeyRight:
		return []review.Key{{Code: review.KeyRight}}
	case tea.KeyPgUp:
		return []review.Key{{Code: review.KeyPageUp}}
	case tea.KeyPgDown:
		return []review.Key{{Code: review.KeyPageDown}}
	case tea.KeyEsc:
		return []review.Key{{Code: review.KeyEscape}}
	case tea.KeyEnter:
		return []review.Key{{Code: review.KeyEnter}}
	case tea.KeyBackspace:
		return []review.Key{{Code: review.KeyBackspace}}
	case tea.KeyCtrlF:
		return []review.Key{{Code: review.KeyFilter}}
	case tea.KeyCtrlT:
		return []review.Key{{Code: review.KeyToggleStrip}}
	case tea.KeySpace:
		return []review.Key{review.RuneKey(' ')}
	case tea.KeyRunes:
		keys := make([]review.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			switch r {
			case 'q':
				keys = append(keys, review.Key{Code: review.KeyQuit, Rune: r})
			case '/':
				keys = append(keys, review.Key{Code: review.KeyFilter, Rune: r})
			default:
				keys = append(keys, review.RuneKey(r))
			}
		}
		return keys
	}
	return nil
}
