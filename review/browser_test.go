package review

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsentry/scan"
)

func sampleFindings() []scan.Finding {
	return []scan.Finding{
		{Member: "word/document.xml", Offset: 10, Text: `name="alpha"`},
		{Member: "word/_rels/document.xml.rels", Offset: 42, Text: `Target="http://evil.example/x"`},
		{Member: "docProps/core.xml", Offset: 0, Text: `<dc:creator>ACME Corp`},
		{Member: "word/document.xml", Offset: 99, Text: `uri="https://evil.example/y"`},
	}
}

func typeString(b Browser, s string) Browser {
	for _, r := range s {
		b, _ = b.Handle(RuneKey(r))
	}
	return b
}

func TestBrowserEmptyFilterShowsAllInOrder(t *testing.T) {
	fs := sampleFindings()
	b := NewBrowser("a.docx", fs, 10)
	vis := b.Visible()
	require.Len(t, vis, len(fs))
	for i, f := range fs {
		assert.Equal(t, f.String(), vis[i])
	}
}

func TestBrowserFilterIsSubsequenceOfContainingLines(t *testing.T) {
	fs := sampleFindings()
	for _, filter := range []string{"evil", "word/", ":0:", "ACME", "nothing-matches", `"`} {
		b := NewBrowser("a.docx", fs, 10)
		b, _ = b.Handle(Key{Code: KeyFilter, Rune: '/'})
		b = typeString(b, filter)
		b, _ = b.Handle(Key{Code: KeyEnter})
		require.Equal(t, filter, b.Filter())

		var want []string
		for _, f := range fs {
			if strings.Contains(f.String(), filter) {
				want = append(want, f.String())
			}
		}
		assert.Equal(t, want, b.Visible(), filter)
	}
}

func TestBrowserEditSubmitResetsTop(t *testing.T) {
	b := NewBrowser("a.docx", sampleFindings(), 2)
	b, _ = b.Handle(Key{Code: KeyDown})
	b, _ = b.Handle(Key{Code: KeyDown})
	require.Equal(t, 2, b.Top())

	b, closed := b.Handle(Key{Code: KeyFilter})
	assert.False(t, closed)
	assert.Equal(t, ModeEditingFilter, b.Mode())

	// q and / are typed while editing, not acted on.
	b, closed = b.Handle(Key{Code: KeyQuit, Rune: 'q'})
	assert.False(t, closed)
	b, _ = b.Handle(Key{Code: KeyFilter, Rune: '/'})
	assert.Equal(t, "q/", b.Draft())

	b, _ = b.Handle(Key{Code: KeyBackspace})
	b, _ = b.Handle(Key{Code: KeyBackspace})
	b, _ = b.Handle(Key{Code: KeyBackspace})
	assert.Equal(t, "", b.Draft())

	b = typeString(b, "evil")
	b, _ = b.Handle(Key{Code: KeyEnter})
	assert.Equal(t, ModeListing, b.Mode())
	assert.Equal(t, "evil", b.Filter())
	assert.Equal(t, 0, b.Top())
	assert.Len(t, b.Visible(), 2)
}

func TestBrowserEditCancelKeepsFilter(t *testing.T) {
	b := NewBrowser("a.docx", sampleFindings(), 5)
	b, _ = b.Handle(Key{Code: KeyFilter})
	b = typeString(b, "word")
	b, _ = b.Handle(Key{Code: KeyEnter})
	b, _ = b.Handle(Key{Code: KeyDown})
	require.Equal(t, 1, b.Top())

	b, _ = b.Handle(Key{Code: KeyFilter})
	b = typeString(b, "zzz")
	b, _ = b.Handle(Key{Code: KeyEscape})
	assert.Equal(t, ModeListing, b.Mode())
	assert.Equal(t, "word", b.Filter())
	assert.Equal(t, "", b.Draft())
	assert.Equal(t, 1, b.Top())
}

func TestBrowserScrollClamps(t *testing.T) {
	b := NewBrowser("a.docx", sampleFindings(), 2)
	b, _ = b.Handle(Key{Code: KeyUp})
	assert.Equal(t, 0, b.Top())
	for i := 0; i < 10; i++ {
		b, _ = b.Handle(Key{Code: KeyDown})
	}
	assert.Equal(t, 3, b.Top())

	b, _ = b.Handle(Key{Code: KeyPageUp})
	assert.Equal(t, 1, b.Top())
	b, _ = b.Handle(Key{Code: KeyPageUp})
	assert.Equal(t, 0, b.Top())
	b, _ = b.Handle(Key{Code: KeyPageDown})
	b, _ = b.Handle(Key{Code: KeyPageDown})
	b, _ = b.Handle(Key{Code: KeyPageDown})
	assert.Equal(t, 3, b.Top())
}

func TestBrowserEmptyFindings(t *testing.T) {
	b := NewBrowser("a.docx", nil, 5)
	b, _ = b.Handle(Key{Code: KeyDown})
	b, _ = b.Handle(Key{Code: KeyPageDown})
	assert.Equal(t, 0, b.Top())
	f := b.Frame()
	assert.Empty(t, f.Lines)
	assert.Equal(t, "No suspicious content found", f.Status)
}

func TestBrowserCloses(t *testing.T) {
	b := NewBrowser("a.docx", sampleFindings(), 5)
	_, closed := b.Handle(Key{Code: KeyEscape})
	assert.True(t, closed)
	_, closed = b.Handle(Key{Code: KeyQuit, Rune: 'q'})
	assert.True(t, closed)
}

func TestBrowserFrame(t *testing.T) {
	fs := make([]scan.Finding, 30)
	for i := range fs {
		fs[i] = scan.Finding{Member: "m.xml", Offset: i, Text: fmt.Sprintf(`name="v%d"`, i)}
	}
	b := NewBrowser("a.docx", fs, 10)
	b, _ = b.Handle(Key{Code: KeyPageDown})
	f := b.Frame()
	require.Len(t, f.Lines, 10)
	assert.Equal(t, fs[10].String(), f.Lines[0])
	assert.Equal(t, "11-20 of 30", f.Status)
	assert.Equal(t, -1, f.CursorRow)

	b, _ = b.Handle(Key{Code: KeyFilter})
	b = typeString(b, `v2"`)
	b, _ = b.Handle(Key{Code: KeyEnter})
	f = b.Frame()
	require.Len(t, f.Lines, 1)
	require.Len(t, f.Reverse, 1)
	assert.Equal(t, Span{Row: 0, Start: strings.Index(f.Lines[0], `v2"`), End: strings.Index(f.Lines[0], `v2"`) + 3}, f.Reverse[0])

	b, _ = b.Handle(Key{Code: KeyFilter})
	b = typeString(b, "ab")
	f = b.Frame()
	assert.Equal(t, "Filter: ab", f.Status)
	assert.Equal(t, len("Filter: ab"), f.CursorCol)
}
