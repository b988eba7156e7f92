package scan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsentry/config"
	"docsentry/container"
)

// memContainer is an in-memory container; members listed in broken fail to read.
type memContainer struct {
	names  []string
	data   map[string][]byte
	broken map[string]bool
	reads  map[string]int
}

func newMem() *memContainer {
	return &memContainer{data: map[string][]byte{}, broken: map[string]bool{}, reads: map[string]int{}}
}

func (m *memContainer) put(name, body string) *memContainer {
	m.names = append(m.names, name)
	m.data[name] = []byte(body)
	return m
}

func (m *memContainer) breakMember(name string) *memContainer {
	m.names = append(m.names, name)
	m.broken[name] = true
	return m
}

func (m *memContainer) Path() string { return "mem.docx" }

func (m *memContainer) Members() []container.Member {
	out := make([]container.Member, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, container.Member{Name: n, Size: int64(len(m.data[n]))})
	}
	return out
}

func (m *memContainer) ReadMember(name string) ([]byte, error) {
	m.reads[name]++
	if m.broken[name] {
		return nil, fmt.Errorf("inflate %s: %w", name, container.ErrUnreadable)
	}
	return m.data[name], nil
}

func (m *memContainer) Close() error { return nil }

func defaultEngine() *Engine {
	return NewEngine(NewTrustFilter(config.DefaultTrustedPrefixes), nil)
}

func TestScanSuppressesTrustedNamespaces(t *testing.T) {
	c := newMem().put("word/document.xml",
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+
			`<w:hyperlink name="https://evil.example/drop"/></w:document>`)

	r := defaultEngine().Scan(c)
	require.Len(t, r.Findings, 1)
	assert.Equal(t, "word/document.xml", r.Findings[0].Member)
	assert.Equal(t, `name="https://evil.example/drop"`, r.Findings[0].Text)
	assert.False(t, r.Truncated)
	assert.Empty(t, r.Skipped)
}

func TestScanFindingsAreNonEmptyAndUntrusted(t *testing.T) {
	c := newMem().
		put("[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`).
		put("docProps/core.xml", `<cp:coreProperties xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:creator>Mallory</dc:creator><dc:title>Invoice</dc:title></cp:coreProperties>`).
		put("word/_rels/document.xml.rels", `<Relationship Type="http://schemas.openxmlformats.org/x" Target="http://evil.example/x" TargetMode="External"/>`)

	e := defaultEngine()
	r := e.Scan(c)
	require.NotEmpty(t, r.Findings)
	for _, f := range r.Findings {
		assert.NotEmpty(t, f.Text)
		assert.False(t, e.Trust.IsTrusted(f.Text), f.Text)
	}
	assert.Equal(t, 3, r.Members)
	for name, n := range c.reads {
		assert.Equal(t, 1, n, "member %s read more than once", name)
	}
}

func TestScanOrderFollowsMembers(t *testing.T) {
	c := newMem().
		put("a.xml", `name="first"`).
		put("b.xml", `name="second"`)

	r := defaultEngine().Scan(c)
	require.Len(t, r.Findings, 2)
	assert.Equal(t, "a.xml", r.Findings[0].Member)
	assert.Equal(t, "b.xml", r.Findings[1].Member)
}

func TestScanSkipsUnreadableMembers(t *testing.T) {
	c := newMem().
		put("a.xml", `name="ok"`).
		breakMember("b.xml").
		put("c.xml", `uri="also-ok"`)

	r := defaultEngine().Scan(c)
	assert.Equal(t, []string{"b.xml"}, r.Skipped)
	require.Len(t, r.Findings, 2)
	assert.Equal(t, "c.xml", r.Findings[1].Member)
	assert.Contains(t, r.Summary(), "1 unreadable")
}

func TestScanCapSetsTruncated(t *testing.T) {
	body := strings.Repeat(`name="x" `, 40)
	c := newMem().put("a.xml", body).put("b.xml", body)

	e := defaultEngine()
	e.MaxFindings = 50
	r := e.Scan(c)
	assert.Len(t, r.Findings, 50)
	assert.True(t, r.Truncated)
	assert.Contains(t, r.Summary(), "(capped)")

	e.MaxFindings = 80
	r = e.Scan(c)
	assert.Len(t, r.Findings, 80)
	assert.False(t, r.Truncated)
}

func TestScanEmptyContainer(t *testing.T) {
	r := defaultEngine().Scan(newMem())
	assert.Empty(t, r.Findings)
	assert.Zero(t, r.Members)
	assert.Equal(t, "0 findings in 0 members", r.Summary())
}

func TestScanStructuralFlags(t *testing.T) {
	c := newMem().
		put("word/vbaProject.bin", "\x00\x01").
		put("word/embeddings/oleObject1.bin", "\x00").
		put("word/_rels/document.xml.rels", `<Relationship Target="x" TargetMode="External"/>`).
		put("word/document.xml", `<w:body><html><script>alert(1)</script></html></w:body>`)

	r := defaultEngine().Scan(c)
	kinds := map[FlagKind][]string{}
	for _, f := range r.Flags {
		kinds[f.Kind] = append(kinds[f.Kind], f.Member)
	}
	assert.Equal(t, []string{"word/vbaProject.bin"}, kinds[FlagMacro])
	assert.Equal(t, []string{"word/vbaProject.bin", "word/embeddings/oleObject1.bin"}, kinds[FlagEmbeddedObject])
	assert.Equal(t, []string{"word/_rels/document.xml.rels"}, kinds[FlagExternalLink])
	assert.Equal(t, []string{"word/document.xml"}, kinds[FlagScriptInjection])

	var structure []Finding
	for _, f := range r.Findings {
		if f.Family == FamilyStructure {
			structure = append(structure, f)
		}
	}
	require.Len(t, structure, len(r.Flags))
	assert.Equal(t, "[macro project]", structure[0].Text)
	assert.Equal(t, 8, structure[len(structure)-1].Offset)
}

func TestScanTrustAppliesToStructureFindings(t *testing.T) {
	c := newMem().
		put("word/vbaProject.bin", "\x00").
		put("word/_rels/document.xml.rels", `<Relationship Target="x" TargetMode="External"/>`)

	e := NewEngine(NewTrustFilter([]string{"[macro project]"}), nil)
	r := e.Scan(c)

	// flags are never suppressed
	require.Len(t, r.Flags, 3)
	var texts []string
	for _, f := range r.Findings {
		if f.Family == FamilyStructure {
			texts = append(texts, f.Text)
		}
	}
	assert.Equal(t, []string{"[embedded OLE object]", "[external link]"}, texts)
}

func TestScanProgress(t *testing.T) {
	c := newMem().put("a.xml", "").put("b.xml", "")
	var seen []string
	e := defaultEngine()
	e.OnProgress = func(processed, total int, member string) {
		seen = append(seen, fmt.Sprintf("%d/%d %s", processed, total, member))
	}
	e.Scan(c)
	assert.Equal(t, []string{"1/2 a.xml", "2/2 b.xml"}, seen)
}

func TestContentFlagsOnlyMarkup(t *testing.T) {
	kinds, _ := ContentFlags("word/media/image1.png", []byte(`TargetMode="External" <script>`))
	assert.Empty(t, kinds)

	kinds, offsets := ContentFlags("x.xml", []byte(`..<form>..<script>`))
	assert.Equal(t, []FlagKind{FlagScriptInjection}, kinds)
	assert.Equal(t, []int{2}, offsets)
}

func TestFindingString(t *testing.T) {
	f := Finding{Member: "docProps/app.xml", Offset: 42, Text: `name="x"`}
	assert.Equal(t, `docProps/app.xml:42:name="x"`, f.String())
}

func TestNewReport(t *testing.T) {
	trust := NewTrustFilter(config.DefaultTrustedPrefixes)
	in := []Finding{
		{Member: "obj 1", Text: "JavaScript action", Family: FamilyPDF},
		{Member: "obj 2", Text: "", Family: FamilyPDF},
		{Member: "obj 3", Text: "http://www.w3.org/1999/xhtml", Family: FamilyPDF},
		{Member: "obj 4", Text: "Launch action", Family: FamilyPDF},
	}
	r := NewReport(in, 4, trust, 0)
	require.Len(t, r.Findings, 2)
	assert.Equal(t, "obj 4", r.Findings[1].Member)
	assert.False(t, r.Truncated)

	r = NewReport(in, 4, trust, 1)
	assert.Len(t, r.Findings, 1)
	assert.True(t, r.Truncated)
}
