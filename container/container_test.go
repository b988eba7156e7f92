package container

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeZip builds a zip package in a temp dir from name/content pairs.
func writeZip(t *testing.T, name string, files [][2]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, entry := range files {
		w, err := zw.Create(entry[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(entry[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestZipMembersAndRead(t *testing.T) {
	path := writeZip(t, "sample.docx", [][2]string{
		{"[Content_Types].xml", `<Types/>`},
		{"word/_rels/document.xml.rels", `<Relationship Target="http://evil.example/x" TargetMode="External"/>`},
		{"docProps/core.xml", `<dc:creator>ACME Corp</dc:creator>`},
	})

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	members := c.Members()
	require.Len(t, members, 3)
	assert.Equal(t, "[Content_Types].xml", members[0].Name)
	assert.Equal(t, "docProps/core.xml", members[2].Name)
	assert.Equal(t, int64(len(`<dc:creator>ACME Corp</dc:creator>`)), members[2].Size)

	data, err := c.ReadMember("docProps/core.xml")
	require.NoError(t, err)
	assert.Equal(t, `<dc:creator>ACME Corp</dc:creator>`, string(data))
	assert.Equal(t, path, c.Path())
}

func TestZipMissingMember(t *testing.T) {
	path := writeZip(t, "sample.xlsx", [][2]string{{"a.xml", "x"}})
	c, err := OpenZip(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ReadMember("nope.xml")
	assert.True(t, IsNotFound(err))
}

func TestZipEmptyMember(t *testing.T) {
	path := writeZip(t, "empty.pptx", [][2]string{{"empty.xml", ""}})
	c, err := OpenZip(path)
	require.NoError(t, err)
	defer c.Close()

	data, err := c.ReadMember("empty.xml")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.docx"))
	assert.True(t, IsNotFound(err), "got %v", err)

	garbage := filepath.Join(dir, "garbage.docx")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a zip"), 0o644))
	_, err = Open(garbage)
	assert.True(t, IsUnreadable(err), "got %v", err)

	notOLE := filepath.Join(dir, "garbage.xls")
	require.NoError(t, os.WriteFile(notOLE, []byte("not a compound file"), 0o644))
	_, err = Open(notOLE)
	assert.True(t, IsUnreadable(err), "got %v", err)

	_, err = Open(filepath.Join(dir, "paper.pdf"))
	assert.Error(t, err)
}

const plainMessage = "From: Mallory <mallory@evil.example>\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: invoice\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"XX\"\r\n" +
	"\r\n" +
	"--XX\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"please open the attachment\r\n" +
	"--XX\r\n" +
	"Content-Type: text/html\r\n" +
	"Content-Disposition: attachment; filename=\"invoice.html\"\r\n" +
	"\r\n" +
	"<script src=\"http://evil.example/a.js\"></script>\r\n" +
	"--XX--\r\n"

func TestMessageContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.eml")
	require.NoError(t, os.WriteFile(path, []byte(plainMessage), 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	var names []string
	for _, m := range c.Members() {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "headers")
	assert.Contains(t, names, "body.txt")
	assert.Contains(t, names, "attachments/invoice.html")

	body, err := c.ReadMember("attachments/invoice.html")
	require.NoError(t, err)
	assert.Contains(t, string(body), "<script")

	hdr, err := c.ReadMember("headers")
	require.NoError(t, err)
	assert.Contains(t, string(hdr), "evil.example")

	_, err = c.ReadMember("attachments/other.html")
	assert.True(t, IsNotFound(err))
}

func TestMailboxContainer(t *testing.T) {
	first := "From: a@example.com\nSubject: one\n\nfirst body\n"
	second := "From: b@example.com\nSubject: two\n\nsecond body http://evil.example/\n"
	mbox := "From a@example.com Mon Jan  1 00:00:00 2024\n" + first +
		"\nFrom b@example.com Mon Jan  1 00:00:01 2024\n" + second
	path := filepath.Join(t.TempDir(), "inbox.mbox")
	require.NoError(t, os.WriteFile(path, []byte(mbox), 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	var names []string
	for _, m := range c.Members() {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "msg-1/body.txt")
	assert.Contains(t, names, "msg-2/body.txt")

	data, err := c.ReadMember("msg-2/body.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "second body")

	_, err = c.ReadMember("msg-9/body.txt")
	assert.True(t, IsNotFound(err))
	_, err = c.ReadMember("bogus")
	assert.True(t, IsNotFound(err))
}

func TestPrintableAndBlocks(t *testing.T) {
	raw := []byte{'a', 0x00, 'b', 0x01, '\n', 0xff, '\t', 'c', 0x7f}
	assert.Equal(t, "ab\n\tc", string(Printable(raw)))

	blocks := Blocks([]byte(strings.Repeat("x", 1700)), 800)
	require.Len(t, blocks, 3)
	assert.Len(t, blocks[0], 800)
	assert.Len(t, blocks[2], 100)

	assert.Empty(t, Blocks(nil, 800))
}

func TestSalvageRawFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.doc")
	data := append([]byte{0xd0, 0x01, 0x02}, []byte("Dear customer, enable macros")...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	blocks, err := Salvage(path)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0], "enable macros")

	empty := filepath.Join(dir, "empty.doc")
	require.NoError(t, os.WriteFile(empty, []byte{0x00, 0x01, 0xff}, 0o644))
	_, err = Salvage(empty)
	assert.ErrorIs(t, err, ErrNoText)

	_, err = Salvage(filepath.Join(dir, "missing.doc"))
	assert.True(t, IsNotFound(err))
}

func TestSalvageContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.doc")
	text := strings.Repeat("a", 1000) + ` name="http://evil.example/x"`
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	members := c.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "block-001", members[0].Name)
	assert.Equal(t, int64(800), members[0].Size)
	assert.Equal(t, "block-002", members[1].Name)

	data, err := c.ReadMember("block-002")
	require.NoError(t, err)
	assert.Contains(t, string(data), "evil.example")

	_, err = c.ReadMember("block-003")
	assert.True(t, IsNotFound(err))
}
