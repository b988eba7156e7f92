package container

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/richardlehane/mscfb"

	"docsentry/config"
)

// ErrNoText is returned when the salvage pass finds nothing printable.
var ErrNoText = errors.New("no printable text")

// wordStreams commonly carry the body text of a Word 97-2003 file.
var wordStreams = map[string]bool{
	"WordDocument": true,
	"1Table":       true,
	"0Table":       true,
}

// Salvage pulls printable ASCII out of a legacy binary document and splits it
// into fixed-size blocks. When the file is a compound file only the Word text
// streams are read, otherwise the whole file is filtered.
func Salvage(path string) ([]string, error) {
	raw, err := salvageSource(path)
	if err != nil {
		return nil, err
	}
	text := Printable(raw)
	if len(text) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return Blocks(text, config.SalvageBlock), nil
}

func salvageSource(path string) ([]byte, error) {
	var buf bytes.Buffer
	err := walkOLE(path, func(name string, ent *mscfb.File) bool {
		if !wordStreams[name] {
			return true
		}
		data, rerr := readCapped(ent)
		if rerr == nil {
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return true
	})
	if err == nil && buf.Len() > 0 {
		return buf.Bytes(), nil
	}
	if IsNotFound(err) {
		return nil, err
	}
	// Not a compound file (or no Word streams): salvage the raw bytes.
	return readWhole(path)
}

// SalvageContainer exposes salvaged text blocks as members named
// "block-001", "block-002" and so on, so they can be listed and scanned like
// any other container.
type SalvageContainer struct {
	path   string
	blocks []string
}

// OpenSalvage salvages path once and keeps the blocks.
func OpenSalvage(path string) (*SalvageContainer, error) {
	blocks, err := Salvage(path)
	if err != nil {
		return nil, err
	}
	return &SalvageContainer{path: path, blocks: blocks}, nil
}

func blockName(i int) string { return fmt.Sprintf("block-%03d", i+1) }

func (s *SalvageContainer) Path() string { return s.path }

func (s *SalvageContainer) Members() []Member {
	out := make([]Member, len(s.blocks))
	for i, b := range s.blocks {
		out[i] = Member{Name: blockName(i), Size: int64(len(b))}
	}
	return out
}

func (s *SalvageContainer) ReadMember(name string) ([]byte, error) {
	for i, b := range s.blocks {
		if blockName(i) == name {
			return []byte(b), nil
		}
	}
	return nil, fmt.Errorf("block %s: %w", name, ErrNotFound)
}

func (s *SalvageContainer) Close() error { return nil }

// Printable keeps bytes in 0x20..0x7e plus newline and tab.
func Printable(data []byte) []byte {
	out := make([]byte, 0, len(data)/2)
	for _, c := range data {
		if (c >= 0x20 && c < 0x7f) || c == '\n' || c == '\t' {
			out = append(out, c)
		}
	}
	return out
}

// Blocks splits text into pieces of at most size bytes.
func Blocks(text []byte, size int) []string {
	if size <= 0 {
		size = config.SalvageBlock
	}
	blocks := make([]string, 0, len(text)/size+1)
	for start := 0; start < len(text); start += size {
		end := min(start+size, len(text))
		blocks = append(blocks, string(text[start:end]))
	}
	return blocks
}
