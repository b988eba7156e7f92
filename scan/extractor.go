package scan

import (
	"bytes"

	"docsentry/config"
)

// Family identifies which heuristic produced a match.
type Family int

const (
	FamilyKeyValue Family = iota
	FamilyXMLNS
	FamilyMetadata
	FamilyStructure
	FamilyPDF
)

func (f Family) String() string {
	switch f {
	case FamilyKeyValue:
		return "keyvalue"
	case FamilyXMLNS:
		return "xmlns"
	case FamilyMetadata:
		return "metadata"
	case FamilyStructure:
		return "structure"
	case FamilyPDF:
		return "pdf"
	default:
		return "unknown"
	}
}

// Match is a raw extractor hit before trust filtering.
type Match struct {
	Offset int
	Text   string
	Family Family
}

// Extractor scans raw member bytes for candidate indicators. It never parses
// the markup, so broken or truncated documents are scanned just the same.
type Extractor struct {
	Keys []string
	Tags []string
}

// NewExtractor returns an extractor with the default key and tag sets.
func NewExtractor() *Extractor {
	return &Extractor{Keys: config.AttributeKeys, Tags: config.MetadataTags}
}

// Extract runs the key/value, xmlns and metadata passes in that order.
func (x *Extractor) Extract(buf []byte) []Match {
	if len(buf) == 0 {
		return nil
	}
	var out []Match
	for _, key := range x.Keys {
		out = append(out, keyValues(buf, []byte(key))...)
	}
	out = append(out, xmlnsDecls(buf)...)
	for _, tag := range x.Tags {
		out = append(out, metadataTags(buf, []byte(tag))...)
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func skipSpace(buf []byte, i int) int {
	for i < len(buf) && isSpace(buf[i]) {
		i++
	}
	return i
}

// closingQuote returns the index of the first '"' at or after i, or -1.
func closingQuote(buf []byte, i int) int {
	if i >= len(buf) {
		return -1
	}
	j := bytes.IndexByte(buf[i:], '"')
	if j < 0 {
		return -1
	}
	return i + j
}

// keyValues finds key, optional '=' and a double-quoted value.
// A key whose value is not quoted resumes at key end, so a key that starts
// inside the rejected span is still seen.
func keyValues(buf, key []byte) []Match {
	if len(key) == 0 {
		return nil
	}
	var out []Match
	pos := 0
	for pos < len(buf) {
		idx := bytes.Index(buf[pos:], key)
		if idx < 0 {
			break
		}
		start := pos + idx
		v := skipSpace(buf, start+len(key))
		if v < len(buf) && buf[v] == '=' {
			v = skipSpace(buf, v+1)
		}
		if v >= len(buf) || buf[v] != '"' {
			pos = start + len(key)
			continue
		}
		end := closingQuote(buf, v+1)
		if end < 0 {
			// no quote left anywhere, nothing further can close
			break
		}
		out = append(out, Match{Offset: start, Text: string(buf[start : end+1]), Family: FamilyKeyValue})
		pos = end + 1
	}
	return out
}

var xmlnsKey = []byte("xmlns:")

func isPrefixEnd(c byte) bool {
	switch c {
	case '=', ' ', '\t', '\n', '\r', '>', '/':
		return true
	}
	return false
}

// xmlnsDecls finds xmlns:prefix="value" declarations.
func xmlnsDecls(buf []byte) []Match {
	var out []Match
	pos := 0
	for pos < len(buf) {
		idx := bytes.Index(buf[pos:], xmlnsKey)
		if idx < 0 {
			break
		}
		start := pos + idx
		p := start + len(xmlnsKey)
		prefEnd := p
		for prefEnd < len(buf) && !isPrefixEnd(buf[prefEnd]) {
			prefEnd++
		}
		if prefEnd == p {
			pos = p
			continue
		}
		eq := skipSpace(buf, prefEnd)
		if eq >= len(buf) || buf[eq] != '=' {
			pos = prefEnd
			continue
		}
		v := skipSpace(buf, eq+1)
		if v >= len(buf) || buf[v] != '"' {
			pos = eq + 1
			continue
		}
		end := closingQuote(buf, v+1)
		if end < 0 {
			break
		}
		out = append(out, Match{Offset: start, Text: string(buf[start : end+1]), Family: FamilyXMLNS})
		pos = end + 1
	}
	return out
}

func isNameEnd(c byte) bool {
	return c == '>' || c == '/' || isSpace(c)
}

// metadataTags captures "<[prefix:]tag ...>body" up to the next '<'.
// The closing tag is never part of the capture.
func metadataTags(buf, tag []byte) []Match {
	if len(tag) == 0 {
		return nil
	}
	var out []Match
	pos := 0
	for pos < len(buf) {
		idx := bytes.IndexByte(buf[pos:], '<')
		if idx < 0 {
			break
		}
		start := pos + idx
		pos = start + 1
		if start+1 < len(buf) && buf[start+1] == '/' {
			continue
		}

		// The namespace prefix only counts when the ':' sits inside the
		// element name itself.
		nameStart := start + 1
		nameEnd := nameStart
		for nameEnd < len(buf) && !isNameEnd(buf[nameEnd]) && buf[nameEnd] != '<' {
			nameEnd++
		}
		if c := bytes.IndexByte(buf[nameStart:nameEnd], ':'); c >= 0 {
			nameStart += c + 1
		}
		if !bytes.Equal(buf[nameStart:nameEnd], tag) {
			continue
		}

		gt := bytes.IndexByte(buf[nameEnd:], '>')
		if gt < 0 {
			// no '>' remains, so no later tag can terminate either
			break
		}
		bodyStart := nameEnd + gt + 1
		bodyEnd := len(buf)
		if lt := bytes.IndexByte(buf[bodyStart:], '<'); lt >= 0 {
			bodyEnd = bodyStart + lt
		}
		if bodyEnd > start {
			out = append(out, Match{Offset: start, Text: string(buf[start:bodyEnd]), Family: FamilyMetadata})
		}
		pos = bodyEnd
	}
	return out
}
