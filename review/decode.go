package review

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// Decode turns raw member bytes into text. It never fails: BOM-marked
// UTF-16 is transcoded, valid UTF-8 passes through, anything else goes
// through charset detection, and bytes that still do not decode become
// U+FFFD.
func Decode(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE):
		if out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(data); err == nil {
			return strings.ToValidUTF8(string(out), "�")
		}
	case bytes.HasPrefix(data, bomUTF16BE):
		if out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(data); err == nil {
			return strings.ToValidUTF8(string(out), "�")
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}
	if s, ok := detectAndDecode(data); ok {
		return s
	}
	return strings.ToValidUTF8(string(data), "�")
}

func detectAndDecode(data []byte) (string, bool) {
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil || strings.EqualFold(res.Charset, "UTF-8") {
		return "", false
	}
	enc, err := htmlindex.Get(res.Charset)
	if err != nil {
		return "", false
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return strings.ToValidUTF8(string(out), "�"), true
}
