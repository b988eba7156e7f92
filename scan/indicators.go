package scan

import (
	"bytes"
	"strings"
)

var (
	externalTarget = []byte(`TargetMode="External"`)
	scriptMarkers  = [][]byte{[]byte("<script"), []byte("<html"), []byte("<form")}
)

// NameFlags checks a member name for macro projects and embedded objects.
func NameFlags(name string) []FlagKind {
	var kinds []FlagKind
	if strings.Contains(name, "vbaProject.bin") || strings.Contains(name, "macros") {
		kinds = append(kinds, FlagMacro)
	}
	if strings.Contains(name, "embeddings/") || strings.Contains(name, ".bin") {
		kinds = append(kinds, FlagEmbeddedObject)
	}
	return kinds
}

// isMarkupPart limits content checks to XML parts, the way the relationship
// and content parts of an office package are named.
func isMarkupPart(name string) bool {
	return strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels")
}

// ContentFlags checks a markup member for external targets and injected HTML.
// It returns the flag kinds with the byte offset of the first hit for each.
func ContentFlags(name string, data []byte) ([]FlagKind, []int) {
	if !isMarkupPart(name) {
		return nil, nil
	}
	var (
		kinds   []FlagKind
		offsets []int
	)
	if i := bytes.Index(data, externalTarget); i >= 0 {
		kinds = append(kinds, FlagExternalLink)
		offsets = append(offsets, i)
	}
	first := -1
	for _, m := range scriptMarkers {
		if i := bytes.Index(data, m); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	if first >= 0 {
		kinds = append(kinds, FlagScriptInjection)
		offsets = append(offsets, first)
	}
	return kinds, offsets
}
