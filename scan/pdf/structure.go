package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"docsentry/config"
	"docsentry/container"
	"docsentry/scan"
)

func init() {
	// pdfcpu would otherwise create a config dir in the user's home.
	api.DisableConfigDir()
}

// RawMember is the member name of findings produced by the byte scan.
const RawMember = "raw"

// Object graph checks, in report order.
const (
	descJavaScript = "JavaScript action"
	descAutomatic  = "automatic action"
	descLaunch     = "Launch action"
	descEmbedded   = "embedded files"
)

// ScanStructure reports active content in the PDF object graph. When pdfcpu
// cannot read the file, a raw byte scan for the same names is used instead.
func ScanStructure(path string) ([]scan.Finding, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, container.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w: %v", path, container.ErrUnreadable, err)
	}
	if found, err := scanObjects(path); err == nil {
		return found, nil
	}
	return scanRawFile(path)
}

// scanObjects walks every live dictionary in the cross-reference table.
func scanObjects(path string) (found []scan.Finding, err error) {
	// Panic protection around library call.
	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = fmt.Errorf("pdfcpu %s: %v: %w", path, r, container.ErrUnreadable)
		}
	}()

	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu %s: %v: %w", path, err, container.ErrUnreadable)
	}
	return objectFindings(ctx.XRefTable), nil
}

func objectFindings(xt *model.XRefTable) []scan.Finding {
	nums := make([]int, 0, len(xt.Table))
	for n, entry := range xt.Table {
		if entry == nil || entry.Free || entry.Object == nil {
			continue
		}
		nums = append(nums, n)
	}
	sort.Ints(nums)

	found := []scan.Finding{}
	for _, n := range nums {
		d, ok := asDict(xt.Table[n].Object)
		if !ok {
			continue
		}
		for _, desc := range dictIndicators(xt, d) {
			found = append(found, scan.Finding{
				Member: fmt.Sprintf("obj %d", n),
				Text:   desc,
				Family: scan.FamilyPDF,
			})
		}
	}
	return found
}

func asDict(o types.Object) (types.Dict, bool) {
	switch v := o.(type) {
	case types.Dict:
		return v, true
	case types.StreamDict:
		return v.Dict, true
	case *types.StreamDict:
		if v == nil {
			return nil, false
		}
		return v.Dict, true
	}
	return nil, false
}

func hasKey(d types.Dict, key string) bool {
	_, ok := d[key]
	return ok
}

func dictIndicators(xt *model.XRefTable, d types.Dict) []string {
	var out []string
	if hasKey(d, "JS") || hasKey(d, "JavaScript") {
		out = append(out, descJavaScript)
	}
	if hasKey(d, "OpenAction") || hasKey(d, "AA") {
		out = append(out, descAutomatic)
	}
	if hasKey(d, "Launch") {
		out = append(out, descLaunch)
	}
	if names, ok := d["Names"]; ok {
		if o, err := xt.Dereference(names); err == nil {
			if nd, ok := asDict(o); ok && hasKey(nd, "EmbeddedFiles") {
				out = append(out, descEmbedded)
			}
		}
	}
	return out
}

// rawNames maps PDF name tokens to the indicator they signal.
var rawNames = map[string]string{
	"JavaScript":    descJavaScript,
	"JS":            descJavaScript,
	"OpenAction":    descAutomatic,
	"AA":            descAutomatic,
	"Launch":        descLaunch,
	"EmbeddedFile":  descEmbedded,
	"EmbeddedFiles": descEmbedded,
}

func scanRawFile(path string) ([]scan.Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, container.ErrUnreadable, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, config.MaxMemberBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", path, container.ErrUnreadable, err)
	}
	return ScanRaw(data), nil
}

func isNameDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// ScanRaw finds suspicious PDF name tokens in raw file bytes. Only complete
// names count, so /AAPL is not /AA.
func ScanRaw(data []byte) []scan.Finding {
	found := []scan.Finding{}
	pos := 0
	for pos < len(data) {
		idx := bytes.IndexByte(data[pos:], '/')
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + 1
		for end < len(data) && !isNameDelim(data[end]) {
			end++
		}
		if desc, ok := rawNames[string(data[start+1:end])]; ok {
			found = append(found, scan.Finding{
				Member: RawMember,
				Offset: start,
				Text:   string(data[start:end]) + " (" + desc + ")",
				Family: scan.FamilyPDF,
			})
		}
		pos = end
	}
	return found
}
