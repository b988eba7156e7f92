package config

import (
	"path/filepath"
	"slices"
	"strings"
)

// Kind classifies an input path by how it is opened.
type Kind int

const (
	KindUnsupported Kind = iota
	KindZip              // OOXML / ODF packages
	KindOLE              // legacy compound files browsed stream by stream
	KindMIME             // single RFC 822 message
	KindMailbox          // mbox file
	KindPDF
	KindLegacyDoc // Word 97-2003, viewed through the salvage pass
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip container"
	case KindOLE:
		return "OLE compound file"
	case KindMIME:
		return "MIME message"
	case KindMailbox:
		return "mailbox"
	case KindPDF:
		return "PDF document"
	case KindLegacyDoc:
		return "legacy Word document"
	default:
		return "unsupported"
	}
}

// IsContainer reports whether the kind opens into the member list / scan menu.
func (k Kind) IsContainer() bool {
	switch k {
	case KindZip, KindOLE, KindMIME, KindMailbox:
		return true
	}
	return false
}

// ZipTypes are zip-based office packages
var ZipTypes = []string{
	"docx", "docm", "dotx", "dotm",
	"xlsx", "xlsm", "xltx", "xltm",
	"pptx", "pptm", "potx", "potm",
	"odt", "ods", "odp",
}

// OLETypes are compound files whose streams are treated as members
var OLETypes = []string{"xls", "ppt", "msg"}

// MIMETypes defines the message formats
var MIMETypes = []string{"eml"}

// MailboxTypes defines the mailbox formats
var MailboxTypes = []string{"mbox"}

// DocumentTypes open straight into a viewer
var DocumentTypes = []string{"pdf", "doc"}

// Scanner limits. Hitting any of them truncates silently.
const (
	MaxFindings    = 50000
	MaxViewerLines = 10000
	MaxMemberBytes = 64 * 1024 * 1024
	SalvageBlock   = 800
	DefaultWidth   = 120
)

// DefaultTrustedPrefixes are schema and namespace URIs that show up in every
// well-formed office document.
var DefaultTrustedPrefixes = []string{
	"http://schemas.microsoft.com",
	"http://schemas.openxmlformats.org",
	"http://ns.adobe.com",
	"http://www.w3.org",
	"http://purl.org",
	"http://www.iec.ch",
	"http://dublincore.org",
}

// AttributeKeys are the literal keys searched by the key/value pass.
var AttributeKeys = []string{"name=", "Target=", "Type=", "creator", "http://", "uri="}

// MetadataTags are the element local-names captured by the metadata pass.
var MetadataTags = []string{
	"creator", "title", "subject", "keywords", "description",
	"lastModifiedBy", "revision", "created", "modified",
}

// KindOf classifies a path by extension.
func KindOf(path string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch {
	case ext == "":
		return KindUnsupported
	case slices.Contains(ZipTypes, ext):
		return KindZip
	case slices.Contains(OLETypes, ext):
		return KindOLE
	case slices.Contains(MIMETypes, ext):
		return KindMIME
	case slices.Contains(MailboxTypes, ext):
		return KindMailbox
	case ext == "pdf":
		return KindPDF
	case ext == "doc":
		return KindLegacyDoc
	}
	return KindUnsupported
}

// GetFileTypeDescription returns a human-readable list of accepted inputs
func GetFileTypeDescription() string {
	containers := make([]string, 0, len(ZipTypes)+len(OLETypes)+2)
	containers = append(containers, ZipTypes...)
	containers = append(containers, OLETypes...)
	containers = append(containers, MIMETypes...)
	containers = append(containers, MailboxTypes...)
	return "containers (" + strings.Join(containers, ", ") + ") + documents (" + strings.Join(DocumentTypes, ", ") + ")"
}
