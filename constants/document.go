package constants

import "strings"

type DocumentType string

const (
	Insurance DocumentType = "insurance"
	Discharge DocumentType = "discharge"
	Bill      DocumentType = "bill"
)

var allDocumentTypes = []DocumentType{Insurance, Discharge, Bill}

// DocumentTypes returns the supported document types in request order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

// ParseDocumentType accepts the wire tag case-insensitively.
func ParseDocumentType(s string) (DocumentType, bool) {
	normalized := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range allDocumentTypes {
		if normalized == t {
			return t, true
		}
	}
	return "", false
}

// MinFieldsFound is the number of non-empty fields a record needs before it
// counts as a successful extraction.
func (t DocumentType) MinFieldsFound() int {
	switch t {
	case Insurance:
		return 2
	case Discharge, Bill:
		return 3
	default:
		return 0
	}
}

// DatabaseLookup marks records served from the policy store instead of text
// extraction. Clients rely on the exact value.
const DatabaseLookup = "Database Lookup"

const (
	PDF  = "pdf"
	TEXT = "txt"
)

// NormalizeExt lowercases and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func IsSupportedExt(ext string) bool {
	switch NormalizeExt(ext) {
	case PDF, TEXT:
		return true
	}
	return false
}
