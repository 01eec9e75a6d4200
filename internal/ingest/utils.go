package ingest

import (
	"path/filepath"
	"strings"

	"github.com/kabir-fx/abhiraksha/constants"
)

// Eligible reports whether path is a visible .pdf or .txt file.
func Eligible(path string) bool {
	return !IsHidden(path) && constants.IsSupportedExt(filepath.Ext(path))
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// DocumentTypeFor infers the document type of path: first from the name of
// its parent directory, then from a filename prefix such as "bill_" or
// "discharge-".
func DocumentTypeFor(path string) (constants.DocumentType, bool) {
	if doc, ok := constants.ParseDocumentType(filepath.Base(filepath.Dir(path))); ok {
		return doc, true
	}
	name := strings.ToLower(filepath.Base(path))
	for _, doc := range constants.DocumentTypes() {
		prefix := string(doc)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		if rest == "" || strings.ContainsRune("_-. ", rune(rest[0])) {
			return doc, true
		}
	}
	return "", false
}

// OutputName is the result file name for path: "<stem>.<type>.json".
func OutputName(path string, doc constants.DocumentType) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "." + string(doc) + ".json"
}
