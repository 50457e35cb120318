package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

var nameFolder = cases.Fold()

// equalFoldTrimmed compares two medicine names the way the unique index does
func equalFoldTrimmed(a, b string) bool {
	return nameFolder.String(strings.TrimSpace(a)) == nameFolder.String(strings.TrimSpace(b))
}
