// internal/assembler/sort.go
package assembler

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortByName orders sources by display name with a locale-aware natural
// compare, so "Chapter 2" sorts before "Chapter 10". The sort is stable and
// applied on a copy: merge output is deterministic regardless of the order the
// user selected documents in.
func sortByName(sources []SourceDocument) []SourceDocument {
	sorted := make([]SourceDocument, len(sources))
	copy(sorted, sources)

	c := collate.New(language.English, collate.Numeric)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}
