// internal/orchestrator/count.go
package orchestrator

import "regexp"

// itemPattern matches the numbered-item lines the upstream emits: "Q1.",
// "1." or "1)" at the start of a line. The count derived from it is a
// heuristic and is only ever used for the advisory mismatch warning.
var itemPattern = regexp.MustCompile(`(?m)^\s*(?:Q\s*)?\d+[.)]`)

// CountItems counts numbered items in an aggregate text.
func CountItems(text string) int {
	return len(itemPattern.FindAllString(text, -1))
}
