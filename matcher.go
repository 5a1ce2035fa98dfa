package jsonrewrite

import (
	"fmt"
	"strings"
)

// evaluateMatcher runs the rule matcher against the working document and
// returns normalized, deduplicated pointers in first-seen order. Overlapping
// selectors that yield the same location twice must not double-apply.
func (t *Transformer) evaluateMatcher(doc any, expression string) ([]string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, ErrEmptyMatcher
	}
	pointers, err := t.eval.EvaluatePointers(doc, expression)
	if err != nil {
		guidance := ""
		if strings.Contains(strings.ToLower(err.Error()), "undefined") {
			guidance = "; guard optional properties with an existence filter such as [?(@.name)]"
		}
		return nil, fmt.Errorf("%w for %q: %v%s", ErrMatch, expression, err, guidance)
	}
	seen := make(map[string]bool, len(pointers))
	out := make([]string, 0, len(pointers))
	for _, ptr := range pointers {
		if ptr != "" && !strings.HasPrefix(ptr, "/") {
			ptr = "/" + ptr
		}
		if seen[ptr] {
			continue
		}
		seen[ptr] = true
		out = append(out, ptr)
	}
	return out, nil
}
