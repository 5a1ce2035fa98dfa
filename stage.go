package jsonrewrite

import (
	"fmt"
	"sort"

	"github.com/agentflare-ai/jsonpointer"
)

// OpStatus is the final state of a staged operation.
type OpStatus string

const (
	StatusApplied OpStatus = "applied"
	StatusSkipped OpStatus = "skipped"
)

// StagedOperation records one pending mutation derived from a matched
// pointer, its replayable patch summary, and its eventual outcome.
type StagedOperation struct {
	// MatchIndex is the position of the originating pointer in the rule's
	// deduplicated match list.
	MatchIndex int `json:"matchIndex" yaml:"matchIndex"`

	// Pointer is the matched location the operation was staged for.
	Pointer string `json:"pointer" yaml:"pointer"`

	// Kind is the logical rule kind. Renames carry KindRename here even
	// though their patch summary is a move.
	Kind RuleKind `json:"kind" yaml:"kind"`

	// Patch is the minimal record needed to replay the mutation.
	Patch Operation `json:"patch" yaml:"patch"`

	Status  OpStatus `json:"status" yaml:"status"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// stageRule converts the rule's matches into pending operations. Resolution
// failures are recorded on the diagnostic and drop the match; allow-empty
// skips drop it silently. Same-parent removals are then reordered so array
// siblings apply highest index first.
func (t *Transformer) stageRule(doc any, r Rule, matches []string, diag *RuleDiagnostic) []StagedOperation {
	ops := make([]StagedOperation, 0, len(matches))
	for i, ptr := range matches {
		switch r.Kind {
		case KindRemove:
			ops = append(ops, StagedOperation{
				MatchIndex: i,
				Pointer:    ptr,
				Kind:       KindRemove,
				Patch:      Operation{Op: Remove, Path: ptr},
			})
		case KindReplace:
			p, err := jsonpointer.New(ptr)
			if err != nil {
				diag.Errors = append(diag.Errors, fmt.Sprintf("match pointer %q: %v", ptr, err))
				continue
			}
			if unsafeTokens(p) {
				diag.Errors = append(diag.Errors, fmt.Sprintf("%v: %s", ErrUnsafePointer, ptr))
				continue
			}
			value, staged, err := t.resolveReplaceValue(doc, r)
			if err != nil {
				diag.Errors = append(diag.Errors, err.Error())
				continue
			}
			if !staged {
				continue
			}
			ops = append(ops, StagedOperation{
				MatchIndex: i,
				Pointer:    ptr,
				Kind:       KindReplace,
				Patch:      Operation{Op: Replace, Path: ptr, Value: value},
			})
		case KindMove:
			dest, staged, err := t.resolveMoveTarget(doc, r)
			if err != nil {
				diag.Errors = append(diag.Errors, err.Error())
				continue
			}
			if !staged {
				continue
			}
			ops = append(ops, StagedOperation{
				MatchIndex: i,
				Pointer:    ptr,
				Kind:       KindMove,
				Patch:      Operation{Op: Move, From: ptr, Path: dest},
			})
		case KindRename:
			dest, staged, err := t.resolveRenameTarget(doc, r, ptr)
			if err != nil {
				diag.Errors = append(diag.Errors, err.Error())
				continue
			}
			if !staged {
				continue
			}
			ops = append(ops, StagedOperation{
				MatchIndex: i,
				Pointer:    ptr,
				Kind:       KindRename,
				Patch:      Operation{Op: Move, From: ptr, Path: dest},
			})
		default:
			diag.Errors = append(diag.Errors, fmt.Sprintf("unknown rule kind %q", r.Kind))
		}
	}
	reorderRemovals(ops)
	return ops
}

// reorderRemovals rewrites same-parent removals into descending array-index
// order so that deleting several indices from one array never shifts the
// meaning of a not-yet-processed index. Each group keeps its original slots
// in the overall sequence; nothing else is reordered.
func reorderRemovals(ops []StagedOperation) {
	groups := make(map[string][]int)
	for i, op := range ops {
		if op.Patch.Op != Remove {
			continue
		}
		parent := parentOf(op.Pointer)
		groups[parent] = append(groups[parent], i)
	}
	for _, slots := range groups {
		if len(slots) < 2 {
			continue
		}
		batch := make([]StagedOperation, len(slots))
		for j, s := range slots {
			batch[j] = ops[s]
		}
		sort.SliceStable(batch, func(a, b int) bool {
			ia, aok := lastArrayIndex(batch[a].Pointer)
			ib, bok := lastArrayIndex(batch[b].Pointer)
			if !aok || !bok {
				return false
			}
			return ia > ib
		})
		for j, s := range slots {
			ops[s] = batch[j]
		}
	}
}

func lastArrayIndex(path string) (uint64, bool) {
	p, err := jsonpointer.New(path)
	if err != nil || len(p) == 0 {
		return 0, false
	}
	idx, err := jsonpointer.ParseArrayIndex(p[len(p)-1])
	if err != nil {
		return 0, false
	}
	return idx, true
}
