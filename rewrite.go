package jsonrewrite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Transformer executes ordered rewrite rules against cloned documents. The
// zero value is not usable; construct with NewTransformer.
type Transformer struct {
	eval Evaluator
}

// TransformerOption customizes a Transformer.
type TransformerOption func(*Transformer)

// WithEvaluator injects a custom query evaluator.
func WithEvaluator(ev Evaluator) TransformerOption {
	return func(t *Transformer) { t.eval = ev }
}

// NewTransformer returns a Transformer using the default JSONPath evaluator
// unless one is injected.
func NewTransformer(opts ...TransformerOption) *Transformer {
	t := &Transformer{eval: JSONPathEvaluator{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RuleDiagnostic reports everything one rule did, whether or not it was
// enabled or staged any operations. Exactly one is produced per rule.
type RuleDiagnostic struct {
	RuleID     string            `json:"ruleId" yaml:"ruleId"`
	Matcher    string            `json:"matcher" yaml:"matcher"`
	Kind       RuleKind          `json:"kind" yaml:"kind"`
	MatchCount int               `json:"matchCount" yaml:"matchCount"`
	Operations []StagedOperation `json:"operations,omitempty" yaml:"operations,omitempty"`
	Errors     []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings   []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Result is the outcome of one run: the mutated clone, the replayable patch
// of applied operations in application order, per-rule diagnostics, and the
// flattened error and warning lists. OK is true iff Errors is empty.
type Result struct {
	OK          bool             `json:"ok" yaml:"ok"`
	Document    any              `json:"document" yaml:"document"`
	Applied     Patch            `json:"appliedOperations" yaml:"appliedOperations"`
	Diagnostics []RuleDiagnostic `json:"diagnostics" yaml:"diagnostics"`
	Errors      []string         `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Rewrite runs rules against document with the default evaluator.
func Rewrite(document any, rules []Rule) *Result {
	return NewTransformer().Apply(document, rules)
}

// Apply clones document and executes rules against the clone strictly in
// input order, so later rules observe earlier mutations. The input document
// is never mutated, and no failure escapes as an error: everything is
// captured in the returned Result.
func (t *Transformer) Apply(document any, rules []Rule) *Result {
	res := &Result{}
	doc, err := cloneValue(document)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("clone input document: %v", err))
		return res
	}

	for _, r := range rules {
		diag := RuleDiagnostic{
			RuleID:  r.ID,
			Matcher: strings.TrimSpace(r.Matcher),
			Kind:    r.Kind,
		}
		if r.Disabled {
			res.Diagnostics = append(res.Diagnostics, diag)
			continue
		}

		matches, err := t.evaluateMatcher(doc, r.Matcher)
		if err != nil {
			if !(errors.Is(err, ErrEmptyMatcher) && r.AllowEmptyMatcher) {
				diag.Errors = append(diag.Errors, err.Error())
			}
			matches = nil
		}
		diag.MatchCount = len(matches)

		if len(diag.Errors) == 0 {
			ops := t.stageRule(doc, r, matches, &diag)
			doc = t.applyOps(doc, ops, &diag, &res.Applied)
			diag.Operations = ops
		}

		if diag.MatchCount == 0 && len(diag.Operations) == 0 && len(diag.Errors) == 0 &&
			!r.AllowEmptyMatcher {
			diag.Warnings = append(diag.Warnings,
				fmt.Sprintf("rule %s (%s) matched no locations and made no changes", diag.RuleID, r.Kind))
		}

		res.Diagnostics = append(res.Diagnostics, diag)
		res.Errors = append(res.Errors, diag.Errors...)
		res.Warnings = append(res.Warnings, diag.Warnings...)
	}

	res.Document = doc
	res.OK = len(res.Errors) == 0
	return res
}

// applyOps executes staged operations in order. A failing operation is
// marked skipped, leaves the document untouched by that step, and never
// aborts the remaining operations.
func (t *Transformer) applyOps(doc any, ops []StagedOperation, diag *RuleDiagnostic, applied *Patch) any {
	for i := range ops {
		op := &ops[i]
		var next any
		var err error
		switch op.Patch.Op {
		case Remove:
			next, err = removeAt(doc, op.Patch.Path)
		case Replace:
			// Write a clone so the recorded patch value cannot be changed
			// by later rules mutating the document.
			var value any
			if value, err = cloneValue(op.Patch.Value); err == nil {
				next, err = replaceAt(doc, op.Patch.Path, value)
			}
		case Move:
			next, err = moveValue(doc, op.Patch.From, op.Patch.Path)
		default:
			err = fmt.Errorf("unsupported operation %q", op.Patch.Op)
		}
		if err != nil {
			op.Status = StatusSkipped
			op.Message = fmt.Sprintf("%s %s failed: %v", opVerb(op.Kind), op.Pointer, err)
			diag.Errors = append(diag.Errors, op.Message)
			continue
		}
		op.Status = StatusApplied
		doc = next
		*applied = append(*applied, op.Patch)
	}
	return doc
}

// moveValue relocates the deep-cloned source value to the destination. If
// the insert fails the source is restored, so a failed move never leaves a
// half-applied document.
func moveValue(doc any, from, to string) (any, error) {
	value, err := readAt(doc, from)
	if err != nil {
		return nil, err
	}
	cloned, err := cloneValue(value)
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", from, err)
	}
	doc, err = removeAt(doc, from)
	if err != nil {
		return nil, err
	}
	next, err := insertAt(doc, to, cloned)
	if err != nil {
		if restored, rerr := reinsertAt(doc, from, value); rerr == nil {
			doc = restored
		}
		return nil, err
	}
	return next, nil
}

func opVerb(kind RuleKind) string {
	switch kind {
	case KindRemove:
		return "Remove"
	case KindReplace:
		return "Replace"
	case KindMove:
		return "Move"
	case KindRename:
		return "Rename"
	}
	return "Apply"
}

// cloneValue deep-copies a JSON-like value through a marshal round trip.
func cloneValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
