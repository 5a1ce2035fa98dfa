package jsonrewrite

import (
	"fmt"

	"github.com/google/uuid"
)

// RuleKind discriminates the four rewrite rule kinds.
type RuleKind string

const (
	KindRemove  RuleKind = "remove"
	KindReplace RuleKind = "replace"
	KindMove    RuleKind = "move"
	KindRename  RuleKind = "rename"
)

// ValueMode controls how a replace rule interprets its value payload.
type ValueMode string

const (
	// ValueAuto treats a string value beginning with '$' as a query against
	// the current working document; everything else is used verbatim.
	ValueAuto ValueMode = "auto"

	// ValueLiteral always uses the value verbatim.
	ValueLiteral ValueMode = "literal"
)

// TargetMode controls how a move or rename rule interprets its target string.
type TargetMode string

const (
	// TargetAuto infers the interpretation from the target's leading
	// character: '/' means pointer, '$' (or '@' for rename) means query, and
	// for rename any other string is taken as a literal key.
	TargetAuto TargetMode = "auto"

	// TargetPointer treats a move target as a literal pointer.
	TargetPointer TargetMode = "pointer"

	// TargetJSONPath treats the target as a query that must resolve to
	// exactly one location (move) or one string key (rename).
	TargetJSONPath TargetMode = "jsonpath"

	// TargetLiteral treats a rename target as the new key verbatim.
	TargetLiteral TargetMode = "literal"
)

// Rule is one declarative rewrite instruction. Value, ValueMode, Target and
// TargetMode are only meaningful for the kinds that declare them; use the
// constructors to build well-formed records. Rules are never mutated by the
// engine.
type Rule struct {
	// ID identifies the rule in diagnostics. It never influences execution
	// order.
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Kind    RuleKind `json:"kind" yaml:"kind"`
	Matcher string   `json:"matcher" yaml:"matcher"`

	// Disabled skips execution; the rule is still reported in diagnostics.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`

	// AllowEmptyMatcher suppresses the no-effect warning (and the empty
	// matcher error) when the matcher yields zero pointers.
	AllowEmptyMatcher bool `json:"allowEmptyMatcher,omitempty" yaml:"allowEmptyMatcher,omitempty"`

	// AllowEmptyValue turns a missing or zero-result value/target into a
	// silent skip instead of an error.
	AllowEmptyValue bool `json:"allowEmptyValue,omitempty" yaml:"allowEmptyValue,omitempty"`

	Value      any        `json:"value,omitempty" yaml:"value,omitempty"`
	ValueMode  ValueMode  `json:"valueMode,omitempty" yaml:"valueMode,omitempty"`
	Target     string     `json:"target,omitempty" yaml:"target,omitempty"`
	TargetMode TargetMode `json:"targetMode,omitempty" yaml:"targetMode,omitempty"`
}

// RuleOption customizes a rule built by one of the constructors.
type RuleOption func(*Rule)

// WithID sets a caller-supplied rule identifier.
func WithID(id string) RuleOption { return func(r *Rule) { r.ID = id } }

// WithDisabled marks the rule as disabled.
func WithDisabled() RuleOption { return func(r *Rule) { r.Disabled = true } }

// WithAllowEmptyMatcher suppresses the warning for zero-match rules.
func WithAllowEmptyMatcher() RuleOption { return func(r *Rule) { r.AllowEmptyMatcher = true } }

// WithAllowEmptyValue converts missing value/target errors into silent skips.
func WithAllowEmptyValue() RuleOption { return func(r *Rule) { r.AllowEmptyValue = true } }

// WithValueMode overrides the replace value interpretation mode.
func WithValueMode(m ValueMode) RuleOption { return func(r *Rule) { r.ValueMode = m } }

// WithTargetMode overrides the move/rename target interpretation mode.
func WithTargetMode(m TargetMode) RuleOption { return func(r *Rule) { r.TargetMode = m } }

// NewRemoveRule builds a rule that deletes every matched location.
func NewRemoveRule(matcher string, opts ...RuleOption) Rule {
	return newRule(KindRemove, matcher, opts)
}

// NewReplaceRule builds a rule that overwrites every matched location with
// value. The default interpretation mode is ValueAuto.
func NewReplaceRule(matcher string, value any, opts ...RuleOption) Rule {
	r := newRule(KindReplace, matcher, nil)
	r.Value = value
	r.ValueMode = ValueAuto
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewMoveRule builds a rule that relocates every matched location to target.
// The default interpretation mode is TargetAuto.
func NewMoveRule(matcher, target string, opts ...RuleOption) Rule {
	r := newRule(KindMove, matcher, nil)
	r.Target = target
	r.TargetMode = TargetAuto
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewRenameRule builds a rule that renames the object key of every matched
// location to the key derived from target. The default interpretation mode
// is TargetAuto.
func NewRenameRule(matcher, target string, opts ...RuleOption) Rule {
	r := newRule(KindRename, matcher, nil)
	r.Target = target
	r.TargetMode = TargetAuto
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func newRule(kind RuleKind, matcher string, opts []RuleOption) Rule {
	r := Rule{
		ID:      uuid.NewString(),
		Kind:    kind,
		Matcher: matcher,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// validateRule checks a decoded rule record and fills in defaulted fields.
func validateRule(i int, r *Rule) error {
	switch r.Kind {
	case KindRemove, KindReplace, KindMove, KindRename:
	case "":
		return fmt.Errorf("rule %d: missing kind", i)
	default:
		return fmt.Errorf("rule %d: unknown kind %q", i, r.Kind)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	switch r.Kind {
	case KindReplace:
		switch r.ValueMode {
		case "":
			r.ValueMode = ValueAuto
		case ValueAuto, ValueLiteral:
		default:
			return fmt.Errorf("rule %d (%s): unknown value mode %q", i, r.ID, r.ValueMode)
		}
	case KindMove:
		switch r.TargetMode {
		case "":
			r.TargetMode = TargetAuto
		case TargetAuto, TargetPointer, TargetJSONPath:
		default:
			return fmt.Errorf("rule %d (%s): unknown move target mode %q", i, r.ID, r.TargetMode)
		}
	case KindRename:
		switch r.TargetMode {
		case "":
			r.TargetMode = TargetAuto
		case TargetAuto, TargetLiteral, TargetJSONPath:
		default:
			return fmt.Errorf("rule %d (%s): unknown rename target mode %q", i, r.ID, r.TargetMode)
		}
	}
	return nil
}
