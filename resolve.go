package jsonrewrite

import (
	"fmt"
	"strings"

	"github.com/agentflare-ai/jsonpointer"
)

const (
	querySigil   = "$"
	currentSigil = "@"
)

// resolveReplaceValue produces the concrete value a replace rule writes. In
// ValueAuto mode a string payload led by the query sigil is evaluated against
// the current working document and must yield exactly one value. The staged
// flag is false for a silent allow-empty-value skip.
func (t *Transformer) resolveReplaceValue(doc any, r Rule) (value any, staged bool, err error) {
	mode := r.ValueMode
	if mode == "" {
		mode = ValueAuto
	}
	if mode == ValueAuto {
		if s, ok := r.Value.(string); ok && strings.HasPrefix(s, querySigil) {
			values, err := t.eval.EvaluateValues(doc, s)
			if err != nil {
				return nil, false, fmt.Errorf("%w for value query %q: %v", ErrMatch, s, err)
			}
			switch len(values) {
			case 1:
				cloned, err := cloneValue(values[0])
				if err != nil {
					return nil, false, fmt.Errorf("clone value of %q: %w", s, err)
				}
				return cloned, true, nil
			case 0:
				if r.AllowEmptyValue {
					return nil, false, nil
				}
				return nil, false, fmt.Errorf("%w: value query %q matched 0 results, expected exactly 1", ErrValueArity, s)
			default:
				return nil, false, fmt.Errorf("%w: value query %q matched %d results, expected exactly 1", ErrValueArity, s, len(values))
			}
		}
		if r.Value == nil {
			if r.AllowEmptyValue {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("%w: replace rule has no value", ErrUnresolvedValue)
		}
	}
	cloned, err := cloneValue(r.Value)
	if err != nil {
		return nil, false, fmt.Errorf("clone replace value: %w", err)
	}
	return cloned, true, nil
}

// resolveMoveTarget produces the destination pointer of a move rule. A query
// target must resolve to exactly one pointer; on zero results the engine
// either skips (allow-empty-value) or lowers a simple query syntactically
// into a pointer so values can move to not-yet-existing locations.
func (t *Transformer) resolveMoveTarget(doc any, r Rule) (ptr string, staged bool, err error) {
	target := strings.TrimSpace(r.Target)
	if target == "" {
		if r.AllowEmptyValue {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: move rule has no target", ErrUnresolvedValue)
	}
	mode := r.TargetMode
	if mode == "" || mode == TargetAuto {
		switch {
		case strings.HasPrefix(target, "/"):
			mode = TargetPointer
		case strings.HasPrefix(target, querySigil):
			mode = TargetJSONPath
		default:
			return "", false, fmt.Errorf("move target %q must start with %q or %q", target, "/", querySigil)
		}
	}
	switch mode {
	case TargetPointer:
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		ptr = target
	case TargetJSONPath:
		pointers, err := t.eval.EvaluatePointers(doc, target)
		if err != nil {
			return "", false, fmt.Errorf("%w for target query %q: %v", ErrMatch, target, err)
		}
		switch len(pointers) {
		case 1:
			ptr = pointers[0]
		case 0:
			if r.AllowEmptyValue {
				return "", false, nil
			}
			lowered, ok := lowerSimpleQuery(target)
			if !ok {
				return "", false, fmt.Errorf("%w: target query %q matched 0 results, expected exactly 1", ErrValueArity, target)
			}
			ptr = lowered
		default:
			return "", false, fmt.Errorf("%w: target query %q matched %d results, expected exactly 1", ErrValueArity, target, len(pointers))
		}
	default:
		return "", false, fmt.Errorf("unknown move target mode %q", mode)
	}
	p, err := jsonpointer.New(ptr)
	if err != nil {
		return "", false, fmt.Errorf("move target %q: %w", ptr, err)
	}
	if unsafeTokens(p) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsafePointer, ptr)
	}
	return ptr, true, nil
}

// resolveRenameTarget derives the destination pointer of a rename, which acts
// on the matched pointer's parent object. The root cannot be renamed and
// array elements have no keys to rename.
func (t *Transformer) resolveRenameTarget(doc any, r Rule, matchPtr string) (dest string, staged bool, err error) {
	p, err := jsonpointer.New(matchPtr)
	if err != nil {
		return "", false, fmt.Errorf("match pointer %q: %w", matchPtr, err)
	}
	if len(p) == 0 {
		return "", false, fmt.Errorf("%w: cannot rename the document root", ErrRootMutation)
	}
	parentPtr := jsonpointer.Pointer(p[:len(p)-1]).String()
	oldKey := p[len(p)-1]
	parent, err := readAt(doc, parentPtr)
	if err != nil {
		return "", false, err
	}
	parentObj, ok := parent.(map[string]any)
	if !ok {
		if _, isArray := parent.([]any); isArray {
			return "", false, fmt.Errorf("cannot rename %s: array elements have no keys", matchPtr)
		}
		return "", false, fmt.Errorf("cannot rename %s: parent is not an object", matchPtr)
	}

	target := strings.TrimSpace(r.Target)
	mode := r.TargetMode
	if mode == "" {
		mode = TargetAuto
	}
	switch mode {
	case TargetAuto, TargetLiteral, TargetJSONPath:
	default:
		return "", false, fmt.Errorf("unknown rename target mode %q", mode)
	}
	isQuery := mode == TargetJSONPath ||
		(mode == TargetAuto && (strings.HasPrefix(target, querySigil) || strings.HasPrefix(target, currentSigil)))

	var newKey string
	if isQuery {
		// Key queries are scoped to the parent object, so "@" and "$" both
		// address the parent.
		expr := target
		if strings.HasPrefix(expr, currentSigil) {
			expr = querySigil + expr[1:]
		}
		values, err := t.eval.EvaluateValues(parentObj, expr)
		if err != nil {
			return "", false, fmt.Errorf("%w for rename query %q: %v", ErrMatch, target, err)
		}
		switch len(values) {
		case 1:
			s, ok := values[0].(string)
			if !ok || s == "" {
				return "", false, fmt.Errorf("%w: rename query %q did not resolve to a non-empty string", ErrValueArity, target)
			}
			newKey = s
		case 0:
			if r.AllowEmptyValue {
				return "", false, nil
			}
			return "", false, fmt.Errorf("%w: rename query %q matched 0 results, expected exactly 1", ErrValueArity, target)
		default:
			return "", false, fmt.Errorf("%w: rename query %q matched %d results, expected exactly 1", ErrValueArity, target, len(values))
		}
	} else {
		if target == "" {
			if r.AllowEmptyValue {
				return "", false, nil
			}
			return "", false, fmt.Errorf("%w: rename rule has no target key", ErrUnresolvedValue)
		}
		newKey = target
	}

	if reservedKeys[newKey] {
		return "", false, fmt.Errorf("%w: %q", ErrUnsafePointer, newKey)
	}
	if newKey == oldKey {
		// Renaming a key to itself is a silent no-op.
		return "", false, nil
	}
	if _, exists := parentObj[newKey]; exists {
		return "", false, fmt.Errorf("%w: %q already exists next to %q", ErrRenameCollision, newKey, oldKey)
	}

	// The whole destination pointer must be write-safe, not just the new
	// key: the parent itself may sit under a reserved key.
	tokens := append(append(jsonpointer.Pointer{}, p[:len(p)-1]...), newKey)
	if unsafeTokens(tokens) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsafePointer, tokens.String())
	}
	return tokens.String(), true, nil
}

// lowerSimpleQuery converts a query built only from property, bracket and
// numeric-index selectors into the equivalent pointer. Filters, wildcards,
// slices and descendant selectors cannot be lowered.
func lowerSimpleQuery(expr string) (string, bool) {
	if !strings.HasPrefix(expr, querySigil) {
		return "", false
	}
	rest := expr[1:]
	var tokens jsonpointer.Pointer
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, ".."):
			return "", false
		case rest[0] == '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			var name string
			if end < 0 {
				name, rest = rest, ""
			} else {
				name, rest = rest[:end], rest[end:]
			}
			if !isSimpleName(name) {
				return "", false
			}
			tokens = append(tokens, name)
		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", false
			}
			inner := rest[1:end]
			rest = rest[end+1:]
			tok, ok := lowerBracketSelector(inner)
			if !ok {
				return "", false
			}
			tokens = append(tokens, tok)
		default:
			return "", false
		}
	}
	if len(tokens) == 0 {
		return "", false
	}
	return tokens.String(), true
}

func lowerBracketSelector(inner string) (string, bool) {
	if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') {
		quote := inner[0]
		if inner[len(inner)-1] != quote {
			return "", false
		}
		name := inner[1 : len(inner)-1]
		if name == "" || strings.ContainsAny(name, `'"\`) {
			return "", false
		}
		return name, true
	}
	if inner == "" {
		return "", false
	}
	for i := 0; i < len(inner); i++ {
		if inner[i] < '0' || inner[i] > '9' {
			return "", false
		}
	}
	return inner, true
}

func isSimpleName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
