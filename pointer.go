package jsonrewrite

import (
	"fmt"
	"strconv"

	"github.com/agentflare-ai/jsonpointer"
)

// PointerFor builds an escaped pointer from a sequence of object keys and
// array indices.
//
//	PointerFor("server", "port") -> "/server/port"
//	PointerFor("servers", 0)     -> "/servers/0"
func PointerFor(keys ...any) string {
	tokens := make(jsonpointer.Pointer, 0, len(keys))
	for _, key := range keys {
		switch v := key.(type) {
		case string:
			tokens = append(tokens, v)
		case int:
			tokens = append(tokens, strconv.Itoa(v))
		default:
			tokens = append(tokens, fmt.Sprint(v))
		}
	}
	return tokens.String()
}

// Reserved inheritance-chain keys. A patch written to one of these would let
// a JavaScript replayer mutate an object's prototype instead of storing data,
// so they are rejected as write targets before anything is mutated.
var reservedKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

func unsafeTokens(p jsonpointer.Pointer) bool {
	for _, tok := range p {
		if reservedKeys[tok] {
			return true
		}
	}
	return false
}

// arrayIndex parses tok as an index into an array of the given length.
// When inserting, "-" and the one-past-end index are also valid.
func arrayIndex(tok string, length int, inserting bool) (int, error) {
	if inserting && tok == "-" {
		return length, nil
	}
	idx, err := jsonpointer.ParseArrayIndex(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid array index %q", ErrIndexOutOfBounds, tok)
	}
	limit := uint64(length)
	if inserting {
		if idx > limit {
			return 0, fmt.Errorf("%w: index %d exceeds insertion bound %d", ErrIndexOutOfBounds, idx, length)
		}
	} else if idx >= limit {
		return 0, fmt.Errorf("%w: index %d exceeds array of length %d", ErrIndexOutOfBounds, idx, length)
	}
	return int(idx), nil
}

// readAt returns the value addressed by path. The empty path addresses the
// whole document. Only direct members are visible; there is no fallback for
// missing keys.
func readAt(doc any, path string) (any, error) {
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}
	node := doc
	for _, tok := range p {
		switch n := node.(type) {
		case map[string]any:
			child, ok := n[tok]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
			}
			node = child
		case []any:
			idx, err := arrayIndex(tok, len(n), false)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			node = n[idx]
		default:
			return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
		}
	}
	return node, nil
}

// removeAt deletes the value addressed by path and returns the updated
// document. The root cannot be removed.
func removeAt(doc any, path string) (any, error) {
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: cannot remove the document root", ErrRootMutation)
	}
	return removeTokens(doc, p, path)
}

func removeTokens(node any, tokens []string, path string) (any, error) {
	tok := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[tok]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
		}
		if len(tokens) == 1 {
			delete(n, tok)
			return n, nil
		}
		updated, err := removeTokens(child, tokens[1:], path)
		if err != nil {
			return nil, err
		}
		n[tok] = updated
		return n, nil
	case []any:
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(tokens) == 1 {
			out := make([]any, 0, len(n)-1)
			out = append(out, n[:idx]...)
			out = append(out, n[idx+1:]...)
			return out, nil
		}
		updated, err := removeTokens(n[idx], tokens[1:], path)
		if err != nil {
			return nil, err
		}
		n[idx] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
	}
}

// replaceAt overwrites the value at an existing location and returns the
// updated document. Replacing the root returns the new value wholesale.
func replaceAt(doc any, path string, value any) (any, error) {
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}
	if unsafeTokens(p) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePointer, path)
	}
	if len(p) == 0 {
		return value, nil
	}
	return replaceTokens(doc, p, path, value)
}

func replaceTokens(node any, tokens []string, path string, value any) (any, error) {
	tok := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[tok]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
		}
		if len(tokens) == 1 {
			n[tok] = value
			return n, nil
		}
		updated, err := replaceTokens(child, tokens[1:], path, value)
		if err != nil {
			return nil, err
		}
		n[tok] = updated
		return n, nil
	case []any:
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(tokens) == 1 {
			n[idx] = value
			return n, nil
		}
		updated, err := replaceTokens(n[idx], tokens[1:], path, value)
		if err != nil {
			return nil, err
		}
		n[idx] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
	}
}

// insertAt places value at path and returns the updated document. Object
// insertion may create a previously absent key; array insertion shifts
// trailing elements and accepts "-" or the one-past-end index as an append.
// Inserting at the root returns the value wholesale.
func insertAt(doc any, path string, value any) (any, error) {
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}
	if unsafeTokens(p) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePointer, path)
	}
	if len(p) == 0 {
		return value, nil
	}
	return insertTokens(doc, p, path, value)
}

func insertTokens(node any, tokens []string, path string, value any) (any, error) {
	tok := tokens[0]
	switch n := node.(type) {
	case map[string]any:
		if len(tokens) == 1 {
			n[tok] = value
			return n, nil
		}
		child, ok := n[tok]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
		}
		updated, err := insertTokens(child, tokens[1:], path, value)
		if err != nil {
			return nil, err
		}
		n[tok] = updated
		return n, nil
	case []any:
		if len(tokens) == 1 {
			idx, err := arrayIndex(tok, len(n), true)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			out := make([]any, 0, len(n)+1)
			out = append(out, n[:idx]...)
			out = append(out, value)
			out = append(out, n[idx:]...)
			return out, nil
		}
		idx, err := arrayIndex(tok, len(n), false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		updated, err := insertTokens(n[idx], tokens[1:], path, value)
		if err != nil {
			return nil, err
		}
		n[idx] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrPointerNotFound, path)
	}
}

// reinsertAt puts a just-removed value back at path, skipping the
// reserved-key write guard: restoring a source that legitimately lives under
// such a key must not fail.
func reinsertAt(doc any, path string, value any) (any, error) {
	p, err := jsonpointer.New(path)
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return value, nil
	}
	return insertTokens(doc, p, path, value)
}

// parentOf drops the final token of path. The parent of a top-level key is
// the root pointer "".
func parentOf(path string) string {
	p, err := jsonpointer.New(path)
	if err != nil || len(p) == 0 {
		return ""
	}
	return jsonpointer.Pointer(p[:len(p)-1]).String()
}
