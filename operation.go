package jsonrewrite

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Op enumerates the patch operation types a run can emit.
type Op string

const (
	Remove  Op = "remove"
	Replace Op = "replace"
	Move    Op = "move"
)

// Operation is the minimal replayable record of one applied mutation:
// remove(path), replace(path, value) or move(from, path).
type Operation struct {
	Op    Op     `json:"op" yaml:"op"`
	Path  string `json:"path" yaml:"path"`
	From  string `json:"from,omitempty" yaml:"from,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Patch is an ordered sequence of operations, suitable for persistence or
// replay by any remove/replace/move patch applier.
type Patch []Operation

// Apply replays a patch against a document, returning a new modified
// document. The original document is not changed.
func Apply(document any, patch Patch) (any, error) {
	clone, err := cloneValue(document)
	if err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return ApplyInPlace(clone, patch)
}

// ApplyInPlace replays a patch against a document in-place.
// WARNING: This function modifies the input document.
func ApplyInPlace(document any, patch Patch) (any, error) {
	for _, op := range patch {
		var err error
		switch op.Op {
		case Remove:
			document, err = removeAt(document, op.Path)
		case Replace:
			document, err = replaceAt(document, op.Path, op.Value)
		case Move:
			document, err = moveValue(document, op.From, op.Path)
		default:
			return nil, fmt.Errorf("unsupported patch operation: %s", op.Op)
		}

		if err != nil {
			return nil, fmt.Errorf("patch operation %s failed: %w", op.Op, err)
		}
	}

	return document, nil
}

// ApplyStream decodes a document from reader, replays the patch, and encodes
// the result to writer.
func ApplyStream(reader io.Reader, writer io.Writer, patch Patch) error {
	var doc any
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}

	modified, err := ApplyInPlace(doc, patch)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(writer)
	return encoder.Encode(modified)
}
