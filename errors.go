package jsonrewrite

import "errors"

// Sentinel errors for every failure class the engine reports. None of these
// ever escape to the caller as a returned error; they are captured into rule
// diagnostics and matched in tests with errors.Is.
var (
	// ErrEmptyMatcher is reported when a rule's matcher expression is empty
	// after trimming.
	ErrEmptyMatcher = errors.New("empty matcher expression")

	// ErrMatch wraps failures raised by the query evaluator.
	ErrMatch = errors.New("matcher evaluation failed")

	// ErrValueArity is reported when a value or target query resolved to a
	// result count other than exactly one.
	ErrValueArity = errors.New("query arity mismatch")

	// ErrUnresolvedValue is reported when a rule requires a value or target
	// and none was supplied.
	ErrUnresolvedValue = errors.New("missing required value")

	// ErrUnsafePointer is reported when a write would target a pointer
	// containing a reserved inheritance-chain key.
	ErrUnsafePointer = errors.New("pointer contains a reserved key")

	// ErrPointerNotFound is reported when a pointer does not address an
	// existing location in the document.
	ErrPointerNotFound = errors.New("pointer not found")

	// ErrIndexOutOfBounds is reported when an array token is not a valid
	// index for the addressed array.
	ErrIndexOutOfBounds = errors.New("array index out of bounds")

	// ErrRootMutation is reported when an operation attempts to remove or
	// rename the document root.
	ErrRootMutation = errors.New("cannot mutate the document root")

	// ErrRenameCollision is reported when a rename resolves to a key already
	// owned by a sibling.
	ErrRenameCollision = errors.New("rename target key already exists")
)
