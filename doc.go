// Package jsonrewrite applies ordered, declarative rewrite rules to
// JSON-like documents. A rule matches locations with a query expression and
// removes, replaces, moves or renames them; the engine clones the input,
// applies every rule in order against the clone, and returns the mutated
// copy together with a replayable remove/replace/move patch and a full
// per-rule diagnostic trail.
//
// Failures never escape as errors: each one is captured into the Result's
// diagnostics, the offending operation is skipped, and execution continues
// with the remaining operations and rules.
package jsonrewrite
