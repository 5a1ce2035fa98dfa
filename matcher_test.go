package jsonrewrite_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	jsonrewrite "github.com/agentflare-ai/go-jsonrewrite"
)

// stubEvaluator returns canned results so evaluator-facing behavior can be
// pinned down without a real query language.
type stubEvaluator struct {
	pointers []string
	ptrErr   error
	values   []any
	valErr   error
}

func (s stubEvaluator) EvaluatePointers(any, string) ([]string, error) {
	return s.pointers, s.ptrErr
}

func (s stubEvaluator) EvaluateValues(any, string) ([]any, error) {
	return s.values, s.valErr
}

func TestMatcher_DeduplicatesAndNormalizes(t *testing.T) {
	doc := mustDoc(t, `{"a":1,"b":2}`)

	// Overlapping selectors yield the same location twice, once without the
	// leading slash. It must count and apply exactly once.
	tr := jsonrewrite.NewTransformer(jsonrewrite.WithEvaluator(stubEvaluator{
		pointers: []string{"/a", "a", "/b", "/a"},
	}))
	res := tr.Apply(doc, []jsonrewrite.Rule{jsonrewrite.NewRemoveRule("$.ignored")})

	if !res.OK {
		t.Fatalf("Apply() not OK, errors: %v", res.Errors)
	}
	if res.Diagnostics[0].MatchCount != 2 {
		t.Errorf("matchCount = %d, want 2", res.Diagnostics[0].MatchCount)
	}
	assertDoc(t, res.Document, `{}`)

	var paths []string
	for _, op := range res.Applied {
		paths = append(paths, op.Path)
	}
	if !reflect.DeepEqual(paths, []string{"/a", "/b"}) {
		t.Errorf("applied = %v, want first-seen order [/a /b]", paths)
	}
}

func TestMatcher_WrapsEvaluatorFailure(t *testing.T) {
	doc := mustDoc(t, `{"a":1}`)

	t.Run("plain failure", func(t *testing.T) {
		tr := jsonrewrite.NewTransformer(jsonrewrite.WithEvaluator(stubEvaluator{
			ptrErr: errors.New("unexpected token"),
		}))
		res := tr.Apply(doc, []jsonrewrite.Rule{jsonrewrite.NewRemoveRule("$.broken[")})
		if res.OK || !strings.Contains(res.Errors[0], "$.broken[") {
			t.Errorf("errors = %v, want the matcher expression named", res.Errors)
		}
	})

	t.Run("undefined dereference adds guidance", func(t *testing.T) {
		tr := jsonrewrite.NewTransformer(jsonrewrite.WithEvaluator(stubEvaluator{
			ptrErr: errors.New("cannot read properties of undefined"),
		}))
		res := tr.Apply(doc, []jsonrewrite.Rule{jsonrewrite.NewRemoveRule("$.a.b.c")})
		if res.OK || !strings.Contains(res.Errors[0], "existence filter") {
			t.Errorf("errors = %v, want guidance about existence filters", res.Errors)
		}
	})
}

func TestMatcher_MixedParentRemovalOrdering(t *testing.T) {
	doc := mustDoc(t, `{"arr":[10,20,30],"other":[1,2,3]}`)

	// Same-parent removals reorder to descending index within their own
	// slots; removals from different parents keep their relative position.
	tr := jsonrewrite.NewTransformer(jsonrewrite.WithEvaluator(stubEvaluator{
		pointers: []string{"/arr/0", "/other/2", "/arr/2"},
	}))
	res := tr.Apply(doc, []jsonrewrite.Rule{jsonrewrite.NewRemoveRule("$.ignored")})

	if !res.OK {
		t.Fatalf("Apply() not OK, errors: %v", res.Errors)
	}

	var paths []string
	for _, op := range res.Applied {
		paths = append(paths, op.Path)
	}
	if !reflect.DeepEqual(paths, []string{"/arr/2", "/other/2", "/arr/0"}) {
		t.Errorf("applied order = %v, want [/arr/2 /other/2 /arr/0]", paths)
	}
	assertDoc(t, res.Document, `{"arr":[20],"other":[1,2]}`)
}

func TestMatcher_MatchIndexBounds(t *testing.T) {
	doc := mustDoc(t, `{"arr":[10,20,30]}`)

	tr := jsonrewrite.NewTransformer(jsonrewrite.WithEvaluator(stubEvaluator{
		pointers: []string{"/arr/0", "/arr/1"},
	}))
	res := tr.Apply(doc, []jsonrewrite.Rule{jsonrewrite.NewRemoveRule("$.ignored")})

	diag := res.Diagnostics[0]
	for _, op := range diag.Operations {
		if op.MatchIndex < 0 || op.MatchIndex >= diag.MatchCount {
			t.Errorf("matchIndex %d outside [0,%d)", op.MatchIndex, diag.MatchCount)
		}
	}
}
