package jsonrewrite

import "github.com/theory/jsonpath"

// Evaluator locates nodes in a document from a query expression. The engine
// treats it as an opaque capability: it either returns pointers or values, or
// reports a failure with a message. Implementations must not mutate the
// document.
type Evaluator interface {
	// EvaluatePointers returns one RFC 6901 pointer per matched location.
	EvaluatePointers(document any, expression string) ([]string, error)

	// EvaluateValues returns the matched values themselves.
	EvaluateValues(document any, expression string) ([]any, error)
}

// JSONPathEvaluator is the default Evaluator, backed by an RFC 9535 JSONPath
// implementation. Normalized result paths are converted to pointers.
type JSONPathEvaluator struct{}

func (JSONPathEvaluator) EvaluatePointers(document any, expression string) ([]string, error) {
	p, err := jsonpath.Parse(expression)
	if err != nil {
		return nil, err
	}
	nodes := p.SelectLocated(document)
	pointers := make([]string, 0, len(nodes))
	for _, node := range nodes {
		pointers = append(pointers, node.Path.Pointer())
	}
	return pointers, nil
}

func (JSONPathEvaluator) EvaluateValues(document any, expression string) ([]any, error) {
	p, err := jsonpath.Parse(expression)
	if err != nil {
		return nil, err
	}
	return []any(p.Select(document)), nil
}
