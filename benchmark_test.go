package jsonrewrite_test

import (
	"testing"

	jsonrewrite "github.com/agentflare-ai/go-jsonrewrite"
)

func benchDoc() map[string]any {
	users := make([]any, 0, 100)
	for i := 0; i < 100; i++ {
		users = append(users, map[string]any{
			"name":     "user",
			"password": "secret",
			"tags":     []any{"a", "b", "c"},
		})
	}
	return map[string]any{
		"users": users,
		"meta":  map[string]any{"version": 1.0},
	}
}

func BenchmarkRewrite_RemoveMany(b *testing.B) {
	doc := benchDoc()
	rules := []jsonrewrite.Rule{
		jsonrewrite.NewRemoveRule("$.users[*].password"),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := jsonrewrite.Rewrite(doc, rules); !res.OK {
			b.Fatal(res.Errors)
		}
	}
}

func BenchmarkRewrite_MixedRules(b *testing.B) {
	doc := benchDoc()
	rules := []jsonrewrite.Rule{
		jsonrewrite.NewRemoveRule("$.users[*].password"),
		jsonrewrite.NewReplaceRule("$.meta.version", 2.0, jsonrewrite.WithValueMode(jsonrewrite.ValueLiteral)),
		jsonrewrite.NewMoveRule("$.meta", "/audit"),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := jsonrewrite.Rewrite(doc, rules); !res.OK {
			b.Fatal(res.Errors)
		}
	}
}

func BenchmarkApply_Replay(b *testing.B) {
	doc := benchDoc()
	res := jsonrewrite.Rewrite(doc, []jsonrewrite.Rule{
		jsonrewrite.NewRemoveRule("$.users[*].password"),
	})
	if !res.OK {
		b.Fatal(res.Errors)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := jsonrewrite.Apply(doc, res.Applied); err != nil {
			b.Fatal(err)
		}
	}
}
