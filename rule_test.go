package jsonrewrite_test

import (
	"strings"
	"testing"

	jsonrewrite "github.com/agentflare-ai/go-jsonrewrite"
)

func TestRuleConstructors(t *testing.T) {
	r := jsonrewrite.NewRemoveRule("$.a")
	if r.Kind != jsonrewrite.KindRemove || r.Matcher != "$.a" {
		t.Errorf("NewRemoveRule() = %#v", r)
	}
	if r.ID == "" {
		t.Error("constructors must generate an ID when none is supplied")
	}
	if r.Disabled || r.AllowEmptyMatcher || r.AllowEmptyValue {
		t.Error("flags must default to false")
	}

	r = jsonrewrite.NewReplaceRule("$.a", 42,
		jsonrewrite.WithID("custom"),
		jsonrewrite.WithValueMode(jsonrewrite.ValueLiteral))
	if r.ID != "custom" || r.Value != 42 || r.ValueMode != jsonrewrite.ValueLiteral {
		t.Errorf("NewReplaceRule() = %#v", r)
	}

	r = jsonrewrite.NewReplaceRule("$.a", "x")
	if r.ValueMode != jsonrewrite.ValueAuto {
		t.Errorf("replace value mode must default to auto, got %q", r.ValueMode)
	}

	r = jsonrewrite.NewMoveRule("$.a", "/b", jsonrewrite.WithAllowEmptyValue())
	if r.Kind != jsonrewrite.KindMove || r.Target != "/b" || !r.AllowEmptyValue {
		t.Errorf("NewMoveRule() = %#v", r)
	}
	if r.TargetMode != jsonrewrite.TargetAuto {
		t.Errorf("move target mode must default to auto, got %q", r.TargetMode)
	}

	r = jsonrewrite.NewRenameRule("$.a", "b", jsonrewrite.WithDisabled())
	if r.Kind != jsonrewrite.KindRename || !r.Disabled {
		t.Errorf("NewRenameRule() = %#v", r)
	}
}

func TestParseRules(t *testing.T) {
	rules, err := jsonrewrite.ParseRules([]byte(`[
		{"kind":"remove","matcher":"$.secrets[*]"},
		{"id":"r2","kind":"replace","matcher":"$.env","value":"prod","valueMode":"literal"},
		{"kind":"move","matcher":"$.draft.body","target":"/published/body"},
		{"kind":"rename","matcher":"$.user.first_name","target":"givenName","allowEmptyValue":true}
	]`))
	if err != nil {
		t.Fatalf("ParseRules() error: %v", err)
	}
	if len(rules) != 4 {
		t.Fatalf("len(rules) = %d, want 4", len(rules))
	}
	if rules[0].ID == "" {
		t.Error("parsed rules without an id must get one generated")
	}
	if rules[1].ID != "r2" || rules[1].ValueMode != jsonrewrite.ValueLiteral {
		t.Errorf("rules[1] = %#v", rules[1])
	}
	if rules[2].TargetMode != jsonrewrite.TargetAuto {
		t.Errorf("move target mode must default to auto, got %q", rules[2].TargetMode)
	}
	if !rules[3].AllowEmptyValue {
		t.Errorf("rules[3] = %#v", rules[3])
	}
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"missing kind", `[{"matcher":"$.a"}]`, "missing kind"},
		{"unknown kind", `[{"kind":"copy","matcher":"$.a"}]`, "unknown kind"},
		{"unknown value mode", `[{"kind":"replace","matcher":"$.a","value":1,"valueMode":"smart"}]`, "unknown value mode"},
		{"unknown move target mode", `[{"kind":"move","matcher":"$.a","target":"/b","targetMode":"literal"}]`, "unknown move target mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsonrewrite.ParseRules([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseRules() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseRulesYAML(t *testing.T) {
	rules, err := jsonrewrite.ParseRulesYAML([]byte(`
- kind: remove
  matcher: "$.secrets[*]"
  allowEmptyMatcher: true
- kind: replace
  matcher: "$.env"
  value: prod
  valueMode: literal
`))
	if err != nil {
		t.Fatalf("ParseRulesYAML() error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d, want 2", len(rules))
	}
	if !rules[0].AllowEmptyMatcher || rules[0].Kind != jsonrewrite.KindRemove {
		t.Errorf("rules[0] = %#v", rules[0])
	}
	if rules[1].Value != "prod" {
		t.Errorf("rules[1].Value = %#v, want prod", rules[1].Value)
	}
}
