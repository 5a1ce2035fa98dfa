package jsonrewrite

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// EncodeJSON renders a document tree as indented JSON.
func EncodeJSON(document any) ([]byte, error) {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document as JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeYAML renders a document tree as YAML.
func EncodeYAML(document any) ([]byte, error) {
	data, err := yaml.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode document as YAML: %w", err)
	}
	return data, nil
}

// ParseRules decodes a JSON array of rule records, validating kinds and
// interpretation modes and generating IDs for rules without one.
func ParseRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	for i := range rules {
		if err := validateRule(i, &rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

// ParseRulesYAML decodes a YAML list of rule records with the same
// validation as ParseRules.
func ParseRulesYAML(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	for i := range rules {
		if err := validateRule(i, &rules[i]); err != nil {
			return nil, err
		}
	}
	return rules, nil
}
