// Package query filters record listings with JMESPath, the same way the AWS CLI --query flag does.
package query

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
)

// EvalAny returns the raw value selected by the JMESPath expression.
// It returns nil and no error if the expression matches nothing.
func EvalAny(expression string, payload any) (any, error) {
	v, err := jmespath.Search(expression, payload)
	if err != nil {
		return nil, fmt.Errorf("jmespath: %w", err)
	}
	return v, nil
}

// Apply runs expression over records as they look in JSON, so field names follow the json tags.
// An empty expression returns the decoded records unchanged.
func Apply[T any](expression string, records []T) (any, error) {
	b, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var doc []any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if expression == "" {
		return doc, nil
	}
	return EvalAny(expression, doc)
}
