// Package tools implements the Tool Handler (Component H): the six MCP
// tools, the shared evaluate-internal algorithm, certification logic, and
// confirmation tracking.
//
// Grounded on the Rust reference implementation's mcp/tools.rs ToolHandler/
// param-struct shape (re-expressed in Go, not translated), and on the
// teacher's internal/executor.QualityController as the orchestration-object
// precedent: one struct holding Invoker/Cache/Bank/Hooks references,
// exposing one evaluate method per call site.
package tools

// ToolDescription is one entry in the tools/list response.
type ToolDescription struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Descriptions returns the six MCP tool descriptors with JSON Schema
// input descriptors, per spec.md §4.H / §4.I.
func Descriptions() []ToolDescription {
	return []ToolDescription{
		{
			Name:        "tetrad_review_plan",
			Description: "Evaluate an implementation plan via quadruple consensus review.",
			InputSchema: objectSchema(map[string]any{
				"plan":    stringProp("The implementation plan text to review."),
				"context": stringProp("Optional free-text context."),
			}, []string{"plan"}),
		},
		{
			Name:        "tetrad_review_code",
			Description: "Evaluate a code change via quadruple consensus review. Cacheable.",
			InputSchema: objectSchema(map[string]any{
				"code":      stringProp("The code to review."),
				"language":  stringProp("The code's language."),
				"file_path": stringProp("Optional originating file path."),
				"context":   stringProp("Optional free-text context."),
			}, []string{"code", "language"}),
		},
		{
			Name:        "tetrad_review_tests",
			Description: "Evaluate a test suite via quadruple consensus review.",
			InputSchema: objectSchema(map[string]any{
				"tests":    stringProp("The test code to review."),
				"language": stringProp("The tests' language."),
				"context":  stringProp("Optional free-text context."),
			}, []string{"tests", "language"}),
		},
		{
			Name:        "tetrad_confirm",
			Description: "Record agreement or disagreement with a prior evaluation result.",
			InputSchema: objectSchema(map[string]any{
				"request_id": stringProp("The prior evaluation's request id."),
				"agreed":     boolProp("Whether the caller agrees with the prior result."),
				"notes":      stringProp("Optional free-text notes."),
			}, []string{"request_id", "agreed"}),
		},
		{
			Name:        "tetrad_final_check",
			Description: "Certify code as ready, optionally requiring a prior confirmation.",
			InputSchema: objectSchema(map[string]any{
				"code":                stringProp("The code to certify."),
				"language":            stringProp("The code's language."),
				"previous_request_id": stringProp("Optional id of a prior result requiring confirmation."),
			}, []string{"code", "language"}),
		},
		{
			Name:        "tetrad_status",
			Description: "Report reviewer availability, cache stats, and consensus configuration.",
			InputSchema: objectSchema(map[string]any{}, nil),
		},
	}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
