// Package tools implements the MCP tool handlers of the feature replicator.
//
// Each tool is a struct that receives its dependencies through its
// constructor and exposes Definition (the MCP schema) and Handle (the
// mcp-go handler).
//
// Design principles:
// - SRP: each file = one tool
// - input validation happens before any I/O; violations become tool errors
// - unexpected internal failures are returned as Go errors
package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// argError is an input validation failure. Handlers turn it into an
// isError tool result.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func argErrorf(format string, a ...any) error {
	return &argError{msg: fmt.Sprintf(format, a...)}
}

// stringArg returns a string argument. A missing argument yields def, or
// an error when required.
func stringArg(args map[string]any, name, def string, required bool) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		if required {
			return "", argErrorf("'%s' is required", name)
		}
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", argErrorf("'%s' must be a string, got %T", name, v)
	}
	if s == "" {
		if required {
			return "", argErrorf("'%s' must not be empty", name)
		}
		return def, nil
	}
	return s, nil
}

// intArg returns an integral number argument within [lo, hi], or def
// when missing.
func intArg(args map[string]any, name string, def, lo, hi int) (int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, argErrorf("'%s' must be a number", name)
		}
		f = parsed
	default:
		return 0, argErrorf("'%s' must be a number, got %T", name, v)
	}
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, argErrorf("'%s' must be an integer", name)
	}
	if f < float64(lo) || f > float64(hi) {
		return 0, argErrorf("'%s' must be between %d and %d, got %v", name, lo, hi, f)
	}
	return int(f), nil
}

// stringListArg returns a required, non-empty array of strings.
func stringListArg(args map[string]any, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, argErrorf("'%s' is required", name)
	}
	var items []any
	switch list := v.(type) {
	case []any:
		items = list
	case []string:
		return nonEmpty(name, list)
	default:
		return nil, argErrorf("'%s' must be an array, got %T", name, v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, argErrorf("'%s[%d]' must be a string, got %T", name, i, item)
		}
		out = append(out, s)
	}
	return nonEmpty(name, out)
}

func nonEmpty(name string, list []string) ([]string, error) {
	if len(list) == 0 {
		return nil, argErrorf("'%s' must contain at least one entry", name)
	}
	return list, nil
}

// objectArg decodes an object argument into dst. It reports whether the
// argument was present.
func objectArg(args map[string]any, name string, dst any) (bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return false, nil
	}
	if _, isObject := v.(map[string]any); !isObject {
		return false, argErrorf("'%s' must be an object, got %T", name, v)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return false, argErrorf("'%s': %v", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, argErrorf("'%s' is malformed: %v", name, err)
	}
	return true, nil
}

// techStackArg returns the optional tech_stack argument, or nil.
func techStackArg(args map[string]any) (*model.TechStack, error) {
	var ts model.TechStack
	present, err := objectArg(args, "tech_stack", &ts)
	if err != nil || !present {
		return nil, err
	}
	return &ts, nil
}

// toolError converts validation failures into an isError result. Other
// errors are returned unchanged.
func toolError(err error) (*mcp.CallToolResult, error) {
	if ae, ok := err.(*argError); ok {
		return mcp.NewToolResultError(ae.msg), nil
	}
	return nil, err
}

// jsonText renders v as indented JSON.
func jsonText(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(data), nil
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	text, err := jsonText(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(text), nil
}

// techStackSchema describes the tech_stack object for tool definitions.
var techStackSchema = map[string]any{
	"language":  map[string]any{"type": "string", "description": "csharp, java, php, python, javascript or typescript"},
	"framework": map[string]any{"type": "string"},
	"databases": map[string]any{
		"type":        "array",
		"description": "Database engines: either strings (\"mysql\") or {engine, name} objects",
	},
}
