package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// toJSON renders a tool response as indented JSON text
func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(data), nil
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// boolArg accepts JSON booleans and the strings "true"/"false"
func boolArg(args map[string]interface{}, key string) (bool, bool) {
	switch v := args[key].(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

func outputFormat(args map[string]interface{}) string {
	if of := stringArg(args, "output_format"); of != "" {
		return strings.ToLower(of)
	}
	return "json"
}
