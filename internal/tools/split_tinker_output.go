package tools

import (
	"context"
	"fmt"

	"github.com/doITmagic/tinkerlens/internal/output"
)

// SplitOutputTool separates tinker console noise from the JSON result
type SplitOutputTool struct{}

// NewSplitOutputTool creates the output splitting tool
func NewSplitOutputTool() *SplitOutputTool {
	return &SplitOutputTool{}
}

type splitResponse struct {
	Meta    string                 `json:"meta"`
	JSON    any                    `json:"json"`
	Queries []output.QueryLogEntry `json:"queries,omitempty"`
}

func (t *SplitOutputTool) Name() string {
	return "split_tinker_output"
}

func (t *SplitOutputTool) Description() string {
	return "Split captured `php artisan tinker` output into the leading console text (warnings, deprecation notices) and the parsed JSON result. When the JSON carries a Laravel query log it is returned as queries."
}

func (t *SplitOutputTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, ok := args["output"].(string)
	if !ok {
		return "", fmt.Errorf("output is required")
	}

	res, err := output.Split(raw)
	if err != nil {
		return "", err
	}

	resp := splitResponse{Meta: res.Meta, JSON: res.JSON}
	if obj, ok := res.JSON.(map[string]any); ok {
		if _, hasQueries := obj["queries"]; hasQueries {
			if payload, err := output.DecodeTinker(res); err == nil {
				resp.Queries = payload.Queries
			}
		}
	}

	return toJSON(resp)
}
