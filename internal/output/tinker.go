package output

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// QueryLogEntry is one entry of Laravel's DB::getQueryLog()
type QueryLogEntry struct {
	Query    string  `json:"query"`
	Bindings []any   `json:"bindings"`
	Time     float64 `json:"time"`
}

// TinkerPayload is the document printed by the tinker wrapper:
// json_encode(['result' => $result, 'queries' => DB::getQueryLog()])
type TinkerPayload struct {
	Result  any             `json:"result"`
	Queries []QueryLogEntry `json:"queries"`
}

// DecodeTinker maps a split result onto the tinker wrapper's document.
// Documents without a "queries" key decode with an empty query log.
func DecodeTinker(res *SplitResult) (*TinkerPayload, error) {
	if res == nil {
		return nil, fmt.Errorf("nil split result")
	}

	obj, ok := res.JSON.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tinker output is %T, want a JSON object", res.JSON)
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode tinker output: %w", err)
	}

	var payload TinkerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode tinker output: %w", err)
	}
	if payload.Queries == nil {
		payload.Queries = []QueryLogEntry{}
	}
	return &payload, nil
}

var phpOpenTagRe = regexp.MustCompile(`^\s*<\?php\s*`)

// StripPHPOpenTag removes a leading "<?php" tag from an editor snippet so it
// can be piped to tinker.
func StripPHPOpenTag(snippet string) string {
	return strings.TrimSpace(phpOpenTagRe.ReplaceAllString(snippet, ""))
}
