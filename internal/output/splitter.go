package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONFound is returned when the output contains no '{' at all.
var ErrNoJSONFound = errors.New("no JSON found in the output")

// InvalidJSONError reports that the text after the first '{' is not valid JSON.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error {
	return e.Err
}

// SplitResult is captured process output separated into its free-text
// preamble and the decoded JSON document.
type SplitResult struct {
	Meta string `json:"meta"`
	JSON any    `json:"json"`
}

// Split separates raw output at the first '{': the trimmed text before it is
// Meta and the trimmed remainder must parse as JSON. The output must be
// complete; a '{' inside the preamble is not detected and breaks the split.
func Split(raw string) (*SplitResult, error) {
	idx := strings.IndexByte(raw, '{')
	if idx == -1 {
		return nil, ErrNoJSONFound
	}

	meta := strings.TrimSpace(raw[:idx])
	candidate := strings.TrimSpace(raw[idx:])

	var doc any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, &InvalidJSONError{Err: err}
	}

	return &SplitResult{Meta: meta, JSON: doc}, nil
}
