package laravel

import "fmt"

// ConfigurationError is returned before any I/O when the scan root is missing.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "root not configured"
	}
	return fmt.Sprintf("%s not configured", e.Field)
}

// ScanError wraps the I/O failure that aborted a scan.
type ScanError struct {
	Op   string // "list" or "read"
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
