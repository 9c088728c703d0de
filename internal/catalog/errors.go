package catalog

import "fmt"

// ConfigError reports a malformed or inconsistent rule catalog. It is fatal
// to catalog load: the service must not start (or must keep serving the
// previous catalog on reload) rather than run with a partially valid one.
type ConfigError struct {
	Path   string // file the catalog was loaded from, if any
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid rule catalog '%s': %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid rule catalog: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(path string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
