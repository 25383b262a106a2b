package ingestion

import "fmt"

// LoadError reports a source table or artifact that could not be read.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		if e.Cause != nil {
			return fmt.Sprintf("load error: %s: %v", e.Message, e.Cause)
		}
		return fmt.Sprintf("load error: %s", e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
