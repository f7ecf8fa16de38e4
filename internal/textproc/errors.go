package textproc

import "fmt"

// ResourceError represents a failure building the linguistic resource bundle
type ResourceError struct {
	Message string
	Cause   error
}

func (e *ResourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("linguistic resources: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("linguistic resources: %s", e.Message)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}
