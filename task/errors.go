package task

import "fmt"

// IOError reports failure to read or write file.
type IOError struct {
	Op   string // "read", "write", "mkdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("unable to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// TransformError reports transformation engine failure.
type TransformError struct {
	Path string
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("unable to transform %s: %v", e.Path, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }
