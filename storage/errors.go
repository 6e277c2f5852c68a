package storage

import (
	"errors"
	"fmt"
)

// ErrMissingColumns marks a source whose header lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")

// LoadError reports why a dataset could not be loaded. It is fatal to the
// session that requested the load.
type LoadError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("load %s: line %d, column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
