package contracts

import (
	"fmt"
	"strings"
)

// StageExecutionError reports a stage whose backend call failed, timed out or
// answered with something unusable. The run stops at the first one.
type StageExecutionError struct {
	Stage Stage
	Err   error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Stage.ShortName(), e.Stage, e.Err)
}

func (e *StageExecutionError) Unwrap() error {
	return e.Err
}

// SchemaValidationError reports a formatted report that does not match the
// artifact schema. Nothing is written when this is returned.
type SchemaValidationError struct {
	Problems []string
}

func (e *SchemaValidationError) Error() string {
	const shown = 5
	if len(e.Problems) <= shown {
		return "schema validation failed: " + strings.Join(e.Problems, "; ")
	}
	return fmt.Sprintf("schema validation failed: %s; and %d more",
		strings.Join(e.Problems[:shown], "; "), len(e.Problems)-shown)
}
