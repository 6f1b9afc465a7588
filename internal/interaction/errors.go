package interaction

import (
	"fmt"

	"github.com/tidemark-games/worldcore/pkg/models"
)

// ConfigurationError reports a malformed or unresolved node graph. It fails
// the load of the whole definition; a pack never loads partially.
type ConfigurationError struct {
	Definition string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.Definition == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in definition %s: %v", e.Definition, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(definition, format string, args ...any) error {
	return &ConfigurationError{Definition: definition, Err: fmt.Errorf(format, args...)}
}

// ExecutionFault reports a defect surfaced at run time, such as a program
// index out of range. It is always isolated to the offending activation and
// never propagates out of the tick loop.
type ExecutionFault struct {
	Definition   string
	ActivationID string
	Entity       models.EntityID
	Index        int
	Reason       string
}

func (e *ExecutionFault) Error() string {
	return fmt.Sprintf("execution fault in %s (activation %s, entity %s, index %d): %s",
		e.Definition, e.ActivationID, e.Entity, e.Index, e.Reason)
}

func (c *Context) faultf(format string, args ...any) *ExecutionFault {
	return &ExecutionFault{
		Definition:   c.def.ID,
		ActivationID: c.ID,
		Entity:       c.Entity,
		Index:        c.index,
		Reason:       fmt.Sprintf(format, args...),
	}
}
