package session

import (
	"fmt"

	"pagesmith/internal/grid"
)

// UnknownComponentError reports an insert referencing a component id absent
// from the catalog.
type UnknownComponentError struct {
	ComponentID string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q", e.ComponentID)
}

// InvalidTargetError reports an insert aimed at a grid position that no
// longer exists.
type InvalidTargetError struct {
	Target grid.Target
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid grid target %v", e.Target)
}
