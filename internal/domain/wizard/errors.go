package wizard

import "errors"

var (
	// ErrStepInvalid is returned when a forward transition is refused
	// because the gating step has missing required fields
	ErrStepInvalid = errors.New("step has invalid fields")

	// ErrStepOutOfRange is returned for a navigation target outside [0, stepCount-1]
	ErrStepOutOfRange = errors.New("step index out of range")

	// ErrNotHydrated is returned when an edit-mode controller is used
	// before hydration completes
	ErrNotHydrated = errors.New("wizard not hydrated")

	// ErrNoSteps is returned when a controller is built without steps
	ErrNoSteps = errors.New("wizard requires at least one step")
)
