package wizard

import (
	"context"
	"fmt"
	"sort"
)

// Submitter receives the accumulated data when the last step advances.
type Submitter interface {
	Submit(ctx context.Context, data Data) error
}

// SubmitterFunc adapts a function to the Submitter interface
type SubmitterFunc func(ctx context.Context, data Data) error

// Submit implements Submitter
func (f SubmitterFunc) Submit(ctx context.Context, data Data) error {
	return f(ctx, data)
}

// Hydrator fetches a previously saved entity's data for edit mode.
type Hydrator interface {
	Fetch(ctx context.Context, entityID string) (Data, error)
}

// MessageFunc resolves a user-visible message for an invalid field key.
// Supplied externally (i18n); used only to decorate, never to decide.
type MessageFunc func(field string) string

// Controller owns the ordered step list, the current index, the accumulated
// data, and per-step error-highlight state. Forward navigation is gated on
// the current step's validator; backward navigation is unrestricted.
type Controller struct {
	steps     []Step
	index     int
	data      Data
	highlight map[int]bool
	invalid   map[int]map[string]bool

	submitter Submitter
	messages  MessageFunc

	hydrator Hydrator
	entityID string
	hydrated bool
}

// New creates a controller for a fresh form. The controller is interactive
// immediately.
func New(steps []Step, submitter Submitter) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Controller{
		steps:     steps,
		data:      Data{},
		highlight: make(map[int]bool),
		invalid:   make(map[int]map[string]bool),
		submitter: submitter,
		hydrated:  true,
	}, nil
}

// NewForEdit creates a controller pre-populated from a saved entity. The
// controller refuses interaction until Hydrate succeeds.
func NewForEdit(steps []Step, submitter Submitter, hydrator Hydrator, entityID string) (*Controller, error) {
	c, err := New(steps, submitter)
	if err != nil {
		return nil, err
	}
	c.hydrator = hydrator
	c.entityID = entityID
	c.hydrated = false
	return c, nil
}

// SetMessages registers the i18n lookup used by InvalidMessages
func (c *Controller) SetMessages(fn MessageFunc) {
	c.messages = fn
}

// Hydrate fetches the saved entity and merges it into the accumulated data.
// A fetch failure leaves the controller non-interactive and unchanged.
func (c *Controller) Hydrate(ctx context.Context) error {
	if c.hydrator == nil {
		c.hydrated = true
		return nil
	}

	fetched, err := c.hydrator.Fetch(ctx, c.entityID)
	if err != nil {
		return fmt.Errorf("failed to hydrate wizard: %w", err)
	}

	for k, v := range fetched {
		c.data[k] = v
	}
	c.hydrated = true
	return nil
}

// Ready reports whether the wizard may render step content
func (c *Controller) Ready() bool {
	return c.hydrated
}

// StepIndex returns the current 0-based step index
func (c *Controller) StepIndex() int {
	return c.index
}

// CurrentStep returns the step under the cursor
func (c *Controller) CurrentStep() Step {
	return c.steps[c.index]
}

// Next advances one step if the current step's gate passes. On the last
// step it invokes the submit collaborator instead; a submit failure leaves
// the index and data exactly as they were.
func (c *Controller) Next(ctx context.Context) error {
	if !c.hydrated {
		return ErrNotHydrated
	}

	if failed := c.gate(c.index); failed {
		return fmt.Errorf("%w: %s", ErrStepInvalid, c.steps[c.index].ID)
	}

	if c.index < len(c.steps)-1 {
		c.index++
		return nil
	}

	if c.submitter == nil {
		return nil
	}
	if err := c.submitter.Submit(ctx, c.data.Clone()); err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}
	return nil
}

// GoTo navigates to an arbitrary step. Backward and same-step navigation is
// unconditional; a forward jump re-validates only the current step, not the
// intermediate ones.
func (c *Controller) GoTo(target int) error {
	if !c.hydrated {
		return ErrNotHydrated
	}
	if target < 0 || target >= len(c.steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, target)
	}

	if target <= c.index {
		c.index = target
		return nil
	}

	if failed := c.gate(c.index); failed {
		return fmt.Errorf("%w: %s", ErrStepInvalid, c.steps[c.index].ID)
	}
	c.index = target
	return nil
}

// gate validates one step, updating highlight state. Returns true when the
// step blocks navigation.
func (c *Controller) gate(step int) bool {
	fields := c.steps[step].invalidFields(c.data)
	if len(fields) == 0 {
		c.highlight[step] = false
		delete(c.invalid, step)
		return false
	}

	c.highlight[step] = true
	marks := make(map[string]bool, len(fields))
	for _, f := range fields {
		marks[f] = true
	}
	c.invalid[step] = marks
	return true
}

// UpdateData shallow-merges partial into the accumulated data. Any merged
// key that was flagged invalid on the current step is un-flagged at once,
// without waiting for the next validation pass.
func (c *Controller) UpdateData(partial Data) {
	for k, v := range partial {
		c.data[k] = v
		if marks, ok := c.invalid[c.index]; ok {
			delete(marks, k)
			if len(marks) == 0 {
				delete(c.invalid, c.index)
				c.highlight[c.index] = false
			}
		}
	}
}

// Data returns a copy of the accumulated data
func (c *Controller) Data() Data {
	return c.data.Clone()
}

// HighlightErrors reports whether the step should render its error state
func (c *Controller) HighlightErrors(step int) bool {
	return c.highlight[step]
}

// InvalidFields returns the sorted invalid field keys for a step
func (c *Controller) InvalidFields(step int) []string {
	marks := c.invalid[step]
	fields := make([]string, 0, len(marks))
	for f := range marks {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// InvalidMessages resolves the current step's invalid fields through the
// registered message lookup
func (c *Controller) InvalidMessages() map[string]string {
	out := make(map[string]string)
	for _, f := range c.InvalidFields(c.index) {
		if c.messages != nil {
			out[f] = c.messages(f)
		} else {
			out[f] = f
		}
	}
	return out
}
