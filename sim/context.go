package sim

import "github.com/quietforge/circuitsim/circuit"

// ContextManager owns the single live execution context of a simulator
// instance. Replacement is whole-value: either the entire context changes or
// nothing does, which is what makes rollback after a failed call trivial.
//
// The manager cannot fail and performs no validation. What a well-formed
// context looks like is the compiled module's business.
type ContextManager struct {
	ctx circuit.Context
}

// NewContextManager seeds a manager with the instance's initial context.
func NewContextManager(ctx circuit.Context) *ContextManager {
	return &ContextManager{ctx: ctx}
}

// Context returns the current execution context. Context is a value type
// over immutable state trees, so the returned copy is safe to hold across
// subsequent replacements.
func (m *ContextManager) Context() circuit.Context {
	return m.ctx
}

// SetContext replaces the current context in full.
func (m *ContextManager) SetContext(ctx circuit.Context) {
	m.ctx = ctx
}

// UpdatePrivateState replaces only the private portion of the current
// context, preserving everything else. Test code uses it to inject private
// state between calls.
func (m *ContextManager) UpdatePrivateState(private any) {
	m.ctx.Private = private
}
