package hooks

import "context"

// Kind distinguishes the two hook flavors.
type Kind string

const (
	// KindAction is a hook invoked for its side effects.
	KindAction Kind = "action"
	// KindFilter is a hook invoked to transform a value.
	KindFilter Kind = "filter"
)

// DefaultPriority is used when no priority option is given.
// Lower priorities run earlier.
const DefaultPriority = 10

// DefaultAcceptedArgs is the number of extra arguments a callback
// receives when no accepted-args option is given.
const DefaultAcceptedArgs = 1

// Canonical lifecycle hook names emitted by the engine. Hook names are
// free-form strings; these are the ones Tessera itself dispatches, in
// roughly this order during startup and rendering.
const (
	HookAfterSetup           = "after_setup"
	HookInit                 = "init"
	HookRegisterWidgets      = "register_widgets"
	HookEnqueueAssets        = "enqueue_assets"
	HookBeforeTemplateRender = "before_template_render"

	// FilterContent transforms the rendered body before it is served.
	// Callbacks receive and must return a string.
	FilterContent = "content"
)

// ActionFunc handles an action dispatch. Return values other than the
// error are not modeled; a non-nil error halts the chain.
type ActionFunc func(ctx context.Context, args ...any) error

// FilterFunc transforms a value. The returned value is passed to the
// next callback in the chain. Filters must preserve the semantic type
// of the value they receive; this is a documented contract, not a
// runtime check.
type FilterFunc func(ctx context.Context, value any, args ...any) (any, error)

// Registration identifies one callback attached to a hook. The ID is
// the identity used by Unregister.
type Registration struct {
	ID           string
	Hook         string
	Kind         Kind
	Priority     int
	AcceptedArgs int

	action ActionFunc
	filter FilterFunc
}

// RegisterOption configures a registration.
type RegisterOption func(*Registration)

// WithPriority sets the registration's priority. Lower runs earlier.
func WithPriority(p int) RegisterOption {
	return func(r *Registration) {
		r.Priority = p
	}
}

// WithAcceptedArgs caps how many extra arguments the callback receives
// at dispatch time. Must not be negative.
func WithAcceptedArgs(n int) RegisterOption {
	return func(r *Registration) {
		r.AcceptedArgs = n
	}
}
