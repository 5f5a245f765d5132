package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/watzon/tessera/internal/metrics"
)

var (
	// ErrInvalidRegistration is returned when a registration is
	// rejected at register time. Registry state is unchanged.
	ErrInvalidRegistration = errors.New("invalid hook registration")

	// ErrFrozen is returned by Register/Unregister after Freeze.
	ErrFrozen = errors.New("hook registry is frozen")
)

// CallbackError wraps a callback failure during dispatch. Callbacks
// that ran before the failing one are not rolled back; the chain for
// that dispatch halts.
type CallbackError struct {
	Hook           string
	RegistrationID string
	Err            error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("hook %q: callback %s: %v", e.Hook, e.RegistrationID, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Registry manages hook registrations and dispatch.
//
// Mutation (Register/Unregister) and dispatch are guarded by one
// coarse RWMutex. After Freeze, mutation is rejected and concurrent
// dispatch needs only read access.
type Registry struct {
	table  map[string][]*Registration
	frozen bool
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		table: make(map[string][]*Registration),
	}
}

// AddAction registers an action callback on the named hook. Multiple
// callbacks may share a hook name; same-priority callbacks run in
// registration order.
func (r *Registry) AddAction(hook string, fn ActionFunc, opts ...RegisterOption) (*Registration, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil callback for hook %q", ErrInvalidRegistration, hook)
	}
	reg := &Registration{
		Hook:   hook,
		Kind:   KindAction,
		action: fn,
	}
	return r.add(reg, opts)
}

// AddFilter registers a filter callback on the named hook.
func (r *Registry) AddFilter(hook string, fn FilterFunc, opts ...RegisterOption) (*Registration, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil callback for hook %q", ErrInvalidRegistration, hook)
	}
	reg := &Registration{
		Hook:   hook,
		Kind:   KindFilter,
		filter: fn,
	}
	return r.add(reg, opts)
}

func (r *Registry) add(reg *Registration, opts []RegisterOption) (*Registration, error) {
	reg.Priority = DefaultPriority
	reg.AcceptedArgs = DefaultAcceptedArgs
	for _, opt := range opts {
		opt(reg)
	}

	if reg.Hook == "" {
		return nil, fmt.Errorf("%w: empty hook name", ErrInvalidRegistration)
	}
	if reg.AcceptedArgs < 0 {
		return nil, fmt.Errorf("%w: negative accepted args %d for hook %q",
			ErrInvalidRegistration, reg.AcceptedArgs, reg.Hook)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, ErrFrozen
	}

	reg.ID = uuid.New().String()

	regs := append(r.table[reg.Hook], reg)
	// Appended entries sort after existing entries at the same
	// priority, which is exactly the registration-order guarantee.
	sort.SliceStable(regs, func(i, j int) bool {
		return regs[i].Priority < regs[j].Priority
	})
	r.table[reg.Hook] = regs

	log.Debug().
		Str("hook", reg.Hook).
		Str("kind", string(reg.Kind)).
		Str("id", reg.ID).
		Int("priority", reg.Priority).
		Msg("Hook callback registered")

	return reg, nil
}

// Unregister removes the registration with the given ID from the named
// hook. It reports whether a registration was found; removing an
// unknown registration is not an error and leaves the registry
// unchanged.
func (r *Registry) Unregister(hook, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return false, ErrFrozen
	}

	regs := r.table[hook]
	for i, reg := range regs {
		if reg.ID != id {
			continue
		}
		r.table[hook] = append(regs[:i:i], regs[i+1:]...)
		if len(r.table[hook]) == 0 {
			delete(r.table, hook)
		}
		log.Debug().Str("hook", hook).Str("id", id).Msg("Hook callback unregistered")
		return true, nil
	}

	return false, nil
}

// Freeze rejects all further Register/Unregister calls. Dispatch stays
// available. Intended to be called once startup wiring is complete.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()

	log.Debug().Msg("Hook registry frozen")
}

// DispatchAction invokes every action callback registered on the hook,
// priorities ascending, registration order within a priority. A hook
// with no registrations is a no-op. The first callback error halts the
// chain and is returned wrapped in *CallbackError; callbacks that
// already ran are not undone.
func (r *Registry) DispatchAction(ctx context.Context, hook string, args ...any) error {
	for _, reg := range r.snapshot(hook) {
		if reg.Kind != KindAction {
			continue
		}
		if err := reg.action(ctx, clampArgs(args, reg.AcceptedArgs)...); err != nil {
			metrics.RecordDispatch(hook, string(KindAction), false)
			return &CallbackError{Hook: hook, RegistrationID: reg.ID, Err: err}
		}
	}
	metrics.RecordDispatch(hook, string(KindAction), true)
	return nil
}

// ApplyFilter threads value through every filter callback registered on
// the hook, in the same order as DispatchAction. Each callback's return
// value feeds the next. With no registrations the input value is
// returned unchanged. On callback error the chain halts and the last
// good value is returned alongside the wrapped error, so the caller can
// choose between log-and-continue and abort.
func (r *Registry) ApplyFilter(ctx context.Context, hook string, value any, args ...any) (any, error) {
	current := value
	for _, reg := range r.snapshot(hook) {
		if reg.Kind != KindFilter {
			continue
		}
		next, err := reg.filter(ctx, current, clampArgs(args, reg.AcceptedArgs)...)
		if err != nil {
			metrics.RecordDispatch(hook, string(KindFilter), false)
			return current, &CallbackError{Hook: hook, RegistrationID: reg.ID, Err: err}
		}
		current = next
	}
	metrics.RecordDispatch(hook, string(KindFilter), true)
	return current, nil
}

// Registrations returns a snapshot of the hook's registrations in
// dispatch order.
func (r *Registry) Registrations(hook string) []*Registration {
	return r.snapshot(hook)
}

// Hooks returns the sorted names of all hooks with registrations.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.table))
	for name := range r.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) snapshot(hook string) []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.table[hook]
	if len(regs) == 0 {
		return nil
	}
	out := make([]*Registration, len(regs))
	copy(out, regs)
	return out
}

func clampArgs(args []any, accepted int) []any {
	if len(args) <= accepted {
		return args
	}
	return args[:accepted]
}
