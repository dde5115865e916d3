package options

import "sync"

// ChangeToken signals a single change.
type ChangeToken interface {
	// HasChanged reports whether the change has happened.
	HasChanged() bool
	// RegisterCallback arranges for fn to run when the change happens and
	// returns a function that cancels the registration. Callbacks registered
	// after the token fired are never called.
	RegisterCallback(fn func()) (unregister func())
}

// Trigger is a ChangeToken that fires when Fire is called.
// The zero value is ready to use.
type Trigger struct {
	mu        sync.Mutex
	fired     bool
	nextID    int
	callbacks map[int]func()
}

// NewTrigger creates an unfired trigger.
func NewTrigger() *Trigger {
	return &Trigger{}
}

// HasChanged reports whether Fire has been called.
func (t *Trigger) HasChanged() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// RegisterCallback implements ChangeToken.
func (t *Trigger) RegisterCallback(fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fired || fn == nil {
		return func() {}
	}
	if t.callbacks == nil {
		t.callbacks = make(map[int]func())
	}
	id := t.nextID
	t.nextID++
	t.callbacks[id] = fn

	return func() {
		t.mu.Lock()
		delete(t.callbacks, id)
		t.mu.Unlock()
	}
}

// Fire marks the trigger as changed and runs the registered callbacks in
// registration order. Only the first call has any effect.
func (t *Trigger) Fire() {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return
	}
	t.fired = true
	pending := make([]func(), 0, len(t.callbacks))
	for id := range t.nextID {
		if fn, ok := t.callbacks[id]; ok {
			pending = append(pending, fn)
		}
	}
	t.callbacks = nil
	t.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// never is a token that never changes.
type never struct{}

func (never) HasChanged() bool               { return false }
func (never) RegisterCallback(func()) func() { return func() {} }

// Never returns a token that never fires.
func Never() ChangeToken { return never{} }
