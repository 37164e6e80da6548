package reactive

import "sync"

// Value holds a value of type T and notifies observers when it changes.
//
// Value is safe for concurrent use. Setters are serialized, so hooks see
// changes in commit order. Hooks and subscribers must not call Set, Update,
// Replace or Subscribe on the same Value; doing so deadlocks.
type Value[T any] struct {
	mu  sync.Mutex // serializes Set and Update
	smu sync.RWMutex
	cur T

	nextID uint64
	hooks  []hook[T]
	subs   []subscriber[T]
}

type hook[T any] struct {
	id uint64
	fn func(T) error
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithHook registers an on-change hook at construction.
func WithHook[T any](fn func(T) error) Option[T] {
	return func(v *Value[T]) {
		v.addHook(fn)
	}
}

// New returns a Value holding initial.
func New[T any](initial T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{cur: initial}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.smu.RLock()
	defer v.smu.RUnlock()
	return v.cur
}

// Set replaces the value. Every hook runs with next, in registration order;
// the first error aborts the change and is returned. Otherwise next is
// committed and subscribers are notified before Set returns.
func (v *Value[T]) Set(next T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commit(next)
}

// Update sets the value to fn applied to the current value, atomically
// with respect to other setters.
func (v *Value[T]) Update(fn func(T) T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commit(fn(v.Get()))
}

// commit must be called with mu held.
func (v *Value[T]) commit(next T) error {
	v.smu.RLock()
	hooks := append([]hook[T](nil), v.hooks...)
	v.smu.RUnlock()

	for _, h := range hooks {
		if err := h.fn(next); err != nil {
			return err
		}
	}

	v.smu.Lock()
	v.cur = next
	subs := append([]subscriber[T](nil), v.subs...)
	v.smu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
	return nil
}

// Replace sets the value without running hooks. Subscribers are notified.
// It is used to apply a value that is already persisted elsewhere.
func (v *Value[T]) Replace(next T) {
	v.ReplaceFunc(func(T) (T, bool) { return next, true })
}

// ReplaceFunc calls fn with the current value while holding the setter
// lock. If fn returns ok, its result is committed without running hooks
// and subscribers are notified.
func (v *Value[T]) ReplaceFunc(fn func(cur T) (next T, ok bool)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	next, ok := fn(v.Get())
	if !ok {
		return false
	}

	v.smu.Lock()
	v.cur = next
	subs := append([]subscriber[T](nil), v.subs...)
	v.smu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}
	return true
}

// Subscribe calls fn with the current value, then after every committed
// change. The returned function removes fn and may be called more than once.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	// Holding mu keeps a concurrent commit from slipping between the
	// initial call and registration.
	v.mu.Lock()
	defer v.mu.Unlock()

	v.smu.Lock()
	id := v.nextID
	v.nextID++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	cur := v.cur
	v.smu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.smu.Lock()
			defer v.smu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// OnChange registers a hook that runs before every change is committed.
// A non-nil error from the hook vetoes the change.
func (v *Value[T]) OnChange(fn func(T) error) (remove func()) {
	id := v.addHook(fn)

	var once sync.Once
	return func() {
		once.Do(func() {
			v.smu.Lock()
			defer v.smu.Unlock()
			for i, h := range v.hooks {
				if h.id == id {
					v.hooks = append(v.hooks[:i:i], v.hooks[i+1:]...)
					return
				}
			}
		})
	}
}

func (v *Value[T]) addHook(fn func(T) error) uint64 {
	v.smu.Lock()
	defer v.smu.Unlock()
	id := v.nextID
	v.nextID++
	v.hooks = append(v.hooks, hook[T]{id: id, fn: fn})
	return id
}
