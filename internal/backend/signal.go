package backend

import "sync"

// Signal is a typed listener list. Entities expose one Signal per event
// they emit; consumers register with Subscribe and detach through the
// returned Subscription. Emission order follows subscription order.
type Signal[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(T)
	order     []uint64
}

// Subscribe registers fn and returns a handle that detaches it
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners == nil {
		s.listeners = make(map[uint64]func(T))
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return &Subscription{cancel: func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}}
}

// Emit invokes every registered listener with v. Listeners run outside
// the signal lock so they may subscribe or cancel reentrantly.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.listeners))
	kept := s.order[:0]
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			fns = append(fns, fn)
			kept = append(kept, id)
		}
	}
	s.order = kept
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscription detaches a single listener
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel detaches the listener. Safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// Subscriptions collects the registrations owned by one entity so they
// can all be detached when the entity goes away.
type Subscriptions struct {
	subs []*Subscription
}

// Track adds a subscription to the bundle
func (b *Subscriptions) Track(sub *Subscription) {
	b.subs = append(b.subs, sub)
}

// Release detaches every tracked subscription
func (b *Subscriptions) Release() {
	for _, sub := range b.subs {
		sub.Cancel()
	}
	b.subs = nil
}

// On subscribes fn to sig and tracks the registration in bundle
func On[T any](sig *Signal[T], bundle *Subscriptions, fn func(T)) {
	bundle.Track(sig.Subscribe(fn))
}
