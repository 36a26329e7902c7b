package live

import (
	"slices"
	"sync"
	"unsafe"
)

// listenerSet is an iteration-safe ordered set of callbacks for one event
// kind. Identity follows the callback's closure object, so registering the
// same stored func value twice keeps a single entry that still fires once
// per event, while distinct closures stay distinct subscribers even when
// they come from the same literal. Dispatch iterates over a copy of the
// set, which makes it safe for a callback to unsubscribe, itself included,
// while a delivery is in flight; the removal takes effect from the next
// event.
type listenerSet[T any] struct {
	mu   sync.Mutex
	subs []listener[T]
}

type listener[T any] struct {
	key uintptr
	fn  func(T)
}

// funcKey returns the address of fn's closure object. Unlike the code
// pointer reflect exposes, it differs per closure instance.
func funcKey[T any](fn func(T)) uintptr {
	return *(*uintptr)(unsafe.Pointer(&fn))
}

// add registers fn and returns its unsubscribe func. The returned func is
// safe to call more than once.
func (s *listenerSet[T]) add(fn func(T)) func() {
	key := funcKey(fn)

	s.mu.Lock()
	found := false
	for _, l := range s.subs {
		if l.key == key {
			found = true
			break
		}
	}
	if !found {
		s.subs = append(s.subs, listener[T]{key: key, fn: fn})
	}
	s.mu.Unlock()

	return func() { s.remove(key) }
}

func (s *listenerSet[T]) remove(key uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.subs {
		if l.key == key {
			s.subs = slices.Delete(s.subs, i, i+1)
			return
		}
	}
}

// dispatch invokes every registered callback synchronously, in registration
// order, on the calling goroutine.
func (s *listenerSet[T]) dispatch(v T) {
	s.mu.Lock()
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, l := range subs {
		l.fn(v)
	}
}

func (s *listenerSet[T]) clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

func (s *listenerSet[T]) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
