package messaging

import "sync"

// Bus is a typed publish/subscribe hub. The zero value is ready to use.
type Bus[T any] struct {
	mu   sync.RWMutex
	next uint64
	subs []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function removing it. Calling the
// returned function more than once is a no-op.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for idx, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:idx:idx], b.subs[idx+1:]...)
			return
		}
	}
}

// Publish delivers v to every subscriber in subscription order. Subscribers
// run on the caller's goroutine and may subscribe or unsubscribe freely.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
