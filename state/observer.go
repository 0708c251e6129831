// Package state provides observable application stores.
package state

import "sync"

// Observer keeps an ordered set of listeners and notifies them on demand.
type Observer struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

type listener struct {
	id uint64
	fn func()
}

// Subscribe registers fn and returns a function removing exactly that registration.
func (o *Observer) Subscribe(fn func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.listeners = append(o.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *Observer) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, l := range o.listeners {
		if l.id == id {
			o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
			return
		}
	}
}

// Notify calls every listener in subscription order.
// Listeners run outside the lock so they may subscribe or unsubscribe.
func (o *Observer) Notify() {
	o.mu.Lock()
	fns := make([]func(), len(o.listeners))
	for i, l := range o.listeners {
		fns[i] = l.fn
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
