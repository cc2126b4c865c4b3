// Package notifier provides a latest-value broadcast to any number of
// listeners.
package notifier

import "sync"

// Notifier broadcasts values to all subscribed listeners.
// Each listener holds at most one pending value; a slow listener sees the
// most recent value rather than every intermediate one.
type Notifier[T any] struct {
	mu        sync.RWMutex
	listeners map[chan T]struct{}
}

// New creates a new Notifier instance.
func New[T any]() *Notifier[T] {
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
	}
}

// Subscribe returns a channel that receives broadcast values.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it. Unknown channels are
// ignored.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast sends v to all listeners without blocking. A pending value that
// has not been received yet is replaced.
func (n *Notifier[T]) Broadcast(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Len returns the number of listeners.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
