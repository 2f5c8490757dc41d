package event

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Handler consumes published events. A returned error is logged, never propagated.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// FuncHandler adapts a function to Handler. Use the pointer from Func as the
// subscription identity.
type FuncHandler struct {
	fn func(ctx context.Context, ev Event) error
}

// Func wraps fn as a Handler.
func Func(fn func(ctx context.Context, ev Event) error) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// Handle calls the wrapped function.
func (h *FuncHandler) Handle(ctx context.Context, ev Event) error {
	return h.fn(ctx, ev)
}

// Notifier delivers events synchronously to subscribers. One per session.
type Notifier struct {
	mu     sync.Mutex
	subs   map[Kind][]Handler
	logger *slog.Logger
}

// NewNotifier creates an empty notifier.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		subs:   make(map[Kind][]Handler),
		logger: logger.With("component", "notifier"),
	}
}

// Subscribe registers h for kind. Registering the same comparable handler for
// the same kind twice is a no-op and returns false.
func (n *Notifier) Subscribe(kind Kind, h Handler) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, existing := range n.subs[kind] {
		if sameHandler(existing, h) {
			return false
		}
	}
	n.subs[kind] = append(n.subs[kind], h)
	return true
}

// Unsubscribe removes h from kind. Returns false if it was not registered.
func (n *Notifier) Unsubscribe(kind Kind, h Handler) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	handlers := n.subs[kind]
	for i, existing := range handlers {
		if sameHandler(existing, h) {
			n.subs[kind] = append(handlers[:i:i], handlers[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of handlers registered for kind.
func (n *Notifier) Count(kind Kind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[kind])
}

// Reset drops every subscription.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = make(map[Kind][]Handler)
}

// Publish delivers ev to the handlers registered for its kind, in registration
// order. Handlers run outside the lock so they may publish or subscribe.
func (n *Notifier) Publish(ctx context.Context, ev Event) {
	n.mu.Lock()
	handlers := append([]Handler(nil), n.subs[ev.Kind()]...)
	n.mu.Unlock()

	for _, h := range handlers {
		if err := n.deliver(ctx, h, ev); err != nil {
			n.logger.ErrorContext(ctx, "event handler failed",
				"event", ev.Kind().String(),
				"handler", fmt.Sprintf("%T", h),
				"error", err,
			)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// sameHandler compares handlers without panicking on uncomparable dynamic types.
func sameHandler(a, b Handler) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// On subscribes fn to the variant E and returns the handler for Unsubscribe.
func On[E Event](n *Notifier, fn func(ctx context.Context, ev E) error) Handler {
	var zero E
	h := Func(func(ctx context.Context, ev Event) error {
		typed, ok := ev.(E)
		if !ok {
			return fmt.Errorf("unexpected event %T for %T", ev, zero)
		}
		return fn(ctx, typed)
	})
	n.Subscribe(zero.Kind(), h)
	return h
}
