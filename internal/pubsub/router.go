package pubsub

import (
	"errors"
	"sync"

	"github.com/ethanjli/phyllo-go/internal/metrics"
)

// RouterCapacity bounds the number of handlers a Router can hold.
const RouterCapacity = 256

// ErrRouterFull is returned by Router.AddHandler once RouterCapacity
// handlers are registered.
var ErrRouterFull = errors.New("pubsub: router at capacity")

// Handler is dispatched a Message by Router whenever its Filter matches
// the Message's topic.
type Handler interface {
	Filter() NameFilter
	Receive(msg *Message)
}

// Router fans an inbound Message out to every registered Handler whose
// filter matches the Message's topic, in registration order. Registration
// is safe for concurrent use with Dispatch via a read-mostly mutex and a
// snapshot-then-iterate dispatch, mirroring a broadcast hub's client
// registry more than it does a single-threaded embedded event loop.
type Router struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make([]Handler, 0, RouterCapacity)}
}

// AddHandler registers h. Handlers are dispatched in the order added.
func (r *Router) AddHandler(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.handlers) >= RouterCapacity {
		return ErrRouterFull
	}
	r.handlers = append(r.handlers, h)
	return nil
}

// Dispatch delivers msg to every registered Handler whose filter matches
// msg's topic.
func (r *Router) Dispatch(msg *Message) {
	handlers := r.snapshot()
	matched := 0
	for _, h := range handlers {
		if !h.Filter().Matches(msg.Topic()) {
			continue
		}
		h.Receive(msg)
		matched++
	}
	if matched == 0 {
		metrics.IncRouterUnmatched()
		return
	}
	metrics.IncRouterDispatch()
}

func (r *Router) snapshot() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handlers := make([]Handler, len(r.handlers))
	copy(handlers, r.handlers)
	return handlers
}
