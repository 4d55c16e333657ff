package bridge

import (
	"errors"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrNoListeners      = errors.New("no listeners")
	ErrSubscriberBehind = errors.New("subscriber is behind, event dropped")
)

// Message is a named event delivered to the presentation layer.
type Message struct {
	Event   string
	Payload any
}

// Hub fans out emitted events to all current subscribers. Emit never
// blocks: subscribers that do not keep up lose events.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	buffer      int

	log *zap.Logger
}

type HubParams struct {
	fx.In

	Config Config
	Log    *zap.Logger
}

func NewHub(params HubParams) *Hub {
	buffer := params.Config.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		buffer:      buffer,
		log:         params.Log.Named("hub"),
	}
}

// Emit delivers the event to every subscriber.
func (h *Hub) Emit(event string, payload any) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.subscribers) == 0 {
		return ErrNoListeners
	}

	msg := Message{Event: event, Payload: payload}

	var err error
	for sub := range h.subscribers {
		select {
		case sub.messages <- msg:
		default:
			err = ErrSubscriberBehind
		}
	}

	return err
}

// Subscribe registers a new subscriber. The subscription must be
// closed once the subscriber is done.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		hub:      h,
		messages: make(chan Message, h.buffer),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	h.log.Debug("subscribed", zap.Int("subscribers", count))

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	count := len(h.subscribers)
	close(sub.messages)
	h.mu.Unlock()

	h.log.Debug("unsubscribed", zap.Int("subscribers", count))
}

// Subscribers returns the number of current subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

type Subscription struct {
	hub      *Hub
	messages chan Message
	once     sync.Once
}

// Messages returns the channel of delivered events. It is closed
// when the subscription is closed.
func (s *Subscription) Messages() <-chan Message {
	return s.messages
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}
