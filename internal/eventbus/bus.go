package eventbus

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"crewwatch/internal/logger"
)

// Topic names a stream of payloads.
type Topic string

const (
	TopicCrewLocations  Topic = "crew-locations"
	TopicActiveJobs     Topic = "active-jobs"
	TopicDashboardStats Topic = "dashboard-stats"
	TopicError          Topic = "error"
)

// Topics lists every topic the poller emits on.
var Topics = []Topic{TopicCrewLocations, TopicActiveJobs, TopicDashboardStats, TopicError}

type Listener func(payload any)

type subscription struct {
	id uint64
	fn Listener
}

// Bus maintains listeners per topic and fans payloads out to them
type Bus struct {
	// Registered listeners, in registration order
	listeners map[Topic][]subscription

	// Most recent payload per topic
	last map[Topic]any

	// Deliver the last payload to new subscribers
	replay bool

	nextID uint64
	log    *zap.Logger

	// Mutex for thread-safe registry access
	mu sync.RWMutex
}

type Option func(*Bus)

// WithReplay delivers the latest payload of a topic to each new subscriber.
func WithReplay(enabled bool) Option {
	return func(b *Bus) { b.replay = enabled }
}

func New(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[Topic][]subscription),
		last:      make(map[Topic]any),
		log:       logger.Named("eventbus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers fn for topic and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(topic Topic, fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], subscription{id: id, fn: fn})
	last, hasLast := b.last[topic]
	replay := b.replay
	b.mu.Unlock()

	if replay && hasLast {
		b.deliver(topic, fn, last)
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[topic]
	for i, s := range subs {
		if s.id == id {
			// Copy so an Emit iterating the old slice is unaffected
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.listeners[topic] = next
			return
		}
	}
}

// Emit invokes every listener of topic in registration order. A listener
// that panics is logged and skipped; the rest still run.
func (b *Bus) Emit(topic Topic, payload any) {
	b.mu.Lock()
	b.last[topic] = payload
	subs := b.listeners[topic]
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(topic, s.fn, payload)
	}
}

func (b *Bus) deliver(topic Topic, fn Listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("❌ listener panicked",
				zap.String("topic", string(topic)),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn(payload)
}

// Last returns the most recent payload emitted on topic.
func (b *Bus) Last(topic Topic) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.last[topic]
	return v, ok
}

// ListenerCount returns the number of listeners registered for topic
func (b *Bus) ListenerCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[topic])
}

// On subscribes a typed listener. Payloads of any other type are ignored.
func On[T any](b *Bus, topic Topic, fn func(T)) (unsubscribe func()) {
	return b.Subscribe(topic, func(payload any) {
		if v, ok := payload.(T); ok {
			fn(v)
		}
	})
}

// LastAs returns the latest payload of topic if it has type T.
func LastAs[T any](b *Bus, topic Topic) (T, bool) {
	var zero T
	v, ok := b.Last(topic)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
