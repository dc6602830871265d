package eventbus

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultSubscriberCapacity = 100
	defaultBacklogLimit       = 50
	defaultDedupeWindow       = 1024
)

// RouterOption customizes Router construction.
type RouterOption func(*Router)

// Router delivers execution events to type-keyed subscribers with buffering,
// deduplication, and bounded channel semantics.
type Router struct {
	mu           sync.RWMutex
	subscribers  map[Type]map[*subscriber]struct{}
	backlog      []Event
	recentKeys   map[string]struct{}
	recentOrder  []string
	channelSize  int
	backlogLimit int
	dedupeWindow int
	now          func() time.Time
	logger       *zap.Logger
}

// Subscription represents an active subscription.
type Subscription struct {
	Events <-chan Event
	cancel func()
}

// Close terminates the subscription.
func (s Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// NewRouter constructs a router with sane defaults.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		subscribers:  map[Type]map[*subscriber]struct{}{},
		recentKeys:   map[string]struct{}{},
		recentOrder:  make([]string, 0, defaultDedupeWindow),
		channelSize:  defaultSubscriberCapacity,
		backlogLimit: defaultBacklogLimit,
		dedupeWindow: defaultDedupeWindow,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithRouterLogger injects a logger for drop/diagnostic messages.
func WithRouterLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the clock stamping published events.
func WithClock(clock func() time.Time) RouterOption {
	return func(r *Router) {
		if clock != nil {
			r.now = clock
		}
	}
}

// WithSubscriberCapacity overrides the buffered channel size per subscriber.
func WithSubscriberCapacity(capacity int) RouterOption {
	return func(r *Router) {
		if capacity > 0 {
			r.channelSize = capacity
		}
	}
}

// WithBacklogLimit overrides how many events are retained for late
// subscribers.
func WithBacklogLimit(limit int) RouterOption {
	return func(r *Router) {
		if limit > 0 {
			r.backlogLimit = limit
		}
	}
}

// WithDedupeWindow controls how many recent event keys are retained.
func WithDedupeWindow(size int) RouterOption {
	return func(r *Router) {
		if size > 0 {
			r.dedupeWindow = size
		}
	}
}

// Subscribe registers for events of one type, or every type via AllTypes.
// The retained backlog matching the subscription is replayed first.
func (r *Router) Subscribe(eventType Type) Subscription {
	sub := newSubscriber(r.channelSize, r.logger)
	var replay []Event
	r.mu.Lock()
	if r.subscribers[eventType] == nil {
		r.subscribers[eventType] = map[*subscriber]struct{}{}
	}
	r.subscribers[eventType][sub] = struct{}{}
	for _, event := range r.backlog {
		if eventType == AllTypes || event.Type == eventType {
			replay = append(replay, event)
		}
	}
	r.mu.Unlock()
	for _, event := range replay {
		sub.deliver(event)
	}
	return Subscription{
		Events: sub.channel(),
		cancel: func() {
			r.removeSubscriber(eventType, sub)
		},
	}
}

// HandleEvent satisfies the Processor interface.
func (r *Router) HandleEvent(event Event) error {
	r.Publish(event)
	return nil
}

// Publish normalizes, stamps, and delivers the event. Invalid events and
// duplicates inside the dedupe window are dropped.
func (r *Router) Publish(event Event) {
	event.Normalize()
	event.Stamp(r.now())
	if err := event.Validate(); err != nil {
		r.logger.Debug("eventbus: dropping invalid event", zap.Error(err))
		return
	}
	if r.isDuplicate(event.key()) {
		return
	}
	r.mu.Lock()
	if len(r.backlog) >= r.backlogLimit {
		r.backlog = r.backlog[1:]
	}
	r.backlog = append(r.backlog, event)
	subs := r.snapshotSubscribers(event.Type)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(event)
	}
}

func (r *Router) snapshotSubscribers(eventType Type) []*subscriber {
	var items []*subscriber
	for sub := range r.subscribers[eventType] {
		items = append(items, sub)
	}
	if eventType != AllTypes {
		for sub := range r.subscribers[AllTypes] {
			items = append(items, sub)
		}
	}
	return items
}

func (r *Router) removeSubscriber(eventType Type, sub *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if subs := r.subscribers[eventType]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(r.subscribers, eventType)
		}
	}
	sub.close()
}

func (r *Router) isDuplicate(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recentKeys[key]; ok {
		return true
	}
	r.recentKeys[key] = struct{}{}
	r.recentOrder = append(r.recentOrder, key)
	if len(r.recentOrder) > r.dedupeWindow {
		oldest := r.recentOrder[0]
		r.recentOrder = r.recentOrder[1:]
		delete(r.recentKeys, oldest)
	}
	return false
}

type subscriber struct {
	ch      chan Event
	logger  *zap.Logger
	closed  bool
	closeMu sync.Mutex
}

func newSubscriber(capacity int, logger *zap.Logger) *subscriber {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber{
		ch:     make(chan Event, capacity),
		logger: logger,
	}
}

func (s *subscriber) channel() <-chan Event {
	return s.ch
}

// deliver enqueues the event, displacing the oldest queued entry on
// overflow. Failure events are never displaced in favour of routine ones.
func (s *subscriber) deliver(event Event) {
	if s.isClosed() {
		return
	}
	select {
	case s.ch <- event:
		return
	default:
		oldest := <-s.ch
		if shouldDropOldest(oldest, event) {
			s.logDrop(oldest)
			s.ch <- event
		} else {
			s.ch <- oldest
			s.logDrop(event)
		}
	}
}

func (s *subscriber) logDrop(event Event) {
	s.logger.Debug("eventbus: dropped event on overflow",
		zap.String("type", string(event.Type)),
		zap.String("provider", event.Provider),
	)
}

func (s *subscriber) close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.closeMu.Unlock()
}

func (s *subscriber) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}

func shouldDropOldest(oldest, incoming Event) bool {
	oldestCritical := isCriticalEvent(oldest.Type)
	incomingCritical := isCriticalEvent(incoming.Type)
	switch {
	case oldestCritical && !incomingCritical:
		return false
	case !oldestCritical && incomingCritical:
		return true
	}
	return true
}

func isCriticalEvent(kind Type) bool {
	return kind == RunFailed || kind == ProviderFailed
}
