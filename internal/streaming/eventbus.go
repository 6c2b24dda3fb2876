package streaming

import (
	"context"
	"strconv"
	"sync"

	"phishguard/internal/domain/models"
	"phishguard/pkg/logger"
)

const subscriberBuffer = 100

// EventBus distributes analysis events to local subscribers, JetStream and
// WebSocket clients. It implements services.EventPublisher.
type EventBus struct {
	nats   *NATSPublisher
	hub    *WebSocketHub
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]*subscriber
	nextID      int
}

type subscriber struct {
	ch  chan *AnalysisEvent
	sub *Subscription
}

// NewEventBus creates a new event bus. Either sink may be nil.
func NewEventBus(nats *NATSPublisher, hub *WebSocketHub, log *logger.Logger) *EventBus {
	return &EventBus{
		nats:        nats,
		hub:         hub,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]*subscriber),
	}
}

// PublishAnalysis announces a completed analysis
func (eb *EventBus) PublishAnalysis(ctx context.Context, report *models.AnalysisReport) error {
	return eb.Publish(ctx, NewAnalysisEvent(report))
}

// Publish publishes an event to every sink. A NATS failure is logged and
// local delivery still happens.
func (eb *EventBus) Publish(ctx context.Context, event *AnalysisEvent) error {
	if eb.nats != nil && eb.nats.IsConnected() {
		if err := eb.nats.PublishAnalysisEvent(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	if eb.hub != nil {
		eb.hub.BroadcastEvent(event)
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, s := range eb.subscribers {
		if !s.sub.Matches(event) {
			continue
		}
		select {
		case s.ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// Subscribe registers a local subscriber. The returned function removes it
// and closes the channel.
func (eb *EventBus) Subscribe(sub *Subscription) (<-chan *AnalysisEvent, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := strconv.Itoa(eb.nextID)
	s := &subscriber{ch: make(chan *AnalysisEvent, subscriberBuffer), sub: sub}
	eb.subscribers[id] = s
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if _, ok := eb.subscribers[id]; ok {
			close(s.ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return s.ch, unsubscribe
}

// SubscriberCount returns the number of active subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close closes the event bus
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, s := range eb.subscribers {
		close(s.ch)
		delete(eb.subscribers, id)
	}

	if eb.nats != nil {
		eb.nats.Close()
	}
}
