package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"phishguard/internal/config"
	"phishguard/pkg/logger"
)

// ErrNotConnected is returned when publishing without a live NATS connection
var ErrNotConnected = errors.New("NATS not connected")

// NATSPublisher handles publishing events to NATS JetStream
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	stream  jetstream.Stream
	subject string
	logger  *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewNATSPublisher creates a new NATS publisher
func NewNATSPublisher(ctx context.Context, cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	log = log.WithComponent("nats")

	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "PHISHGUARD_ANALYSES"
	}
	if cfg.Subject == "" {
		cfg.Subject = "analyses"
	}

	log.Info().Str("url", cfg.URL).Str("stream", cfg.StreamName).Msg("connecting to NATS")

	conn, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "PhishGuard analysis events",
		Subjects:    []string{cfg.Subject + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     100000,
		MaxBytes:    100 * 1024 * 1024,
		Discard:     jetstream.DiscardOld,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}

	stream, err := js.CreateOrUpdateStream(ctx, streamCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	log.Info().Str("stream", stream.CachedInfo().Config.Name).Msg("NATS stream ready")

	return &NATSPublisher{
		conn:      conn,
		js:        js,
		stream:    stream,
		subject:   cfg.Subject,
		logger:    log,
		connected: true,
	}, nil
}

// Close closes the NATS connection
func (p *NATSPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// IsConnected returns whether NATS is connected
func (p *NATSPublisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.conn.IsConnected()
}

// PublishAnalysisEvent publishes an analysis event to JetStream
func (p *NATSPublisher) PublishAnalysisEvent(ctx context.Context, event *AnalysisEvent) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	subject := SubjectFor(p.subject, event)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("analysis_id", event.AnalysisID).
		Str("classification", string(event.Classification)).
		Msg("published analysis event")

	return nil
}

// SubjectFor returns the subject for an event.
// Hierarchy: <prefix>.<content_type>.<classification>, e.g. analyses.url.phishing
func SubjectFor(prefix string, event *AnalysisEvent) string {
	contentType := string(event.ContentType)
	if contentType == "" {
		contentType = "unknown"
	}
	classification := strings.ToLower(string(event.Classification))
	if classification == "" {
		classification = "unknown"
	}
	return fmt.Sprintf("%s.%s.%s", prefix, contentType, classification)
}

// Subscribe consumes analysis events from the stream until ctx is done
func (p *NATSPublisher) Subscribe(ctx context.Context, sub *Subscription) (<-chan *AnalysisEvent, error) {
	if !p.IsConnected() {
		return nil, ErrNotConnected
	}

	consumer, err := p.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    3,
		FilterSubject: p.subject + ".>",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	msgs, err := consumer.Messages()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages iterator: %w", err)
	}

	eventCh := make(chan *AnalysisEvent, 100)

	go func() {
		<-ctx.Done()
		msgs.Stop()
	}()

	go func() {
		defer close(eventCh)

		for {
			msg, err := msgs.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, jetstream.ErrMsgIteratorClosed) {
					return
				}
				p.logger.Warn().Err(err).Msg("error getting next message")
				continue
			}

			var event AnalysisEvent
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				p.logger.Warn().Err(err).Msg("failed to unmarshal event")
				_ = msg.Term()
				continue
			}

			_ = msg.Ack()
			if !sub.Matches(&event) {
				continue
			}
			select {
			case eventCh <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return eventCh, nil
}
