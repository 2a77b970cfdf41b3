/*
Copyright (C) 2026 AgendoAI

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus onto NATS so that
// every node in a cluster sees mission and availability changes. When the
// broker is unreachable the bus degrades to local-only delivery.
package eventbus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/agendoai/aviao-sub000/internal/events"
)

// Bus is the publish/subscribe surface services depend on. Both the
// in-memory events.Bus and NATSBus satisfy it.
type Bus interface {
	Subscribe(eventType events.EventType) events.Subscriber
	Publish(eventType events.EventType, payload events.Payload)
	Unsubscribe(eventType events.EventType, sub events.Subscriber)
}

const subjectPrefix = "aviao.events."

// NATSConfig contains NATS connection configuration.
type NATSConfig struct {
	URL   string
	Token string

	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns default NATS configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NATSBus fans events out over a NATS subject per event type while also
// delivering them to local subscribers through the embedded in-memory bus.
type NATSBus struct {
	conn   *nats.Conn
	local  *events.Bus
	logger zerolog.Logger
	nodeID string

	mu         sync.Mutex
	remoteSubs map[events.EventType]*nats.Subscription

	localOnly bool
}

// NewNATSBus connects to the broker. On connection failure it returns a
// working bus that delivers locally and logs the degradation.
func NewNATSBus(cfg NATSConfig, logger zerolog.Logger) (*NATSBus, error) {
	logger = logger.With().Str("component", "eventbus").Logger()

	nb := &NATSBus{
		local:      events.NewBus(),
		logger:     logger,
		nodeID:     generateNodeID(),
		remoteSubs: make(map[events.EventType]*nats.Subscription),
	}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		logger.Warn().Err(err).Str("url", cfg.URL).Msg("NATS unavailable, events stay node-local")
		nb.localOnly = true
		return nb, nil
	}

	nb.conn = conn
	logger.Info().Str("url", cfg.URL).Str("node_id", nb.nodeID).Msg("NATS event bus connected")
	return nb, nil
}

// Subscribe registers a local subscriber and, on first use of an event
// type, a NATS subscription feeding remote events into the local bus.
func (nb *NATSBus) Subscribe(eventType events.EventType) events.Subscriber {
	sub := nb.local.Subscribe(eventType)
	if nb.localOnly {
		return sub
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()
	if _, exists := nb.remoteSubs[eventType]; exists {
		return sub
	}

	subject := subjectPrefix + string(eventType)
	remote, err := nb.conn.Subscribe(subject, func(m *nats.Msg) {
		msg, err := unmarshalMessage(m.Data)
		if err != nil {
			nb.logger.Error().Err(err).Str("subject", m.Subject).Msg("dropping malformed event")
			return
		}
		// Locally published events already reached local subscribers.
		if msg.NodeID == nb.nodeID {
			return
		}
		nb.local.Publish(msg.EventType, msg.Payload)
	})
	if err != nil {
		nb.logger.Error().Err(err).Str("subject", subject).Msg("NATS subscribe failed")
		return sub
	}

	nb.remoteSubs[eventType] = remote
	return sub
}

// Publish delivers to local subscribers and broadcasts to the cluster.
func (nb *NATSBus) Publish(eventType events.EventType, payload events.Payload) {
	nb.local.Publish(eventType, payload)
	if nb.localOnly {
		return
	}

	data, err := marshalMessage(eventType, payload, nb.nodeID)
	if err != nil {
		nb.logger.Error().Err(err).Str("event", string(eventType)).Msg("marshal event failed")
		return
	}
	if err := nb.conn.Publish(subjectPrefix+string(eventType), data); err != nil {
		nb.logger.Error().Err(err).Str("event", string(eventType)).Msg("NATS publish failed")
	}
}

// Unsubscribe removes a local subscriber. The NATS subscription stays
// alive for other subscribers of the same event type.
func (nb *NATSBus) Unsubscribe(eventType events.EventType, sub events.Subscriber) {
	nb.local.Unsubscribe(eventType, sub)
}

// Close drains the connection so in-flight events are delivered.
func (nb *NATSBus) Close() error {
	if nb.conn == nil {
		return nil
	}

	nb.mu.Lock()
	for _, remote := range nb.remoteSubs {
		_ = remote.Unsubscribe()
	}
	nb.remoteSubs = make(map[events.EventType]*nats.Subscription)
	nb.mu.Unlock()

	return nb.conn.Drain()
}

type busMessage struct {
	EventType events.EventType `json:"event_type"`
	Payload   events.Payload   `json:"payload"`
	Timestamp time.Time        `json:"timestamp"`
	NodeID    string           `json:"node_id"`
	MessageID string           `json:"message_id"`
}

func marshalMessage(eventType events.EventType, payload events.Payload, nodeID string) ([]byte, error) {
	msg := busMessage{
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now(),
		NodeID:    nodeID,
		MessageID: uuid.NewString(),
	}
	return json.Marshal(msg)
}

func unmarshalMessage(data []byte) (*busMessage, error) {
	var msg busMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal event message: %w", err)
	}
	return &msg, nil
}

func generateNodeID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "node"
	}
	return fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
}
