package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
)

const (
	DefaultSubject    = "draftaid.events"
	DefaultStreamName = "DRAFTAID_EVENTS"
)

// NATSPubSub publishes board events to a JetStream stream and relays every message
// on the subject to local subscribers
type NATSPubSub struct {
	*PubSub
	nc      *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
}

// NATSOptions configures the stream backing a NATSPubSub
type NATSOptions struct {
	Subject    string
	StreamName string
	Storage    nats.StorageType
	MaxAge     time.Duration
}

// NewNATSPubSub connects to a NATS server
func NewNATSPubSub(natsURL, subject string) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("fantasy-draft-aid"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ps, err := newNATSPubSub(nc, NATSOptions{
		Subject:    subject,
		StreamName: DefaultStreamName,
		Storage:    nats.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, err
	}
	logger.Info("Connected to NATS JetStream", "url", natsURL, "subject", ps.subject)
	return ps, nil
}

func newNATSPubSub(nc *nats.Conn, opts NATSOptions) (*NATSPubSub, error) {
	if opts.Subject == "" {
		opts.Subject = DefaultSubject
	}
	if opts.StreamName == "" {
		opts.StreamName = DefaultStreamName
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.StreamInfo(opts.StreamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     opts.StreamName,
			Subjects: []string{opts.Subject},
			Storage:  opts.Storage,
			MaxAge:   opts.MaxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	p := &NATSPubSub{
		PubSub:  New(),
		nc:      nc,
		js:      js,
		subject: opts.Subject,
	}

	p.sub, err = js.Subscribe(opts.Subject, p.handle, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", opts.Subject, err)
	}
	return p, nil
}

func (p *NATSPubSub) handle(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to unmarshal event from JetStream", "error", err)
		_ = msg.Term()
		return
	}
	p.publishLocal(event)
	_ = msg.Ack()
}

// Publish writes the event to JetStream; local subscribers receive it through the stream
func (p *NATSPubSub) Publish(event Event) {
	if event.ID == "" {
		event = NewEvent(event.Type, event.Payload)
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "type", event.Type)
		return
	}
	if _, err := p.js.Publish(p.subject, data, nats.MsgId(event.ID)); err != nil {
		logger.Error("Failed to publish to NATS", "error", err, "subject", p.subject, "type", event.Type)
		return
	}
	logger.Debug("Published event to NATS", "type", event.Type, "subject", p.subject)
}

// Subject returns the subject events are published on
func (p *NATSPubSub) Subject() string {
	return p.subject
}

// Close drains the subscription, closes local subscribers and the connection
func (p *NATSPubSub) Close() {
	if p.sub != nil {
		_ = p.sub.Unsubscribe()
	}
	p.PubSub.Close()
	if p.nc != nil {
		p.nc.Close()
	}
}
