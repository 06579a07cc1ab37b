// Package natsutil publishes service events to NATS JetStream as CloudEvents.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/rscapture/pkg/logger"
	"github.com/carverauto/rscapture/pkg/models"
)

const (
	eventSource     = "rscapture/api"
	eventTypePrefix = "com.carverauto.rscapture."
	defaultTimeout  = 5 * time.Second
)

// Publisher is implemented by EventPublisher and NoopPublisher.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js            jetstream.JetStream
	stream        string
	subjectPrefix string
	timeout       time.Duration
}

// NewEventPublisher creates a new EventPublisher for the specified stream.
// Events go to <subjectPrefix>.<event type>.
func NewEventPublisher(js jetstream.JetStream, streamName, subjectPrefix string, timeout time.Duration) *EventPublisher {
	if subjectPrefix == "" {
		subjectPrefix = models.DefaultEventSubject
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &EventPublisher{
		js:            js,
		stream:        streamName,
		subjectPrefix: subjectPrefix,
		timeout:       timeout,
	}
}

// Stream is the JetStream stream events land in.
func (p *EventPublisher) Stream() string { return p.stream }

// Subject returns the subject an event type is published on.
func (p *EventPublisher) Subject(eventType string) string {
	return p.subjectPrefix + "." + eventType
}

// Publish wraps data in a CloudEvent and publishes it.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, data interface{}) error {
	now := time.Now().UTC()

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            eventTypePrefix + eventType,
		DataContentType: "application/json",
		Subject:         p.Subject(eventType),
		Time:            &now,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.js.Publish(ctx, event.Subject, eventBytes, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoopPublisher drops every event. Used when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// ConnectWithEventPublisher creates a NATS connection with JetStream, makes
// sure the events stream exists and returns an EventPublisher.
func ConnectWithEventPublisher(
	ctx context.Context, cfg *models.EventsConfig, log logger.Logger, extraOpts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	nc, err := ConnectWithSecurity(ctx, cfg.NATSURL, cfg, log, extraOpts...)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := CreateEventPublisher(ctx, nc, cfg)
	if err != nil {
		nc.Close()

		return nil, nil, err
	}

	return publisher, nc, nil
}

// ConnectWithSecurity creates a NATS connection using the creds file and
// mTLS files of cfg when they are set.
func ConnectWithSecurity(
	_ context.Context, natsURL string, cfg *models.EventsConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("rscapture")}

	if cfg != nil && cfg.TLS != nil {
		tlsConf, err := TLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	if cfg != nil && cfg.Creds != "" {
		opts = append(opts, nats.UserCredentials(cfg.Creds))
	}

	opts = append(opts,
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")

	return nc, nil
}

// CreateEventPublisher creates an EventPublisher for an existing NATS connection.
func CreateEventPublisher(ctx context.Context, nc *nats.Conn, cfg *models.EventsConfig) (*EventPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = models.DefaultEventSubject
	}

	if err := ensureStream(ctx, js, cfg.StreamName, prefix+".>"); err != nil {
		return nil, err
	}

	return NewEventPublisher(js, cfg.StreamName, prefix, time.Duration(cfg.Timeout)), nil
}

// ensureStream creates the stream, or widens an existing stream's subjects
// so they cover subject.
func ensureStream(ctx context.Context, js jetstream.JetStream, name, subject string) error {
	stream, err := js.Stream(ctx, name)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to get stream %s: %w", name, err)
		}

		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}

		return nil
	}

	streamCfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(streamCfg.Subjects, subject)
	if len(subjects) == len(streamCfg.Subjects) {
		return nil
	}

	streamCfg.Subjects = subjects

	if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", name, err)
	}

	return nil
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}

// ensureSubjectList appends subject unless an existing pattern covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether the NATS pattern covers subject. A subject
// that is itself a wildcard is compared token by token.
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i < len(st)
		}

		if i >= len(st) {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}
