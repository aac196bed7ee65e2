// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/wrp-go/v5"
)

// maxTopicNameLen is the longest topic name Kafka accepts.
const maxTopicNameLen = 249

// DefaultWRPSource is the WRP Source used by the wrp envelope when
// TopicConfig.WRPSource is empty.
const DefaultWRPSource = "dns:httpkafka"

// Envelope selects how a request body becomes a record value.
type Envelope string

const (
	// EnvelopeRaw sends the body unchanged. This is the default.
	EnvelopeRaw Envelope = "raw"

	// EnvelopeWRP wraps the body as the payload of a msgpack encoded WRP
	// SimpleEvent addressed to "event:<topic>".
	EnvelopeWRP Envelope = "wrp"
)

// TopicConfig holds the settings of one topic handle. It is fixed when
// the handle is created.
type TopicConfig struct {
	// Envelope selects the record value format. Empty means EnvelopeRaw.
	Envelope Envelope

	// Headers are literal Kafka record headers added to every record.
	// Multiple values per key produce multiple headers. Optional.
	Headers map[string][]string

	// WRPSource is the WRP Source locator of the wrp envelope.
	// Default: DefaultWRPSource.
	WRPSource string
}

func (tc *TopicConfig) validate() error {
	switch tc.Envelope {
	case "", EnvelopeRaw:
	case EnvelopeWRP:
		if tc.WRPSource != "" {
			if _, err := wrp.ParseLocator(tc.WRPSource); err != nil {
				return errors.Join(ErrValidation,
					fmt.Errorf("wrp source %q is not a valid locator", tc.WRPSource), err)
			}
		}
	default:
		return errors.Join(ErrValidation,
			fmt.Errorf("envelope '%s' is invalid: must be '%s', '%s' or empty",
				tc.Envelope, EnvelopeRaw, EnvelopeWRP))
	}

	for key, values := range tc.Headers {
		if key == "" {
			return errors.Join(ErrValidation, fmt.Errorf("header key must not be empty"))
		}
		if len(values) == 0 {
			return errors.Join(ErrValidation, fmt.Errorf("header %q must have at least one value", key))
		}
	}
	return nil
}

// recordHeaders flattens Headers in key order.
func (tc *TopicConfig) recordHeaders() []kgo.RecordHeader {
	if len(tc.Headers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tc.Headers))
	for key := range tc.Headers {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var headers []kgo.RecordHeader
	for _, key := range keys {
		for _, value := range tc.Headers[key] {
			headers = append(headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
		}
	}
	return headers
}

// validateTopicName applies Kafka's topic naming rules.
func validateTopicName(name string) error {
	if name == "" {
		return errors.Join(ErrValidation, fmt.Errorf("topic name must not be empty"))
	}
	if len(name) > maxTopicNameLen {
		return errors.Join(ErrValidation,
			fmt.Errorf("topic name is %d characters, limit is %d", len(name), maxTopicNameLen))
	}
	if name == "." || name == ".." {
		return errors.Join(ErrValidation, fmt.Errorf("topic name %q is reserved", name))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == '-':
		default:
			return errors.Join(ErrValidation,
				fmt.Errorf("topic name %q contains invalid character %q", name, c))
		}
	}
	return nil
}

// Topic is a handle bound to one Kafka topic and the Producer that created
// it. It is closed when the producer stops.
type Topic struct {
	name     string
	cfg      TopicConfig
	headers  []kgo.RecordHeader
	producer *Producer
	closed   atomic.Bool
}

// NewTopic creates a topic handle bound to p. The producer must be started.
func (p *Producer) NewTopic(name string, cfg TopicConfig) (*Topic, error) {
	factory := p.topicFactory
	if factory == nil {
		factory = p.newTopic
	}
	return factory(name, cfg)
}

func (p *Producer) newTopic(name string, cfg TopicConfig) (*Topic, error) {
	if !p.Started() {
		return nil, ErrNotStarted
	}
	if err := validateTopicName(name); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("topic %q: %w", name, err)
	}

	t := Topic{
		name:     name,
		cfg:      cfg,
		headers:  cfg.recordHeaders(),
		producer: p,
	}

	// Stop swaps the client out before it takes topicsMu, so a handle
	// appended here is always seen by releaseTopics.
	p.topicsMu.Lock()
	if !p.Started() {
		p.topicsMu.Unlock()
		return nil, ErrNotStarted
	}
	p.topics = append(p.topics, &t)
	p.topicsMu.Unlock()

	logAt(p.logger, kgo.LogLevelDebug, "topic handle created", "topic", name)
	return &t, nil
}

// Name returns the Kafka topic name.
func (t *Topic) Name() string {
	return t.name
}

// Producer returns the producer the handle is bound to.
func (t *Topic) Producer() *Producer {
	return t.producer
}

func (t *Topic) close() {
	t.closed.Store(true)
}

// Produce enqueues msg on the topic without waiting for the broker. When
// msg.Borrowed is set the value is copied first, so the caller may reuse
// its buffer as soon as Produce returns. Delivery is at most once: the
// outcome arrives later as a DeliveryReport attributed to route.
//
// The request context only carries values here; its cancellation does not
// abort the record.
func (t *Topic) Produce(ctx context.Context, msg Message, route *Route) error {
	if t.closed.Load() {
		return ErrClosed
	}

	p := t.producer
	p.clientMu.Lock()
	client, reports := p.client, p.reports
	p.clientMu.Unlock()

	if client == nil {
		return ErrNotStarted
	}

	value, err := t.value(msg)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Topic:   t.name,
		Value:   value,
		Headers: t.headers,
	}

	start := time.Now()
	client.TryProduce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		p.queueReport(reports, newDeliveryReport(route, r, err, start))
	})
	return nil
}

// value builds the record value from msg according to the envelope.
func (t *Topic) value(msg Message) ([]byte, error) {
	if t.cfg.Envelope != EnvelopeWRP {
		if msg.Borrowed {
			return bytes.Clone(msg.Value), nil
		}
		return msg.Value, nil
	}

	source := t.cfg.WRPSource
	if source == "" {
		source = DefaultWRPSource
	}

	wm := wrp.Message{
		Type:            wrp.SimpleEventMessageType,
		Source:          source,
		Destination:     "event:" + t.name,
		TransactionUUID: uuid.NewString(),
		ContentType:     msg.ContentType,
		Payload:         msg.Value,
	}

	encoded, err := wm.EncodeMsgpack(nil)
	if err != nil {
		return nil, errors.Join(ErrEncoding, fmt.Errorf("msgpack encoding failed"), err)
	}
	return encoded, nil
}
