// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Route binds one HTTP path to one Kafka topic.
//
// The topic handle is created on first use and then reused until the
// producer that created it stops.
type Route struct {
	// Path is the HTTP path the route is served on.
	Path string

	// Topic is the Kafka topic name. Required.
	Topic string

	// TopicConfig configures the topic handle.
	TopicConfig TopicConfig

	// Logger receives delivery failures of messages sent through this
	// route. Optional. If nil, the producer's logger is used.
	Logger kgo.Logger

	// mu guards the slow path of the topic slot.
	mu     sync.Mutex
	handle atomic.Pointer[Topic]
}

// Validate checks the route's topic name and topic configuration.
func (r *Route) Validate() error {
	if r.Path != "" && !strings.HasPrefix(r.Path, "/") {
		return errors.Join(ErrValidation, fmt.Errorf("route path %q must start with '/'", r.Path))
	}
	if err := validateTopicName(r.Topic); err != nil {
		return fmt.Errorf("route %q: %w", r.Path, err)
	}
	if err := r.TopicConfig.validate(); err != nil {
		return fmt.Errorf("route %q: %w", r.Path, err)
	}
	return nil
}

// GetOrCreateTopic returns the route's topic handle bound to p, creating
// it on first use. At most one handle exists per route while p runs. A
// closed handle left in the slot by a racing Stop is replaced.
func (r *Route) GetOrCreateTopic(p *Producer) (*Topic, error) {
	if t := r.handle.Load(); r.holds(t, p) {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.handle.Load(); r.holds(t, p) {
		return t, nil
	}

	t, err := p.NewTopic(r.Topic, r.TopicConfig)
	if err != nil {
		return nil, err
	}

	r.handle.Store(t)
	p.bind(r)
	return t, nil
}

// holds reports whether t is a live handle of p.
func (r *Route) holds(t *Topic, p *Producer) bool {
	return t != nil && t.producer == p && !t.closed.Load()
}

// release clears the slot if it holds a handle of p.
func (r *Route) release(p *Producer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t := r.handle.Load(); t != nil && t.producer == p {
		r.handle.Store(nil)
	}
}
