// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/eventor"
)

// Producer owns the one Kafka client of a process, shared by every route.
//
// Start must be called before any request is served and Stop once no more
// requests will be. Between the two the client and its configuration are
// only read. All methods are safe for concurrent use.
type Producer struct {
	// --- STATIC CONFIGURATION (set before Start, immutable after) ---

	// Brokers is the list of Kafka broker addresses. Required.
	Brokers *BrokerList

	// Config holds the Kafka client settings.
	Config ProducerConfig

	// CleanupTimeout bounds the flush of buffered records in Stop when the
	// caller's context has no deadline. Zero or negative means no timeout.
	CleanupTimeout time.Duration

	// PollInterval, when positive, runs a background Poll at this interval
	// so delivery reports are dispatched even when no requests arrive.
	PollInterval time.Duration

	// ReportQueueSize is the number of completed delivery reports held for
	// Poll. Default: DefaultReportQueueSize.
	ReportQueueSize int

	// Logger is the fallback sink for delivery failures of routes without
	// their own logger, and the logger handed to the Kafka client.
	// Optional. If nil, a no-op logger will be used.
	Logger kgo.Logger

	// InitialDeliveryListeners are registered when Start() is called.
	InitialDeliveryListeners []func(*DeliveryReport)

	// InitialIngestListeners are registered when Start() is called.
	InitialIngestListeners []func(*IngestEvent)

	// --- INTERNAL FIELDS ---

	// logger is the actively used logger, never nil after Start.
	logger kgo.Logger

	// clientFactory creates Kafka clients; tests replace it.
	clientFactory clientFactory

	// topicFactory creates topic handles; tests wrap it to count creations.
	topicFactory func(name string, cfg TopicConfig) (*Topic, error)

	// lifecycleMu serializes Start and Stop.
	lifecycleMu sync.Mutex

	// clientMu guards client and reports.
	clientMu sync.Mutex
	client   kafkaClient
	reports  chan *DeliveryReport

	// dispatchMu serializes delivery report dispatch.
	dispatchMu sync.Mutex

	// topicsMu guards topics and routes.
	topicsMu sync.Mutex
	topics   []*Topic
	routes   map[*Route]struct{}

	pollerStop chan struct{}
	pollerDone chan struct{}

	deliveryListeners eventor.Eventor[func(*DeliveryReport)]
	ingestListeners   eventor.Eventor[func(*IngestEvent)]

	registerInitialListenersOnce sync.Once
}

// Start creates the Kafka client.
//
// Returns an error if:
//   - Configuration is invalid (missing brokers, bad acks or compression)
//   - The client cannot be created
//   - Already started
//
// A process must not serve traffic when Start fails.
func (p *Producer) Start() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.currentClient() != nil {
		return ErrAlreadyStarted
	}

	if p.clientFactory == nil {
		p.clientFactory = defaultClientFactory
	}
	if p.topicFactory == nil {
		p.topicFactory = p.newTopic
	}

	logger := p.Logger
	if logger == nil {
		logger = &nopLogger{}
	}
	p.logger = logger

	p.registerInitialListenersOnce.Do(func() {
		for _, listener := range p.InitialDeliveryListeners {
			p.deliveryListeners.Add(listener)
		}
		for _, listener := range p.InitialIngestListeners {
			p.ingestListeners.Add(listener)
		}
	})

	if err := p.validate(); err != nil {
		return err
	}

	client, err := p.clientFactory(p.toKgoOpts()...)
	if err != nil {
		return fmt.Errorf("failed to create Kafka client: %w", err)
	}

	size := p.ReportQueueSize
	if size == 0 {
		size = DefaultReportQueueSize
	}

	p.clientMu.Lock()
	p.client = client
	if p.reports == nil {
		p.reports = make(chan *DeliveryReport, size)
	}
	p.clientMu.Unlock()

	if p.PollInterval > 0 {
		p.pollerStop = make(chan struct{})
		p.pollerDone = make(chan struct{})
		go p.poll(p.PollInterval, p.pollerStop, p.pollerDone)
	}

	logAt(p.logger, kgo.LogLevelInfo, "producer started", "brokers", p.Brokers.String())
	return nil
}

// Stop releases every topic handle, flushes buffered records and closes the
// client. Delivery reports still queued are dispatched before it returns.
// Safe to call multiple times (idempotent).
func (p *Producer) Stop(ctx context.Context) {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.clientMu.Lock()
	client := p.client
	p.client = nil
	reports := p.reports
	p.clientMu.Unlock()

	if client == nil {
		return
	}

	logAt(p.logger, kgo.LogLevelInfo, "stopping producer, flushing buffered records")

	if p.pollerStop != nil {
		close(p.pollerStop)
		<-p.pollerDone
		p.pollerStop, p.pollerDone = nil, nil
	}

	p.releaseTopics()

	if p.CleanupTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.CleanupTimeout)
			defer cancel()
		}
	}

	if err := client.Flush(ctx); err != nil {
		logAt(p.logger, kgo.LogLevelWarn, "flush incomplete during shutdown", "error", err.Error())
	}
	client.Close()

	p.dispatchMu.Lock()
	n := p.drainReports(reports, cap(reports))
	p.dispatchMu.Unlock()

	logAt(p.logger, kgo.LogLevelInfo, "producer stopped", "final_reports", n)
}

// Flush waits until every buffered record has completed or ctx is done.
// Reports of the flushed records are left for Poll.
func (p *Producer) Flush(ctx context.Context) error {
	client := p.currentClient()
	if client == nil {
		return ErrNotStarted
	}
	return client.Flush(ctx)
}

// BufferedRecords returns the current and maximum buffer counts and bytes.
// Returns zeros if the producer is not started.
func (p *Producer) BufferedRecords() (currentRecords, maxRecords int, currentBytes, maxBytes int64) {
	client := p.currentClient()
	if client == nil {
		return 0, 0, 0, 0
	}

	return int(client.BufferedProduceRecords()), p.Config.MaxBufferedRecords,
		client.BufferedProduceBytes(), int64(p.Config.MaxBufferedBytes)
}

// Started reports whether Start has succeeded and Stop has not been called.
func (p *Producer) Started() bool {
	return p.currentClient() != nil
}

func (p *Producer) currentClient() kafkaClient {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	return p.client
}

func (p *Producer) reportQueue() chan *DeliveryReport {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	return p.reports
}

// poll runs Poll every interval until stop is closed.
func (p *Producer) poll(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// bind records that route holds a topic handle of this producer, so Stop
// can clear the route's slot.
func (p *Producer) bind(route *Route) {
	p.topicsMu.Lock()
	defer p.topicsMu.Unlock()

	if p.routes == nil {
		p.routes = make(map[*Route]struct{})
	}
	p.routes[route] = struct{}{}
}

func (p *Producer) releaseTopics() {
	p.topicsMu.Lock()
	topics, routes := p.topics, p.routes
	p.topics, p.routes = nil, nil
	p.topicsMu.Unlock()

	for route := range routes {
		route.release(p)
	}
	for _, t := range topics {
		t.close()
	}
}

// validate validates the Producer's configuration.
func (p *Producer) validate() error {
	if p.Brokers.Len() == 0 {
		return errors.Join(ErrValidation, fmt.Errorf("brokers list is required"))
	}
	if p.ReportQueueSize < 0 {
		return errors.Join(ErrValidation,
			fmt.Errorf("report queue size %d is negative", p.ReportQueueSize))
	}
	return p.Config.validate()
}

// toKgoOpts converts the Producer's configuration to franz-go client options.
func (p *Producer) toKgoOpts() []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(p.Brokers.Addrs()...),
		kgo.WithLogger(p.logger),
	}
	return append(opts, p.Config.opts()...)
}
