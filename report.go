// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultReportQueueSize is the number of delivery reports held for Poll
// when Producer.ReportQueueSize is zero.
const DefaultReportQueueSize = 1024

// DeliveryReport describes one completed send attempt.
type DeliveryReport struct {
	// Route is the route the message came in on. Nil for records produced
	// directly through a Topic without a route.
	Route *Route

	// Topic is the Kafka topic the record was sent to.
	Topic string

	// Partition and Offset are set by the broker on success, -1 otherwise.
	Partition int32
	Offset    int64

	// Size is the length of the record value in bytes.
	Size int

	// Err is nil for a delivered record. Failures match one of ErrBroker,
	// ErrBufferFull, ErrTimeout or ErrClosed with errors.Is.
	Err error

	// ErrorType is the metric label of Err, empty on success.
	ErrorType string

	// Latency is the time from enqueue to completion.
	Latency time.Duration
}

func newDeliveryReport(route *Route, r *kgo.Record, err error, since time.Time) *DeliveryReport {
	rep := DeliveryReport{
		Route:     route,
		Topic:     r.Topic,
		Partition: -1,
		Offset:    -1,
		Size:      len(r.Value),
		Latency:   time.Since(since),
	}

	if err != nil {
		rep.Err = deliveryError(err)
		rep.ErrorType = errorType(rep.Err)
		return &rep
	}

	rep.Partition = r.Partition
	rep.Offset = r.Offset
	return &rep
}

// AddDeliveryListener adds a listener that receives every delivery report,
// successful or not. The returned function removes the listener.
//
// Listeners run while reports are dispatched, usually from Poll on a request
// goroutine. They must not block and must not call Poll.
func (p *Producer) AddDeliveryListener(fn func(*DeliveryReport)) func() {
	return p.deliveryListeners.Add(fn)
}

// queueReport hands a report from a produce promise to Poll. When the queue
// is full the report is dispatched right away on the promise goroutine
// rather than dropped.
func (p *Producer) queueReport(reports chan *DeliveryReport, rep *DeliveryReport) {
	select {
	case reports <- rep:
	default:
		p.dispatchMu.Lock()
		defer p.dispatchMu.Unlock()
		p.dispatchReport(rep)
	}
}

// Poll dispatches the delivery reports that have completed so far and
// returns how many it handled. It never blocks: if another goroutine is
// already dispatching, Poll returns 0.
func (p *Producer) Poll() int {
	reports := p.reportQueue()
	if reports == nil {
		return 0
	}

	if !p.dispatchMu.TryLock() {
		return 0
	}
	defer p.dispatchMu.Unlock()

	return p.drainReports(reports, len(reports))
}

// drainReports dispatches at most limit queued reports. dispatchMu must be held.
func (p *Producer) drainReports(reports chan *DeliveryReport, limit int) int {
	var n int
	for n < limit {
		select {
		case rep := <-reports:
			p.dispatchReport(rep)
			n++
		default:
			return n
		}
	}
	return n
}

// dispatchReport logs a failed delivery to the originating route's logger
// and notifies listeners. dispatchMu must be held.
func (p *Producer) dispatchReport(rep *DeliveryReport) {
	if rep.Err != nil {
		logger := p.logger
		var path string
		if rep.Route != nil {
			path = rep.Route.Path
			if rep.Route.Logger != nil {
				logger = rep.Route.Logger
			}
		}
		logAt(logger, kgo.LogLevelError, "kafka delivery failed",
			"route", path,
			"topic", rep.Topic,
			"bytes", rep.Size,
			"error_type", rep.ErrorType,
			"error", rep.Err.Error(),
		)
	}

	p.deliveryListeners.Visit(func(listener func(*DeliveryReport)) {
		listener(rep)
	})
}
