// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import "time"

// Outcome represents what the handler did with one request.
type Outcome int

const (
	// Queued indicates the body was handed to the Kafka client. It is NOT
	// confirmed by the broker; the delivery report arrives later.
	Queued Outcome = iota

	// Empty indicates the body was empty. The caller got the success
	// payload and nothing was produced.
	Empty

	// Rejected indicates the body was too large to be produced.
	Rejected

	// Abandoned indicates the client went away before the body was
	// produced. No response was written.
	Abandoned

	// Failed indicates the request could not be handled (unreadable body,
	// producer not running, topic or encoding error).
	Failed
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case Queued:
		return "Queued"
	case Empty:
		return "Empty"
	case Rejected:
		return "Rejected"
	case Abandoned:
		return "Abandoned"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IngestEvent describes the handling of one POST request.
type IngestEvent struct {
	// Route is the route the request arrived on.
	Route *Route

	// Topic is the Kafka topic of the route.
	Topic string

	// Outcome is what happened to the body.
	Outcome Outcome

	// Status is the HTTP status written, zero when none was.
	Status int

	// Bytes is the body length.
	Bytes int

	// Error is the reason for Rejected, Abandoned and Failed outcomes.
	Error error

	// ErrorType is the metric label of Error, empty otherwise.
	ErrorType string

	// Duration is the time spent in the handler.
	Duration time.Duration
}

// AddIngestListener adds a listener for handled requests. The returned
// function removes the listener. Listeners are called from request
// goroutines and must be thread-safe.
func (p *Producer) AddIngestListener(fn func(*IngestEvent)) func() {
	return p.ingestListeners.Add(fn)
}

// dispatchIngest dispatches an IngestEvent to all registered listeners.
func (p *Producer) dispatchIngest(event *IngestEvent, since time.Time) {
	if event.Error != nil {
		event.ErrorType = errorType(event.Error)
	}
	event.Duration = time.Since(since)

	p.ingestListeners.Visit(func(listener func(*IngestEvent)) {
		listener(event)
	})
}
