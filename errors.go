// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	// ErrValidation indicates configuration validation failed.
	ErrValidation = &metricError{
		metric:  "validation_error",
		message: "validation error",
	}

	// ErrBrokerListTooLong indicates the joined broker list exceeds MaxBrokerListLen.
	ErrBrokerListTooLong = &metricError{
		metric:  "broker_list_too_long",
		message: "broker list too long",
	}

	// ErrNotStarted indicates the producer has not been started.
	ErrNotStarted = &metricError{
		metric:  "not_started",
		message: "producer not started",
	}

	// ErrAlreadyStarted indicates the producer has already been started.
	ErrAlreadyStarted = &metricError{
		metric:  "already_started",
		message: "producer already started",
	}

	// ErrClosed indicates a topic handle was used after its producer stopped.
	ErrClosed = &metricError{
		metric:  "topic_closed",
		message: "topic handle closed",
	}

	// ErrBodyUnreadable indicates the request body was absent or could not be read.
	ErrBodyUnreadable = &metricError{
		metric:  "body_unreadable",
		message: "request body unreadable",
	}

	// ErrBodyInFile indicates part of the request body was spilled to a
	// temporary file, which is not supported.
	ErrBodyInFile = &metricError{
		metric:  "body_in_file",
		message: "request body buffered in file",
	}

	// ErrBodyTooLarge indicates the request body exceeded the hard size limit.
	ErrBodyTooLarge = &metricError{
		metric:  "body_too_large",
		message: "request body too large",
	}

	// ErrEncoding indicates a message envelope could not be encoded.
	ErrEncoding = &metricError{
		metric:  "encoding_error",
		message: "encoding failed",
	}

	// ErrBufferFull indicates the client's produce buffer was at capacity.
	ErrBufferFull = &metricError{
		metric:  "buffer_full",
		message: "buffer full",
	}

	// ErrBroker indicates Kafka broker rejected the message.
	ErrBroker = &metricError{
		metric:  "broker_error",
		message: "broker error",
	}

	// ErrTimeout indicates the record or request timed out.
	ErrTimeout = &metricError{
		metric:  "timeout",
		message: "timeout",
	}
)

// metricError is an internal error type that wraps errors with a type classification
// for metrics and observability.
type metricError struct {
	metric  string // label for grouping errors, e.g. "body_in_file"
	message string
}

// Error implements the error interface.
func (e *metricError) Error() string {
	return e.message
}

func (e *metricError) Metric() string {
	return e.metric
}

func (e *metricError) Is(target error) bool {
	if t, ok := target.(*metricError); ok {
		return e.message == t.message
	}
	return false
}

// errorType extracts the error type string for metrics classification.
// franz-go's produce errors are mapped onto the matching sentinel labels.
func errorType(err error) string {
	if err == nil {
		return ""
	}

	var me *metricError
	if errors.As(err, &me) {
		return me.Metric()
	}

	switch {
	case errors.Is(err, kgo.ErrMaxBuffered):
		return ErrBufferFull.metric
	case errors.Is(err, kgo.ErrRecordTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.metric
	case errors.Is(err, kgo.ErrClientClosed):
		return ErrClosed.metric
	}

	return "unknown"
}

// deliveryError classifies an error handed to a produce promise so that
// listeners can match it with errors.Is against the package sentinels.
func deliveryError(err error) error {
	if err == nil {
		return nil
	}

	switch errorType(err) {
	case ErrBufferFull.metric:
		return errors.Join(ErrBufferFull, err)
	case ErrTimeout.metric:
		return errors.Join(ErrTimeout, err)
	case ErrClosed.metric:
		return errors.Join(ErrClosed, err)
	case "unknown":
		return errors.Join(ErrBroker, err)
	}
	return err
}
