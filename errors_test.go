// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"
)

// TestErrors tests error types and sentinel errors.
func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("sentinel errors", func(t *testing.T) {
		t.Parallel()
		sentinels := []error{
			ErrValidation,
			ErrBrokerListTooLong,
			ErrNotStarted,
			ErrAlreadyStarted,
			ErrClosed,
			ErrBodyUnreadable,
			ErrBodyInFile,
			ErrBodyTooLarge,
			ErrEncoding,
			ErrBufferFull,
			ErrBroker,
			ErrTimeout,
		}

		for _, sentinel := range sentinels {
			me, ok := sentinel.(*metricError) // nolint:errorlint
			assert.True(t, ok, "sentinel should be *metricError")
			assert.NotEmpty(t, me.message, "sentinel should have message")
			assert.NotEmpty(t, me.metric, "sentinel should have metric type")
			assert.Equal(t, me.message, me.Error())
			assert.Equal(t, me.metric, me.Metric())
		}
	})

	t.Run("error wrapping with errors.Is", func(t *testing.T) {
		t.Parallel()

		wrapped := errors.Join(ErrBodyInFile, fmt.Errorf("segment 2 of 2"))
		assert.ErrorIs(t, wrapped, ErrBodyInFile)
		assert.NotErrorIs(t, wrapped, ErrBroker)

		doubleWrapped := fmt.Errorf("outer: %w", wrapped)
		assert.ErrorIs(t, doubleWrapped, ErrBodyInFile)
	})

	t.Run("error types for metrics", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			err      error
			expected string
		}{
			{"validation", ErrValidation, "validation_error"},
			{"broker list", ErrBrokerListTooLong, "broker_list_too_long"},
			{"body in file", ErrBodyInFile, "body_in_file"},
			{"not started", ErrNotStarted, "not_started"},
			{"nil error", nil, ""},
			{"unknown error", fmt.Errorf("random"), "unknown"},
			{"wrapped", errors.Join(ErrEncoding, fmt.Errorf("test")), "encoding_error"},
			{"franz-go buffer full", kgo.ErrMaxBuffered, "buffer_full"},
			{"franz-go record timeout", kgo.ErrRecordTimeout, "timeout"},
			{"context deadline", fmt.Errorf("flush: %w", context.DeadlineExceeded), "timeout"},
			{"franz-go client closed", kgo.ErrClientClosed, "topic_closed"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, errorType(tt.err))
			})
		}
	})

	t.Run("delivery errors match sentinels", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name     string
			err      error
			sentinel error
		}{
			{"buffer full", kgo.ErrMaxBuffered, ErrBufferFull},
			{"record timeout", kgo.ErrRecordTimeout, ErrTimeout},
			{"client closed", kgo.ErrClientClosed, ErrClosed},
			{"anything else", errors.New("NOT_LEADER_FOR_PARTITION"), ErrBroker},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := deliveryError(tt.err)
				assert.ErrorIs(t, err, tt.sentinel)
				assert.ErrorIs(t, err, tt.err)
			})
		}

		assert.NoError(t, deliveryError(nil))
	})

	t.Run("Is() method semantics", func(t *testing.T) {
		t.Parallel()

		assert.True(t, errors.Is(ErrEncoding, ErrEncoding))
		assert.False(t, errors.Is(ErrEncoding, ErrBroker))

		newErr := &metricError{metric: "encoding_error", message: "test"}
		assert.False(t, errors.Is(newErr, ErrEncoding))

		assert.False(t, errors.Is(nil, ErrEncoding))
		assert.False(t, errors.Is(ErrEncoding, nil))
	})
}
