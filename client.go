// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"
)

// kafkaClient is the subset of the franz-go client the producer uses.
// Tests substitute a mock; production uses *kgo.Client.
type kafkaClient interface {
	// TryProduce buffers a record without blocking. If the buffer is full
	// the promise is called with kgo.ErrMaxBuffered.
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))

	// Flush waits for all buffered records to be sent.
	Flush(ctx context.Context) error

	// Close closes the client and releases resources.
	Close()

	// BufferedProduceRecords returns the current number of buffered records.
	BufferedProduceRecords() int64

	// BufferedProduceBytes returns the current number of buffered bytes.
	BufferedProduceBytes() int64
}

var _ kafkaClient = (*kgo.Client)(nil)

// clientFactory creates a Kafka client from options.
type clientFactory func(opts ...kgo.Opt) (kafkaClient, error)

func defaultClientFactory(opts ...kgo.Opt) (kafkaClient, error) {
	return kgo.NewClient(opts...)
}
