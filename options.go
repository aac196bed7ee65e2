// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds the Kafka client settings applied when a Producer
// starts. It is not consulted again afterwards.
type ProducerConfig struct {
	// ClientID is reported to the brokers. Optional.
	ClientID string

	// Acks controls broker acknowledgments.
	// Valid: "all", "leader", "none". Empty keeps the client default (all).
	Acks Acks

	// CompressionCodec specifies the batch compression algorithm.
	// Valid: "snappy", "gzip", "lz4", "zstd", "none".
	CompressionCodec Compression

	// Linger sets the batching delay. Zero or negative disables lingering.
	Linger time.Duration

	// MaxBufferedRecords caps the records waiting to be sent.
	// Zero or negative keeps the client default.
	MaxBufferedRecords int

	// MaxBufferedBytes caps the bytes waiting to be sent.
	// Zero or negative disables this limit.
	MaxBufferedBytes int

	// RequestTimeout is added to produce request timeouts.
	// Zero or negative keeps the client default.
	RequestTimeout time.Duration

	// RecordTimeout bounds how long a record may wait for delivery before
	// its delivery report fails. Zero or negative means no limit.
	RecordTimeout time.Duration

	// MaxRetries bounds retries of failed produce requests.
	// Zero or negative keeps the client default.
	MaxRetries int

	// AllowAutoTopicCreation lets the brokers create topics on first produce.
	AllowAutoTopicCreation bool
}

func (pc *ProducerConfig) validate() error {
	if err := pc.Acks.validate(); err != nil {
		return err
	}
	if err := pc.CompressionCodec.validate(); err != nil {
		return err
	}
	if pc.MaxBufferedBytes > 0 && pc.MaxBufferedBytes < 1024 {
		return errors.Join(ErrValidation,
			fmt.Errorf("max buffered bytes %d is below 1024", pc.MaxBufferedBytes))
	}
	return nil
}

// opts converts the configuration to franz-go client options.
func (pc *ProducerConfig) opts() []kgo.Opt {
	var opts []kgo.Opt

	if pc.ClientID != "" {
		opts = append(opts, kgo.ClientID(pc.ClientID))
	}

	opts = append(opts, pc.Acks.opts()...)

	if pc.CompressionCodec != "" {
		opts = append(opts, kgo.ProducerBatchCompression(pc.CompressionCodec.codec()))
	}

	if pc.Linger > 0 {
		opts = append(opts, kgo.ProducerLinger(pc.Linger))
	}

	if pc.MaxBufferedRecords > 0 {
		opts = append(opts, kgo.MaxBufferedRecords(pc.MaxBufferedRecords))
	}

	if pc.MaxBufferedBytes > 0 {
		opts = append(opts, kgo.MaxBufferedBytes(pc.MaxBufferedBytes))
	}

	if pc.RequestTimeout > 0 {
		opts = append(opts, kgo.RequestTimeoutOverhead(pc.RequestTimeout))
	}

	if pc.RecordTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(pc.RecordTimeout))
	}

	if pc.MaxRetries > 0 {
		opts = append(opts, kgo.RequestRetries(pc.MaxRetries))
	}

	if pc.AllowAutoTopicCreation {
		opts = append(opts, kgo.AllowAutoTopicCreation())
	}

	return opts
}
