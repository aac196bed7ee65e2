// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestProducerConfigValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		config  ProducerConfig
		wantErr bool
	}{
		{
			name: "zero value",
		},
		{
			name: "all fields",
			config: ProducerConfig{
				ClientID:               "httpkafka",
				Acks:                   AcksLeader,
				CompressionCodec:       CompressionZstd,
				Linger:                 5 * time.Millisecond,
				MaxBufferedRecords:     10000,
				MaxBufferedBytes:       10 << 20,
				RequestTimeout:         10 * time.Second,
				RecordTimeout:          30 * time.Second,
				MaxRetries:             3,
				AllowAutoTopicCreation: true,
			},
		},
		{
			name:    "invalid acks",
			config:  ProducerConfig{Acks: "bad"},
			wantErr: true,
		},
		{
			name:    "invalid compression",
			config:  ProducerConfig{CompressionCodec: "brotli"},
			wantErr: true,
		},
		{
			name:    "tiny byte buffer",
			config:  ProducerConfig{MaxBufferedBytes: 10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAcks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		acks     Acks
		wantOpts int
		wantErr  bool
	}{
		{acks: "", wantOpts: 0},
		{acks: AcksAll, wantOpts: 1},
		{acks: AcksLeader, wantOpts: 2},
		{acks: AcksNone, wantOpts: 2},
		{acks: "some", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.acks), func(t *testing.T) {
			t.Parallel()

			err := tt.acks.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), "'all', 'leader', 'none'")
				return
			}
			require.NoError(t, err)
			assert.Len(t, tt.acks.opts(), tt.wantOpts)
		})
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()
	for _, c := range []Compression{"", CompressionSnappy, CompressionGzip, CompressionLz4, CompressionZstd, CompressionNone} {
		assert.NoError(t, c.validate(), "codec %q", c)
		assert.NotNil(t, c.codec())
	}

	err := Compression("brotli").validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "'gzip', 'lz4', 'none', 'snappy', 'zstd'")
}

// TestToKgoOpts_CreatesValidClient verifies that generated options create a valid client.
func TestToKgoOpts_CreatesValidClient(t *testing.T) {
	t.Parallel()
	for _, acks := range []Acks{"", AcksAll, AcksLeader, AcksNone} {
		t.Run("acks="+string(acks), func(t *testing.T) {
			t.Parallel()
			brokers, err := NewBrokerList("localhost:9092", "localhost:9093")
			require.NoError(t, err)

			p := &Producer{
				Brokers: brokers,
				Config: ProducerConfig{
					ClientID:           "httpkafka-test",
					Acks:               acks,
					CompressionCodec:   CompressionSnappy,
					Linger:             time.Millisecond,
					MaxBufferedRecords: 1000,
					RequestTimeout:     30 * time.Second,
					RecordTimeout:      time.Minute,
					MaxRetries:         5,
				},
				logger: &nopLogger{},
			}

			opts := p.toKgoOpts()
			require.NotEmpty(t, opts)

			// Creating a client does not connect.
			client, err := kgo.NewClient(opts...)
			require.NoError(t, err)
			require.NotNil(t, client)
			client.Close()
		})
	}
}
