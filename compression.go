// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Compression specifies the record batch compression algorithm.
type Compression string

const (
	// CompressionSnappy uses Snappy compression (good balance, recommended).
	CompressionSnappy Compression = "snappy"

	// CompressionGzip uses Gzip compression.
	CompressionGzip Compression = "gzip"

	// CompressionLz4 uses LZ4 compression.
	CompressionLz4 Compression = "lz4"

	// CompressionZstd uses Zstandard compression.
	CompressionZstd Compression = "zstd"

	// CompressionNone disables compression.
	CompressionNone Compression = "none"
)

var compressionCodecs = map[Compression]func() kgo.CompressionCodec{
	CompressionSnappy: kgo.SnappyCompression,
	CompressionGzip:   kgo.GzipCompression,
	CompressionLz4:    kgo.Lz4Compression,
	CompressionZstd:   kgo.ZstdCompression,
	CompressionNone:   kgo.NoCompression,
}

// validate checks the codec name. Empty means no compression.
func (c Compression) validate() error {
	if c == "" {
		return nil
	}
	if _, ok := compressionCodecs[c]; ok {
		return nil
	}

	names := make([]string, 0, len(compressionCodecs))
	for k := range maps.Keys(compressionCodecs) {
		names = append(names, string(k))
	}
	slices.Sort(names)
	return errors.Join(ErrValidation,
		fmt.Errorf("compression codec '%s' is invalid: must be '%s' or empty",
			c, strings.Join(names, "', '")))
}

// codec returns the franz-go codec for c.
func (c Compression) codec() kgo.CompressionCodec {
	if fn, ok := compressionCodecs[c]; ok {
		return fn()
	}
	return kgo.NoCompression()
}
