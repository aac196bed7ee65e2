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

// Acks specifies the broker acknowledgment requirements.
type Acks string

const (
	// AcksAll requires all ISR replicas to acknowledge (strongest durability).
	AcksAll Acks = "all"

	// AcksLeader requires only the leader replica to acknowledge.
	AcksLeader Acks = "leader"

	// AcksNone requires no acknowledgment.
	AcksNone Acks = "none"
)

var acksTypes = map[Acks]func() kgo.Acks{
	AcksAll:    kgo.AllISRAcks,
	AcksLeader: kgo.LeaderAck,
	AcksNone:   kgo.NoAck,
}

// validate checks the Acks value. Empty leaves the client default.
func (a Acks) validate() error {
	if a == "" {
		return nil
	}
	if _, ok := acksTypes[a]; ok {
		return nil
	}

	names := make([]string, 0, len(acksTypes))
	for k := range maps.Keys(acksTypes) {
		names = append(names, string(k))
	}
	slices.Sort(names)
	return errors.Join(ErrValidation,
		fmt.Errorf("acks '%s' is invalid: must be '%s' or empty", a, strings.Join(names, "', '")))
}

// opts returns the client options for a, none when a is empty.
//
// franz-go refuses idempotent writes with anything but all ISR acks, so
// weaker settings also turn idempotency off.
func (a Acks) opts() []kgo.Opt {
	fn, ok := acksTypes[a]
	if !ok {
		return nil
	}

	opts := []kgo.Opt{kgo.RequiredAcks(fn())}
	if a != AcksAll {
		opts = append(opts, kgo.DisableIdempotentWrite())
	}
	return opts
}
