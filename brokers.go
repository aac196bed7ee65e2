// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// MaxBrokerListLen is the longest joined broker list accepted, in bytes.
	MaxBrokerListLen = 1023

	brokerSeparator = ","
)

// BrokerList holds the broker addresses a Producer bootstraps from.
// It is set once while configuration is loaded and read when the
// producer starts.
type BrokerList struct {
	addrs  []string
	joined string
}

// NewBrokerList returns a BrokerList holding the given addresses.
func NewBrokerList(addrs ...string) (*BrokerList, error) {
	var bl BrokerList
	if err := bl.Set(addrs...); err != nil {
		return nil, err
	}
	return &bl, nil
}

// Set replaces the broker addresses. A later call wins over an earlier one.
//
// Returns an error, leaving the previous value in place, if:
//   - no addresses are given
//   - an address is empty or contains a comma
//   - the comma-joined list is longer than MaxBrokerListLen
func (bl *BrokerList) Set(addrs ...string) error {
	if len(addrs) == 0 {
		return errors.Join(ErrValidation, fmt.Errorf("at least one broker address is required"))
	}

	size := len(addrs) - 1
	for i, addr := range addrs {
		if addr == "" {
			return errors.Join(ErrValidation, fmt.Errorf("broker %d is empty", i))
		}
		if strings.Contains(addr, brokerSeparator) {
			return errors.Join(ErrValidation,
				fmt.Errorf("broker %d (%q) contains separator %q", i, addr, brokerSeparator))
		}
		size += len(addr)
	}

	if size > MaxBrokerListLen {
		return errors.Join(ErrBrokerListTooLong,
			fmt.Errorf("joined broker list is %d bytes, limit is %d", size, MaxBrokerListLen))
	}

	bl.addrs = slices.Clone(addrs)
	bl.joined = strings.Join(addrs, brokerSeparator)
	return nil
}

// String returns the comma-joined broker list.
func (bl *BrokerList) String() string {
	if bl == nil {
		return ""
	}
	return bl.joined
}

// Addrs returns a copy of the individual broker addresses.
func (bl *BrokerList) Addrs() []string {
	if bl == nil {
		return nil
	}
	return slices.Clone(bl.addrs)
}

// Len returns the number of broker addresses.
func (bl *BrokerList) Len() int {
	if bl == nil {
		return 0
	}
	return len(bl.addrs)
}
