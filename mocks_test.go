// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package httpkafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/twmb/franz-go/pkg/kgo"
)

// mockKafkaClient is a mock implementation of kafkaClient for testing.
type mockKafkaClient struct {
	mock.Mock
}

func (m *mockKafkaClient) TryProduce(ctx context.Context, r *kgo.Record, cb func(*kgo.Record, error)) {
	m.Called(ctx, r, cb)
}

func (m *mockKafkaClient) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockKafkaClient) Close() {
	m.Called()
}

func (m *mockKafkaClient) BufferedProduceRecords() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *mockKafkaClient) BufferedProduceBytes() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

// fakeKafkaClient records produced records and holds their promises until
// the test completes them, like a client waiting on the broker.
type fakeKafkaClient struct {
	mu       sync.Mutex
	records  []*kgo.Record
	promises []func(*kgo.Record, error)
	closed   bool
}

func (f *fakeKafkaClient) TryProduce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, r)
	f.promises = append(f.promises, promise)
}

// complete finishes the i-th record with err, assigning an offset on success.
func (f *fakeKafkaClient) complete(i int, err error) {
	f.mu.Lock()
	r, promise := f.records[i], f.promises[i]
	f.mu.Unlock()

	if err == nil {
		r.Partition = 0
		r.Offset = int64(i)
	}
	promise(r, err)
}

func (f *fakeKafkaClient) produced() []*kgo.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*kgo.Record(nil), f.records...)
}

func (f *fakeKafkaClient) Flush(context.Context) error { return nil }

func (f *fakeKafkaClient) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeKafkaClient) BufferedProduceRecords() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records))
}

func (f *fakeKafkaClient) BufferedProduceBytes() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		n += int64(len(r.Value))
	}
	return n
}

// logRecord is one call captured by captureLogger.
type logRecord struct {
	level   kgo.LogLevel
	msg     string
	keyvals []any
}

// captureLogger is a kgo.Logger that keeps every record.
type captureLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (*captureLogger) Level() kgo.LogLevel { return kgo.LogLevelDebug }

func (l *captureLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{level: level, msg: msg, keyvals: keyvals})
}

// at returns the records logged at level.
func (l *captureLogger) at(level kgo.LogLevel) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rv []logRecord
	for _, r := range l.records {
		if r.level == level {
			rv = append(rv, r)
		}
	}
	return rv
}

// value returns the value logged for key.
func (r logRecord) value(key string) any {
	for i := 0; i+1 < len(r.keyvals); i += 2 {
		if fmt.Sprint(r.keyvals[i]) == key {
			return r.keyvals[i+1]
		}
	}
	return nil
}

// newStartedProducer returns a started Producer backed by client.
func newStartedProducer(client kafkaClient) *Producer {
	brokers, err := NewBrokerList("localhost:9092")
	if err != nil {
		panic(fmt.Sprintf("test setup failed creating broker list: %v", err))
	}

	p := &Producer{Brokers: brokers}
	p.clientFactory = func(...kgo.Opt) (kafkaClient, error) {
		return client, nil
	}
	if err := p.Start(); err != nil {
		panic(fmt.Sprintf("test setup failed starting producer: %v", err))
	}
	return p
}
