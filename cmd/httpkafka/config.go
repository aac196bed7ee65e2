// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/xmidt-org/httpkafka"
)

// envPrefix is prepended to environment overrides, e.g. HTTPKAFKA_SERVER_LISTEN.
const envPrefix = "HTTPKAFKA"

// Config is the process configuration.
type Config struct {
	Brokers  []string       `mapstructure:"brokers"`
	Routes   []RouteConfig  `mapstructure:"routes"`
	Producer ProducerConfig `mapstructure:"producer"`
	Body     BodyConfig     `mapstructure:"body"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// RouteConfig binds one HTTP path to one Kafka topic.
type RouteConfig struct {
	Path      string              `mapstructure:"path"`
	Topic     string              `mapstructure:"topic"`
	Envelope  string              `mapstructure:"envelope"`
	Headers   map[string][]string `mapstructure:"headers"`
	WRPSource string              `mapstructure:"wrp_source"`
}

type ProducerConfig struct {
	ClientID               string        `mapstructure:"client_id"`
	Acks                   string        `mapstructure:"acks"`
	Compression            string        `mapstructure:"compression"`
	Linger                 time.Duration `mapstructure:"linger"`
	MaxBufferedRecords     int           `mapstructure:"max_buffered_records"`
	MaxBufferedBytes       int           `mapstructure:"max_buffered_bytes"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	RecordTimeout          time.Duration `mapstructure:"record_timeout"`
	MaxRetries             int           `mapstructure:"max_retries"`
	AllowAutoTopicCreation bool          `mapstructure:"allow_auto_topic_creation"`
	PollInterval           time.Duration `mapstructure:"poll_interval"`
	CleanupTimeout         time.Duration `mapstructure:"cleanup_timeout"`
	ReportQueueSize        int           `mapstructure:"report_queue_size"`
}

type BodyConfig struct {
	ChunkSize int    `mapstructure:"chunk_size"`
	MaxMemory int    `mapstructure:"max_memory"`
	MaxSize   int64  `mapstructure:"max_size"`
	TempDir   string `mapstructure:"temp_dir"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("brokers", []string{"localhost:9092"})

	v.SetDefault("producer.client_id", "httpkafka")
	v.SetDefault("producer.acks", string(httpkafka.AcksAll))
	v.SetDefault("producer.compression", string(httpkafka.CompressionSnappy))
	v.SetDefault("producer.linger", 5*time.Millisecond)
	v.SetDefault("producer.max_buffered_records", 10000)
	v.SetDefault("producer.max_buffered_bytes", 0)
	v.SetDefault("producer.request_timeout", 0)
	v.SetDefault("producer.record_timeout", 30*time.Second)
	v.SetDefault("producer.max_retries", 0)
	v.SetDefault("producer.allow_auto_topic_creation", false)
	v.SetDefault("producer.poll_interval", time.Second)
	v.SetDefault("producer.cleanup_timeout", 10*time.Second)
	v.SetDefault("producer.report_queue_size", httpkafka.DefaultReportQueueSize)

	v.SetDefault("body.chunk_size", httpkafka.DefaultBodyChunkSize)
	v.SetDefault("body.max_memory", httpkafka.DefaultMaxMemoryBody)
	v.SetDefault("body.max_size", 2*httpkafka.DefaultMaxMemoryBody)
	v.SetDefault("body.temp_dir", "")

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads the configuration from the optional YAML file at path,
// applies environment overrides and validates the result.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := httpkafka.NewBrokerList(c.Brokers...); err != nil {
		return fmt.Errorf("brokers: %w", err)
	}

	if len(c.Routes) == 0 {
		return errors.Join(httpkafka.ErrValidation, errors.New("at least one route is required"))
	}

	seen := make(map[string]struct{}, len(c.Routes))
	for i, rc := range c.Routes {
		if rc.Path == "" {
			return errors.Join(httpkafka.ErrValidation, fmt.Errorf("route %d: path is required", i))
		}
		if _, dup := seen[rc.Path]; dup {
			return errors.Join(httpkafka.ErrValidation, fmt.Errorf("route %d: duplicate path %s", i, rc.Path))
		}
		seen[rc.Path] = struct{}{}

		if err := rc.route(nil).Validate(); err != nil {
			return fmt.Errorf("route %s: %w", rc.Path, err)
		}
	}

	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return errors.Join(httpkafka.ErrValidation,
			fmt.Errorf("log format '%s' must be 'json' or 'text'", c.Log.Format))
	}

	return nil
}

func (rc RouteConfig) route(logger kgo.Logger) *httpkafka.Route {
	return &httpkafka.Route{
		Path:  rc.Path,
		Topic: rc.Topic,
		TopicConfig: httpkafka.TopicConfig{
			Envelope:  httpkafka.Envelope(rc.Envelope),
			Headers:   rc.Headers,
			WRPSource: rc.WRPSource,
		},
		Logger: logger,
	}
}

// newProducer builds the Producer described by c. It is not started.
func (c *Config) newProducer(logger kgo.Logger) (*httpkafka.Producer, error) {
	brokers, err := httpkafka.NewBrokerList(c.Brokers...)
	if err != nil {
		return nil, err
	}

	pc := c.Producer
	return &httpkafka.Producer{
		Brokers: brokers,
		Config: httpkafka.ProducerConfig{
			ClientID:               pc.ClientID,
			Acks:                   httpkafka.Acks(pc.Acks),
			CompressionCodec:       httpkafka.Compression(pc.Compression),
			Linger:                 pc.Linger,
			MaxBufferedRecords:     pc.MaxBufferedRecords,
			MaxBufferedBytes:       pc.MaxBufferedBytes,
			RequestTimeout:         pc.RequestTimeout,
			RecordTimeout:          pc.RecordTimeout,
			MaxRetries:             pc.MaxRetries,
			AllowAutoTopicCreation: pc.AllowAutoTopicCreation,
		},
		CleanupTimeout:  pc.CleanupTimeout,
		PollInterval:    pc.PollInterval,
		ReportQueueSize: pc.ReportQueueSize,
		Logger:          logger,
	}, nil
}

// newHandlers returns one Handler per configured route, all sharing p.
func (c *Config) newHandlers(p *httpkafka.Producer, logger kgo.Logger) []*httpkafka.Handler {
	handlers := make([]*httpkafka.Handler, 0, len(c.Routes))
	for _, rc := range c.Routes {
		handlers = append(handlers, &httpkafka.Handler{
			Route:         rc.route(logger),
			Producer:      p,
			BodyChunkSize: c.Body.ChunkSize,
			MaxMemoryBody: c.Body.MaxMemory,
			MaxBodySize:   c.Body.MaxSize,
			TempDir:       c.Body.TempDir,
		})
	}
	return handlers
}

func (lc LogConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(lc.Level)); err != nil {
		return 0, errors.Join(httpkafka.ErrValidation, fmt.Errorf("log level: %w", err))
	}
	return lvl, nil
}
