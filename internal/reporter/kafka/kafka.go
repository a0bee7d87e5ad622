// Package kafka implements Kafka reporter plugin.
// Publishes gap events and the final integrity report as JSON, keyed by stream.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"firestige.xyz/seqgap/internal/gap"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/reporter"
)

const (
	Name = "kafka"

	defaultBatchSize    = 100
	defaultBatchTimeout = 100 * time.Millisecond
	defaultCompression  = "snappy"
	defaultMaxAttempts  = 3

	summaryKey = "summary"
)

// messageWriter is the subset of *kafka.Writer the reporter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaReporter sends gap events to Kafka.
type KafkaReporter struct {
	writer messageWriter
	config Config

	// Statistics
	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// Config represents Kafka reporter configuration.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`       // required
	Topic        string        `mapstructure:"topic"`         // required
	BatchSize    int           `mapstructure:"batch_size"`    // optional, default 100
	BatchTimeout time.Duration `mapstructure:"batch_timeout"` // optional, default 100ms
	Compression  string        `mapstructure:"compression"`   // optional: none|gzip|snappy|lz4, default snappy
	MaxAttempts  int           `mapstructure:"max_attempts"`  // optional, default 3
	Packets      bool          `mapstructure:"packets"`       // publish every event, not only gaps and overlaps
}

// NewKafkaReporter creates a new Kafka reporter.
func NewKafkaReporter() reporter.Reporter {
	return &KafkaReporter{}
}

// Name returns the plugin name.
func (r *KafkaReporter) Name() string {
	return Name
}

// Init initializes the reporter with configuration.
func (r *KafkaReporter) Init(options map[string]any) error {
	cfg, err := parseConfig(options)
	if err != nil {
		return err
	}
	r.config = cfg

	writerConfig := kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // one stream stays on one partition
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		Async:        false,
	}
	codec, err := compressionCodec(cfg.Compression)
	if err != nil {
		return err
	}
	writerConfig.CompressionCodec = codec

	r.writer = kafka.NewWriter(writerConfig)

	log.GetLogger().WithFields(map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"batch_size":  cfg.BatchSize,
		"compression": cfg.Compression,
	}).Info("kafka reporter initialized")
	return nil
}

func parseConfig(options map[string]any) (Config, error) {
	if options == nil {
		return Config{}, fmt.Errorf("kafka reporter requires configuration")
	}

	cfg := Config{
		BatchSize:    defaultBatchSize,
		BatchTimeout: defaultBatchTimeout,
		Compression:  defaultCompression,
		MaxAttempts:  defaultMaxAttempts,
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(options); err != nil {
		return Config{}, fmt.Errorf("invalid kafka options: %w", err)
	}

	if len(cfg.Brokers) == 0 {
		return Config{}, fmt.Errorf("brokers is required")
	}
	if cfg.Topic == "" {
		return Config{}, fmt.Errorf("topic is required")
	}
	if _, err := compressionCodec(cfg.Compression); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func compressionCodec(name string) (kafka.CompressionCodec, error) {
	switch name {
	case "none", "":
		return nil, nil
	case "gzip":
		return compress.Gzip.Codec(), nil
	case "snappy":
		return compress.Snappy.Codec(), nil
	case "lz4":
		return compress.Lz4.Codec(), nil
	default:
		return nil, fmt.Errorf("invalid compression type: %s", name)
	}
}

// ReportEvent publishes gap and overlap events, and every other event when
// packets is enabled.
func (r *KafkaReporter) ReportEvent(ctx context.Context, ev reporter.Event) error {
	switch ev.Outcome {
	case gap.OutcomeSentinel:
		return nil
	case gap.OutcomeGap, gap.OutcomeOverlap:
	default:
		if !r.config.Packets {
			return nil
		}
	}

	value, err := json.Marshal(ev.Record())
	if err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("serialize event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.Key.String()),
		Value: value,
		Time:  ev.Timestamp,
	}
	labels := ev.Labels()
	msg.Headers = make([]kafka.Header, 0, len(labels))
	for k, v := range labels {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return r.write(ctx, msg)
}

// ReportSummary publishes the integrity report as one message.
func (r *KafkaReporter) ReportSummary(ctx context.Context, s gap.Summary) error {
	value, err := json.Marshal(reporter.NewSummaryRecord("", s))
	if err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("serialize summary failed: %w", err)
	}
	return r.write(ctx, kafka.Message{
		Key:   []byte(summaryKey),
		Value: value,
		Time:  time.Now(),
	})
}

func (r *KafkaReporter) write(ctx context.Context, msg kafka.Message) error {
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		r.errorCount.Add(1)
		return fmt.Errorf("kafka write failed: %w", err)
	}
	r.reportedCount.Add(1)
	return nil
}

// Close flushes pending messages and closes the writer.
func (r *KafkaReporter) Close(ctx context.Context) error {
	if r.writer != nil {
		if err := r.writer.Close(); err != nil {
			log.GetLogger().WithError(err).Error("error closing kafka writer")
			return err
		}
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"total_reported": r.reportedCount.Load(),
		"total_errors":   r.errorCount.Load(),
	}).Info("kafka reporter closed")
	return nil
}
