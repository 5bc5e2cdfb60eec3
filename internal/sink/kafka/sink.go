// Package kafka provides a Kafka-producer sink.Sink using franz-go.
package kafka

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	"logroute/internal/logging"
	"logroute/internal/router"
)

// SASLConfig holds SASL authentication parameters.
type SASLConfig struct {
	Mechanism string // "plain", "scram-sha-256", "scram-sha-512"
	User      string
	Password  string
}

// Config holds Kafka sink configuration.
type Config struct {
	Brokers []string
	Topic   string
	TLS     bool
	SASL    *SASLConfig
	Logger  *slog.Logger
}

// Sink produces matched events onto a Kafka topic.
type Sink struct {
	client *kgo.Client
	topic  string
	cfg    Config
	logger *slog.Logger
}

// New connects a Kafka producer client per cfg. Brokers must be
// non-empty; kgo.NewClient itself does not dial until the first
// produce, so a bad broker address only surfaces on Forward.
func New(cfg Config) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink: brokers required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink: topic required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	}

	if cfg.TLS {
		opts = append(opts, kgo.DialTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
		}))
	}

	if cfg.SASL != nil {
		mech, err := buildSASLMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.SASL(mech))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	return &Sink{
		client: client,
		topic:  cfg.Topic,
		cfg:    cfg,
		logger: logging.Default(cfg.Logger).With("component", "sink", "type", "kafka", "topic", cfg.Topic),
	}, nil
}

// Forward marshals e as JSON and produces it onto the configured
// topic, blocking until the broker acknowledges it or ctx is
// cancelled.
func (s *Sink) Forward(ctx context.Context, e router.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event for %q: %w", s.topic, err)
	}
	rec := &kgo.Record{Topic: s.topic, Value: raw}
	result := s.client.ProduceSync(ctx, rec)
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce to %q: %w", s.topic, err)
	}
	return nil
}

// Close flushes any buffered records and closes the underlying client.
func (s *Sink) Close() error {
	s.client.Close()
	return nil
}

func buildSASLMechanism(cfg *SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "plain":
		return plain.Auth{User: cfg.User, Pass: cfg.Password}.AsMechanism(), nil
	case "scram-sha-256":
		return scram.Auth{User: cfg.User, Pass: cfg.Password}.AsSha256Mechanism(), nil
	case "scram-sha-512":
		return scram.Auth{User: cfg.User, Pass: cfg.Password}.AsSha512Mechanism(), nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %q", cfg.Mechanism)
	}
}
