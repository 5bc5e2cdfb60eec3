package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"logroute/internal/ingest"
	"logroute/internal/route"
	"logroute/internal/schema"
	"logroute/internal/sink"
	sinkhttp "logroute/internal/sink/http"
	sinkkafka "logroute/internal/sink/kafka"
)

// sinkConfig describes one entry of the --sinks JSON file: a flat list
// of destinations, keyed by the ID rules reference in their Sinks
// field.
type sinkConfig struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // "http" or "kafka"
	URL     string   `json:"url,omitempty"`
	Brokers []string `json:"brokers,omitempty"`
	Topic   string   `json:"topic,omitempty"`
}

type sinksFile struct {
	Sinks []sinkConfig `json:"sinks"`
}

func newServeCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ingest receiver and route matched events to sinks",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			defaultSource, _ := cmd.Flags().GetString("default-source")
			sinksPath, _ := cmd.Flags().GetString("sinks")
			samplesPath, _ := cmd.Flags().GetString("schema-samples")

			store, closeStore, err := openStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			registry := sink.NewRegistry()
			if sinksPath != "" {
				if err := loadSinks(sinksPath, registry, logger); err != nil {
					return err
				}
			}
			defer registry.CloseAll()

			sch := schema.NewBuilder().Build()
			if samplesPath != "" {
				sch, err = loadSchemaSamples(samplesPath)
				if err != nil {
					return err
				}
			}

			router := route.New(route.Config{Store: store, Sinks: registry, Schema: sch, Logger: logger})

			receiver := ingest.New(ingest.Config{Addr: addr, DefaultSourceID: defaultSource, Logger: logger})
			messages := make(chan ingest.Message, 256)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			go ingest.Consume(ctx, messages, router, logger)

			return receiver.Run(ctx, messages)
		},
	}
	cmd.Flags().String("addr", ":8090", "ingest listen address (host:port)")
	cmd.Flags().String("default-source", "default", "source ID used when a request carries no X-Source-ID header")
	cmd.Flags().String("sinks", "", "path to a JSON sinks configuration file")
	cmd.Flags().String("schema-samples", "", "path to a JSON file with sample events used to infer the event schema")
	return cmd
}

func loadSinks(path string, registry *sink.Registry, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sinks config: %w", err)
	}
	var cfg sinksFile
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse sinks config: %w", err)
	}
	for _, s := range cfg.Sinks {
		switch s.Type {
		case "http":
			registry.Register(s.ID, sinkhttp.New(sinkhttp.Config{URL: s.URL, Logger: logger}))
		case "kafka":
			ks, err := sinkkafka.New(sinkkafka.Config{Brokers: s.Brokers, Topic: s.Topic, Logger: logger})
			if err != nil {
				return fmt.Errorf("create kafka sink %q: %w", s.ID, err)
			}
			registry.Register(s.ID, ks)
		default:
			return fmt.Errorf("unknown sink type %q for sink %q", s.Type, s.ID)
		}
	}
	return nil
}

func loadSchemaSamples(path string) (schema.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("read schema samples: %w", err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		// Fall back to a single sample object.
		docs = []json.RawMessage{raw}
	}
	samples := make([][]byte, len(docs))
	for i, d := range docs {
		samples[i] = d
	}
	return schema.FromSampleEvents(samples)
}
