// Pressure Logger - ESP32 pressure ingestion service
//
// Sensors POST one reading per request. Each reading is appended to a local
// CSV journal and written as a point to InfluxDB; the sender gets a
// plain-text line for each step. Sensors can also publish readings over
// MQTT when that source is enabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/pressure-logger/internal/api"
	"github.com/nerrad567/pressure-logger/internal/csvlog"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/config"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/influxdb"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/logging"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/mqtt"
	"github.com/nerrad567/pressure-logger/internal/ingest"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together and blocks until ctx is cancelled.
// Every client it opens is closed by a defer, on all return paths.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting pressure logger",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	journal := csvlog.New(cfg.CSV.Path, cfg.CSV.FileMode)
	log.Info("CSV journal ready",
		"path", journal.Path(),
		"timestamp_offset", cfg.CSV.TimestampOffset,
	)

	opts := ingest.Options{
		Journal:         journal,
		TimestampOffset: cfg.CSV.TimestampOffset,
		RejectInvalid:   cfg.Ingest.RejectInvalid,
		Logger:          log,
	}
	deps := api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Version: version,
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.New(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("creating InfluxDB client: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB client")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()

		// An unreachable server does not stop startup: readings still reach
		// the journal and each response reports the failed write.
		if pingErr := influxClient.HealthCheck(ctx); pingErr != nil {
			log.Warn("InfluxDB not reachable at startup", "url", cfg.InfluxDB.URL, "error", pingErr)
		} else {
			log.Info("InfluxDB reachable",
				"url", cfg.InfluxDB.URL,
				"org", cfg.InfluxDB.Org,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}

		opts.Writer = influxClient
		deps.InfluxDB = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	svc, err := ingest.New(opts)
	if err != nil {
		return fmt.Errorf("creating ingest service: %w", err)
	}
	deps.Ingester = svc

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := startMQTT(ctx, cfg.MQTT, svc, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if unsubErr := mqttClient.Unsubscribe(cfg.MQTT.Topic); unsubErr != nil {
				log.Warn("error unsubscribing", "topic", cfg.MQTT.Topic, "error", unsubErr)
			}
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.MQTT = mqttClient
	} else {
		log.Info("MQTT source disabled")
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order: API server, MQTT, InfluxDB.
	return nil
}

// startMQTT connects to the broker and feeds subscribed readings into svc.
func startMQTT(ctx context.Context, cfg config.MQTTConfig, svc *ingest.Service, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.With("component", "mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT connected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// #nosec G115 -- QoS validated to 0..2 by config.Validate
	qos := byte(cfg.QoS)
	handler := svc.MessageHandler(ctx, client, mqtt.Topics{}.IngestResult())
	if err := client.Subscribe(cfg.Topic, qos, handler); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("subscribing to %s: %w", cfg.Topic, err)
	}

	log.Info("MQTT source subscribed",
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"client_id", cfg.Broker.ClientID,
		"topic", cfg.Topic,
	)
	return client, nil
}

// getConfigPath returns PRESSURE_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("PRESSURE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
