package influxdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/config"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingTimeout  = 5 * time.Second

	// Point layout used when the config leaves it empty.
	defaultMeasurement = "pressure_data"
	defaultSourceTag   = "ESP32"

	sourceTagKey = "source"
	valueField   = "value"
)

// Client wraps the InfluxDB v2 client for synchronous point writes.
//
// Thread Safety: All methods are safe for concurrent use.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking

	measurement  string
	source       string
	writeTimeout time.Duration

	closed bool
	mu     sync.RWMutex
}

// New creates a client for the configured server.
//
// No connection is made here; the server is first contacted on the first
// write or HealthCheck, so an unreachable server at startup is reported per
// write rather than preventing the service from starting.
func New(cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	writeTimeout := time.Duration(cfg.WriteTimeout) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	// #nosec G115 -- writeTimeout is positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetPrecision(time.Second).
			SetHTTPRequestTimeout(uint(writeTimeout/time.Second)),
	)

	measurement := cfg.Measurement
	if measurement == "" {
		measurement = defaultMeasurement
	}
	source := cfg.SourceTag
	if source == "" {
		source = defaultSourceTag
	}

	return &Client{
		client:       client,
		writeAPI:     client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement:  measurement,
		source:       source,
		writeTimeout: writeTimeout,
	}, nil
}

// NewReadingPoint builds the point for one reading. The timestamp is
// truncated to whole seconds to match the write precision.
func NewReadingPoint(measurement, source string, value float64, ts time.Time) *write.Point {
	return write.NewPoint(
		measurement,
		map[string]string{sourceTagKey: source},
		map[string]interface{}{valueField: value},
		ts.Truncate(time.Second),
	)
}

// WriteReading writes a single reading as a point stamped with ts.
func (c *Client) WriteReading(ctx context.Context, value float64, ts time.Time) error {
	return c.WritePoint(ctx, NewReadingPoint(c.measurement, c.source, value, ts))
}

// WritePoint writes p synchronously. The call is bounded by the configured
// write timeout in addition to ctx.
func (c *Client) WritePoint(ctx context.Context, p *write.Point) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrNotConnected
	}

	writeCtx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()

	if err := c.writeAPI.WritePoint(writeCtx, p); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := c.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("influxdb health check failed: server not healthy")
	}
	return nil
}

// IsConnected reports whether Close has not yet been called.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Close releases the underlying HTTP resources. It waits for in-flight
// writes and is safe to call more than once.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.Close()
	return nil
}
