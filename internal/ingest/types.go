package ingest

import (
	"context"
	"time"
)

// Status lines reported to the sender.
const (
	MsgCSVSaved       = "Data received and saved to CSV"
	MsgCSVOpenFailed  = "Failed to open CSV file"
	MsgDBSent         = "Data sent to InfluxDB"
	MsgDBFailedPrefix = "Failed to write to InfluxDB: "
	MsgSendPost       = "Send a POST request with data"
	MsgInvalidReading = "Invalid reading"
)

// CSVTimeLayout is the timestamp layout of the journal's first column.
const CSVTimeLayout = "2006-01-02 15:04:05"

// Reading is a single sensor value as received.
type Reading struct {
	// Raw is the payload exactly as received. It is what the journal stores.
	Raw string

	// Value is the leading number of Raw, or 0 when Raw has none.
	Value float64

	// Numeric reports whether Raw starts with a number.
	Numeric bool

	// ReceivedAt is the unshifted receipt time.
	ReceivedAt time.Time
}

// Journal appends records to the local CSV file.
type Journal interface {
	Append(fields ...string) error
}

// PointWriter sends a reading to the time-series database.
type PointWriter interface {
	WriteReading(ctx context.Context, value float64, ts time.Time) error
}
