package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/logging"
)

// Options configures a Service.
type Options struct {
	// Journal receives one record per accepted reading. Required.
	Journal Journal

	// Writer receives one point per accepted reading. Nil disables the
	// database step and its status line.
	Writer PointWriter

	// TimestampOffset is added to the receipt time for the journal column.
	TimestampOffset time.Duration

	// RejectInvalid refuses payloads with no leading number instead of storing 0.
	RejectInvalid bool

	Logger *logging.Logger

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Service runs the ingest flow for a single payload at a time. It holds no
// per-request state, so one Service serves all callers concurrently.
type Service struct {
	journal  Journal
	writer   PointWriter
	offset   time.Duration
	reject   bool
	logger   *logging.Logger
	now      func() time.Time
	counters counters
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	if opts.Journal == nil {
		return nil, errors.New("ingest: journal is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		journal: opts.Journal,
		writer:  opts.Writer,
		offset:  opts.TimestampOffset,
		reject:  opts.RejectInvalid,
		logger:  logger.With("component", "ingest"),
		now:     now,
	}, nil
}

// Result is the outcome of one Ingest call.
type Result struct {
	Reading Reading

	// CSVTimestamp is the shifted, formatted time written to the journal.
	CSVTimestamp string

	// Rejected is set when the payload was refused and nothing was stored.
	Rejected bool

	CSVErr error

	// DBAttempted is false when no PointWriter is configured.
	DBAttempted bool
	DBErr       error
}

// Lines renders the result as the status lines reported to the sender.
func (r Result) Lines() []string {
	if r.Rejected {
		return []string{MsgInvalidReading}
	}

	// Open and write failures share one line; the log keeps the cause.
	lines := make([]string, 0, 2)
	if r.CSVErr == nil {
		lines = append(lines, MsgCSVSaved)
	} else {
		lines = append(lines, MsgCSVOpenFailed)
	}

	if r.DBAttempted {
		if r.DBErr == nil {
			lines = append(lines, MsgDBSent)
		} else {
			lines = append(lines, MsgDBFailedPrefix+r.DBErr.Error())
		}
	}
	return lines
}

// Ingest records payload in the journal and the database.
func (s *Service) Ingest(ctx context.Context, payload []byte) Result {
	receivedAt := s.now()
	raw := string(payload)
	value, numeric := ParseValue(raw)

	res := Result{
		Reading: Reading{
			Raw:        raw,
			Value:      value,
			Numeric:    numeric,
			ReceivedAt: receivedAt,
		},
	}
	s.counters.received.Add(1)

	if !numeric {
		if s.reject {
			s.counters.rejected.Add(1)
			s.logger.Warn("rejected non-numeric reading", "raw", raw)
			res.Rejected = true
			return res
		}
		s.counters.coerced.Add(1)
		s.logger.Debug("non-numeric reading stored as 0", "raw", raw)
	}

	res.CSVTimestamp = receivedAt.Add(s.offset).Format(CSVTimeLayout)
	if err := s.journal.Append(res.CSVTimestamp, raw); err != nil {
		s.counters.csvFailed.Add(1)
		s.logger.Error("journal append failed", "error", err)
		res.CSVErr = err
	} else {
		s.counters.csvSaved.Add(1)
	}

	if s.writer != nil {
		res.DBAttempted = true
		if err := s.writer.WriteReading(ctx, value, receivedAt); err != nil {
			s.counters.dbFailed.Add(1)
			s.logger.Error("influxdb write failed", "error", err, "value", value)
			res.DBErr = err
		} else {
			s.counters.dbWritten.Add(1)
		}
	}

	return res
}

// Stats is a snapshot of the service counters.
type Stats struct {
	Received  uint64 `json:"received"`
	Rejected  uint64 `json:"rejected"`
	Coerced   uint64 `json:"coerced"`
	CSVSaved  uint64 `json:"csv_saved"`
	CSVFailed uint64 `json:"csv_failed"`
	DBWritten uint64 `json:"db_written"`
	DBFailed  uint64 `json:"db_failed"`
}

type counters struct {
	received  atomic.Uint64
	rejected  atomic.Uint64
	coerced   atomic.Uint64
	csvSaved  atomic.Uint64
	csvFailed atomic.Uint64
	dbWritten atomic.Uint64
	dbFailed  atomic.Uint64
}

// Stats returns the counters accumulated since start.
func (s *Service) Stats() Stats {
	return Stats{
		Received:  s.counters.received.Load(),
		Rejected:  s.counters.rejected.Load(),
		Coerced:   s.counters.coerced.Load(),
		CSVSaved:  s.counters.csvSaved.Load(),
		CSVFailed: s.counters.csvFailed.Load(),
		DBWritten: s.counters.dbWritten.Load(),
		DBFailed:  s.counters.dbFailed.Load(),
	}
}
