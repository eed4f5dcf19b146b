package sleep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the layout of the journal's timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// ErrOpen is returned when the journal cannot be opened.
var ErrOpen = errors.New("sleep: failed to open journal")

// Sample is one usable journal row.
type Sample struct {
	Time     time.Time
	Pressure int64
}

// Load reads journal rows from r. Timestamps are interpreted in loc.
//
// Rows are skipped, not rejected, when the timestamp does not parse or the
// pressure column is not a plain non-negative integer: the journal stores
// request bodies verbatim, so junk rows are expected. Only a CSV syntax
// error aborts the read.
func Load(r io.Reader, loc *time.Location) ([]Sample, error) {
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var samples []Sample
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		ts, err := time.ParseInLocation(TimeLayout, record[0], loc)
		if err != nil {
			continue
		}
		pressure, ok := parsePressure(record[1])
		if !ok {
			continue
		}
		samples = append(samples, Sample{Time: ts, Pressure: pressure})
	}
	return samples, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string, loc *time.Location) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	return Load(f, loc)
}

// parsePressure accepts ASCII digits only, optionally followed by a single
// trailing newline as sensors tend to send.
func parsePressure(s string) (int64, bool) {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
