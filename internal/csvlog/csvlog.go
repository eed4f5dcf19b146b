// Package csvlog keeps the local append-only journal of raw readings.
//
// Every record is written as one line of fully quoted CSV. The file is
// opened, appended and closed per record, under a mutex, so concurrent
// requests never interleave partial lines.
package csvlog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Sentinel errors for journal operations.
var (
	// ErrOpen indicates the journal file could not be opened for append.
	ErrOpen = errors.New("csvlog: open failed")

	// ErrWrite indicates the record could not be written or flushed.
	ErrWrite = errors.New("csvlog: write failed")
)

// defaultFileMode is used when no mode is configured.
const defaultFileMode os.FileMode = 0o644

// Appender appends CSV records to a single file.
//
// Thread Safety: Append is safe for concurrent use.
type Appender struct {
	path string
	mode os.FileMode
	mu   sync.Mutex
}

// New returns an Appender for path. The file is created on first append.
func New(path string, mode os.FileMode) *Appender {
	if mode == 0 {
		mode = defaultFileMode
	}
	return &Appender{path: path, mode: mode}
}

// Path returns the journal file path.
func (a *Appender) Path() string {
	return a.path
}

// Append writes one record. Errors wrap ErrOpen or ErrWrite.
func (a *Appender) Append(fields ...string) error {
	line := FormatRecord(fields)

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, a.mode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}

	if _, err := f.WriteString(line); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// FormatRecord renders fields as a single CSV line. Every field is
// enclosed in double quotes, embedded quotes are doubled, and the line
// ends with "\n".
func FormatRecord(fields []string) string {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}
