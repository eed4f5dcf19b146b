package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{
			name:   "timestamp and reading",
			fields: []string{"2026-10-19 12:00:00", "23.5"},
			want:   "\"2026-10-19 12:00:00\",\"23.5\"\n",
		},
		{
			name:   "embedded quotes doubled",
			fields: []string{"t", `say "hi"`},
			want:   "\"t\",\"say \"\"hi\"\"\"\n",
		},
		{
			name:   "empty body",
			fields: []string{"t", ""},
			want:   "\"t\",\"\"\n",
		},
		{
			name:   "comma kept inside quotes",
			fields: []string{"t", "1,5"},
			want:   "\"t\",\"1,5\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRecord(tt.fields); got != tt.want {
				t.Errorf("FormatRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppend_CreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ESP32_data.csv")
	a := New(path, 0)

	if err := a.Append("2026-10-19 12:00:00", "2300"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := a.Append("2026-10-19 12:00:05", "2310"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading journal: %v", err)
	}

	want := "\"2026-10-19 12:00:00\",\"2300\"\n\"2026-10-19 12:00:05\",\"2310\"\n"
	if string(data) != want {
		t.Errorf("journal = %q, want %q", data, want)
	}
}

func TestAppend_OpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "data.csv")
	a := New(path, 0)

	err := a.Append("t", "1")
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("Append() error = %v, want ErrOpen", err)
	}
}

func TestAppend_RoundTripsThroughCSVReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	a := New(path, 0o600)

	raw := "line one\nline \"two\""
	if err := a.Append("2026-10-19 12:00:00", raw); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0][1] != raw {
		t.Errorf("raw column = %q, want %q", records[0][1], raw)
	}
}

func TestAppend_ConcurrentLinesDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	a := New(path, 0)

	const writers = 20
	const perWriter = 25
	payload := strings.Repeat("x", 512)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if err := a.Append(fmt.Sprintf("w%d-%d", w, i), payload); err != nil {
					t.Errorf("Append() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("journal is not valid CSV: %v", err)
	}
	if len(records) != writers*perWriter {
		t.Fatalf("got %d records, want %d", len(records), writers*perWriter)
	}
	for _, r := range records {
		if len(r) != 2 || r[1] != payload {
			t.Fatalf("corrupted record: %q", r)
		}
	}
}

func TestPath(t *testing.T) {
	a := New("/tmp/x.csv", 0)
	if a.Path() != "/tmp/x.csv" {
		t.Errorf("Path() = %q", a.Path())
	}
}
