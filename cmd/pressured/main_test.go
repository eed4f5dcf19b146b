package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// freePort returns a TCP port that was free a moment ago.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("PRESSURE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_ValidationFailure(t *testing.T) {
	t.Setenv("PRESSURE_CONFIG", writeConfig(t, `
csv:
  path: ""
influxdb:
  enabled: false
`))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty csv path")
	}
	if !strings.Contains(err.Error(), "csv.path is required") {
		t.Errorf("error = %v, want csv.path validation message", err)
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("PRESSURE_CONFIG", "")

	if path := getConfigPath(); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("PRESSURE_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

// TestRun_EndToEnd starts the service against a fake InfluxDB, posts a
// reading, and checks both sinks before shutting down.
func TestRun_EndToEnd(t *testing.T) {
	var (
		mu     sync.Mutex
		writes []string
	)
	influx := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/write" {
			body, _ := io.ReadAll(r.Body) //nolint:errcheck // Test server
			mu.Lock()
			writes = append(writes, string(body))
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer influx.Close()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "ESP32_data.csv")
	port := freePort(t)

	t.Setenv("PRESSURE_CONFIG", writeConfig(t, fmt.Sprintf(`
api:
  host: "127.0.0.1"
  port: %d
csv:
  path: %q
influxdb:
  enabled: true
  url: %q
  token: "test-token"
  org: "home"
  bucket: "sensors"
mqtt:
  enabled: false
logging:
  level: error
  format: text
  output: stderr
`, port, csvPath, influx.URL)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	var (
		resp *http.Response
		err  error
	)
	for i := 0; i < 50; i++ {
		resp, err = http.Post(url, "text/plain", strings.NewReader("23.5"))
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck // Test client
	resp.Body.Close()

	want := "Data received and saved to CSV\nData sent to InfluxDB\n"
	if string(body) != want {
		t.Errorf("response = %q, want %q", body, want)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if !strings.HasSuffix(string(data), `,"23.5"`+"\n") {
		t.Errorf("csv = %q", data)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(writes) != 1 || !strings.HasPrefix(writes[0], "pressure_data,source=ESP32 value=23.5 ") {
		t.Errorf("influx writes = %q", writes)
	}
}

// TestRun_InfluxDownAtStartup verifies the service still starts and reports
// the failed write per reading.
func TestRun_InfluxDownAtStartup(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	deadPort := freePort(t)

	t.Setenv("PRESSURE_CONFIG", writeConfig(t, fmt.Sprintf(`
api:
  host: "127.0.0.1"
  port: %d
csv:
  path: %q
influxdb:
  enabled: true
  url: "http://127.0.0.1:%d"
  org: "home"
  bucket: "sensors"
  write_timeout: 2
logging:
  level: error
  output: stderr
`, port, filepath.Join(dir, "data.csv"), deadPort)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/", port)
	var (
		resp *http.Response
		err  error
	)
	for i := 0; i < 50; i++ {
		resp, err = http.Post(url, "text/plain", strings.NewReader("2300"))
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck // Test client
	resp.Body.Close()

	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "Data received and saved to CSV" {
		t.Fatalf("response = %q", body)
	}
	if !strings.HasPrefix(lines[1], "Failed to write to InfluxDB: ") {
		t.Errorf("line 2 = %q, want InfluxDB failure", lines[1])
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("run() error = %v", err)
	}
}
