package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, payload: payload, qos: qos, retained: retained})
	return p.err
}

func TestMessageHandler_IngestsPayload(t *testing.T) {
	journal := &fakeJournal{}
	writer := &fakeWriter{}
	pub := &fakePublisher{}
	svc := newTestService(t, journal, writer, false)

	handle := svc.MessageHandler(context.Background(), pub, "pressure/ingest/result")
	if err := handle("sensors/esp32/pressure", []byte("2301")); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if len(journal.records) != 1 || journal.records[0].fields[1] != "2301" {
		t.Errorf("journal = %+v", journal.records)
	}
	if len(writer.points) != 1 || writer.points[0].value != 2301 {
		t.Errorf("points = %+v", writer.points)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.topic != "pressure/ingest/result" || msg.qos != 0 || msg.retained {
		t.Errorf("published to %q qos=%d retained=%v", msg.topic, msg.qos, msg.retained)
	}

	var result MessageResult
	if err := json.Unmarshal(msg.payload, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if result.Topic != "sensors/esp32/pressure" || result.Value != 2301 {
		t.Errorf("result = %+v", result)
	}
	want := []string{MsgCSVSaved, MsgDBSent}
	if len(result.Lines) != 2 || result.Lines[0] != want[0] || result.Lines[1] != want[1] {
		t.Errorf("lines = %q, want %q", result.Lines, want)
	}
	if result.Time != "2026-10-19T22:30:15Z" {
		t.Errorf("timestamp = %q", result.Time)
	}
}

func TestMessageHandler_NoPublisher(t *testing.T) {
	journal := &fakeJournal{}
	svc := newTestService(t, journal, nil, false)

	handle := svc.MessageHandler(context.Background(), nil, "pressure/ingest/result")
	if err := handle("sensors/esp32/pressure", []byte("5")); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if len(journal.records) != 1 {
		t.Errorf("journal records = %d, want 1", len(journal.records))
	}
}

func TestMessageHandler_ReportsFailures(t *testing.T) {
	csvErr := errors.New("disk full")
	dbErr := errors.New("influx down")
	pubErr := errors.New("broker gone")

	journal := &fakeJournal{err: csvErr}
	writer := &fakeWriter{err: dbErr}
	pub := &fakePublisher{err: pubErr}
	svc := newTestService(t, journal, writer, false)

	err := svc.MessageHandler(context.Background(), pub, "pressure/ingest/result")("t", []byte("1"))

	for _, want := range []error{csvErr, dbErr, pubErr} {
		if !errors.Is(err, want) {
			t.Errorf("handler error = %v, want it to wrap %v", err, want)
		}
	}
}

func TestMessageHandler_Rejected(t *testing.T) {
	journal := &fakeJournal{}
	writer := &fakeWriter{}
	pub := &fakePublisher{}
	svc := newTestService(t, journal, writer, true)

	err := svc.MessageHandler(context.Background(), pub, "pressure/ingest/result")("t", []byte("garbage"))
	if err == nil {
		t.Fatal("rejected reading should return an error")
	}
	if len(journal.records) != 0 || len(writer.points) != 0 {
		t.Error("rejected reading produced side effects")
	}

	var result MessageResult
	if err := json.Unmarshal(pub.msgs[0].payload, &result); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if !result.Rejected || len(result.Lines) != 1 || result.Lines[0] != MsgInvalidReading {
		t.Errorf("result = %+v", result)
	}
}
