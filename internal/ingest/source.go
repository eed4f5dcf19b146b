package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// defaultMessageTimeout bounds the database write for one MQTT reading.
const defaultMessageTimeout = 15 * time.Second

// Publisher sends a message to a topic. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MessageResult is the JSON body published for each MQTT reading.
type MessageResult struct {
	Topic    string   `json:"topic"`
	Raw      string   `json:"raw"`
	Value    float64  `json:"value"`
	Rejected bool     `json:"rejected,omitempty"`
	Lines    []string `json:"lines"`
	Time     string   `json:"timestamp"`
}

// MessageHandler returns a handler that feeds MQTT payloads through Ingest
// exactly like POST bodies. When pub is non-nil the outcome is published to
// resultTopic (QoS 0, not retained) since MQTT senders get no response.
//
// The handler returns an error when the reading was rejected or either
// storage step failed, so the transport can log it.
func (s *Service) MessageHandler(ctx context.Context, pub Publisher, resultTopic string) func(topic string, payload []byte) error {
	return func(topic string, payload []byte) error {
		msgCtx, cancel := context.WithTimeout(ctx, defaultMessageTimeout)
		defer cancel()

		res := s.Ingest(msgCtx, payload)

		var errs []error
		if res.Rejected {
			errs = append(errs, fmt.Errorf("rejected reading %q", res.Reading.Raw))
		}
		if res.CSVErr != nil {
			errs = append(errs, res.CSVErr)
		}
		if res.DBErr != nil {
			errs = append(errs, res.DBErr)
		}

		if pub != nil && resultTopic != "" {
			body, err := json.Marshal(MessageResult{
				Topic:    topic,
				Raw:      res.Reading.Raw,
				Value:    res.Reading.Value,
				Rejected: res.Rejected,
				Lines:    res.Lines(),
				Time:     res.Reading.ReceivedAt.UTC().Format(time.RFC3339),
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("encoding result: %w", err))
			} else if err := pub.Publish(resultTopic, body, 0, false); err != nil {
				errs = append(errs, fmt.Errorf("publishing result: %w", err))
			}
		}

		return errors.Join(errs...)
	}
}
