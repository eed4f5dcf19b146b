package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/pressure-logger/internal/ingest"
)

// Messages for bodies that never reach the ingest flow.
const (
	msgBodyTooLarge = "Request body too large"
	msgBodyUnread   = "Failed to read request body"
)

// handleIngest accepts one reading per POST and answers with plain-text
// status lines. Outcomes of the journal and database steps are reported in
// the body; the status code stays 200 unless the body could not be read or
// the reading was rejected.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusOK, ingest.MsgSendPost)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeText(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		s.logger.Warn("reading request body failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeText(w, http.StatusBadRequest, msgBodyUnread)
		return
	}

	// Once the journal has the line the database write must follow, even if
	// the sensor hangs up. The writer's own timeout still bounds it.
	res := s.ingester.Ingest(context.WithoutCancel(r.Context()), body)

	s.logger.Debug("reading ingested",
		"raw", res.Reading.Raw,
		"value", res.Reading.Value,
		"csv_ok", res.CSVErr == nil,
		"db_ok", res.DBAttempted && res.DBErr == nil,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)

	status := http.StatusOK
	if res.Rejected {
		status = http.StatusBadRequest
	}
	writeText(w, status, res.Lines()...)
}
