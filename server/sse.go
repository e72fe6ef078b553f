package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sseWriter frames server-sent events over a flushable response.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// newSSEWriter sets the event-stream headers and returns the writer.
// It fails when the underlying connection cannot stream.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported by connection")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &sseWriter{w: w, flusher: flusher}, nil
}

// Send writes one data frame and flushes it.
func (s *sseWriter) Send(data string) {
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

// SendJSON marshals v into one data frame.
func (s *sseWriter) SendJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Send(string(payload))
	return nil
}

// SendEvent writes a named event frame.
func (s *sseWriter) SendEvent(event, data string) {
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

// Done writes the closing frame.
func (s *sseWriter) Done() {
	s.SendEvent("done", "")
}
