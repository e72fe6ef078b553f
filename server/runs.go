package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	assistantID := r.URL.Query().Get("assistant_id")
	if assistantID == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "assistant_id is required")
		return
	}

	run, err := s.ai.CreateRun(r.Context(), r.PathValue("thread_id"), assistantID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, run)
}

func (s *Server) handleRetrieveRun(w http.ResponseWriter, r *http.Request) {
	threadID := r.URL.Query().Get("thread_id")
	runID := r.URL.Query().Get("run_id")
	if threadID == "" || runID == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "thread_id and run_id are required")
		return
	}

	run, err := s.ai.RetrieveRun(r.Context(), threadID, runID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, run)
}

// handleListRuns streams the thread's runs as one SSE frame per run.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	list, err := s.ai.ListRuns(r.Context(), r.PathValue("thread_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, run := range list.Runs {
		if err := sse.SendJSON(run); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode run event")
			return
		}
	}
}

// handleStreamRun polls the run to a terminal status, streaming each
// observed transition as an SSE event. The optional JSON body supplies
// tool outputs keyed by call id for runs that pause on requires_action.
func (s *Server) handleStreamRun(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToolOutputs map[string]string `json:"tool_outputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeDetail(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	stream := s.poller.Stream(r.Context(), r.PathValue("thread_id"), r.PathValue("run_id"), body.ToolOutputs)
	defer stream.Close()

	// The stream's first event decides between an error response and an
	// event stream, so fetch it before committing to SSE headers.
	if !stream.Next() {
		if err := stream.Err(); err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeDetail(w, s.logger, http.StatusInternalServerError, "run produced no events")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	for {
		ev := stream.Event()
		if err := sse.SendJSON(ev); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode run event")
			return
		}
		if !stream.Next() {
			break
		}
	}

	if err := stream.Err(); err != nil {
		s.logger.Error().Err(err).Msg("Run stream aborted")
		return
	}
	sse.Done()
}
