package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.ai.CreateThread(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, thread)
}

func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ai.DeleteThread(r.Context(), r.PathValue("thread_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, s.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Content == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "content is required")
		return
	}

	msg, err := s.ai.CreateMessage(r.Context(), r.PathValue("thread_id"), body.Content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, msg)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	list, err := s.ai.ListMessages(r.Context(), r.PathValue("thread_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, list)
}
