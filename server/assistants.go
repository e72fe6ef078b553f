package server

import (
	"net/http"
)

func (s *Server) handleCreateAssistant(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	instructions := r.URL.Query().Get("instructions")
	if name == "" || instructions == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "name and instructions are required")
		return
	}

	assistant, err := s.ai.CreateAssistant(r.Context(), name, instructions, r.URL.Query().Get("model"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, assistant)
}

// handleListAssistants streams the assistant listing as one SSE frame
// per assistant.
func (s *Server) handleListAssistants(w http.ResponseWriter, r *http.Request) {
	list, err := s.ai.ListAssistants(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, assistant := range list.Assistants {
		if err := sse.SendJSON(assistant); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode assistant event")
			return
		}
	}
}

func (s *Server) handleRetrieveAssistant(w http.ResponseWriter, r *http.Request) {
	assistant, err := s.ai.RetrieveAssistant(r.Context(), r.PathValue("assistant_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, assistant)
}

func (s *Server) handleDeleteAssistant(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ai.DeleteAssistant(r.Context(), r.PathValue("assistant_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "file_id is required")
		return
	}

	attached, err := s.ai.AttachFile(r.Context(), r.PathValue("assistant_id"), fileID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, attached)
}

func (s *Server) handleDetachFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("file_id")
	if fileID == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "file_id is required")
		return
	}

	if err := s.ai.DetachFile(r.Context(), r.PathValue("assistant_id"), fileID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAssistantFiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.ai.ListAssistantFiles(r.Context(), r.PathValue("assistant_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, file := range list.AssistantFiles {
		if err := sse.SendJSON(file); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode assistant file event")
			return
		}
	}
}
