package server

import (
	"io"
	"net/http"
)

// maxUploadBytes caps multipart uploads at 512 MiB, the provider's own
// per-file limit.
const maxUploadBytes = 512 << 20

func filePurpose(r *http.Request) string {
	purpose := r.URL.Query().Get("purpose")
	if purpose == "" {
		purpose = "assistants"
	}
	return purpose
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, s.logger, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, s.logger, http.StatusBadRequest, "failed to read upload")
		return
	}

	uploaded, err := s.ai.UploadFile(r.Context(), header.Filename, data, filePurpose(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, uploaded)
}

// handleListFiles streams the file listing as one SSE frame per file.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.ai.ListFiles(r.Context(), filePurpose(r))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, file := range files {
		if err := sse.SendJSON(file); err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode file event")
			return
		}
	}
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.ai.GetFile(r.Context(), r.PathValue("file_id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, file)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.ai.DeleteFile(r.Context(), r.PathValue("file_id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
