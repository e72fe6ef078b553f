package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeDetail writes the uniform error body.
func writeDetail(w http.ResponseWriter, logger zerolog.Logger, status int, detail string) {
	writeJSON(w, logger, status, map[string]string{"detail": detail})
}

// writeError classifies err and writes it as the uniform error shape.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	classified := llm.Classify(err)
	writeDetail(w, logger, classified.HTTPStatus(), classified.Message)
}
