package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	aiclient "github.com/obahamonde/cms-nlp-plugins/llm/openai"
)

func floatQuery(r *http.Request, name string, fallback float32) float32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return fallback
	}
	return float32(v)
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// handleChat streams chat completion deltas as server-sent events,
// closing with a done frame.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "text is required")
		return
	}

	stream, err := s.ai.ChatStream(r.Context(), aiclient.ChatParams{
		Text:        text,
		Temperature: floatQuery(r, "temperature", 0.7),
		MaxTokens:   intQuery(r, "max_tokens", 1024),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	defer stream.Close()

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	for stream.Next() {
		sse.Send(stream.Text())
	}
	if err := stream.Err(); err != nil {
		// Headers are gone; all we can do is log and drop the stream.
		s.logger.Error().Err(err).Msg("Chat stream aborted")
		return
	}
	sse.Done()
}

// handleAudio answers the text with the chat model and streams the
// reply as synthesized audio.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	text := r.PathValue("text")

	reply, err := s.ai.Chat(r.Context(), aiclient.ChatParams{
		Text:        text,
		Context:     r.URL.Query().Get("context"),
		Temperature: floatQuery(r, "temperature", 0.9),
		MaxTokens:   intQuery(r, "max_tokens", 1024),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	format := r.URL.Query().Get("response_format")
	if format == "" {
		format = "opus"
	}
	audio, err := s.ai.Speech(r.Context(), aiclient.SpeechParams{
		Text:   reply,
		Model:  r.URL.Query().Get("voice_model"),
		Voice:  r.URL.Query().Get("voice"),
		Format: format,
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/"+format)
	if _, err := io.Copy(w, audio); err != nil {
		s.logger.Error().Err(err).Msg("Audio stream aborted")
	}
}

const (
	blogPrompt = "You are assisting the user to write a blog, please write the three following paragraphs according to user input, dont repeat any of the text that the user has already mentioned, this is the input of the user: \n\n%s\n\n"
	codePrompt = "You are assisting the user to write a code, please write the three following lines of code according to user input, dont repeat any of the text that the user has already mentioned, this is the input of the user: \n\n%s\n\n"
)

func (s *Server) handleAutocompleteBlog(w http.ResponseWriter, r *http.Request) {
	s.autocomplete(w, r, blogPrompt)
}

func (s *Server) handleAutocompleteCode(w http.ResponseWriter, r *http.Request) {
	s.autocomplete(w, r, codePrompt)
}

// autocomplete wraps the input in the given prompt template and returns
// the instruct model's continuation as plain text.
func (s *Server) autocomplete(w http.ResponseWriter, r *http.Request, prompt string) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "text is required")
		return
	}

	result, err := s.ai.Instruct(r.Context(), aiclient.InstructParams{
		Text:        fmt.Sprintf(prompt, text),
		Temperature: floatQuery(r, "temperature", 0.9),
		MaxTokens:   intQuery(r, "max_tokens", 128),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, result); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) handleVision(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	image := r.URL.Query().Get("image")
	if text == "" || image == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "text and image are required")
		return
	}

	result, err := s.ai.Vision(r.Context(), aiclient.VisionParams{
		Text:        text,
		ImageURL:    image,
		Temperature: floatQuery(r, "temperature", 0.5),
		MaxTokens:   intQuery(r, "max_tokens", 512),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, map[string]string{"data": result})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "text is required")
		return
	}

	images, err := s.ai.Image(r.Context(), aiclient.ImageParams{
		Prompt:         text,
		Model:          r.URL.Query().Get("model"),
		N:              intQuery(r, "n", 1),
		ResponseFormat: r.URL.Query().Get("response_format"),
		Quality:        r.URL.Query().Get("quality"),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, map[string]any{"data": images})
}

// handleFunction routes the text through the function registry and
// returns whichever call the model picked.
func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeDetail(w, s.logger, http.StatusBadRequest, "text is required")
		return
	}
	if s.functions == nil {
		writeDetail(w, s.logger, http.StatusNotFound, "no functions registered")
		return
	}

	call, err := s.functions.Dispatch(r.Context(), s.ai, text)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, s.logger, http.StatusOK, call)
}
