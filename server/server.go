// Package server implements the HTTP API for the nlpd daemon.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/functions"
	"github.com/obahamonde/cms-nlp-plugins/llm"
	aiclient "github.com/obahamonde/cms-nlp-plugins/llm/openai"
	"github.com/obahamonde/cms-nlp-plugins/runs"
)

// AI is the provider surface the HTTP handlers depend on. The
// llm/openai Client satisfies it; tests substitute a stub.
type AI interface {
	Chat(ctx context.Context, p aiclient.ChatParams) (string, error)
	ChatStream(ctx context.Context, p aiclient.ChatParams) (llm.TextStream, error)
	Instruct(ctx context.Context, p aiclient.InstructParams) (string, error)
	Vision(ctx context.Context, p aiclient.VisionParams) (string, error)
	Image(ctx context.Context, p aiclient.ImageParams) ([]string, error)
	Speech(ctx context.Context, p aiclient.SpeechParams) (io.ReadCloser, error)
	ChatWithFunctions(ctx context.Context, text string, temperature float32, maxTokens int, functions []openai.FunctionDefinition) (openai.ChatCompletionMessage, error)

	CreateThread(ctx context.Context) (openai.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error)
	CreateMessage(ctx context.Context, threadID, content string) (openai.Message, error)
	ListMessages(ctx context.Context, threadID string) (openai.MessagesList, error)

	UploadFile(ctx context.Context, name string, data []byte, purpose string) (openai.File, error)
	ListFiles(ctx context.Context, purpose string) ([]openai.File, error)
	GetFile(ctx context.Context, fileID string) (openai.File, error)
	DeleteFile(ctx context.Context, fileID string) error

	CreateAssistant(ctx context.Context, name, instructions, model string) (openai.Assistant, error)
	RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error)
	ListAssistants(ctx context.Context) (openai.AssistantsList, error)
	AttachFile(ctx context.Context, assistantID, fileID string) (openai.AssistantFile, error)
	DetachFile(ctx context.Context, assistantID, fileID string) error
	ListAssistantFiles(ctx context.Context, assistantID string) (openai.AssistantFilesList, error)

	CreateRun(ctx context.Context, threadID, assistantID string) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
	ListRuns(ctx context.Context, threadID string) (openai.RunList, error)
	ListRunSteps(ctx context.Context, threadID, runID string) (openai.RunStepList, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) (openai.Run, error)
}

// Config holds server configuration options.
type Config struct {
	Addr      string
	StaticDir string
	Poll      runs.Config
	Logger    zerolog.Logger
}

// Server is the HTTP API server.
type Server struct {
	ai        AI
	poller    *runs.Poller
	functions *functions.Registry
	logger    zerolog.Logger
	staticDir string

	httpServer *http.Server
	startedAt  time.Time
}

// New creates the HTTP server over the given provider client and
// function registry.
func New(cfg Config, ai AI, registry *functions.Registry) *Server {
	logger := cfg.Logger.With().Str("component", "http-server").Logger()

	s := &Server{
		ai:        ai,
		poller:    runs.NewPoller(ai, cfg.Logger, cfg.Poll),
		functions: registry,
		logger:    logger,
		staticDir: cfg.StaticDir,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/audio/{text}", s.handleAudio)
	mux.HandleFunc("GET /api/autocomplete/blog", s.handleAutocompleteBlog)
	mux.HandleFunc("GET /api/autocomplete/code", s.handleAutocompleteCode)
	mux.HandleFunc("GET /api/vision", s.handleVision)
	mux.HandleFunc("GET /api/image", s.handleImage)
	mux.HandleFunc("GET /api/function", s.handleFunction)

	mux.HandleFunc("GET /api/thread", s.handleCreateThread)
	mux.HandleFunc("DELETE /api/thread/{thread_id}", s.handleDeleteThread)
	mux.HandleFunc("POST /api/thread/{thread_id}/message", s.handleCreateMessage)
	mux.HandleFunc("GET /api/thread/{thread_id}/message", s.handleListMessages)

	mux.HandleFunc("POST /api/file", s.handleUploadFile)
	mux.HandleFunc("GET /api/file", s.handleListFiles)
	mux.HandleFunc("GET /api/file/{file_id}", s.handleGetFile)
	mux.HandleFunc("DELETE /api/file/{file_id}", s.handleDeleteFile)

	mux.HandleFunc("POST /api/assistant", s.handleCreateAssistant)
	mux.HandleFunc("GET /api/assistant", s.handleListAssistants)
	mux.HandleFunc("GET /api/assistant/{assistant_id}", s.handleRetrieveAssistant)
	mux.HandleFunc("DELETE /api/assistant/{assistant_id}", s.handleDeleteAssistant)
	mux.HandleFunc("PUT /api/assistant/files/{assistant_id}", s.handleAttachFile)
	mux.HandleFunc("DELETE /api/assistant/files/{assistant_id}", s.handleDetachFile)
	mux.HandleFunc("GET /api/assistant/files/{assistant_id}", s.handleListAssistantFiles)

	mux.HandleFunc("POST /api/run/{thread_id}", s.handleCreateRun)
	mux.HandleFunc("GET /api/run", s.handleRetrieveRun)
	mux.HandleFunc("GET /api/run/{thread_id}", s.handleListRuns)
	mux.HandleFunc("POST /api/run/{thread_id}/{run_id}/stream", s.handleStreamRun)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	return s.recovery(s.cors(s.requestLogger(mux)))
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.startedAt = time.Now()
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}
