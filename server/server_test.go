package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/functions"
	"github.com/obahamonde/cms-nlp-plugins/llm"
	aiclient "github.com/obahamonde/cms-nlp-plugins/llm/openai"
	"github.com/obahamonde/cms-nlp-plugins/runs"
)

// stubAI answers from canned responses; tests set only the fields the
// handler under test touches.
type stubAI struct {
	chatFn       func(ctx context.Context, p aiclient.ChatParams) (string, error)
	chatStreamFn func(ctx context.Context, p aiclient.ChatParams) (llm.TextStream, error)
	instructFn   func(ctx context.Context, p aiclient.InstructParams) (string, error)
	visionFn     func(ctx context.Context, p aiclient.VisionParams) (string, error)
	imageFn      func(ctx context.Context, p aiclient.ImageParams) ([]string, error)
	uploadFn     func(ctx context.Context, name string, data []byte, purpose string) (openai.File, error)
	listFilesFn  func(ctx context.Context, purpose string) ([]openai.File, error)
	threadFn     func(ctx context.Context) (openai.Thread, error)

	runStates []openai.Run
	runPos    int
}

func (a *stubAI) Chat(ctx context.Context, p aiclient.ChatParams) (string, error) {
	return a.chatFn(ctx, p)
}

func (a *stubAI) ChatStream(ctx context.Context, p aiclient.ChatParams) (llm.TextStream, error) {
	return a.chatStreamFn(ctx, p)
}

func (a *stubAI) Instruct(ctx context.Context, p aiclient.InstructParams) (string, error) {
	return a.instructFn(ctx, p)
}

func (a *stubAI) Vision(ctx context.Context, p aiclient.VisionParams) (string, error) {
	return a.visionFn(ctx, p)
}

func (a *stubAI) Image(ctx context.Context, p aiclient.ImageParams) ([]string, error) {
	return a.imageFn(ctx, p)
}

func (a *stubAI) Speech(ctx context.Context, p aiclient.SpeechParams) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("audio-bytes")), nil
}

func (a *stubAI) ChatWithFunctions(ctx context.Context, text string, temperature float32, maxTokens int, fns []openai.FunctionDefinition) (openai.ChatCompletionMessage, error) {
	return openai.ChatCompletionMessage{Content: "plain reply"}, nil
}

func (a *stubAI) CreateThread(ctx context.Context) (openai.Thread, error) {
	return a.threadFn(ctx)
}

func (a *stubAI) DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error) {
	return openai.ThreadDeleteResponse{ID: threadID, Deleted: true}, nil
}

func (a *stubAI) CreateMessage(ctx context.Context, threadID, content string) (openai.Message, error) {
	return openai.Message{ID: "msg_1", ThreadID: threadID}, nil
}

func (a *stubAI) ListMessages(ctx context.Context, threadID string) (openai.MessagesList, error) {
	return openai.MessagesList{}, nil
}

func (a *stubAI) UploadFile(ctx context.Context, name string, data []byte, purpose string) (openai.File, error) {
	return a.uploadFn(ctx, name, data, purpose)
}

func (a *stubAI) ListFiles(ctx context.Context, purpose string) ([]openai.File, error) {
	return a.listFilesFn(ctx, purpose)
}

func (a *stubAI) GetFile(ctx context.Context, fileID string) (openai.File, error) {
	return openai.File{ID: fileID}, nil
}

func (a *stubAI) DeleteFile(ctx context.Context, fileID string) error {
	return nil
}

func (a *stubAI) CreateAssistant(ctx context.Context, name, instructions, model string) (openai.Assistant, error) {
	return openai.Assistant{ID: "asst_1", Name: &name}, nil
}

func (a *stubAI) RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error) {
	return openai.Assistant{ID: assistantID}, nil
}

func (a *stubAI) DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error) {
	return openai.AssistantDeleteResponse{ID: assistantID, Deleted: true}, nil
}

func (a *stubAI) ListAssistants(ctx context.Context) (openai.AssistantsList, error) {
	return openai.AssistantsList{}, nil
}

func (a *stubAI) AttachFile(ctx context.Context, assistantID, fileID string) (openai.AssistantFile, error) {
	return openai.AssistantFile{ID: fileID, AssistantID: assistantID}, nil
}

func (a *stubAI) DetachFile(ctx context.Context, assistantID, fileID string) error {
	return nil
}

func (a *stubAI) ListAssistantFiles(ctx context.Context, assistantID string) (openai.AssistantFilesList, error) {
	return openai.AssistantFilesList{}, nil
}

func (a *stubAI) CreateRun(ctx context.Context, threadID, assistantID string) (openai.Run, error) {
	return openai.Run{ID: "r1", ThreadID: threadID, Status: openai.RunStatusQueued}, nil
}

func (a *stubAI) RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	if len(a.runStates) == 0 {
		return openai.Run{}, llm.NewRequestError("no such run", 404, nil)
	}
	run := a.runStates[a.runPos]
	if a.runPos < len(a.runStates)-1 {
		a.runPos++
	}
	return run, nil
}

func (a *stubAI) ListRuns(ctx context.Context, threadID string) (openai.RunList, error) {
	return openai.RunList{}, nil
}

func (a *stubAI) ListRunSteps(ctx context.Context, threadID, runID string) (openai.RunStepList, error) {
	return openai.RunStepList{}, nil
}

func (a *stubAI) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) (openai.Run, error) {
	return openai.Run{}, nil
}

// fakeTextStream replays a fixed chunk sequence.
type fakeTextStream struct {
	chunks []string
	pos    int
}

func (f *fakeTextStream) Next() bool {
	if f.pos >= len(f.chunks) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeTextStream) Text() string { return f.chunks[f.pos-1] }
func (f *fakeTextStream) Err() error   { return nil }
func (f *fakeTextStream) Close() error { return nil }

func newTestServer(ai AI) *Server {
	return New(Config{
		Addr: ":0",
		Poll: runs.Config{
			QueuedInterval: time.Millisecond,
			ActiveInterval: time.Millisecond,
		},
		Logger: zerolog.Nop(),
	}, ai, functions.NewRegistry(zerolog.Nop()))
}

func TestChatStreamsEvents(t *testing.T) {
	ai := &stubAI{
		chatStreamFn: func(ctx context.Context, p aiclient.ChatParams) (llm.TextStream, error) {
			if p.Text != "hi" {
				t.Errorf("unexpected text: %s", p.Text)
			}
			return &fakeTextStream{chunks: []string{"Hello", " world"}}, nil
		},
	}
	srv := newTestServer(ai)

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat?text=hi", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("unexpected content type: %s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "data: Hello\n\n") || !strings.Contains(body, "data:  world\n\n") {
		t.Errorf("missing data frames: %q", body)
	}
	if !strings.Contains(body, "event: done\n") {
		t.Errorf("missing done frame: %q", body)
	}
}

func TestChatRequiresText(t *testing.T) {
	srv := newTestServer(&stubAI{})

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "text is required" {
		t.Errorf("unexpected detail: %q", body["detail"])
	}
}

func TestProviderErrorKeepsStatus(t *testing.T) {
	ai := &stubAI{
		visionFn: func(ctx context.Context, p aiclient.VisionParams) (string, error) {
			return "", llm.NewRequestError("Incorrect API key provided", 401, nil)
		},
	}
	srv := newTestServer(ai)

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/vision?text=describe&image=http://x/y.png", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "Incorrect API key provided" {
		t.Errorf("unexpected detail: %q", body["detail"])
	}
}

func TestAutocompleteReturnsPlainText(t *testing.T) {
	ai := &stubAI{
		instructFn: func(ctx context.Context, p aiclient.InstructParams) (string, error) {
			if !strings.Contains(p.Text, "next big thing") {
				t.Errorf("prompt does not carry user text: %q", p.Text)
			}
			return "continuation", nil
		},
	}
	srv := newTestServer(ai)

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/autocomplete/blog?text=next+big+thing", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "continuation" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}

func TestUploadFile(t *testing.T) {
	ai := &stubAI{
		uploadFn: func(ctx context.Context, name string, data []byte, purpose string) (openai.File, error) {
			if name != "notes.txt" || string(data) != "hello" || purpose != "assistants" {
				t.Errorf("unexpected upload: %s %q %s", name, data, purpose)
			}
			return openai.File{ID: "file_1", FileName: name}, nil
		},
	}
	srv := newTestServer(ai)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var uploaded openai.File
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}
	if uploaded.ID != "file_1" {
		t.Errorf("unexpected file: %+v", uploaded)
	}
}

func TestStreamRunEmitsSnapshots(t *testing.T) {
	ai := &stubAI{
		runStates: []openai.Run{
			{ID: "r1", ThreadID: "t1", Status: openai.RunStatusQueued},
			{ID: "r1", ThreadID: "t1", Status: openai.RunStatusInProgress},
			{ID: "r1", ThreadID: "t1", Status: openai.RunStatusCompleted},
		},
	}
	srv := newTestServer(ai)

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run/t1/r1/stream", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var events []runs.Event
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") || line == "data: " {
			continue
		}
		var ev runs.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("bad event %q: %v", line, err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %s", len(events), rec.Body.String())
	}
	if events[0].Run.Status != openai.RunStatusQueued || events[1].Run.Status != openai.RunStatusCompleted {
		t.Errorf("unexpected statuses: %s, %s", events[0].Run.Status, events[1].Run.Status)
	}
	if !strings.Contains(rec.Body.String(), "event: done\n") {
		t.Error("missing done frame")
	}
}

func TestStreamRunErrorBeforeFirstEvent(t *testing.T) {
	srv := newTestServer(&stubAI{})

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/run/t1/missing/stream", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["detail"] != "no such run" {
		t.Errorf("unexpected detail: %q", body["detail"])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubAI{})

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&stubAI{})

	rec := httptest.NewRecorder()
	srv.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("unexpected allow origin: %q", origin)
	}
}
