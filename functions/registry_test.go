package functions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type fakeChatClient struct {
	msg openai.ChatCompletionMessage
	err error

	gotText      string
	gotFunctions []openai.FunctionDefinition
}

func (f *fakeChatClient) ChatWithFunctions(ctx context.Context, text string, temperature float32, maxTokens int, functions []openai.FunctionDefinition) (openai.ChatCompletionMessage, error) {
	f.gotText = text
	f.gotFunctions = functions
	return f.msg, f.err
}

func addDefinition(t *testing.T, r *Registry) {
	t.Helper()
	err := r.Register(Definition{
		Name:        "add",
		Description: "Adds two numbers",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x": map[string]any{"type": "integer"},
				"y": map[string]any{"type": "integer"},
			},
			"required": []string{"x", "y"},
		},
		Run: func(ctx context.Context, args json.RawMessage) (any, error) {
			var payload struct {
				X int `json:"x"`
				Y int `json:"y"`
			}
			if err := json.Unmarshal(args, &payload); err != nil {
				return nil, err
			}
			return payload.X + payload.Y, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	err := r.Register(Definition{
		Name: "add",
		Run:  func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestDefinitionsPreserveOrder(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)
	if err := r.Register(Definition{
		Name: "second",
		Run:  func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	}); err != nil {
		t.Fatal(err)
	}

	defs := r.Definitions()
	if len(defs) != 2 || defs[0].Name != "add" || defs[1].Name != "second" {
		t.Errorf("unexpected definitions: %+v", defs)
	}
}

func TestDispatchRunsChosenFunction(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	ai := &fakeChatClient{
		msg: openai.ChatCompletionMessage{
			Content: "adding for you",
			FunctionCall: &openai.FunctionCall{
				Name:      "add",
				Arguments: `{"x": 2, "y": 3}`,
			},
		},
	}

	call, err := r.Dispatch(context.Background(), ai, "add 2 and 3")
	if err != nil {
		t.Fatal(err)
	}
	if call.Name != "add" {
		t.Errorf("expected call name add, got %s", call.Name)
	}
	if got, ok := call.Data.(int); !ok || got != 5 {
		t.Errorf("expected data 5, got %v", call.Data)
	}
	if call.Comments != "adding for you" {
		t.Errorf("unexpected comments: %s", call.Comments)
	}
	if ai.gotText != "add 2 and 3" {
		t.Errorf("unexpected prompt: %s", ai.gotText)
	}
	if len(ai.gotFunctions) != 1 || ai.gotFunctions[0].Name != "add" {
		t.Errorf("expected add schema advertised, got %+v", ai.gotFunctions)
	}
}

func TestDispatchDefaultsCommentsWhenEmpty(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	ai := &fakeChatClient{
		msg: openai.ChatCompletionMessage{
			FunctionCall: &openai.FunctionCall{
				Name:      "add",
				Arguments: `{"x": 1, "y": 1}`,
			},
		},
	}

	call, err := r.Dispatch(context.Background(), ai, "add 1 and 1")
	if err != nil {
		t.Fatal(err)
	}
	if call.Comments != "No comments were provided" {
		t.Errorf("unexpected comments: %s", call.Comments)
	}
}

func TestDispatchFallsBackToChat(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	ai := &fakeChatClient{
		msg: openai.ChatCompletionMessage{Content: "hello there"},
	}

	call, err := r.Dispatch(context.Background(), ai, "say hi")
	if err != nil {
		t.Fatal(err)
	}
	if call.Name != "chat" {
		t.Errorf("expected chat fallback, got %s", call.Name)
	}
	if call.Data != "hello there" {
		t.Errorf("expected model reply as data, got %v", call.Data)
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	ai := &fakeChatClient{
		msg: openai.ChatCompletionMessage{
			FunctionCall: &openai.FunctionCall{Name: "subtract", Arguments: "{}"},
		},
	}

	if _, err := r.Dispatch(context.Background(), ai, "subtract"); err == nil {
		t.Fatal("expected error for unknown function")
	}
}

func TestDispatchPropagatesClientError(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	addDefinition(t, r)

	want := errors.New("provider down")
	ai := &fakeChatClient{err: want}

	if _, err := r.Dispatch(context.Background(), ai, "add"); !errors.Is(err, want) {
		t.Errorf("expected client error, got %v", err)
	}
}
