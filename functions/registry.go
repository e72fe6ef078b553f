// Package functions dispatches natural-language requests to
// schema-described functions. The model picks the function and fills
// its arguments; the registry decodes them and runs the handler.
package functions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	dispatchTemperature = 0.2
	dispatchMaxTokens   = 2048
)

// Handler executes one function with the model-supplied arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition describes one callable function: the schema advertised to
// the model and the handler that runs it.
type Definition struct {
	Name        string
	Description string
	Parameters  any // JSON schema for the arguments object
	Run         Handler
}

// Call is the rendered result of one dispatch: the function that ran,
// its output, and the model's commentary.
type Call struct {
	Name     string `json:"name"`
	Data     any    `json:"data"`
	Comments string `json:"comments"`
}

// ChatClient issues a function-calling chat completion.
type ChatClient interface {
	ChatWithFunctions(ctx context.Context, text string, temperature float32, maxTokens int, functions []openai.FunctionDefinition) (openai.ChatCompletionMessage, error)
}

// Registry maps function names to definitions.
type Registry struct {
	defs   []Definition
	byName map[string]Definition
	logger zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		byName: make(map[string]Definition),
		logger: logger.With().Str("component", "functions").Logger(),
	}
}

// Register adds a function definition. Names must be unique.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("function definition requires a name")
	}
	if def.Run == nil {
		return fmt.Errorf("function %s has no handler", def.Name)
	}
	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("function %s already registered", def.Name)
	}
	r.logger.Debug().Str("name", def.Name).Msg("Registering function")
	r.byName[def.Name] = def
	r.defs = append(r.defs, def)
	return nil
}

// Definitions returns the schemas to advertise to the model, in
// registration order.
func (r *Registry) Definitions() []openai.FunctionDefinition {
	out := make([]openai.FunctionDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, openai.FunctionDefinition{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return out
}

// Dispatch asks the model to route the text to a registered function
// and runs whichever one it picks. When the model answers with plain
// text instead, the reply comes back as a "chat" call.
func (r *Registry) Dispatch(ctx context.Context, ai ChatClient, text string) (Call, error) {
	r.logger.Info().Int("text_len", len(text)).Int("functions", len(r.defs)).Msg("Dispatching function call")

	msg, err := ai.ChatWithFunctions(ctx, text, dispatchTemperature, dispatchMaxTokens, r.Definitions())
	if err != nil {
		return Call{}, err
	}

	if msg.FunctionCall == nil {
		r.logger.Debug().Msg("No function was called, defaulting to chat")
		return Call{
			Name:     "chat",
			Data:     msg.Content,
			Comments: "No Function was called, defaulting to chat",
		}, nil
	}

	def, ok := r.byName[msg.FunctionCall.Name]
	if !ok {
		r.logger.Error().Str("name", msg.FunctionCall.Name).Msg("Model called unknown function")
		return Call{}, fmt.Errorf("function not found: %s", msg.FunctionCall.Name)
	}

	r.logger.Info().Str("name", def.Name).Str("args", msg.FunctionCall.Arguments).Msg("Executing function")
	data, err := def.Run(ctx, json.RawMessage(msg.FunctionCall.Arguments))
	if err != nil {
		r.logger.Warn().Str("name", def.Name).Err(err).Msg("Function returned error")
		return Call{}, err
	}

	comments := msg.Content
	if comments == "" {
		comments = "No comments were provided"
	}
	return Call{Name: def.Name, Data: data, Comments: comments}, nil
}
