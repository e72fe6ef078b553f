package functions

import (
	"context"
	"encoding/json"
	"fmt"

	aiclient "github.com/obahamonde/cms-nlp-plugins/llm/openai"
)

// Provider is the slice of the LLM client the built-in functions need.
type Provider interface {
	Instruct(ctx context.Context, p aiclient.InstructParams) (string, error)
	Vision(ctx context.Context, p aiclient.VisionParams) (string, error)
	Image(ctx context.Context, p aiclient.ImageParams) ([]string, error)
}

// RegisterBuiltins registers the stock instruction, vision and image
// functions against the given provider.
func RegisterBuiltins(r *Registry, ai Provider) error {
	defs := []Definition{
		{
			Name:        "use_instruction",
			Description: "Give an instruction to the model to perform a specific task, for example writing a poem about a given topic.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The instruction to perform",
					},
					"temperature": map[string]any{"type": "number"},
					"max_tokens":  map[string]any{"type": "integer"},
				},
				"required": []string{"text"},
			},
			Run: func(ctx context.Context, args json.RawMessage) (any, error) {
				var payload struct {
					Text        string  `json:"text"`
					Temperature float32 `json:"temperature"`
					MaxTokens   int     `json:"max_tokens"`
				}
				if err := json.Unmarshal(args, &payload); err != nil {
					return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
				}
				if payload.MaxTokens == 0 {
					payload.MaxTokens = 1024
				}
				return ai.Instruct(ctx, aiclient.InstructParams{
					Text:        payload.Text,
					Temperature: payload.Temperature,
					MaxTokens:   payload.MaxTokens,
				})
			},
		},
		{
			Name:        "use_vision",
			Description: "Describe or reason about the image at the provided URL, following the instruction in the text parameter.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "What to do with the image",
					},
					"image": map[string]any{
						"type":        "string",
						"description": "URL of the image to inspect",
					},
				},
				"required": []string{"text", "image"},
			},
			Run: func(ctx context.Context, args json.RawMessage) (any, error) {
				var payload struct {
					Text  string `json:"text"`
					Image string `json:"image"`
				}
				if err := json.Unmarshal(args, &payload); err != nil {
					return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
				}
				return ai.Vision(ctx, aiclient.VisionParams{
					Text:        payload.Text,
					ImageURL:    payload.Image,
					Temperature: 0.5,
					MaxTokens:   512,
				})
			},
		},
		{
			Name:        "use_image",
			Description: "Generate images from the prompt in the text parameter.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "The image prompt",
					},
					"n": map[string]any{"type": "integer"},
					"response_format": map[string]any{
						"type": "string",
						"enum": []string{"url", "b64_json"},
					},
					"quality": map[string]any{
						"type": "string",
						"enum": []string{"standard", "hd"},
					},
				},
				"required": []string{"text"},
			},
			Run: func(ctx context.Context, args json.RawMessage) (any, error) {
				var payload struct {
					Text           string `json:"text"`
					N              int    `json:"n"`
					ResponseFormat string `json:"response_format"`
					Quality        string `json:"quality"`
				}
				if err := json.Unmarshal(args, &payload); err != nil {
					return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
				}
				if payload.ResponseFormat == "" {
					payload.ResponseFormat = "url"
				}
				if payload.Quality == "" {
					payload.Quality = "standard"
				}
				return ai.Image(ctx, aiclient.ImageParams{
					Prompt:         payload.Text,
					N:              payload.N,
					ResponseFormat: payload.ResponseFormat,
					Quality:        payload.Quality,
				})
			},
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}
