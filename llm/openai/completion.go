package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// DefaultInstructModel is used when an instruction call names no model.
const DefaultInstructModel = "gpt-3.5-turbo-instruct"

// InstructParams describes one legacy completion request.
type InstructParams struct {
	Text        string
	Model       string
	Temperature float32
	MaxTokens   int
}

func (p InstructParams) model() string {
	if p.Model != "" {
		return p.Model
	}
	return DefaultInstructModel
}

// Instruct sends a completion request against the legacy completions
// endpoint and returns the generated text.
func (c *Client) Instruct(ctx context.Context, p InstructParams) (string, error) {
	model := p.model()

	logger := c.logger.With().
		Str("model", model).
		Int("text_len", len(p.Text)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "completions.create", func(ctx context.Context) (string, error) {
		resp, err := c.api.CreateCompletion(ctx, openai.CompletionRequest{
			Model:       model,
			Prompt:      p.Text,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		})
		if err != nil {
			return "", convertError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Text, nil
	})
}

// InstructStream sends a completion request and returns a stream of
// generated text chunks.
func (c *Client) InstructStream(ctx context.Context, p InstructParams) (llm.TextStream, error) {
	model := p.model()

	logger := c.logger.With().
		Str("model", model).
		Int("text_len", len(p.Text)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "completions.stream", func(ctx context.Context) (llm.TextStream, error) {
		stream, err := c.api.CreateCompletionStream(ctx, openai.CompletionRequest{
			Model:       model,
			Prompt:      p.Text,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
			Stream:      true,
		})
		if err != nil {
			return nil, convertError(err)
		}
		return newCompletionStream(stream), nil
	})
}
