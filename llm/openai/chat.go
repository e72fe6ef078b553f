package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// ChatParams describes one chat completion request.
// Context, when set, is sent as a system message to steer the model.
type ChatParams struct {
	Text        string
	Context     string
	Model       string
	Temperature float32
	MaxTokens   int
}

func (p ChatParams) messages() []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: p.Text},
	}
	if p.Context != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.Context,
		})
	}
	return msgs
}

// Chat sends a chat completion request and returns the model's text reply.
func (c *Client) Chat(ctx context.Context, p ChatParams) (string, error) {
	model, err := c.resolveModel(p.Model)
	if err != nil {
		return "", err
	}

	logger := c.logger.With().
		Str("model", model).
		Int("text_len", len(p.Text)).
		Bool("has_context", p.Context != "").
		Logger()

	return llm.Do(ctx, logger, c.retry, "chat.completions.create", func(ctx context.Context) (string, error) {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    p.messages(),
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		})
		if err != nil {
			return "", convertError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		content := resp.Choices[0].Message.Content
		if content == "" {
			return "", fmt.Errorf("expected text output to be a string")
		}
		return content, nil
	})
}

// ChatStream sends a chat completion request and returns a stream of
// text deltas. Opening the stream is wrapped; read errors surface
// through the stream's Err.
func (c *Client) ChatStream(ctx context.Context, p ChatParams) (llm.TextStream, error) {
	model, err := c.resolveModel(p.Model)
	if err != nil {
		return nil, err
	}

	logger := c.logger.With().
		Str("model", model).
		Int("text_len", len(p.Text)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "chat.completions.stream", func(ctx context.Context) (llm.TextStream, error) {
		stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:       model,
			Messages:    p.messages(),
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
			Stream:      true,
		})
		if err != nil {
			return nil, convertError(err)
		}
		return newChatStream(stream), nil
	})
}

// VisionParams describes a request to describe or reason about an image.
type VisionParams struct {
	Text        string
	ImageURL    string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Vision sends a multi-content chat request carrying an image URL part
// and returns the model's text reply.
func (c *Client) Vision(ctx context.Context, p VisionParams) (string, error) {
	model, err := c.resolveModel(p.Model)
	if err != nil {
		return "", err
	}

	logger := c.logger.With().
		Str("model", model).
		Str("image_url", p.ImageURL).
		Int("text_len", len(p.Text)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "chat.completions.vision", func(ctx context.Context) (string, error) {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type:     openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{URL: p.ImageURL},
						},
						{
							Type: openai.ChatMessagePartTypeText,
							Text: p.Text,
						},
					},
				},
			},
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		})
		if err != nil {
			return "", convertError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}
		content := resp.Choices[0].Message.Content
		if content == "" {
			return "", fmt.Errorf("expected text output to be a string")
		}
		return content, nil
	})
}

// ChatWithFunctions sends a chat completion advertising the given
// function schemas and returns the assistant message, which may carry
// either text content or a function call.
func (c *Client) ChatWithFunctions(ctx context.Context, text string, temperature float32, maxTokens int, functions []openai.FunctionDefinition) (openai.ChatCompletionMessage, error) {
	model, err := c.resolveModel("")
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	logger := c.logger.With().
		Str("model", model).
		Int("text_len", len(text)).
		Int("functions", len(functions)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "chat.completions.functions", func(ctx context.Context) (openai.ChatCompletionMessage, error) {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: text},
			},
			Functions:   functions,
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return openai.ChatCompletionMessage{}, convertError(err)
		}
		if len(resp.Choices) == 0 {
			return openai.ChatCompletionMessage{}, fmt.Errorf("no choices in response")
		}
		return resp.Choices[0].Message, nil
	})
}
