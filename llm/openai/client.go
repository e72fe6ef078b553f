// Package openai implements the provider façade over the OpenAI API.
// Every operation runs through the llm resilience wrapper, so callers
// observe classified errors and uniform logging regardless of which
// provider endpoint a call hits.
package openai

import (
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// Client wraps the OpenAI SDK with retry, classification and logging.
// It is safe for concurrent use and holds no per-request state.
type Client struct {
	api    *openai.Client
	logger zerolog.Logger
	retry  llm.RetryPolicy
	model  string // Default chat model to use if not specified per call
}

// NewClient creates a new Client.
// If apiKey is empty, it will return an error.
// If baseURL is empty, it will use the default OpenAI API endpoint.
// If model is empty, callers must specify a model per request.
func NewClient(apiKey, baseURL, model, organization string, policy llm.RetryPolicy, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Client{
		api:    openai.NewClientWithConfig(config),
		logger: logger.With().Str("component", "openai-client").Logger(),
		retry:  policy,
		model:  model,
	}, nil
}

func (c *Client) resolveModel(model string) (string, error) {
	if model != "" {
		return model, nil
	}
	if c.model != "" {
		return c.model, nil
	}
	return "", llm.NewRequestError("model is required", 400, nil)
}
