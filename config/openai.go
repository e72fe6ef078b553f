package config

import (
	"os"

	"github.com/rs/zerolog"

	llmopenai "github.com/obahamonde/cms-nlp-plugins/llm/openai"
)

// applyOpenAIEnvOverrides applies environment variable overrides to the
// OpenAI provider configuration. Environment always wins so credentials
// never have to live in the config file.
func applyOpenAIEnvOverrides(cfg *OpenAIConfig) {
	if envAPIKey := os.Getenv("OPENAI_API_KEY"); envAPIKey != "" {
		cfg.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
		cfg.BaseURL = envBaseURL
	}
	if envModel := os.Getenv("OPENAI_MODEL"); envModel != "" {
		cfg.Model = envModel
	}
	if envOrg := os.Getenv("OPENAI_ORG_ID"); envOrg != "" {
		cfg.Organization = envOrg
	}
}

// NewOpenAIClient creates the resilient OpenAI client from the configuration.
func NewOpenAIClient(cfg *ServerConfig, logger zerolog.Logger) (*llmopenai.Client, error) {
	return llmopenai.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.BaseURL,
		cfg.OpenAI.Model,
		cfg.OpenAI.Organization,
		cfg.Retry.Policy(),
		logger,
	)
}
