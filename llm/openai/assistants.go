package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// CreateAssistant creates a new assistant with the given name,
// instructions and model.
func (c *Client) CreateAssistant(ctx context.Context, name, instructions, model string) (openai.Assistant, error) {
	resolved, err := c.resolveModel(model)
	if err != nil {
		return openai.Assistant{}, err
	}

	logger := c.logger.With().
		Str("name", name).
		Str("model", resolved).
		Logger()

	return llm.Do(ctx, logger, c.retry, "assistants.create", func(ctx context.Context) (openai.Assistant, error) {
		assistant, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
			Model:        resolved,
			Name:         &name,
			Instructions: &instructions,
		})
		if err != nil {
			return openai.Assistant{}, convertError(err)
		}
		return assistant, nil
	})
}

// RetrieveAssistant retrieves an assistant.
func (c *Client) RetrieveAssistant(ctx context.Context, assistantID string) (openai.Assistant, error) {
	logger := c.logger.With().Str("assistant_id", assistantID).Logger()
	return llm.Do(ctx, logger, c.retry, "assistants.retrieve", func(ctx context.Context) (openai.Assistant, error) {
		assistant, err := c.api.RetrieveAssistant(ctx, assistantID)
		if err != nil {
			return openai.Assistant{}, convertError(err)
		}
		return assistant, nil
	})
}

// DeleteAssistant deletes an assistant.
func (c *Client) DeleteAssistant(ctx context.Context, assistantID string) (openai.AssistantDeleteResponse, error) {
	logger := c.logger.With().Str("assistant_id", assistantID).Logger()
	return llm.Do(ctx, logger, c.retry, "assistants.delete", func(ctx context.Context) (openai.AssistantDeleteResponse, error) {
		resp, err := c.api.DeleteAssistant(ctx, assistantID)
		if err != nil {
			return openai.AssistantDeleteResponse{}, convertError(err)
		}
		return resp, nil
	})
}

// ListAssistants lists all assistants.
func (c *Client) ListAssistants(ctx context.Context) (openai.AssistantsList, error) {
	return llm.Do(ctx, c.logger, c.retry, "assistants.list", func(ctx context.Context) (openai.AssistantsList, error) {
		list, err := c.api.ListAssistants(ctx, nil, nil, nil, nil)
		if err != nil {
			return openai.AssistantsList{}, convertError(err)
		}
		return list, nil
	})
}

// AttachFile attaches an uploaded file to an assistant.
func (c *Client) AttachFile(ctx context.Context, assistantID, fileID string) (openai.AssistantFile, error) {
	logger := c.logger.With().Str("assistant_id", assistantID).Str("file_id", fileID).Logger()
	return llm.Do(ctx, logger, c.retry, "assistants.files.create", func(ctx context.Context) (openai.AssistantFile, error) {
		file, err := c.api.CreateAssistantFile(ctx, assistantID, openai.AssistantFileRequest{
			FileID: fileID,
		})
		if err != nil {
			return openai.AssistantFile{}, convertError(err)
		}
		return file, nil
	})
}

// DetachFile detaches a file from an assistant.
func (c *Client) DetachFile(ctx context.Context, assistantID, fileID string) error {
	logger := c.logger.With().Str("assistant_id", assistantID).Str("file_id", fileID).Logger()
	_, err := llm.Do(ctx, logger, c.retry, "assistants.files.delete", func(ctx context.Context) (struct{}, error) {
		if err := c.api.DeleteAssistantFile(ctx, assistantID, fileID); err != nil {
			return struct{}{}, convertError(err)
		}
		return struct{}{}, nil
	})
	return err
}

// ListAssistantFiles lists the files attached to an assistant.
func (c *Client) ListAssistantFiles(ctx context.Context, assistantID string) (openai.AssistantFilesList, error) {
	logger := c.logger.With().Str("assistant_id", assistantID).Logger()
	return llm.Do(ctx, logger, c.retry, "assistants.files.list", func(ctx context.Context) (openai.AssistantFilesList, error) {
		list, err := c.api.ListAssistantFiles(ctx, assistantID, nil, nil, nil, nil)
		if err != nil {
			return openai.AssistantFilesList{}, convertError(err)
		}
		return list, nil
	})
}
