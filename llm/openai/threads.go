package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// CreateThread creates a new empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (openai.Thread, error) {
	return llm.Do(ctx, c.logger, c.retry, "threads.create", func(ctx context.Context) (openai.Thread, error) {
		thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
		if err != nil {
			return openai.Thread{}, convertError(err)
		}
		return thread, nil
	})
}

// DeleteThread deletes a thread.
func (c *Client) DeleteThread(ctx context.Context, threadID string) (openai.ThreadDeleteResponse, error) {
	logger := c.logger.With().Str("thread_id", threadID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.delete", func(ctx context.Context) (openai.ThreadDeleteResponse, error) {
		resp, err := c.api.DeleteThread(ctx, threadID)
		if err != nil {
			return openai.ThreadDeleteResponse{}, convertError(err)
		}
		return resp, nil
	})
}

// CreateMessage appends a user message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, content string) (openai.Message, error) {
	logger := c.logger.With().Str("thread_id", threadID).Int("content_len", len(content)).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.messages.create", func(ctx context.Context) (openai.Message, error) {
		msg, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
			Role:    openai.ChatMessageRoleUser,
			Content: content,
		})
		if err != nil {
			return openai.Message{}, convertError(err)
		}
		return msg, nil
	})
}

// ListMessages lists the messages of a thread.
func (c *Client) ListMessages(ctx context.Context, threadID string) (openai.MessagesList, error) {
	logger := c.logger.With().Str("thread_id", threadID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.messages.list", func(ctx context.Context) (openai.MessagesList, error) {
		msgs, err := c.api.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
		if err != nil {
			return openai.MessagesList{}, convertError(err)
		}
		return msgs, nil
	})
}
