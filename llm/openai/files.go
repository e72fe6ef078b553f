package openai

import (
	"context"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// UploadFile uploads raw file bytes for the given purpose
// ("assistants" or "fine-tune").
func (c *Client) UploadFile(ctx context.Context, name string, data []byte, purpose string) (openai.File, error) {
	logger := c.logger.With().
		Str("name", name).
		Int("bytes", len(data)).
		Str("purpose", purpose).
		Logger()

	return llm.Do(ctx, logger, c.retry, "files.create", func(ctx context.Context) (openai.File, error) {
		file, err := c.api.CreateFileBytes(ctx, openai.FileBytesRequest{
			Name:    name,
			Bytes:   data,
			Purpose: openai.PurposeType(purpose),
		})
		if err != nil {
			return openai.File{}, convertError(err)
		}
		return file, nil
	})
}

// ListFiles lists uploaded files, filtered by purpose when non-empty.
func (c *Client) ListFiles(ctx context.Context, purpose string) ([]openai.File, error) {
	logger := c.logger.With().Str("purpose", purpose).Logger()
	return llm.Do(ctx, logger, c.retry, "files.list", func(ctx context.Context) ([]openai.File, error) {
		list, err := c.api.ListFiles(ctx)
		if err != nil {
			return nil, convertError(err)
		}
		if purpose == "" {
			return list.Files, nil
		}
		return lo.Filter(list.Files, func(f openai.File, _ int) bool {
			return f.Purpose == purpose
		}), nil
	})
}

// GetFile retrieves one file's metadata.
func (c *Client) GetFile(ctx context.Context, fileID string) (openai.File, error) {
	logger := c.logger.With().Str("file_id", fileID).Logger()
	return llm.Do(ctx, logger, c.retry, "files.retrieve", func(ctx context.Context) (openai.File, error) {
		file, err := c.api.GetFile(ctx, fileID)
		if err != nil {
			return openai.File{}, convertError(err)
		}
		return file, nil
	})
}

// DeleteFile deletes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	logger := c.logger.With().Str("file_id", fileID).Logger()
	_, err := llm.Do(ctx, logger, c.retry, "files.delete", func(ctx context.Context) (struct{}, error) {
		if err := c.api.DeleteFile(ctx, fileID); err != nil {
			return struct{}{}, convertError(err)
		}
		return struct{}{}, nil
	})
	return err
}
