package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// CreateRun starts an assistant run over a thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (openai.Run, error) {
	logger := c.logger.With().Str("thread_id", threadID).Str("assistant_id", assistantID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.runs.create", func(ctx context.Context) (openai.Run, error) {
		run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
			AssistantID: assistantID,
		})
		if err != nil {
			return openai.Run{}, convertError(err)
		}
		return run, nil
	})
}

// RetrieveRun fetches the current state of a run.
func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	logger := c.logger.With().Str("thread_id", threadID).Str("run_id", runID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.runs.retrieve", func(ctx context.Context) (openai.Run, error) {
		run, err := c.api.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return openai.Run{}, convertError(err)
		}
		return run, nil
	})
}

// ListRuns lists the runs of a thread.
func (c *Client) ListRuns(ctx context.Context, threadID string) (openai.RunList, error) {
	logger := c.logger.With().Str("thread_id", threadID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.runs.list", func(ctx context.Context) (openai.RunList, error) {
		list, err := c.api.ListRuns(ctx, threadID, openai.Pagination{})
		if err != nil {
			return openai.RunList{}, convertError(err)
		}
		return list, nil
	})
}

// ListRunSteps lists the steps a run has produced so far, in order.
func (c *Client) ListRunSteps(ctx context.Context, threadID, runID string) (openai.RunStepList, error) {
	logger := c.logger.With().Str("thread_id", threadID).Str("run_id", runID).Logger()
	return llm.Do(ctx, logger, c.retry, "threads.runs.steps.list", func(ctx context.Context) (openai.RunStepList, error) {
		list, err := c.api.ListRunSteps(ctx, threadID, runID, openai.Pagination{})
		if err != nil {
			return openai.RunStepList{}, convertError(err)
		}
		return list, nil
	})
}

// SubmitToolOutputs submits tool outputs for a run paused on
// requires_action and returns the updated run state.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []openai.ToolOutput) (openai.Run, error) {
	logger := c.logger.With().
		Str("thread_id", threadID).
		Str("run_id", runID).
		Int("outputs", len(outputs)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "threads.runs.submit_tool_outputs", func(ctx context.Context) (openai.Run, error) {
		run, err := c.api.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
			ToolOutputs: outputs,
		})
		if err != nil {
			return openai.Run{}, convertError(err)
		}
		return run, nil
	})
}
