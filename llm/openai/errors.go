package openai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// convertError converts OpenAI SDK errors to llm.Error classifications.
//
// Connection-level and timeout failures are the only retryable class.
// Provider 4xx responses keep their status code; everything else
// surfaces as 500.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	// Already classified somewhere upstream: pass through unchanged.
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return llm.NewTimeoutError("OpenAI request deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return convertStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return convertStatus(reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return llm.NewTimeoutError("OpenAI request timed out", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return llm.NewNetworkError("OpenAI connection error", err)
	}

	return llm.Classify(err)
}

func convertStatus(status int, message string, err error) error {
	switch {
	case status >= 400 && status < 500:
		return llm.NewRequestError(message, status, err)
	case status >= 500:
		return llm.NewProviderError(message, err)
	default:
		return llm.Classify(err)
	}
}
