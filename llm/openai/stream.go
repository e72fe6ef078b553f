package openai

import (
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// chatStream adapts an SDK chat completion stream to llm.TextStream,
// skipping empty delta frames.
type chatStream struct {
	stream *openai.ChatCompletionStream
	text   string
	err    error
	done   bool
}

func newChatStream(stream *openai.ChatCompletionStream) *chatStream {
	return &chatStream{stream: stream}
}

// Next advances to the next non-empty content delta.
func (s *chatStream) Next() bool {
	if s.done {
		return false
	}
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		if err != nil {
			s.err = convertError(err)
			s.done = true
			return false
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		s.text = delta
		return true
	}
}

// Text returns the current chunk.
func (s *chatStream) Text() string { return s.text }

// Err returns any error that occurred during streaming.
func (s *chatStream) Err() error { return s.err }

// Close closes the stream and releases resources.
func (s *chatStream) Close() error {
	s.done = true
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

// completionStream adapts an SDK legacy completion stream to llm.TextStream.
type completionStream struct {
	stream *openai.CompletionStream
	text   string
	err    error
	done   bool
}

func newCompletionStream(stream *openai.CompletionStream) *completionStream {
	return &completionStream{stream: stream}
}

// Next advances to the next non-empty text chunk.
func (s *completionStream) Next() bool {
	if s.done {
		return false
	}
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		if err != nil {
			s.err = convertError(err)
			s.done = true
			return false
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if resp.Choices[0].Text == "" {
			continue
		}
		s.text = resp.Choices[0].Text
		return true
	}
}

// Text returns the current chunk.
func (s *completionStream) Text() string { return s.text }

// Err returns any error that occurred during streaming.
func (s *completionStream) Err() error { return s.err }

// Close closes the stream and releases resources.
func (s *completionStream) Close() error {
	s.done = true
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}
