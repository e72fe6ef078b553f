package openai

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// SpeechParams describes one text-to-speech request.
type SpeechParams struct {
	Text   string
	Model  string // tts-1 or tts-1-hd
	Voice  string // nova, alloy, echo, fable, onyx, shimmer
	Format string // mp3, opus, aac, flac
}

// Speech synthesizes audio for the given text. The returned body streams
// the encoded audio and must be closed by the caller.
func (c *Client) Speech(ctx context.Context, p SpeechParams) (io.ReadCloser, error) {
	model := p.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	voice := p.Voice
	if voice == "" {
		voice = string(openai.VoiceShimmer)
	}
	format := p.Format
	if format == "" {
		format = string(openai.SpeechResponseFormatOpus)
	}

	logger := c.logger.With().
		Str("model", model).
		Str("voice", voice).
		Str("format", format).
		Int("text_len", len(p.Text)).
		Logger()

	return llm.Do(ctx, logger, c.retry, "audio.speech.create", func(ctx context.Context) (io.ReadCloser, error) {
		resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(model),
			Input:          p.Text,
			Voice:          openai.SpeechVoice(voice),
			ResponseFormat: openai.SpeechResponseFormat(format),
		})
		if err != nil {
			return nil, convertError(err)
		}
		return resp, nil
	})
}
