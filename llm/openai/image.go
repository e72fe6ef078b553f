package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/obahamonde/cms-nlp-plugins/llm"
)

// ImageParams describes one image generation request.
type ImageParams struct {
	Prompt         string
	Model          string // dall-e-3 or dall-e-2
	N              int
	ResponseFormat string // "url" or "b64_json"
	Quality        string // "hd" or "standard"
}

// Image generates images and returns one payload per image: the URL or
// the base64 body, depending on the requested response format.
func (c *Client) Image(ctx context.Context, p ImageParams) ([]string, error) {
	model := p.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	n := p.N
	if n == 0 {
		n = 1
	}

	logger := c.logger.With().
		Str("model", model).
		Int("n", n).
		Str("response_format", p.ResponseFormat).
		Logger()

	return llm.Do(ctx, logger, c.retry, "images.generate", func(ctx context.Context) ([]string, error) {
		resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
			Prompt:         p.Prompt,
			Model:          model,
			N:              n,
			ResponseFormat: p.ResponseFormat,
			Quality:        p.Quality,
		})
		if err != nil {
			return nil, convertError(err)
		}

		result := make([]string, 0, len(resp.Data))
		for _, img := range resp.Data {
			switch {
			case img.URL != "":
				result = append(result, img.URL)
			case img.B64JSON != "":
				result = append(result, img.B64JSON)
			default:
				return nil, fmt.Errorf("expected image output to carry a url or b64 payload")
			}
		}
		return result, nil
	})
}
