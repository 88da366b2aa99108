package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash-image"

// Gemini generates images with the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	loader  ImageLoader
	backoff Backoff
}

// NewGemini connects to the Gemini API. loader may be nil, in which case
// only data URL images are attached to prompts.
func NewGemini(ctx context.Context, apiKey, model string, loader ImageLoader, backoff Backoff) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model, loader: loader, backoff: backoff}, nil
}

func (g *Gemini) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := BuildPrompt(req, g.loader)
	contents := Contents(prompt)
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	start := time.Now()
	var resp *genai.GenerateContentResponse
	err := retry(ctx, g.backoff, "generate", func() error {
		var err error
		resp, err = g.client.Models.GenerateContent(ctx, g.model, contents, config)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	res, err := ParseResponse(resp)
	if err != nil {
		return nil, err
	}
	slog.Info("generation finished",
		"model", g.model,
		"elements", len(req.Elements),
		"images", len(res.Images),
		"duration", time.Since(start))
	return res, nil
}

// Contents converts a prompt into a single user turn.
func Contents(p Prompt) []*genai.Content {
	parts := []*genai.Part{{Text: p.Text}}
	for _, img := range p.Images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
	}
	return []*genai.Content{{Role: "user", Parts: parts}}
}

// ParseResponse collects the images and text of the first candidate.
func ParseResponse(resp *genai.GenerateContentResponse) (*Result, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoOutput
	}

	res := &Result{}
	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			res.Images = append(res.Images, NewImage(part.InlineData.Data, mime))
			continue
		}
		if t := strings.TrimSpace(part.Text); t != "" {
			text = append(text, t)
		}
	}
	res.Text = strings.Join(text, "\n\n")

	if len(res.Images) == 0 && res.Text == "" {
		return nil, ErrNoOutput
	}
	return res, nil
}
