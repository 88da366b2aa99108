// Package generate turns a selection of board elements into new images or
// text using an external model.
package generate

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/museboard/museboard/internal/document"
)

var (
	ErrDisabled = errors.New("image generation is not configured")
	ErrNoOutput = errors.New("model returned no content")
)

// Request is the input of one generation call.
type Request struct {
	Elements []document.Element
	// Prompt is an optional extra instruction from the user.
	Prompt string
}

// Image is a generated image.
type Image struct {
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// Result holds everything the model returned.
type Result struct {
	Images []Image
	Text   string
}

// Generator produces content from board elements. Implementations must be
// safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// ImageLoader resolves an image source that is not a data URL, such as an
// uploaded asset path.
type ImageLoader interface {
	Load(source string) (data []byte, mimeType string, err error)
}

// Disabled is the generator used when no model is configured.
type Disabled struct{}

func (Disabled) Generate(context.Context, Request) (*Result, error) {
	return nil, ErrDisabled
}

// NewImage wraps raw image bytes, reading the pixel size from the header.
// Unknown formats keep a zero size.
func NewImage(data []byte, mimeType string) Image {
	img := Image{MIMEType: mimeType, Data: data}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img
}
