package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/geom"
)

const basePrompt = `You are helping on a visual mood board. The user selected the items below.
Create one new image that combines the ideas, references and relationships they describe.
If the request is better answered in words, reply with a short text instead.`

// linkRadius is how far from an element's centre an arrow endpoint may land
// and still count as pointing at it.
const linkRadius = 40.0

// InlineImage is an image attached to the prompt.
type InlineImage struct {
	ElementID string
	MIMEType  string
	Data      []byte
}

// Prompt is the model input built from a request.
type Prompt struct {
	Text   string
	Images []InlineImage
}

// BuildPrompt describes the selected elements in reading order (top to
// bottom, then left to right) and collects their images. Image sources that
// are neither data URLs nor loadable through loader are described by
// reference only.
func BuildPrompt(req Request, loader ImageLoader) Prompt {
	els := append([]document.Element(nil), req.Elements...)
	sort.SliceStable(els, func(i, j int) bool {
		a, b := els[i].Position, els[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	labels := make(map[string]string, len(els))
	var notes, images, arrows []document.Element
	for _, el := range els {
		switch el.Kind {
		case document.KindNote:
			notes = append(notes, el)
			labels[el.ID] = fmt.Sprintf("note %d", len(notes))
		case document.KindImage:
			images = append(images, el)
			labels[el.ID] = fmt.Sprintf("image %d", len(images))
		case document.KindArrow:
			arrows = append(arrows, el)
		}
	}

	var sb strings.Builder
	sb.WriteString(basePrompt)
	sb.WriteString("\n")

	var out Prompt
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n%s: %q", labels[n.ID], strings.TrimSpace(n.Note.Text))
	}
	for _, img := range images {
		data, mime, err := loadImage(img.Image.Source, loader)
		if err != nil {
			fmt.Fprintf(&sb, "\n%s: an image (%s) that could not be attached", labels[img.ID], img.Image.Source)
			continue
		}
		fmt.Fprintf(&sb, "\n%s: attached image #%d", labels[img.ID], len(out.Images)+1)
		out.Images = append(out.Images, InlineImage{ElementID: img.ID, MIMEType: mime, Data: data})
	}

	targets := append(append([]document.Element(nil), notes...), images...)
	for _, a := range arrows {
		from := nearest(targets, a.Arrow.Start)
		to := nearest(targets, a.Arrow.End)
		switch {
		case from != "" && to != "":
			fmt.Fprintf(&sb, "\n%s leads to %s", labels[from], labels[to])
		case to != "":
			fmt.Fprintf(&sb, "\nan arrow points at %s", labels[to])
		}
	}

	if p := strings.TrimSpace(req.Prompt); p != "" {
		fmt.Fprintf(&sb, "\n\nUser instruction: %s", p)
	}
	out.Text = sb.String()
	return out
}

func loadImage(source string, loader ImageLoader) ([]byte, string, error) {
	if strings.HasPrefix(source, "data:") {
		return ParseDataURL(source)
	}
	if loader == nil {
		return nil, "", fmt.Errorf("load %s: no loader", source)
	}
	return loader.Load(source)
}

// nearest returns the element whose body contains p, or failing that the
// element whose centre is closest to p within linkRadius.
func nearest(els []document.Element, p geom.Point) string {
	best, bestDist := "", linkRadius
	for _, el := range els {
		local := geom.ToLocal(p, el.Position, el.Rotation)
		if local.X >= -el.Width/2 && local.X <= el.Width/2 && local.Y >= -el.Height/2 && local.Y <= el.Height/2 {
			return el.ID
		}
		if d := p.Sub(el.Position).Len(); d <= bestDist {
			best, bestDist = el.ID, d
		}
	}
	return best
}
