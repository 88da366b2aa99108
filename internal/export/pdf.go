// Package export renders boards to PDF.
package export

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/generate"
	"github.com/museboard/museboard/internal/geom"
)

const (
	// Margin around the board content, in points.
	Margin = 36.0
	// MaxPageSide is the largest page side PDF viewers reliably support.
	MaxPageSide = 14400.0

	notePadding   = 10.0
	noteFontSize  = 12.0
	arrowWidth    = 2.0
	arrowHeadSide = 12.0
)

// Empty boards get an A4 page.
var emptyPage = gofpdf.SizeType{Wd: 595.28, Ht: 841.89}

// Layout maps world coordinates onto the page: one world unit is one point,
// scaled down only when the board would exceed MaxPageSide.
type Layout struct {
	Origin geom.Point // world point at the page's top-left margin corner
	Scale  float64
	Page   gofpdf.SizeType
}

// NewLayout fits every element of ordered on one page.
func NewLayout(ordered []document.Element) Layout {
	sets := make([][]geom.Point, 0, len(ordered))
	for _, el := range ordered {
		c := el.Corners()
		sets = append(sets, c[:])
	}
	bounds, ok := geom.UnionBoundingBox(sets...)
	if !ok {
		return Layout{Scale: 1, Page: emptyPage}
	}

	scale := 1.0
	if long := math.Max(bounds.Width, bounds.Height) + 2*Margin; long > MaxPageSide {
		scale = MaxPageSide / long
	}
	return Layout{
		Origin: bounds.Min(),
		Scale:  scale,
		Page: gofpdf.SizeType{
			Wd: (bounds.Width + 2*Margin) * scale,
			Ht: (bounds.Height + 2*Margin) * scale,
		},
	}
}

// Map converts a world point to page coordinates.
func (l Layout) Map(p geom.Point) geom.Point {
	return geom.Point{
		X: (p.X-l.Origin.X)*l.Scale + Margin*l.Scale,
		Y: (p.Y-l.Origin.Y)*l.Scale + Margin*l.Scale,
	}
}

// WritePDF renders the board as a single-page PDF. Image sources that are
// not data URLs are read through loader; images that cannot be loaded are
// drawn as labelled frames.
func WritePDF(w io.Writer, b *document.Board, loader generate.ImageLoader) error {
	ordered := b.Ordered()
	layout := NewLayout(ordered)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: layout.Page})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(b.Name, true)
	pdf.SetCreator("museboard", true)
	pdf.AddPage()

	r := &renderer{pdf: pdf, layout: layout, loader: loader, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	for _, el := range ordered {
		switch el.Kind {
		case document.KindNote:
			r.note(el)
		case document.KindImage:
			r.image(el)
		case document.KindArrow:
			r.arrow(el)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render %s: %w", el.ID, err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	layout Layout
	loader generate.ImageLoader
	tr     func(string) string
	images int
}

// box begins a transform rotated about the element centre and returns the
// unrotated page rectangle of the element.
func (r *renderer) box(el document.Element) (x, y, w, h float64) {
	c := r.layout.Map(el.Position)
	w, h = el.Width*r.layout.Scale, el.Height*r.layout.Scale

	r.pdf.TransformBegin()
	// gofpdf rotates counter-clockwise; element rotation is clockwise.
	r.pdf.TransformRotate(-el.Rotation, c.X, c.Y)
	return c.X - w/2, c.Y - h/2, w, h
}

func (r *renderer) note(el document.Element) {
	fill := ParseColor(el.Note.Color, document.DefaultNoteColor)
	x, y, w, h := r.box(el)
	defer r.pdf.TransformEnd()

	fr, fg, fb := fill.RGB255()
	r.pdf.SetFillColor(int(fr), int(fg), int(fb))
	r.pdf.SetDrawColor(int(fr)*4/5, int(fg)*4/5, int(fb)*4/5)
	r.pdf.SetLineWidth(0.5)
	r.pdf.Rect(x, y, w, h, "FD")

	tr, tg, tb := TextColor(fill).RGB255()
	r.pdf.SetTextColor(int(tr), int(tg), int(tb))
	size := noteFontSize * r.layout.Scale
	pad := notePadding * r.layout.Scale
	r.pdf.SetFont("Helvetica", "", size)
	r.pdf.SetXY(x+pad, y+pad)
	r.pdf.MultiCell(w-2*pad, size*1.3, r.tr(el.Note.Text), "", "L", false)
}

func (r *renderer) image(el document.Element) {
	data, mime, err := r.load(el.Image.Source)
	x, y, w, h := r.box(el)
	defer r.pdf.TransformEnd()

	imageType := ""
	switch mime {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg":
		imageType = "JPG"
	}
	if err != nil || imageType == "" {
		r.placeholder(x, y, w, h)
		return
	}

	r.images++
	name := fmt.Sprintf("img%d", r.images)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if r.pdf.Error() != nil {
		// A corrupt image should not lose the whole export.
		r.pdf.ClearError()
		r.placeholder(x, y, w, h)
		return
	}
	r.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
}

func (r *renderer) load(source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "data:") {
		return generate.ParseDataURL(source)
	}
	if r.loader == nil {
		return nil, "", fmt.Errorf("load %s: no loader", source)
	}
	return r.loader.Load(source)
}

func (r *renderer) placeholder(x, y, w, h float64) {
	r.pdf.SetDrawColor(148, 163, 184)
	r.pdf.SetLineWidth(1)
	r.pdf.SetDashPattern([]float64{4, 3}, 0)
	r.pdf.Rect(x, y, w, h, "D")
	r.pdf.SetDashPattern(nil, 0)

	r.pdf.SetTextColor(100, 116, 139)
	r.pdf.SetFont("Helvetica", "I", noteFontSize*r.layout.Scale)
	r.pdf.SetXY(x, y+h/2-noteFontSize*r.layout.Scale/2)
	r.pdf.CellFormat(w, noteFontSize*r.layout.Scale, "image", "", 0, "C", false, 0, "")
}

func (r *renderer) arrow(el document.Element) {
	stroke := ParseColor(el.Arrow.Color, document.DefaultArrowColor)
	sr, sg, sb := stroke.RGB255()
	r.pdf.SetDrawColor(int(sr), int(sg), int(sb))
	r.pdf.SetFillColor(int(sr), int(sg), int(sb))
	r.pdf.SetLineWidth(arrowWidth * r.layout.Scale)

	start := r.layout.Map(el.Arrow.Start)
	end := r.layout.Map(el.Arrow.End)
	r.pdf.Line(start.X, start.Y, end.X, end.Y)

	head := ArrowHead(start, end, arrowHeadSide*r.layout.Scale)
	if head == nil {
		return
	}
	pts := make([]gofpdf.PointType, len(head))
	for i, p := range head {
		pts[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	r.pdf.Polygon(pts, "F")
}

// ArrowHead returns the triangle of an arrow head at end, or nil for a
// zero-length arrow.
func ArrowHead(start, end geom.Point, side float64) []geom.Point {
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return nil
	}
	back := dir.Div(length).Scale(-side)
	return []geom.Point{
		end,
		end.Add(geom.Rotate(back, 25)),
		end.Add(geom.Rotate(back, -25)),
	}
}

// ParseColor reads a hex colour, falling back to fallback and then to
// black.
func ParseColor(hex, fallback string) colorful.Color {
	if c, err := colorful.Hex(hex); err == nil {
		return c
	}
	if c, err := colorful.Hex(fallback); err == nil {
		return c
	}
	return colorful.Color{}
}

// TextColor picks dark or light text for legibility on bg.
func TextColor(bg colorful.Color) colorful.Color {
	l, _, _ := bg.Lab()
	if l > 0.6 {
		return colorful.Color{R: 0.07, G: 0.09, B: 0.15}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}
