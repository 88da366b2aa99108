package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/museboard/museboard/internal/document"
	"github.com/museboard/museboard/internal/generate"
	"github.com/museboard/museboard/internal/geom"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		img.Set(x, x, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func testBoard(t *testing.T) *document.Board {
	t.Helper()
	b := document.NewBoard("", "Moodboard: spring")
	els := []document.Element{
		document.NewNote(geom.Pt(0, 0), "Café ideas\nwith a long line of text that wraps", ""),
		document.NewImage(geom.Pt(300, 0), 120, 80, generate.DataURL(pngBytes(t), "image/png")),
		document.NewImage(geom.Pt(300, 200), 120, 80, "https://example.com/missing.png"),
		document.NewArrow(geom.Pt(100, 0), geom.Pt(240, 0), ""),
	}
	els[0].Rotation = 15
	for _, el := range els {
		if _, err := b.Add(el); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	return b
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, testBoard(t), nil); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestWritePDFEmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, document.NewBoard("", ""), nil); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected output")
	}
}

func TestNewLayout(t *testing.T) {
	note := document.NewNote(geom.Pt(100, 50), "", "")
	l := NewLayout([]document.Element{note})
	if l.Scale != 1 {
		t.Fatalf("scale = %v, want 1", l.Scale)
	}
	if l.Page.Wd != 200+2*Margin || l.Page.Ht != 150+2*Margin {
		t.Fatalf("page = %+v", l.Page)
	}
	got := l.Map(geom.Pt(0, -25))
	if !geom.ApproxEqual(got, geom.Pt(Margin, Margin), 1e-9) {
		t.Fatalf("top-left maps to %v", got)
	}

	huge := document.NewImage(geom.Pt(0, 0), 40000, 100, "x")
	l = NewLayout([]document.Element{huge})
	if l.Scale >= 1 {
		t.Fatalf("scale = %v, want < 1", l.Scale)
	}
	if math.Abs(l.Page.Wd-MaxPageSide) > 1e-6 {
		t.Fatalf("page width = %v, want %v", l.Page.Wd, MaxPageSide)
	}
}

func TestArrowHead(t *testing.T) {
	if ArrowHead(geom.Pt(1, 1), geom.Pt(1, 1), 10) != nil {
		t.Fatal("zero-length arrow should have no head")
	}
	head := ArrowHead(geom.Pt(0, 0), geom.Pt(100, 0), 10)
	if len(head) != 3 {
		t.Fatalf("head has %d points", len(head))
	}
	if head[0] != geom.Pt(100, 0) {
		t.Fatalf("tip = %v", head[0])
	}
	for _, p := range head[1:] {
		if p.X >= 100 || math.Abs(p.Sub(head[0]).Len()-10) > 1e-9 {
			t.Fatalf("barb %v not behind tip", p)
		}
	}
	if math.Abs(head[1].Y+head[2].Y) > 1e-9 {
		t.Fatalf("barbs not symmetric: %v %v", head[1], head[2])
	}
}

func TestParseColor(t *testing.T) {
	c := ParseColor("#ff0000", "#000000")
	if r, g, b := c.RGB255(); r != 255 || g != 0 || b != 0 {
		t.Fatalf("got %d,%d,%d", r, g, b)
	}
	c = ParseColor("red", document.DefaultNoteColor)
	if c.Hex() != document.DefaultNoteColor {
		t.Fatalf("fallback = %s", c.Hex())
	}
}

func TestTextColor(t *testing.T) {
	if l, _, _ := TextColor(ParseColor("#fef08a", "")).Lab(); l > 0.5 {
		t.Fatal("light background should get dark text")
	}
	if l, _, _ := TextColor(ParseColor("#1f2937", "")).Lab(); l < 0.5 {
		t.Fatal("dark background should get light text")
	}
}

type boards map[string]*document.Board

func (b boards) Board(_ context.Context, id string) (*document.Board, error) {
	if board, ok := b[id]; ok {
		return board, nil
	}
	return nil, ErrBoardNotFound
}

type failing struct{}

func (failing) Board(context.Context, string) (*document.Board, error) {
	return nil, errors.New("loop stopped")
}

func serve(src BoardSource, path string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/boards/{boardId}/export.pdf", NewHandler(src, nil).ExportPDF).Methods(http.MethodGet)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestExportHandler(t *testing.T) {
	board := testBoard(t)
	src := boards{board.ID: board}

	rec := serve(src, "/boards/"+board.ID+"/export.pdf")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Moodboard--spring.pdf"`) {
		t.Fatalf("content disposition = %q", cd)
	}

	if rec := serve(src, "/boards/board_missing/export.pdf"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing board status = %d", rec.Code)
	}
	if rec := serve(failing{}, "/boards/x/export.pdf"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("failing source status = %d", rec.Code)
	}
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"":           "board",
		"  ":         "board",
		"My Board":   "My-Board",
		"plan_v2-a":  "plan_v2-a",
		"a/b\\c.pdf": "a-b-c-pdf",
	}
	for in, want := range tests {
		if got := Filename(in); got != want {
			t.Errorf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}
