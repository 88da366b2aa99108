package share

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestBoardURL(t *testing.T) {
	l := NewLinker("https://boards.example.com/", 8080)

	if got := l.Base(); got != "https://boards.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", got)
	}
	if got := l.BoardURL("board_1", ""); got != "https://boards.example.com/b/board_1" {
		t.Errorf("unexpected url %s", got)
	}
	if got := l.BoardURL("board_1", "a+b"); got != "https://boards.example.com/b/board_1?token=a%2Bb" {
		t.Errorf("unexpected url %s", got)
	}
}

func TestBaseURLFromHost(t *testing.T) {
	got := BaseURL("", 9000)
	if !strings.HasPrefix(got, "http://") || !strings.HasSuffix(got, ":9000") {
		t.Errorf("expected http://<host>:9000, got %s", got)
	}
}

func TestQRCode(t *testing.T) {
	data, err := QRCode("https://boards.example.com/b/board_1", 0)
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultQRSize || b.Dy() != DefaultQRSize {
		t.Errorf("expected %dx%d, got %v", DefaultQRSize, DefaultQRSize, b)
	}
}
