// Package share builds public links to boards and their QR codes.
package share

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/Showmax/go-fqdn"
	"github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

// Linker builds board links from a base URL.
type Linker struct {
	base string
}

// NewLinker uses publicURL when set. Otherwise the base is built from the
// machine's fully qualified host name and port, falling back to the plain
// host name.
func NewLinker(publicURL string, port int) *Linker {
	return &Linker{base: BaseURL(publicURL, port)}
}

func BaseURL(publicURL string, port int) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	host, err := fqdn.FqdnHostname()
	if err != nil || host == "" {
		host, _ = os.Hostname()
	}
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Base returns the base URL without a trailing slash.
func (l *Linker) Base() string { return l.base }

// BoardURL links to a board. A non-empty token is carried in the query so
// the link can be opened directly.
func (l *Linker) BoardURL(boardID, token string) string {
	u := l.base + "/b/" + url.PathEscape(boardID)
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}

// QRCode renders link as a PNG QR code of size x size pixels.
func QRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
