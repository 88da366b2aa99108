package generate

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseDataURL decodes a base64 data URL such as
// "data:image/png;base64,iVBOR...".
func ParseDataURL(src string) (data []byte, mimeType string, err error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, "", fmt.Errorf("parse data url: missing data: prefix")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("parse data url: missing payload")
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("parse data url: unsupported encoding %q", encoding)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("parse data url: %w", err)
	}
	return data, mimeType, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
