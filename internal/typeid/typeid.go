package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixBoard = "board"
	PrefixNote  = "note"
	PrefixImage = "img"
	PrefixArrow = "arrow"
	PrefixAsset = "asset"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewBoardID() string { return New(PrefixBoard) }
func NewNoteID() string  { return New(PrefixNote) }
func NewImageID() string { return New(PrefixImage) }
func NewArrowID() string { return New(PrefixArrow) }
func NewAssetID() string { return New(PrefixAsset) }

// Prefix returns the type prefix of id.
func Prefix(id string) (string, error) {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	return parsed.Prefix(), nil
}

func Validate(id, expectedPrefix string) error {
	prefix, err := Prefix(id)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, prefix, id)
	}
	return nil
}
