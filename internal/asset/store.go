package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/museboard/museboard/internal/typeid"
)

// URLPrefix is where stored assets are served.
const URLPrefix = "/assets/"

var (
	ErrNotFound     = errors.New("asset not found")
	ErrInvalidImage = errors.New("invalid image")
)

// Asset describes a stored image.
type Asset struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Type   string `json:"type"`
}

// Store keeps images as PNG files in a directory. Asset ids are unique, so
// stored files never change.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Save decodes a PNG or JPEG image and stores it as PNG.
func (s *Store) Save(data []byte) (Asset, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return s.SaveImage(img)
}

// SaveImage encodes img as PNG under a fresh asset id.
func (s *Store) SaveImage(img image.Image) (Asset, error) {
	id := typeid.NewAssetID()
	path := filepath.Join(s.dir, id+".png")

	out, err := os.Create(path)
	if err != nil {
		return Asset{}, fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return Asset{}, fmt.Errorf("encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return Asset{}, fmt.Errorf("close asset file: %w", err)
	}

	b := img.Bounds()
	return Asset{
		ID:     id,
		URL:    URLPrefix + id + ".png",
		Width:  b.Dx(),
		Height: b.Dy(),
		Type:   "png",
	}, nil
}

// Load reads a stored asset by its URL. It satisfies the image loader used
// by generation.
func (s *Store) Load(url string) ([]byte, string, error) {
	path, err := s.path(url)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", fmt.Errorf("load %s: %w", url, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", url, err)
	}
	return data, "image/png", nil
}

// Delete removes a stored asset.
func (s *Store) Delete(id string) error {
	if err := typeid.Validate(id, typeid.PrefixAsset); err != nil {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if err := os.Remove(filepath.Join(s.dir, id+".png")); err != nil {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

// path maps an asset URL to its file, rejecting anything that is not a
// well-formed asset id.
func (s *Store) path(url string) (string, error) {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok {
		return "", fmt.Errorf("load %s: %w", url, ErrNotFound)
	}
	id, ok := strings.CutSuffix(name, ".png")
	if !ok || typeid.Validate(id, typeid.PrefixAsset) != nil {
		return "", fmt.Errorf("load %s: %w", url, ErrNotFound)
	}
	return filepath.Join(s.dir, id+".png"), nil
}
