package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/lumenray/go-photon-mapper/pkg/material"
)

// OpenCaseInsensitive opens a file, retrying with a case-insensitive scan
// of the parent directory when the exact path does not exist. Wavefront
// files routinely reference textures with mismatched case.
func OpenCaseInsensitive(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err == nil {
		return file, nil
	}

	parent := filepath.Dir(path)
	entries, dirErr := os.ReadDir(parent)
	if dirErr != nil {
		return nil, err
	}

	lowerName := strings.ToLower(filepath.Base(path))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == lowerName {
			return os.Open(filepath.Join(parent, entry.Name()))
		}
	}
	return nil, err
}

// LoadTexture decodes an image file into a texture. PNG, JPEG, BMP and
// TIFF are supported; the format is sniffed from the file header.
func LoadTexture(path string) (*material.Texture, error) {
	file, err := OpenCaseInsensitive(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return material.NewTexture(filepath.Base(path), img), nil
}
