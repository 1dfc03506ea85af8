// Package screenshot loads device screenshots and owns the
// itemId/locale file naming convention.
package screenshot

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// FileError indicates a screenshot that could not be used: the file is
// missing, or present but unreadable as an image. Per-item, never
// fatal to a run.
type FileError struct {
	Path    string
	Missing bool
	Err     error
}

func (e *FileError) Error() string {
	if e.Missing {
		return fmt.Sprintf("screenshot not found: %s", e.Path)
	}
	return fmt.Sprintf("screenshot unreadable: %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ImageName returns the screenshot filename for an item in a locale.
func ImageName(itemID, localeCode string) string {
	return fmt.Sprintf("%s_%s.png", itemID, localeCode)
}

// CropName returns the debug-crop filename for an item in a locale.
func CropName(itemID, localeCode string) string {
	return fmt.Sprintf("%s_%s_crop.png", itemID, localeCode)
}

// Load reads the screenshot for an item from the image folder. A
// non-empty nameOverride (the sheet's photo name column) wins over the
// derived naming convention.
func Load(imageDir, nameOverride, itemID, localeCode string) (image.Image, error) {
	name := nameOverride
	if name == "" {
		name = ImageName(itemID, localeCode)
	}
	return LoadFile(imageDir, name)
}

// LoadFile reads a screenshot by explicit filename. Some sheets carry
// a photo name column overriding the derived convention.
func LoadFile(imageDir, name string) (image.Image, error) {
	path := filepath.Join(imageDir, name)

	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Missing: os.IsNotExist(err), Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	return img, nil
}

// SaveCrop writes the cropped region into the crop folder for later
// inspection. Failures are reported but a missing debug crop never
// affects the item's verdict.
func SaveCrop(img image.Image, cropDir, itemID, localeCode string) error {
	if err := os.MkdirAll(cropDir, 0o755); err != nil {
		return fmt.Errorf("failed to create crop folder: %w", err)
	}

	path := filepath.Join(cropDir, CropName(itemID, localeCode))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create crop file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode crop: %w", err)
	}
	return nil
}
