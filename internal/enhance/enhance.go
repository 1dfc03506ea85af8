// Package enhance prepares cropped screenshot regions for OCR.
package enhance

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Embedded-display screenshots are typically low contrast; a linear
// rescale brightens them before sharpening.
const (
	rescaleGain   = 1.2
	rescaleOffset = 15
)

// sharpenKernel is a unity-gain high-pass kernel emphasizing the center
// pixel. Edge pixels are handled by imaging's border extension.
var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

// ImageError indicates an unusable input image (missing, corrupt, or
// zero-size). It is a per-item error, never fatal to a run.
type ImageError struct {
	Reason string
	Err    error
}

func (e *ImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("image error: %s", e.Reason)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Enhance runs the OCR preprocessing pipeline on a cropped region:
// grayscale, linear contrast rescale, then a 3x3 sharpening
// convolution. The result depends only on the input image.
func Enhance(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, &ImageError{Reason: "nil image"}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageError{Reason: "zero-size image"}
	}

	gray := imaging.Grayscale(img)
	rescale(gray)
	return imaging.Convolve3x3(gray, sharpenKernel, nil), nil
}

// rescale applies output = input*gain + offset in place, clamped to
// [0, 255]. The image is already grayscale so all channels carry the
// same luminance value.
func rescale(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		v := float64(img.Pix[i])*rescaleGain + rescaleOffset
		p := clampByte(v)
		img.Pix[i] = p
		img.Pix[i+1] = p
		img.Pix[i+2] = p
	}
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
