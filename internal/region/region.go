// Package region extracts the calibrated sub-image an item's text
// renders in.
package region

import (
	"fmt"
	"image"

	"locshot/pkg/geometry"

	"github.com/disintegration/imaging"
)

// RegionError indicates an invalid or uncalibrated rectangle. Items
// carrying one are skipped rather than sent to OCR.
type RegionError struct {
	Rect   geometry.RectInt
	Reason string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region error: %s (x=%d y=%d w=%d h=%d)",
		e.Reason, e.Rect.X, e.Rect.Y, e.Rect.Width, e.Rect.Height)
}

// Extract crops the rectangle out of the source image. The rectangle
// must have positive size and lie entirely inside the image bounds; the
// result has dimensions exactly (r.Width, r.Height).
func Extract(img image.Image, r geometry.RectInt) (*image.NRGBA, error) {
	if r.IsEmpty() {
		return nil, &RegionError{Rect: r, Reason: "not calibrated"}
	}

	b := img.Bounds()
	if r.X < b.Min.X || r.Y < b.Min.Y || r.Right() > b.Max.X || r.Bottom() > b.Max.Y {
		return nil, &RegionError{Rect: r, Reason: "outside image bounds"}
	}

	return imaging.Crop(img, image.Rect(r.X, r.Y, r.Right(), r.Bottom())), nil
}

// FromDrag converts a mouse-drag gesture (two corner points in image
// coordinates, in any order) into a normalized rectangle suitable for
// storing as an item's region.
func FromDrag(x1, y1, x2, y2 float64) geometry.RectInt {
	r := geometry.RectFromPoints(geometry.NewPoint2D(x1, y1), geometry.NewPoint2D(x2, y2))
	return r.ToInt()
}
