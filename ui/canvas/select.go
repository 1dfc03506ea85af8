// Package canvas provides the screenshot view with drag-to-select
// region calibration.
package canvas

import (
	"image"
	"image/color"

	"locshot/internal/region"
	"locshot/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// SelectCanvas displays a screenshot at native resolution and turns a
// mouse drag into a normalized region rectangle.
type SelectCanvas struct {
	widget.BaseWidget

	img     *fynecanvas.Image
	overlay *fynecanvas.Rectangle
	size    fyne.Size

	selecting bool
	start     fyne.Position
	current   fyne.Position

	// OnSelect receives the normalized rectangle in image pixel
	// coordinates when a drag completes.
	OnSelect func(r geometry.RectInt)
}

// NewSelectCanvas creates an empty selection canvas.
func NewSelectCanvas() *SelectCanvas {
	c := &SelectCanvas{
		img:     fynecanvas.NewImageFromImage(nil),
		overlay: fynecanvas.NewRectangle(color.Transparent),
	}
	c.img.FillMode = fynecanvas.ImageFillOriginal
	c.overlay.StrokeColor = color.NRGBA{R: 255, G: 64, B: 64, A: 255}
	c.overlay.StrokeWidth = 2
	c.overlay.Hide()
	c.ExtendBaseWidget(c)
	return c
}

// SetImage replaces the displayed screenshot and clears any selection.
func (c *SelectCanvas) SetImage(img image.Image) {
	c.img.Image = img
	if img != nil {
		b := img.Bounds()
		c.size = fyne.NewSize(float32(b.Dx()), float32(b.Dy()))
	} else {
		c.size = fyne.Size{}
	}
	c.overlay.Hide()
	c.selecting = false
	c.Refresh()
}

// SetRegion shows an already-stored rectangle, e.g. when reviewing an
// item that was calibrated earlier.
func (c *SelectCanvas) SetRegion(r geometry.RectInt) {
	if r.IsEmpty() {
		c.overlay.Hide()
	} else {
		c.overlay.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
		c.overlay.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
		c.overlay.Show()
	}
	c.Refresh()
}

// MinSize returns the native image size.
func (c *SelectCanvas) MinSize() fyne.Size {
	return c.size
}

// Dragged updates the rubber-band selection.
func (c *SelectCanvas) Dragged(ev *fyne.DragEvent) {
	if !c.selecting {
		c.selecting = true
		c.start = ev.Position
	}
	c.current = ev.Position

	r := region.FromDrag(
		float64(c.start.X), float64(c.start.Y),
		float64(c.current.X), float64(c.current.Y),
	)
	c.overlay.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	c.overlay.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	c.overlay.Show()
	c.Refresh()
}

// DragEnd finalizes the selection and reports the normalized rect.
func (c *SelectCanvas) DragEnd() {
	if !c.selecting {
		return
	}
	c.selecting = false

	r := region.FromDrag(
		float64(c.start.X), float64(c.start.Y),
		float64(c.current.X), float64(c.current.Y),
	)
	if r.IsEmpty() {
		return
	}
	if c.OnSelect != nil {
		c.OnSelect(r)
	}
}

// CreateRenderer builds the image + overlay stack.
func (c *SelectCanvas) CreateRenderer() fyne.WidgetRenderer {
	stack := container.NewWithoutLayout(c.img, c.overlay)
	c.img.Move(fyne.NewPos(0, 0))
	return widget.NewSimpleRenderer(stack)
}

// Resize keeps the image at native resolution within the widget.
func (c *SelectCanvas) Resize(size fyne.Size) {
	c.BaseWidget.Resize(size)
	c.img.Resize(c.size)
}
