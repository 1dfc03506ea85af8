// Package ocr wraps the Tesseract engine behind a per-locale
// recognition call.
package ocr

import (
	"fmt"
	"image"
	"os"

	"locshot/internal/locale"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
)

// EngineError indicates a failure inside the external OCR engine
// (missing language data, corrupt image, engine crash). It is a
// per-item error; the run continues with the next item.
type EngineError struct {
	Locale string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("ocr engine error (locale %s): %v", e.Locale, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Engine performs OCR through a single Tesseract client. The client is
// not safe for concurrent use; callers invoke Recognize strictly
// sequentially.
type Engine struct {
	client      *gosseract.Client
	tessdataDir string
	language    string
}

// NewEngine creates an OCR engine reading language data from
// tessdataDir. An unusable language-data path is the one engine
// failure that is fatal to a run, so it is checked here.
func NewEngine(tessdataDir string) (*Engine, error) {
	if tessdataDir != "" {
		if info, err := os.Stat(tessdataDir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("invalid language data path %q: %w", tessdataDir, err)
		}
	}

	client := gosseract.NewClient()
	if tessdataDir != "" {
		if err := client.SetTessdataPrefix(tessdataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language data path: %w", err)
		}
	}
	if err := client.SetLanguage(locale.DefaultProfile); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize OCR language: %w", err)
	}

	return &Engine{
		client:      client,
		tessdataDir: tessdataDir,
		language:    locale.DefaultProfile,
	}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize runs OCR on the (already cropped and enhanced) image using
// the language profile mapped to the locale code. Unknown codes fall
// back to the default profile; the lookup logs the warning.
func (e *Engine) Recognize(img image.Image, localeCode string) (string, error) {
	lang := locale.Profile(localeCode)
	if lang != e.language {
		if err := e.client.SetLanguage(lang); err != nil {
			return "", &EngineError{Locale: localeCode, Err: fmt.Errorf("failed to set language %s: %w", lang, err)}
		}
		e.language = lang
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", &EngineError{Locale: localeCode, Err: err}
	}

	// PSM 6 = assume a single uniform block of text; warning and menu
	// regions are exactly that.
	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", &EngineError{Locale: localeCode, Err: fmt.Errorf("failed to set PSM: %w", err)}
	}
	if err := e.client.SetImageFromBytes(data); err != nil {
		return "", &EngineError{Locale: localeCode, Err: fmt.Errorf("failed to set image: %w", err)}
	}

	text, err := e.client.Text()
	if err != nil {
		return "", &EngineError{Locale: localeCode, Err: fmt.Errorf("OCR failed: %w", err)}
	}
	return text, nil
}

// encodePNG converts the region to PNG bytes for Tesseract, upscaling
// small crops first (Tesseract degrades below ~150 px).
func encodePNG(img image.Image) ([]byte, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	h, w := src.Rows(), src.Cols()
	minDim := h
	if w < minDim {
		minDim = w
	}

	mat := src
	if minDim > 0 && minDim < 150 {
		scale := 150.0 / float64(minDim)
		scaled := gocv.NewMat()
		gocv.Resize(src, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
		src.Close()
		mat = scaled
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
