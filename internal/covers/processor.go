package covers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrTooLarge    = errors.New("image is too large")
	ErrUnsupported = errors.New("only jpeg and png images are supported")
)

const (
	coverWidth  = 600
	coverHeight = 900

	// maxPixels bounds the decoded canvas; compressed size says little about it
	maxPixels = 40_000_000
)

// Processor validates uploaded images and re-encodes them as bounded JPEG covers
type Processor struct {
	MaxSize int64
}

// NewProcessor creates a processor; a non-positive maxSize falls back to 5MB
func NewProcessor(maxSize int64) *Processor {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &Processor{MaxSize: maxSize}
}

// Validate checks size, dimensions and format without decoding the whole image
func (p *Processor) Validate(data []byte) error {
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), p.MaxSize)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return fmt.Errorf("%w: %dx%d pixels, limit %d", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("%w: got %s", ErrUnsupported, format)
	}
}

// Process validates data, fits it into the cover box and returns it as JPEG
func (p *Processor) Process(data []byte) ([]byte, error) {
	if err := p.Validate(data); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	if b := img.Bounds(); b.Dx() > coverWidth || b.Dy() > coverHeight {
		img = imaging.Fit(img, coverWidth, coverHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("cannot encode cover: %w", err)
	}
	return buf.Bytes(), nil
}
