package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor resizes uploaded pictures.
type ImageProcessor struct {
	quality int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{quality: 80}
}

// GenerateThumbnail fits the source image into maxWidth x maxHeight and
// returns it encoded as JPEG.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	out, err := p.fit(content, maxWidth, maxHeight)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}

// Resize shrinks the image to fit the bounding box. Smaller images keep
// their size but are still re-encoded as JPEG.
func (p *ImageProcessor) Resize(content io.Reader, maxWidth, maxHeight int) ([]byte, error) {
	return p.fit(content, maxWidth, maxHeight)
}

func (p *ImageProcessor) fit(content io.Reader, maxWidth, maxHeight int) ([]byte, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var out image.Image = img
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		out = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
