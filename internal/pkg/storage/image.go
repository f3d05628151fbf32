package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailWidth  = 200
	ThumbnailHeight = 200
)

// Thumbnail decodes an image and returns a JPEG scaled to fit within maxWidth x maxHeight.
func Thumbnail(content io.Reader, maxWidth, maxHeight int) (*bytes.Buffer, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
