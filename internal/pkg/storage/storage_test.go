package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "upload/ab/file.txt", bytes.NewBufferString("hello")))

	rc, err := s.Open(ctx, "upload/ab/file.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	require.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))
	_, err = s.Open(ctx, "upload/ab/file.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// Deleting twice is fine.
	assert.NoError(t, s.Delete(ctx, "upload/ab/file.txt"))

	t.Run("Rejects escaping paths", func(t *testing.T) {
		assert.ErrorIs(t, s.Save(ctx, "../outside.txt", bytes.NewBufferString("x")), ErrInvalidPath)
		_, err := s.Open(ctx, "/etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	for x := 0; x < 800; x++ {
		img.Set(x, 10, color.RGBA{R: 255, A: 255})
	}
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, img))

	out, err := Thumbnail(&src, ThumbnailWidth, ThumbnailHeight)
	require.NoError(t, err)

	decoded, format, err := image.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 100, decoded.Bounds().Dy())

	_, err = Thumbnail(bytes.NewBufferString("not an image"), 10, 10)
	assert.Error(t, err)
}
