package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// formFile builds a FileHeader the same way net/http does for multipart requests.
func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newTestService(t *testing.T, maxSize int64) Service {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewService(NewMemoryRepository(), store, maxSize, zap.NewNop())
}

func TestUploadImage(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	f, err := svc.Upload(ctx, formFile(t, "office.png", pngBytes(t, 640, 320)), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.ContentType)
	assert.Equal(t, "office.png", f.Filename)
	assert.Equal(t, "prov-1", f.OwnerID)
	require.NotNil(t, f.ThumbnailPath)

	ok, err := svc.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, _, err := svc.Download(ctx, f.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, f.Size, int64(len(data)))

	rc, _, err = svc.DownloadThumbnail(ctx, f.ID)
	require.NoError(t, err)
	thumb, _, err := image.Decode(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), storage.ThumbnailWidth)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), storage.ThumbnailHeight)
}

func TestUploadRejects(t *testing.T) {
	ctx := context.Background()

	t.Run("non-image content", func(t *testing.T) {
		svc := newTestService(t, 0)
		_, err := svc.Upload(ctx, formFile(t, "fake.png", []byte("#!/bin/sh\necho hi\n")), "prov-1")
		assert.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("too large", func(t *testing.T) {
		svc := newTestService(t, 16)
		_, err := svc.Upload(ctx, formFile(t, "big.png", pngBytes(t, 50, 50)), "prov-1")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("empty", func(t *testing.T) {
		svc := newTestService(t, 0)
		_, err := svc.Upload(ctx, formFile(t, "empty.png", nil), "prov-1")
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestDelete(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	f, err := svc.Upload(ctx, formFile(t, "a.png", pngBytes(t, 10, 10)), "prov-1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "prov-2", f.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "prov-1", f.ID))

	_, _, err = svc.Download(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	ok, err := svc.Exists(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, svc.Delete(ctx, "prov-1", f.ID), ErrNotFound)
}
