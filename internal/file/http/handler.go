package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/file"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
)

const formFieldName = "file"

type Handler struct {
	fileService file.Service
	log         *zap.Logger
}

func NewHandler(fileService file.Service, logger *zap.Logger) *Handler {
	return &Handler{fileService: fileService, log: logger}
}

// Upload stores a multipart image sent in the "file" field.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile(formFieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formFieldName + " is required"})
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), fileHeader, auth.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(f))
}

// Info returns file metadata.
func (h *Handler) Info(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	f, err := h.fileService.Get(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(f))
}

// ServeFile serves the file content by ID
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	stream, fileInfo, err := h.fileService.Download(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, fileInfo.ContentType, fileInfo.Filename)
}

// ServeThumbnail serves the thumbnail image by file ID
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	stream, fileInfo, err := h.fileService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer stream.Close()

	// Thumbnails are always JPEG
	h.stream(c, stream, "image/jpeg", fileInfo.Filename+"_thumb.jpg")
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), auth.GetUserID(c), req.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stream(c *gin.Context, r io.Reader, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(filename))
	c.Header("Cache-Control", "public, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		// Response already started
		h.log.Warn("stream file failed", zap.Error(err))
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, file.ErrNotFound), errors.Is(err, file.ErrNoThumbnail):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, file.ErrEmpty), errors.Is(err, file.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error("file request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
