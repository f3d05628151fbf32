package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
)

type Handler struct {
	service announcement.Service
	log     *zap.Logger
}

func NewHandler(service announcement.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, log: logger}
}

// ListPublic returns the announcements currently visible to citizens.
func (h *Handler) ListPublic(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := req.Filter()
	list, total, err := h.service.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list public announcements failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list announcements"})
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list), filter.Page, filter.PageSize, total))
}

// ListMine returns every announcement owned by the authenticated provider.
func (h *Handler) ListMine(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := req.Filter()
	list, total, err := h.service.ListByProvider(c.Request.Context(), auth.GetUserID(c), filter)
	if err != nil {
		h.log.Error("list provider announcements failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list announcements"})
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list), filter.Page, filter.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	a, err := h.service.GetVisible(c.Request.Context(), req.ID, auth.GetUserID(c))
	if err != nil {
		h.writeError(c, err, "failed to get announcement")
		return
	}

	c.JSON(http.StatusOK, NewResponse(a))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	a, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), announcement.CreateRequest{
		Title:     body.Title,
		Content:   body.Content,
		Category:  announcement.Category(body.Category),
		Status:    announcement.Status(body.Status),
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		h.writeError(c, err, "failed to create announcement")
		return
	}

	c.JSON(http.StatusCreated, NewResponse(a))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	a, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, announcement.UpdateRequest{
		Title:     body.Title,
		Content:   body.Content,
		Category:  announcement.Category(body.Category),
		Status:    announcement.Status(body.Status),
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		h.writeError(c, err, "failed to update announcement")
		return
	}

	c.JSON(http.StatusOK, NewResponse(a))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetUserID(c), req.ID); err != nil {
		h.writeError(c, err, "failed to delete announcement")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, announcement.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "announcement not found"})
	case errors.Is(err, announcement.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, announcement.ErrTitleRequired),
		errors.Is(err, announcement.ErrContentRequired),
		errors.Is(err, announcement.ErrInvalidCategory),
		errors.Is(err, announcement.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func toResponses(list []*announcement.Announcement) []Response {
	items := make([]Response, len(list))
	for i, a := range list {
		items[i] = NewResponse(a)
	}
	return items
}
