package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
)

type Handler struct {
	service lesson.Service
	log     *zap.Logger
}

func NewHandler(service lesson.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, log: logger}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := req.Filter()
	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err, "failed to list lessons")
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list), filter.Page, filter.PageSize, total))
}

func (h *Handler) ListMine(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := req.Filter()
	list, total, err := h.service.ListByProvider(c.Request.Context(), auth.GetUserID(c), filter)
	if err != nil {
		h.writeError(c, err, "failed to list lessons")
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

	l, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err, "failed to get lesson")
		return
	}
	c.JSON(http.StatusOK, NewResponse(l))
}

func (h *Handler) Create(c *gin.Context) {
	var body LessonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	l, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.Input())
	if err != nil {
		h.writeError(c, err, "failed to create lesson")
		return
	}
	c.JSON(http.StatusCreated, NewResponse(l))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body LessonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	l, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, body.Input())
	if err != nil {
		h.writeError(c, err, "failed to update lesson")
		return
	}
	c.JSON(http.StatusOK, NewResponse(l))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetUserID(c), req.ID); err != nil {
		h.writeError(c, err, "failed to delete lesson")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, lesson.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, lesson.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, lesson.ErrTitleRequired),
		errors.Is(err, lesson.ErrContentRequired),
		errors.Is(err, lesson.ErrCategoryRequired),
		errors.Is(err, lesson.ErrInvalidDifficulty),
		errors.Is(err, lesson.ErrInvalidDuration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func toResponses(list []*lesson.Lesson) []Response {
	items := make([]Response, len(list))
	for i, l := range list {
		items[i] = NewResponse(l)
	}
	return items
}
