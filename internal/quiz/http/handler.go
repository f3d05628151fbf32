package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
	"github.com/nekogravitycat/civic-directory-backend/internal/quiz"
)

type Handler struct {
	service quiz.Service
	log     *zap.Logger
}

func NewHandler(service quiz.Service, logger *zap.Logger) *Handler {
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
		h.writeError(c, err, "failed to list quizzes")
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list, ""), filter.Page, filter.PageSize, total))
}

func (h *Handler) ListMine(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	filter := req.Filter()
	list, total, err := h.service.ListByProvider(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err, "failed to list quizzes")
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list, userID), filter.Page, filter.PageSize, total))
}

// Get shows answers only to the owning provider.
func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err, "failed to get quiz")
		return
	}
	viewer := auth.GetUserID(c)
	c.JSON(http.StatusOK, NewResponse(q, viewer != "" && viewer == q.ProviderID))
}

func (h *Handler) Submit(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body SubmitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.service.Submit(c.Request.Context(), uri.ID, body.Answers)
	if err != nil {
		h.writeError(c, err, "failed to grade quiz")
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(res))
}

func (h *Handler) Create(c *gin.Context) {
	var body QuizBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	q, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.Input())
	if err != nil {
		h.writeError(c, err, "failed to create quiz")
		return
	}
	c.JSON(http.StatusCreated, NewResponse(q, true))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body QuizBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	q, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, body.Input())
	if err != nil {
		h.writeError(c, err, "failed to update quiz")
		return
	}
	c.JSON(http.StatusOK, NewResponse(q, true))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.Delete(c.Request.Context(), auth.GetUserID(c), req.ID); err != nil {
		h.writeError(c, err, "failed to delete quiz")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, quiz.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, quiz.ErrTitleRequired),
		errors.Is(err, quiz.ErrCategoryRequired),
		errors.Is(err, quiz.ErrInvalidDifficulty),
		errors.Is(err, quiz.ErrNoQuestions),
		errors.Is(err, quiz.ErrInvalidQuestion),
		errors.Is(err, quiz.ErrInvalidPassingScore),
		errors.Is(err, quiz.ErrLessonNotFound),
		errors.Is(err, quiz.ErrAnswerCount),
		errors.Is(err, quiz.ErrInvalidAnswer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func toResponses(list []*quiz.Quiz, viewerID string) []Response {
	items := make([]Response, len(list))
	for i, q := range list {
		items[i] = NewResponse(q, viewerID != "" && viewerID == q.ProviderID)
	}
	return items
}
