package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/request"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/response"
)

type Handler struct {
	directory listing.Directory
	log       *zap.Logger
}

func NewHandler(directory listing.Directory, logger *zap.Logger) *Handler {
	return &Handler{directory: directory, log: logger}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	q := req.ToQuery()
	list, total, err := h.directory.List(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(toResponses(list), q.Page, q.PageSize, total))
}

// Featured returns the highlighted services for the home screen.
func (h *Handler) Featured(c *gin.Context) {
	list, err := h.directory.Featured(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toResponses(list)})
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.directory.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	s, err := h.directory.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(s))
}

// ListMine returns the listings owned by the authenticated provider.
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.directory.ListByProvider(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toResponses(list)})
}

func (h *Handler) Create(c *gin.Context) {
	var body ServiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.directory.Create(c.Request.Context(), auth.GetUserID(c), body.Input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResponse(s))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body ServiceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.directory.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, body.Input())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(s))
}

func (h *Handler) Delete(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.directory.Delete(c.Request.Context(), auth.GetUserID(c), req.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto AppErrors; anything else is a 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listing.ErrNotFound):
		err = apperror.NotFound(listing.ErrNotFound)
	case errors.Is(err, listing.ErrForbidden):
		err = apperror.Forbidden(listing.ErrForbidden)
	case errors.Is(err, listing.ErrNameRequired),
		errors.Is(err, listing.ErrDescriptionRequired),
		errors.Is(err, listing.ErrCategoryRequired),
		errors.Is(err, listing.ErrAddressRequired),
		errors.Is(err, listing.ErrInvalidPhone),
		errors.Is(err, listing.ErrInvalidHours),
		errors.Is(err, listing.ErrInvalidGuide),
		errors.Is(err, listing.ErrImageNotFound):
		err = apperror.BadRequest(err)
	default:
		h.log.Error("service directory request failed", zap.Error(err))
	}
	response.Error(c, err)
}

func toResponses(list []*listing.Service) []Response {
	items := make([]Response, len(list))
	for i, s := range list {
		items[i] = NewResponse(s)
	}
	return items
}
