package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
	log         *zap.Logger
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
		log:         logger,
	}
}

// Register creates a citizen or service-provider account and signs the user in.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Register(c.Request.Context(), user.RegisterRequest{
		Phone:        req.Phone,
		Password:     req.Password,
		DisplayName:  req.DisplayName,
		Role:         user.Role(req.Role),
		Organization: req.Organization,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrPhoneAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, user.ErrPhoneInvalid),
			errors.Is(err, user.ErrPasswordTooShort),
			errors.Is(err, user.ErrDisplayNameRequired),
			errors.Is(err, user.ErrOrganizationRequired),
			errors.Is(err, user.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	h.respondWithToken(c, http.StatusCreated, u)
}

// Login authenticates a user using phone number and password.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	u, err := h.userService.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": user.ErrInvalidCredentials.Error()})
		default:
			h.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	h.respondWithToken(c, http.StatusOK, u)
}

func (h *UserHandler) respondWithToken(c *gin.Context, status int, u *user.User) {
	token, err := h.jwtManager.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(status, LoginResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}

// Me returns the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// UpdateMe modifies the current user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var body UpdateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), auth.GetUserID(c), user.UpdateProfileRequest{
		DisplayName:  body.DisplayName,
		Phone:        body.Phone,
		Organization: body.Organization,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, user.ErrPhoneAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, user.ErrPhoneInvalid),
			errors.Is(err, user.ErrDisplayNameRequired),
			errors.Is(err, user.ErrOrganizationRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("update profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

func (h *UserHandler) ListFavorites(c *gin.Context) {
	ids, err := h.userService.ListFavorites(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		h.favoriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoritesResponse{Favorites: ids})
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	var uri FavoriteRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ids, err := h.userService.AddFavorite(c.Request.Context(), auth.GetUserID(c), uri.ServiceID)
	if err != nil {
		h.favoriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoritesResponse{Favorites: ids})
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	var uri FavoriteRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ids, err := h.userService.RemoveFavorite(c.Request.Context(), auth.GetUserID(c), uri.ServiceID)
	if err != nil {
		h.favoriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoritesResponse{Favorites: ids})
}

func (h *UserHandler) favoriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrServiceNotFound), errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error("favorites request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update favorites"})
	}
}
