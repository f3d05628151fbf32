package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	annHttp "github.com/nekogravitycat/civic-directory-backend/internal/announcement/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/file"
	fileHttp "github.com/nekogravitycat/civic-directory-backend/internal/file/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	lessonHttp "github.com/nekogravitycat/civic-directory-backend/internal/lesson/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	listingHttp "github.com/nekogravitycat/civic-directory-backend/internal/listing/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/logging"
	"github.com/nekogravitycat/civic-directory-backend/internal/quiz"
	quizHttp "github.com/nekogravitycat/civic-directory-backend/internal/quiz/http"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
	userHttp "github.com/nekogravitycat/civic-directory-backend/internal/user/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	UserService         user.Service
	AnnouncementService announcement.Service
	Directory           listing.Directory
	LessonService       lesson.Service
	QuizService         quiz.Service
	FileService         file.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured log line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logging.RequestLogger(cfg.Logger), logging.Recovery(cfg.Logger))

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// optionalAuth: Attaches the identity when present, never rejects.
	optionalAuth := auth.AuthOptional(cfg.JWTManager)
	// providerMiddleware: Further checks if the authenticated user is a service provider.
	providerMiddleware := auth.RequireRole(string(user.RoleProvider))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager, cfg.Logger)
	annHandler := annHttp.NewHandler(cfg.AnnouncementService, cfg.Logger)
	listingHandler := listingHttp.NewHandler(cfg.Directory, cfg.Logger)
	lessonHandler := lessonHttp.NewHandler(cfg.LessonService, cfg.Logger)
	quizHandler := quizHttp.NewHandler(cfg.QuizService, cfg.Logger)
	fileHandler := fileHttp.NewHandler(cfg.FileService, cfg.Logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		annHttp.RegisterRoutes(v1, annHandler, optionalAuth, authMiddleware, providerMiddleware)
		listingHttp.RegisterRoutes(v1, listingHandler, authMiddleware, providerMiddleware)
		lessonHttp.RegisterRoutes(v1, lessonHandler, authMiddleware, providerMiddleware)
		quizHttp.RegisterRoutes(v1, quizHandler, optionalAuth, authMiddleware, providerMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware, providerMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
