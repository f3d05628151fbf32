package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/announcement"
	"github.com/nekogravitycat/civic-directory-backend/internal/api"
	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
	"github.com/nekogravitycat/civic-directory-backend/internal/file"
	"github.com/nekogravitycat/civic-directory-backend/internal/lesson"
	"github.com/nekogravitycat/civic-directory-backend/internal/listing"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/cache"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/storage"
	"github.com/nekogravitycat/civic-directory-backend/internal/pkg/validation"
	"github.com/nekogravitycat/civic-directory-backend/internal/quiz"
	"github.com/nekogravitycat/civic-directory-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	// DBPool selects the postgres repositories; nil keeps everything in memory.
	DBPool *pgxpool.Pool
	// Cache backs the service directory; nil uses an in-process cache.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Storage holds uploaded files.
	Storage        storage.Storage
	MaxUploadBytes int64

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
}

// Services exposes the use-case layer, e.g. for the in-process client.
type Services struct {
	Users         user.Service
	Announcements announcement.Service
	Directory     listing.Directory
	Lessons       lesson.Service
	Quizzes       quiz.Service
	Files         file.Service
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Services   Services
}

// FormEnums are the enumerations checked by binding tags.
func FormEnums() []validation.Enum {
	return []validation.Enum{
		{Tag: "announcement_category", Values: validation.Values(announcement.Categories)},
		{Tag: "announcement_status", Values: validation.Values(announcement.Statuses)},
		{Tag: "user_role", Values: validation.Values(user.Roles)},
		{Tag: "difficulty", Values: validation.Values(lesson.Difficulties)},
		{Tag: "weekday", Values: listing.Weekdays},
	}
}

type repositories struct {
	users         user.Repository
	announcements announcement.Repository
	services      listing.Repository
	lessons       lesson.Repository
	quizzes       quiz.Repository
	files         file.Repository
}

func newRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		return repositories{
			users:         user.NewMemoryRepository(),
			announcements: announcement.NewMemoryRepository(),
			services:      listing.NewMemoryRepository(),
			lessons:       lesson.NewMemoryRepository(),
			quizzes:       quiz.NewMemoryRepository(),
			files:         file.NewMemoryRepository(),
		}
	}
	return repositories{
		users:         user.NewPgxRepository(pool),
		announcements: announcement.NewPgxRepository(pool),
		services:      listing.NewPgxRepository(pool),
		lessons:       lesson.NewPgxRepository(pool),
		quizzes:       quiz.NewPgxRepository(pool),
		files:         file.NewRepository(pool),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemoryCache()
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("file storage is required")
	}
	if err := validation.Register(FormEnums()...); err != nil {
		return nil, fmt.Errorf("register form validators: %w", err)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	repos := newRepositories(cfg.DBPool)
	log := cfg.Logger

	// File Module
	fileService := file.NewService(repos.files, cfg.Storage, cfg.MaxUploadBytes, log.Named("file"))

	// Service Directory Module
	directory := listing.NewDirectory(repos.services, cfg.Cache, cfg.CacheTTL, fileService, log.Named("listing"))

	// User Module
	userService := user.NewService(repos.users, passwordHasher, directory, log.Named("user"))

	// Announcement Module
	annService := announcement.NewService(repos.announcements, userService, log.Named("announcement"))

	// Lesson & Quiz Modules
	lessonService := lesson.NewService(repos.lessons, log.Named("lesson"))
	quizService := quiz.NewService(repos.quizzes, lessonService, log.Named("quiz"))

	services := Services{
		Users:         userService,
		Announcements: annService,
		Directory:     directory,
		Lessons:       lessonService,
		Quizzes:       quizService,
		Files:         fileService,
	}

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              log,
		UserService:         userService,
		AnnouncementService: annService,
		Directory:           directory,
		LessonService:       lessonService,
		QuizService:         quizService,
		FileService:         fileService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Services:   services,
	}, nil
}
