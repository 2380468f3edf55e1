// Package router assembles the emulator's HTTP surface: the auth endpoints
// and the row endpoints for tasks, pomodoro sessions and the profile.
package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/handler"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/middleware"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/repository"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/service"
)

type Options struct {
	APIKey      string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	Logger      *zap.Logger
}

func NewFromDB(database *sql.DB, opts Options) *gin.Engine {
	userRepo := repository.NewUserRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	profileRepo := repository.NewProfileRepository(database)

	authService := service.NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL)
	taskService := service.NewTaskService(taskRepo)
	sessionService := service.NewSessionService(sessionRepo, taskRepo)
	profileService := service.NewProfileService(profileRepo)

	return New(
		authService,
		handler.NewAuthHandler(authService),
		handler.NewTaskHandler(taskService),
		handler.NewSessionHandler(sessionService),
		handler.NewProfileHandler(profileService),
		opts,
	)
}

func New(
	authService middleware.TokenParser,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	sessionHandler *handler.SessionHandler,
	profileHandler *handler.ProfileHandler,
	opts Options,
) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Logger(logger), middleware.CORS(opts.CORSOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := engine.Group("/auth/v1")
	auth.Use(middleware.APIKey(opts.APIKey))
	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/token", authHandler.Token)
	auth.GET("/user", middleware.Auth(authService), authHandler.User)

	rest := engine.Group("/rest/v1")
	rest.Use(middleware.APIKey(opts.APIKey), middleware.Auth(authService))

	rest.GET("/tasks", taskHandler.List)
	rest.POST("/tasks", taskHandler.Create)
	rest.PATCH("/tasks/:id", taskHandler.Update)
	rest.DELETE("/tasks/:id", taskHandler.Delete)

	rest.GET("/pomodoro_sessions", sessionHandler.List)
	rest.POST("/pomodoro_sessions", sessionHandler.Create)
	rest.PATCH("/pomodoro_sessions/:id", sessionHandler.Finalize)

	rest.GET("/profile", profileHandler.Get)
	rest.PATCH("/profile", profileHandler.Update)

	return engine
}
