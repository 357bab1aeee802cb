package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classroom-go-api/internal/config"
	"github.com/noah-isme/classroom-go-api/internal/handler"
	"github.com/noah-isme/classroom-go-api/internal/middleware"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	ClassHandler      *handler.ClassHandler
	QuizHandler       *handler.QuizHandler
	SubmissionHandler *handler.SubmissionHandler
	AnalyticsHandler  *handler.AnalyticsHandler
	LiveFeedHandler   *handler.LiveFeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Staff routes: class and quiz authoring, rosters, attendance, exports.
	staff := api.Group("", jwtMiddleware, middleware.RequireRole(models.RoleAdmin, models.RoleTutor))

	if deps.UserHandler != nil {
		deps.UserHandler.Register(staff.Group("/users"))
	}

	if deps.ClassHandler != nil {
		deps.ClassHandler.Register(staff.Group("/classes"))
	}

	if deps.QuizHandler != nil {
		quizzes := staff.Group("/quizzes")
		deps.QuizHandler.Register(quizzes)
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(quizzes)
		}
		if deps.AnalyticsHandler != nil {
			deps.AnalyticsHandler.RegisterQuiz(quizzes)
		}
		if deps.LiveFeedHandler != nil {
			deps.LiveFeedHandler.Register(quizzes)
		}
	}

	// Student routes: taking quizzes and the personal dashboard.
	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))

	if deps.QuizHandler != nil {
		studentQuizzes := student.Group("/quizzes")
		deps.QuizHandler.RegisterStudent(studentQuizzes)
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterStudent(studentQuizzes)
		}
	}

	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.RegisterStudent(student)
	}
}
