package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-go-api/internal/config"
	"github.com/noah-isme/classroom-go-api/internal/database"
	"github.com/noah-isme/classroom-go-api/internal/handler"
	"github.com/noah-isme/classroom-go-api/internal/middleware"
	"github.com/noah-isme/classroom-go-api/internal/models"
	"github.com/noah-isme/classroom-go-api/internal/repository"
	"github.com/noah-isme/classroom-go-api/internal/router"
	"github.com/noah-isme/classroom-go-api/internal/service"
	"github.com/noah-isme/classroom-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.AttendanceRecord{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; analytics caching and cross-node live
	// feeds switch off when they are absent.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, analytics caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSUrl != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSUrl)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, live feed is single node only")
	}

	var generator ai.Generator
	if cfg.OpenAIAPIKey != "" {
		openAI, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai generator: %v", err)
		}
		generator = openAI
	} else {
		logger.Warn().Msg("openai api key not configured, question drafting disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	rootCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()

	liveFeed := service.NewLiveFeedService(natsConn, "classroom.scores", logger)
	liveFeed.Start(rootCtx)

	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, classRepo, validate, logger)
	classService := service.NewClassService(classRepo, userRepo, validate, logger)
	quizService := service.NewQuizService(quizRepo, classRepo, validate, generator, logger)
	submissionService := service.NewSubmissionService(submissionRepo, quizRepo, validate, liveFeed, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, classRepo, validate, logger)
	analyticsService := service.NewAnalyticsService(quizRepo, submissionRepo, classRepo, attendanceRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	exportService := service.NewExportService(submissionRepo, quizRepo, attendanceRepo, classRepo, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	classHandler := handler.NewClassHandler(classService, attendanceService, analyticsService, exportService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, exportService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	liveFeedHandler := handler.NewLiveFeedHandler(liveFeed, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		ClassHandler:      classHandler,
		QuizHandler:       quizHandler,
		SubmissionHandler: submissionHandler,
		AnalyticsHandler:  analyticsHandler,
		LiveFeedHandler:   liveFeedHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
