package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/solenne/roadmapper/config"
	"github.com/solenne/roadmapper/database"
	adminctrl "github.com/solenne/roadmapper/internal/controller/admin"
	userctrl "github.com/solenne/roadmapper/internal/controller/user"
	"github.com/solenne/roadmapper/internal/dto"
	"github.com/solenne/roadmapper/internal/logger"
	"github.com/solenne/roadmapper/internal/model"
	"github.com/solenne/roadmapper/internal/prompt"
	"github.com/solenne/roadmapper/internal/repository"
	"github.com/solenne/roadmapper/internal/service"
	"github.com/solenne/roadmapper/internal/validation"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Roadmapper API
// @version 1.0
// @description Questionnaire-driven roadmap generation with versioned answers and AI-backed content.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuestionRepository,
			repository.NewResponseRepository,
			repository.NewRoadmapRepository,
			repository.NewGenerationRecordRepository,
		),

		fx.Provide(
			func(cfg *config.Config) validation.TokenEstimator {
				return validation.NewTokenEstimator(cfg.AI.DefaultModel)
			},
			validation.NewValidator,
			func() *prompt.Engine {
				return prompt.NewEngine(prompt.DefaultCatalog())
			},
			service.NewSettingsService,
			service.NewCompletionService,
			service.NewAnswerBufferService,
			service.NewResponseService,
			service.NewPreparationService,
			service.NewGenerationService,
			service.NewQuestionService,
			service.NewUserService,
		),

		fx.Provide(
			userctrl.NewResponseController,
			userctrl.NewRoadmapController,
			adminctrl.NewQuestionAdminController,
			adminctrl.NewUserAdminController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer wires the controllers under /api/v1 and
// manages the HTTP server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	completion service.CompletionService,
	responseCtrl *userctrl.ResponseController,
	roadmapCtrl *userctrl.RoadmapController,
	questionAdminCtrl *adminctrl.QuestionAdminController,
	userAdminCtrl *adminctrl.UserAdminController,
) {
	router.GET("/healthcheck", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "ok")
	})
	router.GET("/healthcheck/ai", func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 15*time.Second)
		defer cancel()
		if err := completion.HealthCheck(checkCtx); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: "AI provider unreachable", Details: []string{err.Error()}})
			return
		}
		ctx.String(http.StatusOK, "ok")
	})

	api := router.Group("/api/v1")
	responseCtrl.RegisterRoutes(api)
	roadmapCtrl.RegisterRoutes(api)

	admin := api.Group("/admin")
	questionAdminCtrl.RegisterRoutes(admin)
	userAdminCtrl.RegisterRoutes(admin)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Roadmapper API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.Response{},
		&model.ResponseBackup{},
		&model.Roadmap{},
		&model.GenerationRecord{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
