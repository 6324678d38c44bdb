package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	appControllers "github.com/edafa/admissions/internal/app/controllers"
	appMigrations "github.com/edafa/admissions/internal/app/migrations"
	appRepos "github.com/edafa/admissions/internal/app/repositories"
	appRoutes "github.com/edafa/admissions/internal/app/routes"
	appServices "github.com/edafa/admissions/internal/app/services"
	"github.com/edafa/admissions/internal/config"
	"github.com/edafa/admissions/internal/db"
	appMiddleware "github.com/edafa/admissions/internal/middleware"
	pkgAuth "github.com/edafa/admissions/internal/pkg/auth"
	"github.com/edafa/admissions/internal/pkg/email"
	"github.com/edafa/admissions/internal/pkg/filestorage"
	"github.com/edafa/admissions/internal/pkg/helpers"
	"github.com/edafa/admissions/internal/pkg/logger"
	"github.com/edafa/admissions/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         *appServices.AuthService
	CatalogService      *appServices.CatalogService
	IdentityService     *appServices.IdentityService
	FeeService          *appServices.FeeService
	AdmissionService    *appServices.AdmissionService
	InvoiceService      *appServices.InvoiceService
	PaymentService      *appServices.PaymentService
	EnrollmentService   *appServices.EnrollmentService
	AuthController      *appControllers.AuthController
	CatalogController   *appControllers.CatalogController
	AdmissionController *appControllers.AdmissionController
	PaymentController   *appControllers.PaymentController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Repos               *appRepos.Repositories
	JWTService          *pkgAuth.JWTService
	EmailService        email.EmailService
	FileStorage         *filestorage.LocalStorage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Pool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Startup proceeds without default data
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	fileStorageBaseURL := cfg.Storage.BaseURL
	if fileStorageBaseURL == "" {
		fileStorageBaseURL = cfg.Server.BaseURL + "/uploads"
	}
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.UploadDir, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.EmailService = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	defaultFee, err := decimal.NewFromString(cfg.Admission.DefaultApplicationFee)
	if err != nil {
		return nil, fmt.Errorf("invalid default application fee %q: %w", cfg.Admission.DefaultApplicationFee, err)
	}

	deps.IdentityService = appServices.NewIdentityService(deps.Repos.PersonRepository)
	deps.FeeService = appServices.NewFeeService(
		deps.Repos.ProductRepository,
		deps.Repos.AcademicRepository,
		defaultFee,
		cfg.Admission.Currency,
	)
	deps.CatalogService = appServices.NewCatalogService(deps.Repos.CycleRepository, deps.Repos.AcademicRepository)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)

	deps.AdmissionService = appServices.NewAdmissionService(
		deps.Repos.AdmissionRepository,
		deps.Repos.CycleRepository,
		deps.Repos.AcademicRepository,
		deps.Repos.SequenceRepository,
		deps.IdentityService,
		deps.FeeService,
		database,
		deps.EmailService,
		lgr,
	)
	deps.InvoiceService = appServices.NewInvoiceService(
		deps.Repos.InvoiceRepository,
		deps.Repos.AdmissionRepository,
		deps.Repos.CycleRepository,
		deps.Repos.ProductRepository,
		deps.Repos.SequenceRepository,
		deps.FeeService,
		database,
		lgr,
	)
	deps.PaymentService = appServices.NewPaymentService(
		deps.Repos.PaymentRepository,
		deps.Repos.AdmissionRepository,
		deps.Repos.InvoiceRepository,
		database,
		lgr,
	)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.AdmissionRepository,
		deps.Repos.CycleRepository,
		deps.Repos.StudentRepository,
		deps.Repos.PersonRepository,
		deps.Repos.AcademicRepository,
		deps.Repos.FeeTermRepository,
		deps.Repos.UserRepository,
		database,
		deps.EmailService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.CatalogController = appControllers.NewCatalogController(deps.CatalogService)
	deps.AdmissionController = appControllers.NewAdmissionController(
		deps.AdmissionService,
		deps.EnrollmentService,
		deps.InvoiceService,
		deps.FileStorage,
	)
	deps.PaymentController = appControllers.NewPaymentController(deps.PaymentService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CatalogController,
		deps.AdmissionController,
		deps.PaymentController,
		deps.AuthMiddleware,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
