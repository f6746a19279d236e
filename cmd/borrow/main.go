package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/library-service/internal/audit"
	bookrepository "github.com/tair/library-service/internal/book/repository"
	"github.com/tair/library-service/internal/borrow/client"
	httpDelivery "github.com/tair/library-service/internal/borrow/delivery/http"
	"github.com/tair/library-service/internal/borrow/repository"
	"github.com/tair/library-service/internal/borrow/usecase/command"
	"github.com/tair/library-service/internal/borrow/usecase/query"
	"github.com/tair/library-service/kafka"
	"github.com/tair/library-service/pkg/database"
	"github.com/tair/library-service/pkg/logger"
	"github.com/tair/library-service/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "borrow-service")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)

	logLevel := getEnv("LOG_LEVEL", "info")
	logger.SetLevel(logLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Str("log_level", logLevel).
		Msg("Starting borrow service")

	// Initialize tracer
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "librarydb"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Initialize repositories and run migrations
	repo := repository.NewGormBorrowRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	bookRepo := bookrepository.NewGormBookRepository(db)

	logger.Logger.Info().Msg("Database initialized successfully")

	// User service client verifies on-behalf targets
	userServiceURL := getEnv("USER_SERVICE_URL", "http://localhost:8080")
	directory := client.NewUserServiceClient(userServiceURL)

	// Build lifecycle command and projection handlers
	commands := &httpDelivery.CommandHandlers{
		RequestBorrowHandler: command.NewRequestBorrowHandler(repo, directory),
		ApproveBorrowHandler: command.NewApproveBorrowHandler(repo),
		RejectBorrowHandler:  command.NewRejectBorrowHandler(repo),
		RequestReturnHandler: command.NewRequestReturnHandler(repo),
		ApproveReturnHandler: command.NewApproveReturnHandler(repo),
		RejectReturnHandler:  command.NewRejectReturnHandler(repo),
	}
	queries := &httpDelivery.QueryHandlers{
		GetRecordHandler:      query.NewGetRecordHandler(repo),
		ListByUserHandler:     query.NewListByUserHandler(repo),
		ListAllHandler:        query.NewListAllHandler(repo),
		PendingBorrowsHandler: query.NewListPendingBorrowsHandler(repo),
		PendingReturnsHandler: query.NewListPendingReturnsHandler(repo),
		AvailabilityHandler:   query.NewCheckAvailabilityHandler(repo, bookRepo),
	}

	handler := httpDelivery.NewBorrowHandlerWithDI(commands, queries, repo)

	logger.Logger.Info().
		Str("user_service_url", userServiceURL).
		Msg("Borrow handler initialized with user service client")

	// Kafka is optional; without brokers the lifecycle still works, only
	// loan events and the audit trail are skipped.
	kafkaBrokers := getEnv("KAFKA_BROKERS", "")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")

		publisher, err := kafka.NewPublisher(brokers)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to create Kafka publisher - loan events disabled")
		} else {
			defer publisher.Close()
			handler.SetKafkaPublisher(publisher)
		}

		if auditRepo := startAuditConsumer(brokers, dbConfig); auditRepo != nil {
			handler.SetAuditTrail(auditRepo)
		}
	} else {
		logger.Logger.Warn().Msg("KAFKA_BROKERS not set - loan events disabled")
	}

	// Start HTTP server
	httpPort := getEnv("HTTP_PORT", "8082")
	go startHTTPServer(handler, sqlDB, httpPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
}

// startAuditConsumer subscribes to loan events and appends them to the
// audit trail kept in a plain SQL table. Returns the repository so the
// handler can serve the trail back, or nil when the trail is disabled.
func startAuditConsumer(brokers []string, dbConfig database.Config) *audit.PostgresRepository {
	auditDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to open audit database - audit trail disabled")
		return nil
	}

	auditRepo := audit.NewPostgresRepository(auditDB)
	if err := auditRepo.InitSchema(); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to init audit schema - audit trail disabled")
		return nil
	}

	groupID := getEnv("KAFKA_GROUP_ID", "borrow-audit")
	consumer, err := kafka.NewConsumer(brokers, groupID, []string{kafka.TopicLoanActivity})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create Kafka consumer - audit trail disabled")
		return nil
	}

	recorder := audit.NewRecorder(auditRepo)
	recorder.Register(consumer)

	if err := consumer.Start(context.Background()); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer - audit trail disabled")
		return nil
	}

	return auditRepo
}

func startHTTPServer(handler *httpDelivery.BorrowHandler, db *sql.DB, port string) {
	// Setup router
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	handler.RegisterHealthCheck(router, db)

	// Swagger UI
	httpDelivery.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	logger.Logger.Info().
		Str("port", port).
		Str("metrics_endpoint", "/metrics").
		Msg("HTTP server started")

	if err := http.ListenAndServe(":"+port, c.Handler(router)); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
