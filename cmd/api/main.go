package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/Dan9191/leads-service/internal/config"
	"github.com/Dan9191/leads-service/internal/handler"
	"github.com/Dan9191/leads-service/internal/middleware"
	"github.com/Dan9191/leads-service/internal/repository"
	"github.com/Dan9191/leads-service/internal/service"
	"github.com/Dan9191/leads-service/internal/storage"
	"github.com/Dan9191/leads-service/internal/utils/email"
	"github.com/Dan9191/leads-service/migrations"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Apply migrations
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatalf("Failed to set migration dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		logger.Fatalf("Failed to apply migrations: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	files, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Fatalf("Failed to initialize file store: %v", err)
	}
	sender := email.NewSender(cfg, logger)
	svc := service.NewService(repo, repo, files, sender, logger, cfg)
	h := handler.NewHandler(svc)

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/auth/users", h.Register).Methods("POST")
	r.HandleFunc("/auth/token", h.Login).Methods("POST")
	r.HandleFunc("/leads", h.CreateLead).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/leads").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(svc))
	authRouter.HandleFunc("", h.ListLeads).Methods("GET")
	authRouter.HandleFunc("/{id}/resume", h.DownloadResume).Methods("GET")
	authRouter.HandleFunc("/{id}", h.UpdateLead).Methods("PATCH")

	// Schedule the pending leads digest
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.DigestSchedule, func() {
		if err := svc.SendPendingLeadsDigest(); err != nil {
			logger.Errorf("Pending leads digest failed: %v", err)
		}
	}); err != nil {
		logger.Fatalf("Failed to schedule digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
