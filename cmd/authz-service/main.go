package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	internalauthz "github.com/Yi-Jacob/mentalspace-ehr-sub008/internal/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/internal/compliance"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/config"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/database"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/monitoring"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)
	log.Info("Starting authorization service", "version", "1.0.0")

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize stores
	assignmentRepo := internalauthz.NewAssignmentRepository(db, log)
	if err := assignmentRepo.InitializeSchema(context.Background()); err != nil {
		log.Error("Failed to initialize role assignment schema", "error", err)
		os.Exit(1)
	}
	accessLogRepo := compliance.NewAccessLogRepository(db, log)

	// Initialize the authorization core
	catalog, err := internalauthz.NewPermissionCatalog()
	if err != nil {
		log.Error("Failed to build permission catalog", "error", err)
		os.Exit(1)
	}

	graph, err := internalauthz.NewRoleGraph()
	if err != nil {
		log.Error("Failed to build role graph", "error", err)
		os.Exit(1)
	}

	evaluator := internalauthz.NewEvaluator(catalog, graph)
	mutations := internalauthz.NewRoleMutationService(assignmentRepo, graph, evaluator, log)

	// Initialize the compliance monitor
	registry := compliance.NewStaticRegistry(&cfg.Compliance)
	monitor := compliance.NewMonitor(accessLogRepo, assignmentRepo, registry, &cfg.Compliance, log)

	// Initialize HTTP surface
	validator := internalauthz.NewTokenValidator(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	router := mux.NewRouter()
	router.HandleFunc(cfg.Monitoring.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")

	if cfg.Monitoring.Enabled {
		router.Handle(cfg.Monitoring.MetricsPath, monitoring.Handler()).Methods("GET")
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(internalauthz.ActorMiddleware(validator, log))

	authzHandlers := internalauthz.NewHandlers(mutations, evaluator, assignmentRepo, log)
	authzHandlers.RegisterRoutes(api)

	complianceHandlers := compliance.NewHandlers(monitor, evaluator, log)
	complianceHandlers.RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in background
	go func() {
		log.Info("Authorization service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down authorization service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Authorization service stopped")
}
