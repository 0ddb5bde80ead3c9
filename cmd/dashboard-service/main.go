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
	"github.com/joho/godotenv"

	"github.com/medshare/portal-dashboard/internal/health"
	"github.com/medshare/portal-dashboard/internal/logview"
	"github.com/medshare/portal-dashboard/internal/requests"
	"github.com/medshare/portal-dashboard/internal/upstream"
	"github.com/medshare/portal-dashboard/pkg/config"
	"github.com/medshare/portal-dashboard/pkg/logger"
	"github.com/medshare/portal-dashboard/pkg/monitoring"
)

func main() {
	// Local .env files are optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting Portal Dashboard Service")

	metrics := monitoring.NewMetricsCollector("portal-dashboard")

	// Upstream clients
	coreClient := upstream.NewCoreClient(&cfg.Upstream, log, metrics)
	ledgerClient := upstream.NewLedgerClient(&cfg.Upstream, log, metrics)

	// Request submission stack
	snapshotRepo := requests.NewSnapshotRepository(coreClient, log)
	validator := requests.NewValidator(snapshotRepo, log)
	debounced := requests.NewDebouncedValidator(validator, cfg.DebounceWindow(), log)
	submissionService := requests.NewSubmissionService(coreClient, snapshotRepo, validator, log, metrics)
	requestHandlers := requests.NewHandlers(submissionService, snapshotRepo, coreClient, debounced, log)

	// Log viewing stack
	logService := logview.NewService(ledgerClient, log)
	logHandlers := logview.NewHandlers(logService, snapshotRepo, log)

	// Health polling stack
	monitor := health.NewMonitor(ledgerClient, cfg.PollInterval(), cfg.Health.RecentWindow, log, metrics)
	healthHandlers := health.NewHandlers(monitor, log)

	// Warm the request snapshot; staleness is tolerated, so a failure
	// here only delays the first classification
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := snapshotRepo.Refresh(warmCtx); err != nil {
		log.WithError(err).Warn("Initial snapshot refresh failed")
	}
	warmCancel()

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	monitor.Start(monitorCtx)

	// Setup HTTP router
	router := mux.NewRouter()
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)
	if cfg.Monitoring.Enabled {
		router.Use(metrics.HTTPMiddleware)
		router.Handle(cfg.Monitoring.MetricsPath, metrics.Handler()).Methods("GET")
	}
	router.HandleFunc(cfg.Monitoring.HealthPath, handleLiveness).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	requestHandlers.RegisterRoutes(apiRouter)
	logHandlers.RegisterRoutes(apiRouter)
	healthHandlers.RegisterRoutes(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down Portal Dashboard Service")

	monitorCancel()
	monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown server gracefully")
	}

	log.Info("Portal Dashboard Service stopped")
}

// handleLiveness answers the service liveness probe
func handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%q}`, time.Now().Format(time.RFC3339))
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			log.HTTPRequest(r.Method, r.URL.Path, r.RemoteAddr, wrapper.statusCode, time.Since(start).Milliseconds())
		})
	}
}

// corsMiddleware handles CORS headers for the browser dashboard
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
