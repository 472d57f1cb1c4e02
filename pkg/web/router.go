package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/kotrzina/knue-meals/pkg/config"
	"github.com/kotrzina/knue-meals/pkg/menu"
	"github.com/kotrzina/knue-meals/pkg/prometheus"
	"github.com/sirupsen/logrus"
)

type HandlerRepository struct {
	service *menu.Service
	config  *config.Config
	monitor *prometheus.Monitor
	logger  *logrus.Logger
}

func NewHandlerRepository(service *menu.Service, conf *config.Config, monitor *prometheus.Monitor, logger *logrus.Logger) *HandlerRepository {
	return &HandlerRepository{
		service: service,
		config:  conf,
		monitor: monitor,
		logger:  logger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(hr *HandlerRepository) *mux.Router {
	router := mux.NewRouter()
	router.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			handler.ServeHTTP(w, r)
			d := time.Since(start)

			hr.logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"query":      r.URL.RawQuery,
				"remoteAddr": r.RemoteAddr,
				"durationMs": d.Milliseconds(),
				"duration":   d.String(),
			}).Info("Request")
		})
	})

	router.Handle("/metrics", hr.metricsHandler())
	router.HandleFunc("/health", hr.healthHandler()).Methods(http.MethodGet)
	router.HandleFunc("/meals", hr.dateMealsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/staff/meals", hr.staffMealsHandler()).Methods(http.MethodGet)

	return router
}

// StartServer starts HTTP server
// It listens for SIGINT and SIGTERM signals and gracefully stops the server
func StartServer(router *mux.Router, port int, logger *logrus.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	failed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()
	logger.Infof("Server Started on port %d", port)

	select {
	case <-done:
		logger.Info("Server Stopped")
	case err := <-failed:
		return fmt.Errorf("could not listen: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server Exited Properly")
	return nil
}
