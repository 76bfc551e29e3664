// Package api exposes the prediction query API over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/gridiron-engine/internal/engine"
	"github.com/yourusername/gridiron-engine/internal/models"
)

// PredictionReader is the slice of the prediction service the API needs.
type PredictionReader interface {
	GetPredictions(ctx context.Context, start, end time.Time) ([]*models.Prediction, error)
	GetLatestPrediction(ctx context.Context, gameID uuid.UUID) (*models.Prediction, error)
	GetPerformance(ctx context.Context, start, end time.Time) (*models.PerformanceSummary, error)
}

// Server serves the prediction query API.
type Server struct {
	predictions PredictionReader
	store       *engine.Store
	port        int
	timeout     time.Duration
	httpServer  *http.Server
	logger      *logrus.Logger
}

// NewServer creates an API server
func NewServer(predictions PredictionReader, store *engine.Store, port int, timeout time.Duration, logger *logrus.Logger) *Server {
	return &Server{
		predictions: predictions,
		store:       store,
		port:        port,
		timeout:     timeout,
		logger:      logger,
	}
}

// Router builds the route table. Split out so tests can drive handlers
// without binding a port.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/predictions", s.handleGetPredictions).Methods(http.MethodGet)
	api.HandleFunc("/predictions/{game_id}", s.handleGetGamePrediction).Methods(http.MethodGet)
	api.HandleFunc("/performance", s.handleGetPerformance).Methods(http.MethodGet)
	api.HandleFunc("/weights", s.handleGetWeights).Methods(http.MethodGet)

	return router
}

// Start runs the API server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("API server shutdown error")
		}
	}()

	s.logger.WithField("port", s.port).Info("API server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
