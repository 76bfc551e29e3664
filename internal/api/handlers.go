package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/yourusername/gridiron-engine/internal/models"
)

const windowDateLayout = "2006-01-02"

// defaultWindowDays is the lookback applied when no window is given.
const defaultWindowDays = 7

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseWindow reads optional start/end query parameters. Dates are
// inclusive; end is extended to the end of its day.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -defaultWindowDays)
	end := now

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse(windowDateLayout, v)
		if err != nil {
			return start, end, errors.New("invalid start date, expected YYYY-MM-DD")
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse(windowDateLayout, v)
		if err != nil {
			return start, end, errors.New("invalid end date, expected YYYY-MM-DD")
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if end.Before(start) {
		return start, end, errors.New("end date precedes start date")
	}

	return start, end, nil
}

func (s *Server) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := s.predictions.GetPredictions(r.Context(), start, end)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load predictions")
		writeError(w, http.StatusInternalServerError, "failed to load predictions")
		return
	}
	if predictions == nil {
		predictions = []*models.Prediction{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (s *Server) handleGetGamePrediction(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(mux.Vars(r)["game_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	prediction, err := s.predictions.GetLatestPrediction(r.Context(), gameID)
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no prediction for game")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to load prediction")
		writeError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleGetPerformance(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.predictions.GetPerformance(r.Context(), start, end)
	if err != nil {
		s.logger.WithError(err).Error("Failed to compute performance summary")
		writeError(w, http.StatusInternalServerError, "failed to compute performance summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetWeights(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()
	writeJSON(w, http.StatusOK, snapshot)
}
