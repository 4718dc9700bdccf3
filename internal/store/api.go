package store

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/liyue/tracemap/internal/domain"
)

// APIHandlers exposes the record store as the data service's JSON API.
type APIHandlers struct {
	logger *slog.Logger
	store  RecordStore
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, store RecordStore) *APIHandlers {
	return &APIHandlers{
		logger: logger,
		store:  store,
	}
}

// NewRouter wires the data service routes.
func NewRouter(logger *slog.Logger, handlers *APIHandlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/timestamps", handlers.handleTimestamps)
	mux.HandleFunc("/api/contacts/", handlers.handleContactsAt)
	mux.HandleFunc("/api/bounds", handlers.handleBounds)
	mux.HandleFunc("/api/user/", handlers.handleUser)
	mux.HandleFunc("/api/trajectory/", handlers.handleTrajectory)
	mux.HandleFunc("/api/records", handlers.handleRecords)

	return loggingMiddleware(logger, mux)
}

func (h *APIHandlers) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	timestamps, err := h.store.AllTimestamps(r.Context())
	if err != nil {
		h.logger.Error("failed to list timestamps", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list timestamps")
		return
	}
	if timestamps == nil {
		timestamps = []int64{}
	}
	respondJSON(w, http.StatusOK, timestamps)
}

func (h *APIHandlers) handleContactsAt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/contacts/"), "/")
	timestamp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be an integer")
		return
	}

	records, err := h.store.RecordsAt(r.Context(), timestamp)
	if err != nil {
		h.logger.Error("failed to fetch contacts", "error", err, "timestamp", timestamp)
		writeError(w, http.StatusInternalServerError, "failed to fetch contacts")
		return
	}
	respondJSON(w, http.StatusOK, nonNilRecords(records))
}

func (h *APIHandlers) handleBounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	bounds, err := h.store.Bounds(r.Context())
	if err != nil {
		h.logger.Error("failed to compute bounds", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute bounds")
		return
	}
	respondJSON(w, http.StatusOK, bounds)
}

// handleUser serves /api/user/{id}/contacts and /api/user/{id}/secondary-contacts.
func (h *APIHandlers) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/user/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return
	}

	var records []domain.ContactRecord
	switch parts[1] {
	case "contacts":
		records, err = h.store.DirectRecordsForUser(r.Context(), userID)
	case "secondary-contacts":
		records, err = h.store.SecondaryRecordsForUser(r.Context(), userID)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch user records", "error", err, "userId", userID, "kind", parts[1])
		writeError(w, http.StatusInternalServerError, "failed to fetch user records")
		return
	}
	respondJSON(w, http.StatusOK, nonNilRecords(records))
}

func (h *APIHandlers) handleTrajectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/trajectory/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id1, err1 := strconv.Atoi(parts[0])
	id2, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "user ids must be integers")
		return
	}

	points, err := h.store.PairTrajectory(r.Context(), id1, id2)
	if err != nil {
		h.logger.Error("failed to fetch trajectory", "error", err, "id1", id1, "id2", id2)
		writeError(w, http.StatusInternalServerError, "failed to fetch trajectory")
		return
	}
	if points == nil {
		points = []domain.TrackPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

func (h *APIHandlers) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var records []domain.ContactRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if err := h.store.InsertRecords(r.Context(), records); err != nil {
		h.logger.Error("failed to insert records", "error", err, "count", len(records))
		writeError(w, http.StatusInternalServerError, "failed to insert records")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"status": "ok", "inserted": len(records)})
}

func nonNilRecords(records []domain.ContactRecord) []domain.ContactRecord {
	if records == nil {
		return []domain.ContactRecord{}
	}
	return records
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
