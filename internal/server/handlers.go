package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/liyue/tracemap/internal/delta"
	"github.com/liyue/tracemap/internal/domain"
	"github.com/liyue/tracemap/internal/prefetch"
	"github.com/liyue/tracemap/internal/repository"
)

// APIHandlers exposes HTTP handlers for the engine API.
type APIHandlers struct {
	logger     *slog.Logger
	repo       *repository.Repository
	delta      *delta.Engine
	prefetcher *prefetch.Controller
}

// NewAPIHandlers constructs an APIHandlers instance. The prefetcher may be
// nil, which disables look-ahead warming.
func NewAPIHandlers(logger *slog.Logger, repo *repository.Repository, deltaEngine *delta.Engine, prefetcher *prefetch.Controller) *APIHandlers {
	return &APIHandlers{
		logger:     logger,
		repo:       repo,
		delta:      deltaEngine,
		prefetcher: prefetcher,
	}
}

type contactsResponse struct {
	Timestamp int64                `json:"timestamp"`
	Contacts  []domain.ContactPair `json:"contacts"`
}

type userContactsResponse struct {
	UserID   int                  `json:"userId"`
	Kind     string               `json:"kind"`
	Contacts []domain.ContactPair `json:"contacts"`
}

type trajectoryResponse struct {
	LoID   int                 `json:"loId"`
	HiID   int                 `json:"hiId"`
	Points []domain.TrackPoint `json:"points"`
}

func (h *APIHandlers) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	timestamps, err := h.repo.Timestamps(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch timestamps", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch timestamps")
		return
	}
	if timestamps == nil {
		timestamps = []int64{}
	}
	respondJSON(w, http.StatusOK, timestamps)
}

// handleContacts serves /api/contacts/{ts} and /api/contacts/{ts}/new.
func (h *APIHandlers) handleContacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/contacts/"), "/")
	parts := strings.Split(rest, "/")

	onlyNew := false
	switch {
	case len(parts) == 1:
	case len(parts) == 2 && parts[1] == "new":
		onlyNew = true
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be an integer")
		return
	}

	var pairs []domain.ContactPair
	if onlyNew {
		pairs, err = h.delta.NewContactsAt(r.Context(), timestamp)
	} else {
		pairs, err = h.repo.ContactsAt(r.Context(), timestamp)
	}
	if err != nil {
		h.logger.Error("failed to fetch contacts", "error", err, "timestamp", timestamp, "new", onlyNew)
		writeError(w, http.StatusBadGateway, "failed to fetch contacts")
		return
	}
	if pairs == nil {
		pairs = []domain.ContactPair{}
	}

	// Warm the next snapshot so scrubbing forward hits the cache.
	if h.prefetcher != nil {
		h.prefetcher.PrefetchNext(r.Context(), timestamp)
	}

	respondJSON(w, http.StatusOK, contactsResponse{Timestamp: timestamp, Contacts: pairs})
}

func (h *APIHandlers) handleBounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	bounds, err := h.repo.Bounds(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch bounds", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch bounds")
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

	var kind repository.ContactKind
	switch parts[1] {
	case "contacts":
		kind = repository.KindDirect
	case "secondary-contacts":
		kind = repository.KindSecondary
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	pairs, err := h.repo.UserContacts(r.Context(), userID, kind)
	if err != nil {
		h.logger.Error("failed to fetch user contacts", "error", err, "userId", userID, "kind", kind)
		writeError(w, http.StatusBadGateway, "failed to fetch user contacts")
		return
	}
	if pairs == nil {
		pairs = []domain.ContactPair{}
	}
	respondJSON(w, http.StatusOK, userContactsResponse{UserID: userID, Kind: string(kind), Contacts: pairs})
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

	points, err := h.repo.Trajectory(r.Context(), id1, id2)
	if err != nil {
		h.logger.Error("failed to fetch trajectory", "error", err, "id1", id1, "id2", id2)
		writeError(w, http.StatusBadGateway, "failed to fetch trajectory")
		return
	}
	if points == nil {
		points = []domain.TrackPoint{}
	}

	pair := domain.CanonicalPair(id1, id2)
	respondJSON(w, http.StatusOK, trajectoryResponse{LoID: pair.Lo, HiID: pair.Hi, Points: points})
}

func (h *APIHandlers) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	h.repo.ClearCache()
	h.logger.Info("cache cleared", "requestId", requestIDFrom(r.Context()))
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
