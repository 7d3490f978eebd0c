// Package directoryserver is the companion identity-directory service: a
// small JSON API mapping player ids to identity tags, the durable system
// of record behind the link registry's cache.
package directoryserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rolelink/rolelink/internal/model"
	"github.com/rolelink/rolelink/internal/storage"
)

// handlers carries the API's dependencies
type handlers struct {
	logger  *slog.Logger
	storage storage.Storage
	now     func() time.Time
}

// lookupResponse is the GET /steamid/{id} payload
type lookupResponse struct {
	DiscordTag string `json:"discord_tag"`
}

// storeRequest is the POST / payload
type storeRequest struct {
	SteamID    uint64 `json:"steam_id"`
	DiscordTag string `json:"discord_tag"`
}

// NewRouter builds the directory API router
func NewRouter(logger *slog.Logger, store storage.Storage, tokenHash string) http.Handler {
	h := &handlers{logger: logger, storage: store, now: time.Now}

	r := mux.NewRouter()
	r.Use(recovery(logger))
	r.Use(logging(logger))

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(auth(tokenHash))
	authed.HandleFunc("/steamid/{id:[0-9]+}", h.lookup).Methods(http.MethodGet)
	authed.HandleFunc("/", h.store).Methods(http.MethodPost)

	return r
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return
	}

	record, err := h.storage.GetLink(r.Context(), model.PlayerID(id))
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			http.Error(w, "not linked", http.StatusNotFound)
			return
		}
		h.logger.Error("link lookup failed", slog.String("error", err.Error()))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{DiscordTag: string(record.IdentityTag)})
}

func (h *handlers) store(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SteamID == 0 || req.DiscordTag == "" {
		http.Error(w, "steam_id and discord_tag are required", http.StatusBadRequest)
		return
	}

	record := &model.LinkRecord{
		PlayerID:    model.PlayerID(req.SteamID),
		IdentityTag: model.IdentityTag(req.DiscordTag),
		LinkedAt:    h.now(),
	}
	if err := h.storage.SaveLink(r.Context(), record); err != nil {
		h.logger.Error("link save failed", slog.String("error", err.Error()))
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("link stored",
		slog.Uint64("player_id", req.SteamID),
		slog.String("identity_tag", req.DiscordTag))
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
