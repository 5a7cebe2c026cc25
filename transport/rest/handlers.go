package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/settlers-backend/internal/apperror"
	"github.com/rocketscienceinc/settlers-backend/internal/engine"
	"github.com/rocketscienceinc/settlers-backend/internal/entity"
	"github.com/rocketscienceinc/settlers-backend/internal/snapshot"
)

const (
	defaultArchiveLimit = 20
	maxArchiveLimit     = 100
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	ListRooms(w http.ResponseWriter, r *http.Request)
	GetRoom(w http.ResponseWriter, r *http.Request)

	GetGame(w http.ResponseWriter, r *http.Request)
	GetLegalActions(w http.ResponseWriter, r *http.Request)

	ListArchived(w http.ResponseWriter, r *http.Request)
	GetArchived(w http.ResponseWriter, r *http.Request)
	GetArchivedSnapshot(w http.ResponseWriter, r *http.Request)
}

type roomService interface {
	ListRooms(ctx context.Context) ([]*entity.Room, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	GetGame(ctx context.Context, roomID string) (*engine.Game, error)
	GetArchived(ctx context.Context, id string) (*entity.ArchivedGame, error)
	ListArchived(ctx context.Context, limit int) ([]*entity.ArchivedGame, error)
}

type handlers struct {
	logger *slog.Logger
	rooms  roomService
}

func NewHandlers(logger *slog.Logger, rooms roomService) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

type errorResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type legalActionsResponse struct {
	Seat    entity.PlayerID     `json:"seat"`
	Phase   string              `json:"phase"`
	Actions []engine.ActionJSON `json:"actions"`
}

func (that *handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := that.rooms.ListRooms(r.Context())
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, rooms)
}

func (that *handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, room)
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.rooms.GetGame(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game.Redacted(nil))
}

func (that *handlers) GetLegalActions(w http.ResponseWriter, r *http.Request) {
	seat, err := strconv.Atoi(chi.URLParam(r, "seat"))
	if err != nil {
		that.writeError(w, apperror.ErrUnknownTarget)
		return
	}

	game, err := that.rooms.GetGame(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	if _, err = game.Player(entity.PlayerID(seat)); err != nil {
		that.writeError(w, err)
		return
	}

	resp := legalActionsResponse{
		Seat:    entity.PlayerID(seat),
		Phase:   game.Phase.Name(),
		Actions: make([]engine.ActionJSON, 0),
	}
	for _, action := range game.LegalActions(entity.PlayerID(seat)) {
		resp.Actions = append(resp.Actions, engine.ActionJSON{Action: action})
	}

	that.writeJSON(w, http.StatusOK, resp)
}

func (that *handlers) ListArchived(w http.ResponseWriter, r *http.Request) {
	limit := defaultArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxArchiveLimit)
	}

	games, err := that.rooms.ListArchived(r.Context(), limit)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, games)
}

func (that *handlers) GetArchived(w http.ResponseWriter, r *http.Request) {
	game, err := that.rooms.GetArchived(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

// GetArchivedSnapshot returns the final state of an archived game.
func (that *handlers) GetArchivedSnapshot(w http.ResponseWriter, r *http.Request) {
	archived, err := that.rooms.GetArchived(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	game, err := snapshot.Decode(archived.Snapshot)
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "method", "writeJSON", "error", err)
	}
}

func (that *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound), errors.Is(err, apperror.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrUnknownTarget):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", "writeError", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Reason: apperror.Reason(err), Message: err.Error()})
}
