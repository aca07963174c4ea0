package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

type ctxKey struct{}

type errorResponse struct {
	Error string `json:"error"`
}

type movesResponse struct {
	Seat  rings.Player      `json:"seat"`
	Moves []rings.Placement `json:"moves"`
}

func (that *Server) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *Server) getLegalMoves(w http.ResponseWriter, r *http.Request) {
	seat, err := rings.ParsePlayer(r.URL.Query().Get("seat"))
	if err != nil {
		that.writeError(w, err)
		return
	}

	moves, err := that.gameUseCase.LegalMoves(r.Context(), chi.URLParam(r, "id"), seat)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if moves == nil {
		moves = []rings.Placement{}
	}

	that.writeJSON(w, http.StatusOK, movesResponse{Seat: seat, Moves: moves})
}

func (that *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	playerID, _ := r.Context().Value(ctxKey{}).(string)

	results, err := that.gameUseCase.History(r.Context(), playerID)
	if err != nil {
		that.writeError(w, err)
		return
	}

	if results == nil {
		that.writeJSON(w, http.StatusOK, []any{})
		return
	}

	that.writeJSON(w, http.StatusOK, results)
}

// authenticate resolves the Bearer session token into a player ID.
func (that *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			that.writeError(w, apperror.ErrUnauthorized)
			return
		}

		playerID, err := that.authService.ParseToken(token)
		if err != nil {
			that.writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, playerID)))
	})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
	}

	that.writeJSON(w, status, errorResponse{Error: message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, apperror.ErrNotFound.Error()
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, apperror.ErrUnauthorized.Error()
	case errors.Is(err, rings.ErrInvalidPlayer):
		return http.StatusBadRequest, rings.ErrInvalidPlayer.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
