package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

var errSelfDelete = fmt.Errorf("%w: administrators cannot delete their own account", usecase.ErrInvalidInput)

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	entries, err := h.playerService.Leaderboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "load leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, leaderboardEntryDTO{
			Rank:     entry.Player.RankPosition,
			PlayerID: entry.Player.ID,
			Name:     entry.Player.Name,
			Points:   entry.Player.Points,
			Correct:  entry.Player.CorrectPredictions,
			Total:    entry.Player.TotalPredictions,
			Accuracy: entry.Accuracy,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AdminListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminListPlayers")
	defer span.End()

	players, err := h.playerService.List(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "admin list players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AdminCreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminCreatePlayer")
	defer span.End()

	var req createPlayerRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.Create(ctx, usecase.CreatePlayerInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

func (h *Handler) AdminUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUpdatePlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	var req updatePlayerRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.Update(ctx, playerID, usecase.UpdatePlayerInput{
		Name:               req.Name,
		Email:              req.Email,
		Password:           req.Password,
		Role:               req.Role,
		Points:             req.Points,
		CorrectPredictions: req.CorrectPredictions,
		TotalPredictions:   req.TotalPredictions,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func (h *Handler) AdminDeletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminDeletePlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	if sess, ok := sessionFromContext(ctx); ok && sess.PlayerID == playerID {
		writeError(ctx, w, errSelfDelete)
		return
	}

	if err := h.playerService.Delete(ctx, playerID); err != nil {
		h.logger.WarnContext(ctx, "delete player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deleted": playerID})
}
