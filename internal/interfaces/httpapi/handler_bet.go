package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

// ListAllBets is the public all-bets board; player_id narrows it to one player.
func (h *Handler) ListAllBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllBets")
	defer span.End()

	query, err := betQueryFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.betService.ListAll(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list all bets failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betPageToDTO(h.matchService.Now(), page))
}

func (h *Handler) ListMyBets(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyBets")
	defer span.End()

	playerID, err := sessionPlayerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query, err := betQueryFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.betService.ListForPlayer(ctx, playerID, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list my bets failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betPageToDTO(h.matchService.Now(), page))
}

// GetMyBet returns the match card state for the signed-in player.
func (h *Handler) GetMyBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyBet")
	defer span.End()

	playerID, err := sessionPlayerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	m, err := h.matchService.GetVisible(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match for bet failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	item, exists, err := h.betService.GetForMatch(ctx, playerID, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my bet failed", "player_id", playerID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	now := h.matchService.Now()
	state := bet.StateOf(now, m, item, exists)
	out := matchBetDTO{Match: matchToDTO(now, m), State: string(state)}
	if exists {
		dto := betToDTO(item, state)
		out.Bet = &dto
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SubmitMyBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMyBet")
	defer span.End()

	playerID, err := sessionPlayerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchID := strings.TrimSpace(r.PathValue("matchID"))

	var req submitBetRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.betService.SubmitBet(ctx, usecase.SubmitBetInput{
		PlayerID:      playerID,
		MatchID:       matchID,
		PredictedHome: *req.PredictedHomeScore,
		PredictedAway: *req.PredictedAwayScore,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit bet failed", "player_id", playerID, "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, betToDTO(item, bet.StatePending))
}

func (h *Handler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyStats")
	defer span.End()

	playerID, err := sessionPlayerID(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.playerService.Stats(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my stats failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerStatsDTO{
		PlayerID:  stats.PlayerID,
		Name:      stats.Name,
		Points:    stats.Points,
		Correct:   stats.Correct,
		Total:     stats.Total,
		Rank:      stats.Rank,
		Accuracy:  stats.Accuracy,
		CreatedAt: formatTime(stats.CreatedAt),
	})
}
