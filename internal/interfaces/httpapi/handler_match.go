package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	items, err := h.matchService.ListVisible(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(h.matchService.Now(), items))
}

func (h *Handler) ListMatchResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchResults")
	defer span.End()

	items, err := h.matchService.LastResults(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list match results failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(h.matchService.Now(), items))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.GetVisible(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(h.matchService.Now(), item))
}

func (h *Handler) AdminListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminListMatches")
	defer span.End()

	items, err := h.matchService.ListAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "admin list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(h.matchService.Now(), items))
}

func (h *Handler) AdminCreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminCreateMatch")
	defer span.End()

	var req matchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Create(ctx, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(h.matchService.Now(), item))
}

func (h *Handler) AdminUpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUpdateMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req matchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Update(ctx, matchID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(h.matchService.Now(), item))
}

func (h *Handler) AdminDeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminDeleteMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.matchService.Delete(ctx, matchID); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deleted": matchID})
}

func (h *Handler) AdminSettleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminSettleMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	var req settleMatchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.SettleMatch(ctx, matchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		h.logger.WarnContext(ctx, "settle match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
