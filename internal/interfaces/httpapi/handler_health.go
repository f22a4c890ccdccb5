package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSummary never fails; unavailable parts come back empty and are listed in degraded.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSummary")
	defer span.End()

	summary := h.summaryService.Summary(ctx)
	writeSuccess(ctx, w, http.StatusOK, summaryDTO{
		Players:        summary.Players,
		Bets:           summary.Bets,
		VisibleMatches: summary.VisibleMatches,
		LastResults:    matchesToDTO(h.matchService.Now(), summary.LastResults),
		Degraded:       summary.Degraded,
	})
}

func notFoundAPI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.notFoundAPI")
	defer span.End()

	writeError(ctx, w, fmt.Errorf("%w: no route for %s %s", usecase.ErrNotFound, r.Method, r.URL.Path))
}
