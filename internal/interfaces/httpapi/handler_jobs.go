package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

func (h *Handler) RecalculateRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateRankings")
	defer span.End()

	started := time.Now()
	if err := h.playerService.RecalculateRankings(ctx); err != nil {
		h.logger.WarnContext(ctx, "recalculate rankings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"recalculated": true,
		"duration_ms":  time.Since(started).Milliseconds(),
	})
}

func (h *Handler) RunSettlements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettlements")
	defer span.End()

	h.runSettlements(ctx, w, "admin")
}

// RunSettleJob is the scheduler entry point for settling finished matches.
func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	h.runSettlements(ctx, w, "internal-job")
}

func (h *Handler) runSettlements(ctx context.Context, w http.ResponseWriter, trigger string) {
	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, err := h.settlementService.SettleFinished(ctx)
	if err != nil {
		traceID, _ := traceMetaFromContext(ctx)
		h.logger.WarnContext(ctx, "settlement run failed", "trigger", trigger, "trace_id", traceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
