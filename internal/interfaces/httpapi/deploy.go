package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/deploy"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const maxWebhookBodyBytes = 256 << 10

// DeployRunner rebuilds the static site.
type DeployRunner interface {
	Run(ctx context.Context) (deploy.Result, error)
}

type deployResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Event    string `json:"event,omitempty"`
	Delivery string `json:"delivery,omitempty"`
}

// DeployHandler is the GitHub webhook that triggers a site rebuild. Its
// responses are plain JSON, not the API envelope.
type DeployHandler struct {
	token  string
	runner DeployRunner
	logger *logging.Logger
}

func NewDeployHandler(token string, runner DeployRunner, logger *logging.Logger) *DeployHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DeployHandler{token: strings.TrimSpace(token), runner: runner, logger: logger}
}

func (h *DeployHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Deploy")
	defer span.End()

	if h.token == "" {
		writeDeployJSON(w, http.StatusInternalServerError, deployResponse{Error: "DEPLOY_TOKEN is not configured on server"})
		return
	}
	provided := r.URL.Query().Get("token")
	if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		h.logger.WarnContext(ctx, "deploy webhook rejected", "remote_addr", resolveClientIP(ctx, r))
		writeDeployJSON(w, http.StatusUnauthorized, deployResponse{Error: "Unauthorized"})
		return
	}

	// The payload is not used; drain it so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxWebhookBodyBytes))

	event := r.Header.Get("X-GitHub-Event")
	delivery := r.Header.Get("X-GitHub-Delivery")
	h.logger.InfoContext(ctx, "deploy webhook accepted", "event", event, "delivery", delivery)

	if h.runner == nil {
		writeDeployJSON(w, http.StatusInternalServerError, deployResponse{Error: "Build failed", Event: event, Delivery: delivery})
		return
	}

	result, err := h.runner.Run(ctx)
	switch {
	case errors.Is(err, deploy.ErrBuildInProgress):
		writeDeployJSON(w, http.StatusConflict, deployResponse{Error: "Build already in progress", Event: event, Delivery: delivery})
	case err != nil:
		h.logger.WarnContext(ctx, "deploy webhook build failed", "event", event, "delivery", delivery, "error", err)
		writeDeployJSON(w, http.StatusInternalServerError, deployResponse{Error: "Build failed", Event: event, Delivery: delivery})
	default:
		h.logger.InfoContext(ctx, "deploy webhook build finished", "event", event, "delivery", delivery, "duration_ms", result.Duration.Milliseconds())
		writeDeployJSON(w, http.StatusOK, deployResponse{OK: true, Message: "Rebuilt successfully", Event: event, Delivery: delivery})
	}
}

func writeDeployJSON(w http.ResponseWriter, status int, payload deployResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}
