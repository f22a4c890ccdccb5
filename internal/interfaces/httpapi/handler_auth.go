package httpapi

import (
	"net/http"
	"time"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sess, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "remote_addr", resolveClientIP(ctx, r), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, loginResponseDTO{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		User:      authUserToDTO(user),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Logout")
	defer span.End()

	sess, _ := sessionFromContext(ctx)
	if err := h.authService.Logout(ctx, sess.Token); err != nil {
		h.logger.WarnContext(ctx, "logout failed", "player_id", sess.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"signed_out": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	sess, _ := sessionFromContext(ctx)
	user, err := h.authService.CurrentUser(ctx, sess.Token)
	if err != nil {
		h.logger.WarnContext(ctx, "load current user failed", "player_id", sess.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, authUserToDTO(user))
}
