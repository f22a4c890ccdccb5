package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, loginLimiter *IPRateLimiter) {
	mux.Handle("POST /v1/auth/login", RateLimitByIP(loginLimiter, http.HandlerFunc(handler.Login)))
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/matches/results", handler.ListMatchResults)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler, auth SessionAuthenticator) {
	signedIn := func(fn http.HandlerFunc) http.Handler {
		return RequireSession(auth, fn)
	}

	mux.Handle("GET /v1/auth/me", signedIn(handler.Me))
	mux.Handle("POST /v1/auth/logout", signedIn(handler.Logout))
	mux.Handle("GET /v1/me/bets", signedIn(handler.ListMyBets))
	mux.Handle("GET /v1/me/bets/{matchID}", signedIn(handler.GetMyBet))
	mux.Handle("PUT /v1/me/bets/{matchID}", signedIn(handler.SubmitMyBet))
	mux.Handle("GET /v1/me/stats", signedIn(handler.GetMyStats))
	mux.Handle("GET /v1/leaderboard", signedIn(handler.Leaderboard))
	mux.Handle("GET /v1/summary", signedIn(handler.GetSummary))
	mux.Handle("GET /v1/bets", signedIn(handler.ListAllBets))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, auth SessionAuthenticator) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return RequireSession(auth, RequireAdmin(fn))
	}

	mux.Handle("GET /v1/admin/matches", admin(handler.AdminListMatches))
	mux.Handle("POST /v1/admin/matches", admin(handler.AdminCreateMatch))
	mux.Handle("PUT /v1/admin/matches/{matchID}", admin(handler.AdminUpdateMatch))
	mux.Handle("DELETE /v1/admin/matches/{matchID}", admin(handler.AdminDeleteMatch))
	mux.Handle("POST /v1/admin/matches/{matchID}/settle", admin(handler.AdminSettleMatch))

	mux.Handle("GET /v1/admin/players", admin(handler.AdminListPlayers))
	mux.Handle("POST /v1/admin/players", admin(handler.AdminCreatePlayer))
	mux.Handle("PUT /v1/admin/players/{playerID}", admin(handler.AdminUpdatePlayer))
	mux.Handle("DELETE /v1/admin/players/{playerID}", admin(handler.AdminDeletePlayer))

	mux.Handle("POST /v1/admin/rankings/recalculate", admin(handler.RecalculateRankings))
	mux.Handle("POST /v1/admin/settlements/run", admin(handler.RunSettlements))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleJob)))
}

// registerSiteRoutes mounts the deploy webhook and the SPA catch-all. Unknown
// /v1/ paths still get the JSON envelope.
func registerSiteRoutes(mux *http.ServeMux, deploy, static http.Handler) {
	if deploy != nil {
		mux.Handle("POST /deploy", deploy)
	}
	mux.HandleFunc("/v1/", notFoundAPI)
	if static != nil {
		mux.Handle("/", static)
	}
}
