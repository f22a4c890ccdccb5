package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/session"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

type testEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       rawJSON          `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

type rawJSON []byte

func (r *rawJSON) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

type testServer struct {
	router http.Handler
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logging.NewNop()
	store := memory.NewStore()
	matches := memory.NewMatchRepository(store)
	players := memory.NewPlayerRepository(store)
	bets := memory.NewBetRepository(store)
	settlements := memory.NewSettlementRepository(store)
	sessions := session.NewMemoryStore(100)
	ids := idgen.NewRandomGenerator()

	now := time.Now().UTC()
	store.Seed(
		[]match.Match{
			{ID: "m-open", HomeTeam: "Зенит", AwayTeam: "Спартак", MatchDate: "2099-05-01", MatchTime: "18:00:00", League: "РПЛ", Status: match.StatusUpcoming, IsVisible: true, CreatedAt: now, UpdatedAt: now},
			{ID: "m-started", HomeTeam: "ЦСКА", AwayTeam: "Локомотив", MatchDate: "2020-05-01", MatchTime: "18:00:00", League: "РПЛ", Status: match.StatusUpcoming, IsVisible: true, CreatedAt: now, UpdatedAt: now},
			{ID: "m-hidden", HomeTeam: "Рубин", AwayTeam: "Ахмат", MatchDate: "2099-05-02", MatchTime: "18:00:00", League: "РПЛ", Status: match.StatusUpcoming, IsVisible: false, CreatedAt: now, UpdatedAt: now},
		},
		[]player.Player{
			{ID: "p-admin", Name: "Admin", Email: "admin@example.com", Password: "admin-pass", Role: player.RoleAdmin, CreatedAt: now, UpdatedAt: now},
			{ID: "p-anna", Name: "Anna", Email: "anna@example.com", Password: "secret", Role: player.RolePlayer, CreatedAt: now, UpdatedAt: now},
		},
		nil,
	)

	auth := usecase.NewAuthService(players, sessions, ids, time.Hour, logger)
	handler := NewHandler(
		auth,
		usecase.NewMatchService(matches, bets, ids, logger),
		usecase.NewBetService(matches, bets, players, ids, logger),
		usecase.NewPlayerService(players, players, sessions, ids, logger),
		usecase.NewSettlementService(matches, bets, settlements, players, 2, logger),
		usecase.NewSummaryService(matches, bets, players, logger),
		logger,
	)

	router := NewRouter(handler, RouterConfig{
		Authenticator:      auth,
		Logger:             logger,
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   "job-secret",
		LoginLimiter:       NewIPRateLimiter(60, 10),
	})
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, target, token string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env testEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal %s %s response %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out loginResponseDTO
	if err := sonic.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if out.Token == "" {
		t.Fatalf("expected session token")
	}
	return out.Token
}

func errorReason(env testEnvelope) string {
	if env.Error == nil || len(env.Error.Errors) == 0 {
		return ""
	}
	return env.Error.Errors[0].Reason
}

func TestRouter_PublicMatchesHideInvisible(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec, env := srv.do(t, http.MethodGet, "/v1/matches", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var items []matchDTO
	if err := sonic.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("unmarshal matches: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 visible matches, got %d", len(items))
	}
	for _, item := range items {
		if item.ID == "m-hidden" {
			t.Fatalf("hidden match leaked into public list")
		}
		if item.ID == "m-started" && (item.AcceptsPredictions || !item.HasStarted) {
			t.Fatalf("expected started match to be closed, got %+v", item)
		}
		if item.ID == "m-open" && item.KickoffAt != "2099-05-01T15:00:00Z" {
			t.Fatalf("expected UTC+3 kickoff, got %q", item.KickoffAt)
		}
	}

	rec, env = srv.do(t, http.MethodGet, "/v1/matches/m-hidden", "", nil)
	if rec.Code != http.StatusNotFound || errorReason(env) != "notFound" {
		t.Fatalf("expected hidden match to be not found, got %d %s", rec.Code, errorReason(env))
	}
}

func TestRouter_SubmitBetFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	token := srv.login(t, "anna@example.com", "secret")

	rec, env := srv.do(t, http.MethodPut, "/v1/me/bets/m-open", token, map[string]int{"predicted_home_score": 2, "predicted_away_score": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit bet: status %d body %s", rec.Code, rec.Body.String())
	}
	var first betDTO
	if err := sonic.Unmarshal(env.Data, &first); err != nil {
		t.Fatalf("unmarshal bet: %v", err)
	}
	if first.State != "pending" || first.PredictedHomeScore != 2 {
		t.Fatalf("unexpected bet: %+v", first)
	}

	rec, env = srv.do(t, http.MethodPut, "/v1/me/bets/m-open", token, map[string]int{"predicted_home_score": 0, "predicted_away_score": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("resubmit bet: status %d", rec.Code)
	}
	var second betDTO
	if err := sonic.Unmarshal(env.Data, &second); err != nil {
		t.Fatalf("unmarshal bet: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected upsert to keep bet id %s, got %s", first.ID, second.ID)
	}

	rec, env = srv.do(t, http.MethodGet, "/v1/me/bets/m-open", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get my bet: status %d", rec.Code)
	}
	var card matchBetDTO
	if err := sonic.Unmarshal(env.Data, &card); err != nil {
		t.Fatalf("unmarshal card: %v", err)
	}
	if card.State != "pending" || card.Bet == nil || card.Bet.PredictedHomeScore != 0 {
		t.Fatalf("unexpected match card: %+v", card)
	}

	rec, env = srv.do(t, http.MethodPut, "/v1/me/bets/m-started", token, map[string]int{"predicted_home_score": 1, "predicted_away_score": 1})
	if rec.Code != http.StatusConflict || errorReason(env) != "matchStarted" {
		t.Fatalf("expected matchStarted conflict, got %d %s", rec.Code, errorReason(env))
	}

	rec, env = srv.do(t, http.MethodPut, "/v1/me/bets/m-open", token, map[string]int{"predicted_home_score": 1})
	if rec.Code != http.StatusBadRequest || errorReason(env) != "invalidInput" {
		t.Fatalf("expected invalid input for missing score, got %d %s", rec.Code, errorReason(env))
	}
}

func TestRouter_SessionAndAdminGuards(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodGet, "/v1/me/bets", "", nil)
	if rec.Code != http.StatusUnauthorized || errorReason(env) != "unauthorized" {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	playerToken := srv.login(t, "anna@example.com", "secret")
	rec, env = srv.do(t, http.MethodGet, "/v1/admin/matches", playerToken, nil)
	if rec.Code != http.StatusForbidden || errorReason(env) != "forbidden" {
		t.Fatalf("expected 403 for player on admin route, got %d", rec.Code)
	}

	adminToken := srv.login(t, "admin@example.com", "admin-pass")
	rec, env = srv.do(t, http.MethodGet, "/v1/admin/matches", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected admin list, got %d", rec.Code)
	}
	var items []matchDTO
	if err := sonic.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("unmarshal admin matches: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected admin to see 3 matches, got %d", len(items))
	}

	rec, _ = srv.do(t, http.MethodPost, "/v1/auth/logout", playerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	rec, _ = srv.do(t, http.MethodGet, "/v1/auth/me", playerToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestRouter_PoolPagesRequireSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	playerToken := srv.login(t, "anna@example.com", "secret")

	for _, target := range []string{"/v1/bets", "/v1/leaderboard", "/v1/summary"} {
		rec, env := srv.do(t, http.MethodGet, target, "", nil)
		if rec.Code != http.StatusUnauthorized || errorReason(env) != "unauthorized" {
			t.Fatalf("%s: expected 401 without token, got %d", target, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "@example.com") {
			t.Fatalf("%s: anonymous response leaked an email: %s", target, rec.Body.String())
		}

		rec, _ = srv.do(t, http.MethodGet, target, playerToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 with token, got %d body %s", target, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_AdminSettleUpdatesLeaderboard(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	playerToken := srv.login(t, "anna@example.com", "secret")
	adminToken := srv.login(t, "admin@example.com", "admin-pass")

	rec, _ := srv.do(t, http.MethodPut, "/v1/me/bets/m-open", playerToken, map[string]int{"predicted_home_score": 2, "predicted_away_score": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit bet: status %d", rec.Code)
	}

	rec, env := srv.do(t, http.MethodPost, "/v1/admin/matches/m-open/settle", adminToken, map[string]int{"home_score": 2, "away_score": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("settle: status %d body %s", rec.Code, rec.Body.String())
	}
	var result usecase.SettleMatchResult
	if err := sonic.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("unmarshal settle result: %v", err)
	}
	if result.BetsApplied != 1 {
		t.Fatalf("expected 1 bet applied, got %d", result.BetsApplied)
	}

	rec, env = srv.do(t, http.MethodGet, "/v1/me/stats", playerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status %d", rec.Code)
	}
	var stats playerStatsDTO
	if err := sonic.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Points != 3 || stats.Correct != 1 || stats.Total != 1 || stats.Rank != 1 {
		t.Fatalf("unexpected stats after exact score: %+v", stats)
	}

	rec, env = srv.do(t, http.MethodGet, "/v1/me/bets/m-open", playerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get my bet: status %d", rec.Code)
	}
	var card matchBetDTO
	if err := sonic.Unmarshal(env.Data, &card); err != nil {
		t.Fatalf("unmarshal card: %v", err)
	}
	if card.State != "scored" || card.Bet == nil || card.Bet.PointsLabel != "+3 очка" {
		t.Fatalf("unexpected scored card: %+v", card)
	}
}

func TestRouter_InternalSettleJobToken(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/settle", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected job to run, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UnknownAPIRouteUsesEnvelope(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec, env := srv.do(t, http.MethodGet, "/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound || env.APIVersion != "2.0" || errorReason(env) != "notFound" {
		t.Fatalf("expected enveloped 404, got %d %+v", rec.Code, env)
	}
}

func TestRouter_AdminCreateMatchFieldErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	adminToken := srv.login(t, "admin@example.com", "admin-pass")

	rec, env := srv.do(t, http.MethodPost, "/v1/admin/matches", adminToken, map[string]any{
		"home_team":  "",
		"away_team":  "",
		"match_date": "2024-02-31",
		"match_time": "25:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
	locations := map[string]bool{}
	for _, item := range env.Error.Errors {
		locations[item.Location] = true
	}
	for _, field := range []string{"home_team", "away_team", "match_date", "match_time"} {
		if !locations[field] {
			t.Fatalf("expected a field error for %s, got %+v", field, env.Error.Errors)
		}
	}

	rec, env = srv.do(t, http.MethodPost, "/v1/admin/matches", adminToken, map[string]any{
		"home_team":  "Зенит",
		"away_team":  "Краснодар",
		"match_date": "2099-06-01",
		"match_time": "19:30",
		"tour":       7,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	var created matchDTO
	if err := sonic.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("unmarshal created match: %v", err)
	}
	if created.MatchDate != "2099-06-01" || created.MatchTime != "19:30:00" || !created.AcceptsPredictions {
		t.Fatalf("unexpected created match: %+v", created)
	}
}
