package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	authService       *usecase.AuthService
	matchService      *usecase.MatchService
	betService        *usecase.BetService
	playerService     *usecase.PlayerService
	settlementService *usecase.SettlementService
	summaryService    *usecase.SummaryService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	matchService *usecase.MatchService,
	betService *usecase.BetService,
	playerService *usecase.PlayerService,
	settlementService *usecase.SettlementService,
	summaryService *usecase.SummaryService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authService:       authService,
		matchService:      matchService,
		betService:        betService,
		playerService:     playerService,
		settlementService: settlementService,
		summaryService:    summaryService,
		logger:            logger,
		validator:         validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %w", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func sessionPlayerID(ctx context.Context) (string, error) {
	sess, ok := sessionFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: session is missing from request context", usecase.ErrUnauthorized)
	}
	return sess.PlayerID, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func betQueryFromRequest(r *http.Request) (usecase.BetQuery, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return usecase.BetQuery{}, err
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		return usecase.BetQuery{}, err
	}
	query := usecase.BetQuery{
		PlayerID: strings.TrimSpace(r.URL.Query().Get("player_id")),
		Page:     page,
		PageSize: pageSize,
	}
	if strings.TrimSpace(r.URL.Query().Get("tour")) != "" {
		tour, err := queryInt(r, "tour")
		if err != nil {
			return usecase.BetQuery{}, err
		}
		query.Tour = &tour
	}
	return query, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type submitBetRequest struct {
	PredictedHomeScore *int `json:"predicted_home_score" validate:"required,min=0,max=99"`
	PredictedAwayScore *int `json:"predicted_away_score" validate:"required,min=0,max=99"`
}

// matchRequest leaves required-field checks to the match form validation so
// every failing field is reported at once.
type matchRequest struct {
	HomeTeam  string `json:"home_team" validate:"max=100"`
	AwayTeam  string `json:"away_team" validate:"max=100"`
	MatchDate string `json:"match_date"`
	MatchTime string `json:"match_time"`
	League    string `json:"league" validate:"max=100"`
	Tour      *int   `json:"tour"`
	Status    string `json:"status"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	IsVisible *bool  `json:"is_visible"`
}

type settleMatchRequest struct {
	HomeScore *int `json:"home_score" validate:"required,min=0"`
	AwayScore *int `json:"away_score" validate:"required,min=0"`
}

type createPlayerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=admin player"`
}

type updatePlayerRequest struct {
	Name               *string `json:"name" validate:"omitempty,max=100"`
	Email              *string `json:"email" validate:"omitempty,email"`
	Password           *string `json:"password" validate:"omitempty,max=200"`
	Role               *string `json:"role" validate:"omitempty,oneof=admin player"`
	Points             *int    `json:"points" validate:"omitempty,min=0"`
	CorrectPredictions *int    `json:"correct_predictions" validate:"omitempty,min=0"`
	TotalPredictions   *int    `json:"total_predictions" validate:"omitempty,min=0"`
}

func (r matchRequest) toInput() usecase.MatchInput {
	return usecase.MatchInput{
		HomeTeam:  r.HomeTeam,
		AwayTeam:  r.AwayTeam,
		MatchDate: r.MatchDate,
		MatchTime: r.MatchTime,
		League:    r.League,
		Tour:      r.Tour,
		Status:    r.Status,
		HomeScore: r.HomeScore,
		AwayScore: r.AwayScore,
		IsVisible: r.IsVisible,
	}
}

type matchDTO struct {
	ID                 string `json:"id"`
	HomeTeam           string `json:"home_team"`
	AwayTeam           string `json:"away_team"`
	MatchDate          string `json:"match_date"`
	MatchTime          string `json:"match_time"`
	KickoffAt          string `json:"kickoff_at,omitempty"`
	League             string `json:"league"`
	Tour               *int   `json:"tour"`
	Status             string `json:"status"`
	HomeScore          *int   `json:"home_score"`
	AwayScore          *int   `json:"away_score"`
	IsVisible          bool   `json:"is_visible"`
	HasStarted         bool   `json:"has_started"`
	AcceptsPredictions bool   `json:"accepts_predictions"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type betDTO struct {
	ID                 string `json:"id"`
	PlayerID           string `json:"player_id"`
	MatchID            string `json:"match_id"`
	PredictedHomeScore int    `json:"predicted_home_score"`
	PredictedAwayScore int    `json:"predicted_away_score"`
	PointsEarned       *int   `json:"points_earned"`
	PointsLabel        string `json:"points_label,omitempty"`
	IsCalculated       bool   `json:"is_calculated"`
	State              string `json:"state"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type playerRefDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type betViewDTO struct {
	betDTO
	Match  matchDTO      `json:"match"`
	Player *playerRefDTO `json:"player,omitempty"`
}

type betPageDTO struct {
	Items           []betViewDTO `json:"items"`
	Total           int          `json:"total"`
	Page            int          `json:"page"`
	PageSize        int          `json:"page_size"`
	TotalPoints     int          `json:"total_points"`
	CalculatedCount int          `json:"calculated_count"`
	Tours           []int        `json:"tours"`
}

type matchBetDTO struct {
	Match matchDTO `json:"match"`
	Bet   *betDTO  `json:"bet"`
	State string   `json:"state"`
}

type playerDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Points             int    `json:"points"`
	CorrectPredictions int    `json:"correct_predictions"`
	TotalPredictions   int    `json:"total_predictions"`
	RankPosition       int    `json:"rank_position"`
	Accuracy           int    `json:"accuracy"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type leaderboardEntryDTO struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Correct  int    `json:"correct_predictions"`
	Total    int    `json:"total_predictions"`
	Accuracy int    `json:"accuracy"`
}

type playerStatsDTO struct {
	PlayerID  string `json:"player_id"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Correct   int    `json:"correct_predictions"`
	Total     int    `json:"total_predictions"`
	Rank      int    `json:"rank"`
	Accuracy  int    `json:"accuracy"`
	CreatedAt string `json:"created_at"`
}

type authUserDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Points  int    `json:"points"`
	Correct int    `json:"correct_predictions"`
	Total   int    `json:"total_predictions"`
	Rank    int    `json:"rank"`
}

type loginResponseDTO struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      authUserDTO `json:"user"`
}

type summaryDTO struct {
	Players        int        `json:"players"`
	Bets           int        `json:"bets"`
	VisibleMatches int        `json:"visible_matches"`
	LastResults    []matchDTO `json:"last_results"`
	Degraded       []string   `json:"degraded,omitempty"`
}

func matchToDTO(now time.Time, m match.Match) matchDTO {
	out := matchDTO{
		ID:                 m.ID,
		HomeTeam:           m.HomeTeam,
		AwayTeam:           m.AwayTeam,
		MatchDate:          m.MatchDate,
		MatchTime:          m.MatchTime,
		League:             m.League,
		Tour:               m.Tour,
		Status:             string(m.Status),
		HomeScore:          m.HomeScore,
		AwayScore:          m.AwayScore,
		IsVisible:          m.IsVisible,
		HasStarted:         match.HasStarted(now, m),
		AcceptsPredictions: match.AcceptsPredictions(now, m),
		CreatedAt:          formatTime(m.CreatedAt),
		UpdatedAt:          formatTime(m.UpdatedAt),
	}
	if kickoff, ok := match.Kickoff(m); ok {
		out.KickoffAt = kickoff.Format(time.RFC3339)
	}
	return out
}

func matchesToDTO(now time.Time, items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(now, item))
	}
	return out
}

func betToDTO(b bet.Bet, state bet.State) betDTO {
	out := betDTO{
		ID:                 b.ID,
		PlayerID:           b.PlayerID,
		MatchID:            b.MatchID,
		PredictedHomeScore: b.PredictedHomeScore,
		PredictedAwayScore: b.PredictedAwayScore,
		PointsEarned:       b.PointsEarned,
		IsCalculated:       b.IsCalculated,
		State:              string(state),
		CreatedAt:          formatTime(b.CreatedAt),
		UpdatedAt:          formatTime(b.UpdatedAt),
	}
	if b.IsCalculated {
		out.PointsLabel = bet.PointsLabel(b.Points())
	}
	return out
}

func betPageToDTO(now time.Time, page usecase.BetPage) betPageDTO {
	items := make([]betViewDTO, 0, len(page.Items))
	for _, item := range page.Items {
		view := betViewDTO{
			betDTO: betToDTO(item.Bet, item.State),
			Match:  matchToDTO(now, item.Match),
		}
		if item.Player != nil {
			view.Player = &playerRefDTO{ID: item.Player.ID, Name: item.Player.Name, Email: item.Player.Email}
		}
		items = append(items, view)
	}

	return betPageDTO{
		Items:           items,
		Total:           page.Total,
		Page:            page.Page,
		PageSize:        page.PageSize,
		TotalPoints:     page.TotalPoints,
		CalculatedCount: page.CalculatedCount,
		Tours:           page.Tours,
	}
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Email:              p.Email,
		Role:               string(p.Role),
		Points:             p.Points,
		CorrectPredictions: p.CorrectPredictions,
		TotalPredictions:   p.TotalPredictions,
		RankPosition:       p.RankPosition,
		Accuracy:           p.Accuracy(),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
}

func authUserToDTO(u usecase.AuthUser) authUserDTO {
	return authUserDTO{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    string(u.Role),
		Points:  u.Points,
		Correct: u.Correct,
		Total:   u.Total,
		Rank:    u.Rank,
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
