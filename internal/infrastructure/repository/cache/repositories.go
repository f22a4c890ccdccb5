package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
	basecache "github.com/riskibarqy/prediction-pool/internal/platform/cache"
)

const (
	matchKeyPrefix  = "match:"
	playerKeyPrefix = "player:"
)

type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) List(ctx context.Context, filter match.ListFilter) ([]match.Match, error) {
	key := matchKeyPrefix + "list:visible=" + strconv.FormatBool(filter.VisibleOnly)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) ListFinished(ctx context.Context, limit int) ([]match.Match, error) {
	key := matchKeyPrefix + "finished:" + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListFinished(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	key := matchKeyPrefix + "id:" + matchID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	if err := r.next.Delete(ctx, matchID); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return nil
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

// PlayerRepository caches the leaderboard and id lookups. Email lookups feed
// login and always go to the store.
type PlayerRepository struct {
	next  player.Repository
	cache *basecache.Store
}

func NewPlayerRepository(next player.Repository, cache *basecache.Store) *PlayerRepository {
	return &PlayerRepository{next: next, cache: cache}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	v, err := r.cache.GetOrLoad(ctx, playerKeyPrefix+"list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]player.Player)
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	key := playerKeyPrefix + "id:" + playerID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return cachedPlayerByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	cached, _ := v.(cachedPlayerByID)
	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) GetByEmail(ctx context.Context, email string) (player.Player, bool, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *PlayerRepository) Create(ctx context.Context, item player.Player) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, item player.Player) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	if err := r.next.Delete(ctx, playerID); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	v, err := r.cache.GetOrLoad(ctx, playerKeyPrefix+"count", func(ctx context.Context) (any, error) {
		return r.next.Count(ctx)
	})
	if err != nil {
		return 0, err
	}

	total, _ := v.(int)
	return total, nil
}

type cachedPlayerByID struct {
	value  player.Player
	exists bool
}

// RankingRecalculator drops cached player reads once ranks are rewritten.
type RankingRecalculator struct {
	next  player.RankingRecalculator
	cache *basecache.Store
}

func NewRankingRecalculator(next player.RankingRecalculator, cache *basecache.Store) *RankingRecalculator {
	return &RankingRecalculator{next: next, cache: cache}
}

func (r *RankingRecalculator) RecalculateRankings(ctx context.Context) error {
	err := r.next.RecalculateRankings(ctx)
	r.cache.DeletePrefix(ctx, playerKeyPrefix)
	return err
}

// SettlementRepository drops cached matches and players after a settlement
// writes scores and counters.
type SettlementRepository struct {
	next  settlement.Repository
	cache *basecache.Store
}

func NewSettlementRepository(next settlement.Repository, cache *basecache.Store) *SettlementRepository {
	return &SettlementRepository{next: next, cache: cache}
}

func (r *SettlementRepository) Apply(ctx context.Context, result settlement.Result) (int, error) {
	applied, err := r.next.Apply(ctx, result)
	if err != nil {
		return 0, err
	}
	r.cache.DeletePrefix(ctx, matchKeyPrefix, playerKeyPrefix)
	return applied, nil
}
