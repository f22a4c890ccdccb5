package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/domain/bet"
	"github.com/riskibarqy/prediction-pool/internal/domain/match"
	"github.com/riskibarqy/prediction-pool/internal/domain/player"
	"github.com/riskibarqy/prediction-pool/internal/domain/settlement"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/deploy"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/ranking"
	cacherepo "github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/session"
	"github.com/riskibarqy/prediction-pool/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/prediction-pool/internal/platform/cache"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
	"github.com/riskibarqy/prediction-pool/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// App holds the servers built from config. RedirectServer is nil unless
// plain HTTP must be bounced to HTTPS.
type App struct {
	Server         *http.Server
	RedirectServer *http.Server
	closeFn        func() error
}

type repositories struct {
	matches     match.Repository
	players     player.Repository
	bets        bet.Repository
	settlements settlement.Repository
	ranker      player.RankingRecalculator
	closeFn     func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ranker := ranking.NewGuardedRecalculator(repos.ranker, resilience.CircuitBreakerConfig{
		Enabled:          cfg.RankingCircuitEnabled,
		FailureThreshold: cfg.RankingCircuitFailureCount,
		OpenTimeout:      cfg.RankingCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.RankingCircuitHalfOpenMaxReq,
	}, logger)

	ids := idgen.NewRandomGenerator()
	sessions := session.NewMemoryStore(cfg.SessionMaxEntries)

	authSvc := usecase.NewAuthService(repos.players, sessions, ids, cfg.SessionTTL, logger)
	matchSvc := usecase.NewMatchService(repos.matches, repos.bets, ids, logger)
	betSvc := usecase.NewBetService(repos.matches, repos.bets, repos.players, ids, logger)
	playerSvc := usecase.NewPlayerService(repos.players, ranker, sessions, ids, logger)
	settlementSvc := usecase.NewSettlementService(repos.matches, repos.bets, repos.settlements, ranker, cfg.SettlementWorkers, logger)
	summarySvc := usecase.NewSummaryService(repos.matches, repos.bets, repos.players, logger)

	handler := httpapi.NewHandler(authSvc, matchSvc, betSvc, playerSvc, settlementSvc, summarySvc, logger)

	runner := deploy.NewRunner(deploy.Config{
		Command: cfg.DeployCommand,
		Dir:     cfg.DeployDir,
		Timeout: cfg.DeployTimeout,
	}, logger)

	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Authenticator:      authSvc,
		Logger:             logger,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		LoginLimiter:       httpapi.NewIPRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
		Deploy:             httpapi.NewDeployHandler(cfg.DeployToken, runner, logger),
		Static:             httpapi.NewStaticHandler(cfg.StaticDir, logger),
		PrimaryDomain:      cfg.PrimaryDomain,
		EnableWWWRedirect:  cfg.EnableWWWRedirect,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	app := &App{Server: server, closeFn: repos.closeFn}

	if cfg.TLSEnabled() {
		tlsConfig, err := loadTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		server.TLSConfig = tlsConfig

		if cfg.ForceHTTPS {
			app.RedirectServer = &http.Server{
				Addr:         cfg.HTTPRedirectAddr,
				Handler:      httpapi.HTTPSRedirect(cfg.PrimaryDomain, router),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}
		}
	}

	return app, nil
}

// Close releases the storage handles opened by New.
func (a *App) Close() error {
	if a == nil || a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	var repos repositories

	switch cfg.DataStore {
	case config.DataStoreMemory:
		store := memory.NewStore()
		now := time.Now()
		seedMatches := memory.SeedMatches(now)
		store.Seed(seedMatches, memory.SeedPlayers(now), nil)

		playerRepo := memory.NewPlayerRepository(store)
		repos = repositories{
			matches:     memory.NewMatchRepository(store),
			players:     playerRepo,
			bets:        memory.NewBetRepository(store),
			settlements: memory.NewSettlementRepository(store),
			ranker:      playerRepo,
			closeFn:     func() error { return nil },
		}
		logger.Info("using in-memory store", "seed_matches", len(seedMatches))
	default:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		if cfg.SeedDemoData {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, fmt.Errorf("seed database: %w", err)
			}
		}

		playerRepo := postgres.NewPlayerRepository(db)
		repos = repositories{
			matches:     postgres.NewMatchRepository(db),
			players:     playerRepo,
			bets:        postgres.NewBetRepository(db),
			settlements: postgres.NewSettlementRepository(db),
			ranker:      playerRepo,
			closeFn:     db.Close,
		}
		logger.Info("using postgres store", "db_name", postgres.DatabaseName(cfg.DBURL))
	}

	if !cfg.CacheEnabled {
		return repos, nil
	}

	store := basecache.NewStore(cfg.CacheTTL)
	repos.matches = cacherepo.NewMatchRepository(repos.matches, store)
	repos.players = cacherepo.NewPlayerRepository(repos.players, store)
	repos.settlements = cacherepo.NewSettlementRepository(repos.settlements, store)
	repos.ranker = cacherepo.NewRankingRecalculator(repos.ranker, store)
	logger.Info("repository cache enabled", "ttl", cfg.CacheTTL.String())

	return repos, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dbName := postgres.DatabaseName(cfg.DBURL)
	db, err := otelsqlx.Open(
		"postgres",
		postgres.NormalizeDSN(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// loadTLSConfig appends the CA bundle to the leaf certificate so clients
// receive the full chain.
func loadTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("read tls cert: %w", err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read tls key: %w", err)
	}
	if caFile != "" {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read tls ca: %w", err)
		}
		certPEM = append(append(certPEM, '\n'), caPEM...)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("load tls key pair: %w", err)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}
