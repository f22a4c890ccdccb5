package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

type betterStackSink struct {
	mu       sync.Mutex
	requests int
	records  []map[string]any
	auth     string
}

func (s *betterStackSink) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var batch []map[string]any
		if err := sonic.Unmarshal(body, &batch); err != nil {
			t.Errorf("expected JSON array batch, got %q: %v", body, err)
		}

		s.mu.Lock()
		s.requests++
		s.records = append(s.records, batch...)
		s.auth = r.Header.Get("Authorization")
		s.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
}

func betterStackConfig(endpoint string) config.Config {
	return config.Config{
		BetterStackEnabled:  true,
		BetterStackEndpoint: endpoint,
		BetterStackToken:    "secret-token",
		BetterStackTimeout:  2 * time.Second,
		BetterStackMinLevel: logging.LevelWarn,
		ServiceName:         "prediction-pool",
		AppEnv:              config.EnvDev,
		LogLevel:            logging.LevelInfo,
	}
}

func TestInitBetterStackLogger_ShipsBatch(t *testing.T) {
	t.Parallel()

	sink := &betterStackSink{}
	server := httptest.NewServer(sink.handler(t))
	defer server.Close()

	logger, shutdown, err := InitBetterStackLogger(betterStackConfig(server.URL), logging.NewNop())
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}

	logger.WarnContext(context.Background(), "submit bet failed", "match_id", "m-1")
	logger.ErrorContext(context.Background(), "settle match failed", "match_id", "m-2")
	logger.InfoContext(context.Background(), "match created", "match_id", "m-3")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown logger: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 shipped records, got %d", len(sink.records))
	}
	if sink.requests != 1 {
		t.Fatalf("expected one batched request, got %d", sink.requests)
	}
	if sink.auth != "Bearer secret-token" {
		t.Fatalf("unexpected authorization header: %q", sink.auth)
	}
	if sink.records[0]["service"] != "prediction-pool" || sink.records[0]["message"] != "submit bet failed" {
		t.Fatalf("unexpected record: %+v", sink.records[0])
	}
}

func TestInitBetterStackLogger_Disabled(t *testing.T) {
	t.Parallel()

	base := logging.NewNop()
	cfg := betterStackConfig("")
	cfg.BetterStackEnabled = false

	logger, shutdown, err := InitBetterStackLogger(cfg, base)
	if err != nil {
		t.Fatalf("init betterstack logger: %v", err)
	}
	if logger != base {
		t.Fatalf("expected base logger when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNormalizeBetterStackEndpoint(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                             "",
		"in.logs.betterstack.com":      "https://in.logs.betterstack.com",
		"http://localhost:9999/ingest": "http://localhost:9999/ingest",
	}
	for in, want := range cases {
		if got := normalizeBetterStackEndpoint(in); got != want {
			t.Fatalf("normalizeBetterStackEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}
