package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	betterStackQueueSize     = 1024
	betterStackBatchSize     = 50
	betterStackFlushInterval = time.Second
)

// InitBetterStackLogger tees the process logger to stdout and Better Stack.
// Records at or above BetterStackMinLevel are shipped in JSON array batches.
func InitBetterStackLogger(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}
	if !cfg.BetterStackEnabled {
		baseLogger.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return baseLogger, func(context.Context) error { return nil }, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	encoder := zapcore.NewJSONEncoder(shippedEncoderConfig())
	syncer := newBetterStackWriteSyncer(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)

	shipped := zapcore.NewCore(encoder, zapcore.AddSync(syncer), cfg.BetterStackMinLevel).With([]zapcore.Field{
		zap.String("service", cfg.ServiceName),
		zap.String("env", cfg.AppEnv),
	})
	logger := baseLogger.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, shipped)
	})
	logger.Info("betterstack enabled", "endpoint", endpoint, "min_level", cfg.BetterStackMinLevel.String())

	return logger, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
		}
		if err := syncer.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}, nil
}

func shippedEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "dt",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func normalizeBetterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// betterStackWriteSyncer never blocks the caller: records go to a bounded
// queue and are dropped with a stderr notice when it is full. After Close,
// writes are discarded and whatever is still queued goes out in a final batch.
type betterStackWriteSyncer struct {
	endpoint string
	token    string
	client   *http.Client

	queue    chan []byte
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	dropped  atomic.Uint64
}

func newBetterStackWriteSyncer(endpoint, token string, timeout time.Duration) *betterStackWriteSyncer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	s := &betterStackWriteSyncer{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		queue:    make(chan []byte, betterStackQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *betterStackWriteSyncer) Write(p []byte) (int, error) {
	record := bytes.TrimSpace(p)
	if len(record) == 0 {
		return len(p), nil
	}
	select {
	case <-s.stop:
		return len(p), nil
	default:
	}

	// zap reuses its buffer once Write returns.
	select {
	case s.queue <- append([]byte(nil), record...):
	default:
		if dropped := s.dropped.Add(1); dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", dropped)
		}
	}
	return len(p), nil
}

func (s *betterStackWriteSyncer) run() {
	defer close(s.done)

	ticker := time.NewTicker(betterStackFlushInterval)
	defer ticker.Stop()

	var batch [][]byte
	flush := func() {
		if len(batch) > 0 {
			s.send(batch)
			batch = nil
		}
	}

	for {
		select {
		case record := <-s.queue:
			batch = append(batch, record)
			if len(batch) >= betterStackBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case record := <-s.queue:
					batch = append(batch, record)
					if len(batch) >= betterStackBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *betterStackWriteSyncer) send(batch [][]byte) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_ = buf.WriteByte('[')
	_, _ = buf.Write(bytes.Join(batch, []byte{','}))
	_ = buf.WriteByte(']')

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(buf.B))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack create request failed: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send %d logs failed: %v\n", len(batch), err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send logs got status=%d\n", resp.StatusCode)
	}
}

// Close stops intake and waits for the final flush or ctx, whichever is first.
func (s *betterStackWriteSyncer) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *betterStackWriteSyncer) Sync() error {
	return nil
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
