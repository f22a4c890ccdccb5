package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

// Telemetry owns every exporter started for the process. Logger is the
// process logger after log shipping has been attached.
type Telemetry struct {
	Logger *logging.Logger

	stopLogs      func(context.Context) error
	stopTracing   func(context.Context) error
	stopProfiling func() error
	pprof         *PprofServer
}

// Setup starts log shipping, tracing and profiling in that order, so later
// steps already log through the shipped logger.
func Setup(cfg config.Config, base *logging.Logger) (*Telemetry, error) {
	logger, stopLogs, err := InitBetterStackLogger(cfg, base)
	if err != nil {
		return nil, fmt.Errorf("init betterstack logger: %w", err)
	}
	logging.SetDefault(logger)

	t := &Telemetry{Logger: logger, stopLogs: stopLogs}

	t.stopTracing, err = InitUptrace(cfg, logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("init uptrace: %w", err)
	}

	t.stopProfiling, err = InitPyroscope(cfg, logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}

	t.pprof, err = StartPprofServer(cfg, logger)
	if err != nil {
		_ = t.Shutdown(context.Background())
		return nil, fmt.Errorf("start pprof server: %w", err)
	}

	return t, nil
}

// Shutdown stops exporters in reverse start order and flushes shipped logs last.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.pprof != nil {
		if err := t.pprof.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop pprof: %w", err))
		}
	}
	if t.stopProfiling != nil {
		if err := t.stopProfiling(); err != nil {
			errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
		}
	}
	if t.stopTracing != nil {
		if err := t.stopTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop uptrace: %w", err))
		}
	}
	if t.stopLogs != nil {
		if err := t.stopLogs(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop betterstack: %w", err))
		}
	}
	return errors.Join(errs...)
}
