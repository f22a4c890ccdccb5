package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

func noopShutdown(context.Context) error { return nil }

// InitUptrace configures the global OpenTelemetry providers and, when log
// export is on, mirrors the process logger into OTel logs.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	dsn := strings.TrimSpace(cfg.UptraceDSN)
	if !cfg.UptraceEnabled || dsn == "" {
		logging.SetMirror(nil)
		logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled, "dsn_set", dsn != "")
		return noopShutdown, nil
	}

	opts := []uptrace.Option{
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		uptrace.WithResourceAttributes(attribute.String("pool.data_store", cfg.DataStore)),
	}
	if cfg.PrimaryDomain != "" {
		opts = append(opts, uptrace.WithResourceAttributes(attribute.String("pool.primary_domain", cfg.PrimaryDomain)))
	}
	uptrace.ConfigureOpentelemetry(opts...)

	var mirror logging.MirrorFunc
	if cfg.UptraceLogsEnabled {
		mirror = newUptraceLogMirror(cfg.ServiceVersion)
	}
	logging.SetMirror(mirror)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}
