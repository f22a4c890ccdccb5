// Package logging is a key-value facade over zap. Context-aware calls attach
// the active trace and span ids and feed the optional process mirror.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// ParseLevel accepts debug, info, warn/warning and error. Anything else is info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// MirrorFunc receives every context-aware entry that passes the level check,
// after the zap core has written it. args include fields bound with With.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var (
	defaultLogger atomic.Pointer[Logger]
	mirror        atomic.Pointer[MirrorFunc]
)

func init() {
	defaultLogger.Store(NewNop())
}

type Logger struct {
	zap    *zap.Logger
	bound  []any
	synced *atomic.Bool
}

// New writes JSON lines at or above level to w.
func New(w io.Writer, level Level) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(EncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel)))
}

// NewJSON logs to stdout.
func NewJSON(level Level) *Logger {
	return New(os.Stdout, level)
}

func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{zap: z, synced: new(atomic.Bool)}
}

// EncoderConfig is the stdout record layout.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func Default() *Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	return NewNop()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	defaultLogger.Store(logger)
}

// SetMirror installs a process-wide log mirror; nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.zap == nil {
		return zap.NewNop()
	}
	return l.zap
}

// WrapCore returns a logger writing through wrap(core). Bound fields are kept.
func (l *Logger) WrapCore(wrap func(zapcore.Core) zapcore.Core) *Logger {
	if l == nil {
		l = Default()
	}
	return &Logger{
		zap:    l.zap.WithOptions(zap.WrapCore(wrap)),
		bound:  l.bound,
		synced: new(atomic.Bool),
	}
}

// Sync flushes once; later calls are no-ops.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	if l.synced.CompareAndSwap(false, true) {
		return l.zap.Sync()
	}
	return nil
}

func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		l = Default()
	}
	bound := make([]any, 0, len(l.bound)+len(args))
	bound = append(append(bound, l.bound...), args...)
	return &Logger{
		zap:    l.zap.With(zapFields(args)...),
		bound:  bound,
		synced: l.synced,
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.write(context.Background(), false, LevelDebug, msg, args)
}

func (l *Logger) Info(msg string, args ...any) {
	l.write(context.Background(), false, LevelInfo, msg, args)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.write(context.Background(), false, LevelWarn, msg, args)
}

func (l *Logger) Error(msg string, args ...any) {
	l.write(context.Background(), false, LevelError, msg, args)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(ctxOrBackground(ctx), true, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(ctxOrBackground(ctx), true, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(ctxOrBackground(ctx), true, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(ctxOrBackground(ctx), true, LevelError, msg, args)
}

// write logs one entry. Calls without a caller context get no trace fields
// and skip the mirror.
func (l *Logger) write(ctx context.Context, withCtx bool, level Level, msg string, args []any) {
	if l == nil {
		l = Default()
	}
	ce := l.zap.Check(level, msg)
	if ce == nil {
		return
	}

	fields := zapFields(args)
	if withCtx {
		fields = append(fields, traceFields(ctx)...)
	}
	ce.Write(fields...)

	if !withCtx {
		return
	}
	if fn := mirror.Load(); fn != nil {
		all := args
		if len(l.bound) > 0 {
			all = append(append(make([]any, 0, len(l.bound)+len(args)), l.bound...), args...)
		}
		(*fn)(ctx, level, msg, all...)
	}
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func traceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// zapFields pairs args as key, value. A non-string key becomes "arg" and a
// dangling key is logged with a nil value.
func zapFields(args []any) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg"
		}
		if i+1 == len(args) {
			out = append(out, zap.Any(key, nil))
			break
		}
		switch value := args[i+1].(type) {
		case error:
			out = append(out, zap.NamedError(key, value))
		default:
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}
