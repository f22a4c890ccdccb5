package observability

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
)

const (
	uptraceLogInstrumentation = "prediction-pool/internal/platform/logging"
	accessLogMessage          = "http request"
	maxLogValueDepth          = 3
)

var (
	probePaths = []string{"/healthz", "/livez", "/readyz", "/favicon.ico"}

	// Static bundle requests are served straight from disk and would drown
	// the API access log.
	assetPathPrefixes = []string{"/assets/", "/static/"}
)

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	logger := otelglobal.Logger(uptraceLogInstrumentation, otellog.WithInstrumentationVersion(serviceVersion))

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if shouldSkipUptraceLog(msg, args) {
			return
		}

		severity := toOTelSeverity(level)
		if !logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}
		logger.Emit(ctx, newLogRecord(time.Now().UTC(), level, severity, msg, args))
	}
}

func newLogRecord(at time.Time, level logging.Level, severity otellog.Severity, msg string, args []any) otellog.Record {
	var record otellog.Record
	record.SetTimestamp(at)
	record.SetObservedTimestamp(at)
	record.SetSeverity(severity)
	record.SetSeverityText(level.CapitalString())
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	record.AddAttributes(buildOTelLogAttributes(args)...)
	return record
}

// shouldSkipUptraceLog drops access log lines for probes and static assets.
// Every other entry is mirrored.
func shouldSkipUptraceLog(msg string, args []any) bool {
	if msg != accessLogMessage {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key != "path" {
			continue
		}
		path, ok := args[i+1].(string)
		if !ok {
			return false
		}
		if slices.Contains(probePaths, path) {
			return true
		}
		return slices.ContainsFunc(assetPathPrefixes, func(prefix string) bool {
			return strings.HasPrefix(path, prefix)
		})
	}
	return false
}

func buildOTelLogAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: toOTelLogValue(args[i+1], 0)})
	}
	return attrs
}

func toOTelSeverity(level logging.Level) otellog.Severity {
	switch {
	case level <= logging.LevelDebug:
		return otellog.SeverityDebug
	case level == logging.LevelInfo:
		return otellog.SeverityInfo
	case level == logging.LevelWarn:
		return otellog.SeverityWarn
	case level == logging.LevelError:
		return otellog.SeverityError
	default:
		return otellog.SeverityFatal
	}
}

// toOTelLogValue maps the shapes the pool logs: ids, scores, counters,
// durations, errors and small collections of those. Anything deeper than
// maxLogValueDepth is rendered with fmt.
func toOTelLogValue(value any, depth int) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int64:
		return otellog.Int64Value(v)
	case float64:
		return otellog.Float64Value(v)
	case []byte:
		return otellog.BytesValue(slices.Clone(v))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}
	return reflectLogValue(reflect.ValueOf(value), depth)
}

func reflectLogValue(rv reflect.Value, depth int) otellog.Value {
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return otellog.Int64Value(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return otellog.Int64Value(int64(u))
		}
	case reflect.Float32:
		return otellog.Float64Value(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return toOTelLogValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, rv.Len())
		for i := range items {
			items[i] = toOTelLogValue(rv.Index(i).Interface(), depth+1)
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			kvs := make([]otellog.KeyValue, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				kvs = append(kvs, otellog.KeyValue{Key: iter.Key().String(), Value: toOTelLogValue(iter.Value().Interface(), depth+1)})
			}
			slices.SortFunc(kvs, func(a, b otellog.KeyValue) int { return strings.Compare(a.Key, b.Key) })
			return otellog.MapValue(kvs...)
		}
	}
	return otellog.StringValue(fmt.Sprint(rv.Interface()))
}
