package resources

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	otelog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

var severities = map[zerolog.Level]otelog.Severity{
	zerolog.TraceLevel: otelog.SeverityTrace,
	zerolog.DebugLevel: otelog.SeverityDebug,
	zerolog.InfoLevel:  otelog.SeverityInfo,
	zerolog.WarnLevel:  otelog.SeverityWarn,
	zerolog.ErrorLevel: otelog.SeverityError,
	zerolog.FatalLevel: otelog.SeverityFatal,
	zerolog.PanicLevel: otelog.SeverityFatal4,
}

// Fields the planner logs with a fixed meaning get semantic attribute names.
var renamed = map[string]string{
	zerolog.ErrorFieldName: "exception.message",
	"stage":                "planner.stage",
	"component":            "planner.component",
	"operation":            "planner.operation",
	"id":                   "planner.event.id",
}

// Carried by the record itself, or by the resource attributes.
var skipped = map[string]struct{}{
	zerolog.TimestampFieldName: {},
	zerolog.LevelFieldName:     {},
	zerolog.MessageFieldName:   {},
	"service":                  {},
	"version":                  {},
}

// ZerologHook mirrors every zerolog record to the global OTel logger provider.
type ZerologHook struct {
	logger   otelog.Logger
	resource []otelog.KeyValue
}

func NewZerologHook(serviceName string, serviceVersion string) *ZerologHook {
	return &ZerologHook{
		logger: global.GetLoggerProvider().Logger(serviceName),
		resource: []otelog.KeyValue{
			otelog.String("service.name", serviceName),
			otelog.String("service.version", serviceVersion),
		},
	}
}

func (h *ZerologHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	fields, ok := eventFields(e)
	if !ok {
		return
	}

	var rec otelog.Record

	rec.SetTimestamp(timestampOf(fields))
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(severityOf(level))
	rec.SetSeverityText(level.String())
	rec.SetBody(otelog.StringValue(msg))
	rec.AddAttributes(h.resource...)
	rec.AddAttributes(toAttributes(fields)...)

	h.logger.Emit(e.GetCtx(), rec)
}

func severityOf(level zerolog.Level) otelog.Severity {
	sev, ok := severities[level]
	if !ok {
		return otelog.SeverityInfo
	}

	return sev
}

// eventFields decodes the JSON zerolog has buffered so far. The buffer is unexported,
// hence the reflection.
func eventFields(e *zerolog.Event) (map[string]any, bool) {
	if e == nil {
		return nil, false
	}

	buf := reflect.ValueOf(e).Elem().FieldByName("buf")
	if !buf.IsValid() || buf.Kind() != reflect.Slice || buf.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}

	b := append([]byte(nil), buf.Bytes()...)
	if len(b) == 0 {
		return nil, false
	}

	// The closing brace is only written after the hooks ran.
	if b[len(b)-1] != '}' {
		b = append(b, '}')
	}

	var fields map[string]any

	err := json.Unmarshal(b, &fields)
	if err != nil {
		return nil, false
	}

	return fields, true
}

func timestampOf(fields map[string]any) time.Time {
	s, ok := fields[zerolog.TimestampFieldName].(string)
	if !ok {
		return time.Now()
	}

	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Now()
	}

	return ts
}

func toAttributes(fields map[string]any) []otelog.KeyValue {
	kvs := make([]otelog.KeyValue, 0, len(fields))

	for k, v := range fields {
		if _, skip := skipped[k]; skip {
			continue
		}

		if name, ok := renamed[k]; ok {
			k = name
		}

		kvs = append(kvs, otelog.KeyValue{Key: k, Value: toValue(v)})
	}

	return kvs
}

func toValue(v any) otelog.Value {
	switch x := v.(type) {
	case string:
		return otelog.StringValue(x)
	case bool:
		return otelog.BoolValue(x)
	case float64:
		if x == float64(int64(x)) {
			return otelog.Int64Value(int64(x))
		}

		return otelog.Float64Value(x)
	case []any:
		values := make([]otelog.Value, len(x))
		for i, item := range x {
			values[i] = toValue(item)
		}

		return otelog.SliceValue(values...)
	case map[string]any:
		kvs := make([]otelog.KeyValue, 0, len(x))
		for k, item := range x {
			kvs = append(kvs, otelog.KeyValue{Key: k, Value: toValue(item)})
		}

		return otelog.MapValue(kvs...)
	default:
		return otelog.StringValue(fmt.Sprintf("%v", x))
	}
}
