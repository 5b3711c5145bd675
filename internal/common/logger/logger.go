package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes one JSON object per line with the fields every service
// shares: timestamp, level, service, action, message, hostname, request_id.
type Logger struct {
	service   string
	requestID string
	z         *zap.Logger
}

func New(service string) *Logger { return NewWriter(service, os.Stdout) }

func NewWriter(service string, w io.Writer) *Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeTime:     utcTime,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	z := zap.New(core).With(zap.String("service", service), zap.String("hostname", hostname()))
	return &Logger{service: service, z: z}
}

func utcTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

// WithRequestID returns a logger that stamps id on every entry.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{service: l.service, requestID: id, z: l.z}
}

func (l *Logger) Service() string { return l.service }

func (l *Logger) log(level zapcore.Level, action string, fields map[string]any, err error) {
	ce := l.z.Check(level, action)
	if ce == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fs := make([]zap.Field, 0, len(fields)+3)
	fs = append(fs, zap.String("action", action), zap.String("request_id", l.requestID))
	for _, k := range keys {
		fs = append(fs, zap.Any(k, fields[k]))
	}
	if err != nil {
		fs = append(fs, zap.Object("error", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
			enc.AddString("msg", err.Error())
			enc.AddString("stack", fmt.Sprintf("%T", err))
			return nil
		})))
	}
	ce.Write(fs...)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(zapcore.InfoLevel, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(zapcore.DebugLevel, action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(zapcore.ErrorLevel, action, fields, err)
}

func (l *Logger) Sync() { _ = l.z.Sync() }

func hostname() string { h, _ := os.Hostname(); return h }
