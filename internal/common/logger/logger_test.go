package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter("floor-service", &buf)

	lg.Info("order_closed", map[string]any{"table_id": 3, "payment_method": "pix"})
	lg.WithRequestID("req-1").Error("publish_failed", errors.New("broker down"), nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	first := lines[0]
	for k, want := range map[string]any{
		"level":          "INFO",
		"service":        "floor-service",
		"action":         "order_closed",
		"message":        "order_closed",
		"request_id":     "",
		"payment_method": "pix",
	} {
		if first[k] != want {
			t.Errorf("%s: expected %v, got %v", k, want, first[k])
		}
	}
	if first["table_id"] != float64(3) {
		t.Errorf("table_id: expected 3, got %v", first["table_id"])
	}
	if _, ok := first["timestamp"]; !ok {
		t.Error("missing timestamp")
	}

	second := lines[1]
	if second["level"] != "ERROR" || second["request_id"] != "req-1" {
		t.Errorf("unexpected error entry %v", second)
	}
	errField, ok := second["error"].(map[string]any)
	if !ok || errField["msg"] != "broker down" {
		t.Errorf("unexpected error field %v", second["error"])
	}
}
