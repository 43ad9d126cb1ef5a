package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Level: slog.LevelInfo})
	if logger.Component() != ComponentApp {
		t.Errorf("default component = %q", logger.Component())
	}

	live := logger.WithComponent(ComponentLive)
	if live.Component() != ComponentLive {
		t.Errorf("component = %q, want %q", live.Component(), ComponentLive)
	}
	live.Failure(context.Background(), "socket closed", errors.New("eof"))

	out := buf.String()
	for _, want := range []string{"component=live", "error=eof", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestStructuredLogger_LogAction(t *testing.T) {
	tests := []struct {
		name      string
		reason    string
		wantMsg   string
		wantField string
	}{
		{"completed", "", "Action completed", "account_id=js"},
		{"refused", "insufficient_funds", "Action refused", "reason=insufficient_funds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var base, scoped bytes.Buffer
			sl := NewStructuredLogger(New(Config{Output: &base}))
			ctx := NewContext(context.Background(), New(Config{Output: &scoped}).With(FieldRequestID, "req-1"))

			sl.LogAction(ctx, OpTransfer, "sid", "js", tt.reason)

			if base.Len() != 0 {
				t.Errorf("request logger ignored, base got %q", base.String())
			}
			out := scoped.String()
			for _, want := range []string{tt.wantMsg, tt.wantField, "request_id=req-1", "operation=transfer"} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
		})
	}
}

func TestStructuredLogger_LogHTTPEndLevel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{503, "level=ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(New(Config{Output: &buf}))
		sl.LogHTTPEnd(context.Background(), httptest.NewRequest("GET", "/ui/app", nil), tt.status, 3, "10.0.0.1")
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("status %d: output %q missing %q", tt.status, buf.String(), tt.want)
		}
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil")
	}
}
