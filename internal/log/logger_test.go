package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentDashboard, JSON: true, Output: &buf})

	logger.With(FieldBranch, "MRS_BRANCH").Info("summary built", FieldRecords, 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec[FieldComponent] != ComponentDashboard {
		t.Errorf("component = %v, want %s", rec[FieldComponent], ComponentDashboard)
	}
	if rec[FieldBranch] != "MRS_BRANCH" {
		t.Errorf("branch = %v", rec[FieldBranch])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("component = %q, want unknown", l.Component())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf, JSON: true})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Fatalf("request id missing from %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithError(nil).WithTable("sales", "", "none")
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not be recorded")
	}
	if _, ok := f[FieldSort]; ok {
		t.Error("empty sort field should not be recorded")
	}
	f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v", f[FieldError])
	}
	if got := len(f.ToSlice()); got != 4 {
		t.Errorf("ToSlice len = %d, want 4", got)
	}
}
