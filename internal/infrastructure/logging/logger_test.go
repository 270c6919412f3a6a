package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "json", &buf)
	if l.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level = %v, want warn", l.GetLevel())
	}
	l.Info("hidden")
	l.WithField("component", "audit").Warn("visible")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "visible" || line["component"] != "audit" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	if l := New("chatty", "text", nil); l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", l.GetLevel())
	}
}

func TestContextLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}
	e := logrus.NewEntry(logrus.New()).WithField("k", "v")
	got := FromContext(WithLogger(context.Background(), e))
	if got.Data["k"] != "v" {
		t.Fatalf("entry not carried on context: %v", got.Data)
	}
}

func TestRequestLogger_AttachesEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", "json", &buf)
	e := echo.New()
	e.Use(RequestLogger(l))
	var seen bool
	e.GET("/ping", func(c echo.Context) error {
		_, seen = c.Request().Context().Value(ctxKey{}).(*logrus.Entry)
		return c.NoContent(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if !seen {
		t.Fatal("handler did not see a request-scoped logger")
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"uri":"/ping"`)) {
		t.Fatalf("request line not logged: %s", buf.String())
	}
}
