package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRootBanner(t *testing.T) {
	router := Router(Options{Banner: "✅ Usupovo Bot is running!"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "✅ Usupovo Bot is running!" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestHealthzReportsPending(t *testing.T) {
	router := Router(Options{Pending: func(context.Context) (int, error) { return 3, nil }})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "ok" || st.Pending == nil || *st.Pending != 3 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestHealthzDegraded(t *testing.T) {
	router := Router(Options{Pending: func(context.Context) (int, error) { return 0, errors.New("db down") }})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestStartStop(t *testing.T) {
	if _, err := Start(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without listen address")
	}

	srv, err := Start(context.Background(), Options{Listen: "127.0.0.1:0", Banner: "up"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "up" {
		t.Fatalf("body = %q", body)
	}
	if err := srv.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
