package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	applogger "MacroPulse/pkg/logger"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestParseCSVSkipsMissingValues(t *testing.T) {
	c := New(testLogger(t), map[string]string{"DGS10": "ust_10y"})
	body := []byte("DATE,DGS10\n2020-03-20,0.92\n2020-03-23,.\n2020-03-24,0.84\n")

	obs, err := c.parseCSV(body, "ust_10y")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if obs[0].Value != 0.92 || obs[1].Value != 0.84 {
		t.Fatalf("unexpected values %v", obs)
	}
}

func TestParseCSVDuplicateDaysKeepLast(t *testing.T) {
	c := New(testLogger(t), map[string]string{"VIXCLS": "vix"})
	body := []byte("DATE,VIXCLS\n2020-03-16,75.0\n2020-03-16,82.69\n")

	obs, err := c.parseCSV(body, "vix")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(obs))
	}
	if obs[0].Value != 82.69 {
		t.Fatalf("expected last value to win, got %v", obs[0].Value)
	}
}

func TestParseCSVStartDateFilter(t *testing.T) {
	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(testLogger(t), map[string]string{"DGS2": "ust_2y"}, WithStartDate(start))
	body := []byte("DATE,DGS2\n2009-12-31,1.14\n2010-01-04,1.09\n")

	obs, err := c.parseCSV(body, "ust_2y")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(obs) != 1 || !obs[0].Date.Equal(time.Date(2010, 1, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected only post-start observation, got %v", obs)
	}
}

func TestParseCSVRejectsBadHeader(t *testing.T) {
	c := New(testLogger(t), nil)
	if _, err := c.parseCSV([]byte("<html>rate limited</html>"), "vix"); err == nil {
		t.Fatalf("expected error for non-CSV body")
	}
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("DATE,DGS10\n2020-03-24,0.84\n"))
	}))
	defer srv.Close()

	c := New(testLogger(t),
		map[string]string{"DGS10": "ust_10y"},
		WithBaseURL(srv.URL),
		WithRetry(2, time.Millisecond, 2*time.Millisecond),
	)

	out, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
	if len(out["ust_10y"]) != 1 {
		t.Fatalf("unexpected observations %v", out)
	}
}

func TestFetchAllSeriesFailedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(testLogger(t),
		map[string]string{"DGS10": "ust_10y", "VIXCLS": "vix"},
		WithBaseURL(srv.URL),
		WithRetry(0, time.Millisecond, time.Millisecond),
	)

	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error when every series fails")
	}
}

func TestFetchToleratesPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "VIXCLS" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("DATE,DGS10\n2020-03-24,0.84\n"))
	}))
	defer srv.Close()

	c := New(testLogger(t),
		map[string]string{"DGS10": "ust_10y", "VIXCLS": "vix"},
		WithBaseURL(srv.URL),
		WithRetry(0, time.Millisecond, time.Millisecond),
	)

	out, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, ok := out["vix"]; ok {
		t.Fatalf("vix should be absent")
	}
	if len(out["ust_10y"]) != 1 {
		t.Fatalf("ust_10y should have been fetched")
	}
}
