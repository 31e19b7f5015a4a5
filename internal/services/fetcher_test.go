package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestFetcher(url string, timeout time.Duration) (*apiFetcher, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := &robotDataAgent.Config{APIURL: url, HTTPTimeout: timeout}
	return NewAPIFetcher(cfg, zap.New(core)).(*apiFetcher), logs
}

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetch_Records(t *testing.T) {
	server := serve(http.StatusOK, `[{"workstation":"WS-1","speedpercentage":"42"},{"workstation":"WS-2","positionx":1.5}]`)
	defer server.Close()

	f, _ := newTestFetcher(server.URL, time.Second)
	res := f.Fetch(context.Background())

	if res.Status != models.FetchOK {
		t.Fatalf("expected ok, got %s (%v)", res.Status, res.Err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if got := res.Records[0]["speedpercentage"]; got != "42" {
		t.Errorf("speedpercentage = %#v", got)
	}
	if got, ok := res.Records[1]["positionx"].(json.Number); !ok || got.String() != "1.5" {
		t.Errorf("numbers must decode as json.Number, got %#v", res.Records[1]["positionx"])
	}
}

func TestFetch_EmptyArray(t *testing.T) {
	for _, body := range []string{`[]`, ` [ ] `, `null`} {
		server := serve(http.StatusOK, body)

		f, _ := newTestFetcher(server.URL, time.Second)
		res := f.Fetch(context.Background())
		server.Close()

		if res.Status != models.FetchEmpty {
			t.Errorf("body %q: expected empty, got %s (%v)", body, res.Status, res.Err)
		}
		if res.Items() == nil || len(res.Items()) != 0 {
			t.Errorf("body %q: Items() must be an empty slice", body)
		}
	}
}

func TestFetch_MalformedJSON(t *testing.T) {
	for _, body := range []string{`[{"workstation":`, `{"workstation":"WS-1"}`, `[] trailing`, ``} {
		server := serve(http.StatusOK, body)

		f, logs := newTestFetcher(server.URL, time.Second)
		res := f.Fetch(context.Background())
		server.Close()

		if res.Status != models.FetchFailed || res.Err == nil {
			t.Errorf("body %q: expected failure, got %s", body, res.Status)
		}
		if len(res.Items()) != 0 {
			t.Errorf("body %q: failed fetch must yield no records", body)
		}
		if logs.FilterMessage("error fetching robot data").Len() != 1 {
			t.Errorf("body %q: expected failure to be logged", body)
		}
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := serve(http.StatusInternalServerError, `[{"workstation":"WS-1"}]`)
	defer server.Close()

	f, _ := newTestFetcher(server.URL, time.Second)
	res := f.Fetch(context.Background())

	if res.Status != models.FetchFailed {
		t.Fatalf("expected failure, got %s", res.Status)
	}
	if res.StatusCode != http.StatusInternalServerError {
		t.Errorf("status code = %d", res.StatusCode)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f, _ := newTestFetcher(server.URL, 50*time.Millisecond)
	res := f.Fetch(context.Background())

	if res.Status != models.FetchFailed {
		t.Fatalf("expected failure, got %s", res.Status)
	}
	if !strings.Contains(res.Err.Error(), "request failed") {
		t.Errorf("unexpected error: %v", res.Err)
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	server := serve(http.StatusOK, `[]`)
	url := server.URL
	server.Close()

	f, _ := newTestFetcher(url, time.Second)
	if res := f.Fetch(context.Background()); res.Status != models.FetchFailed {
		t.Fatalf("expected failure, got %s", res.Status)
	}
}

func TestDecodeRecords_NonObjectElements(t *testing.T) {
	records, err := decodeRecords([]byte(`[1, "x", {"tag":"a"}]`))
	if err != nil {
		t.Fatalf("decodeRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected one record per element, got %d", len(records))
	}
	if len(records[0]) != 0 || records[2]["tag"] != "a" {
		t.Errorf("unexpected records: %#v", records)
	}
}

func TestClose_Idempotent(t *testing.T) {
	f, _ := newTestFetcher("http://example.com", time.Second)
	f.Close()
	f.Close()

	var nilFetcher *apiFetcher
	nilFetcher.Close()
}
