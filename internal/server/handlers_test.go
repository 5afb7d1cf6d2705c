package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dealscope/pkg/dataset"
	"dealscope/pkg/feed"
	"dealscope/pkg/pipeline"
	"dealscope/pkg/storage"
)

type fakeFetcher struct {
	table *feed.Table
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, format string) (*feed.Table, error) {
	return f.table, f.err
}

type fakeStore struct {
	mu    sync.Mutex
	snaps map[string]*storage.Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{snaps: make(map[string]*storage.Snapshot)}
}

func (s *fakeStore) SaveSnapshot(ctx context.Context, feedKey, label string, records []dataset.ActivityRecord, fetchedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[feedKey] = &storage.Snapshot{Feed: feedKey, Label: label, FetchedAt: fetchedAt, Records: records}
	return nil
}

func (s *fakeStore) LoadSnapshot(ctx context.Context, feedKey string) (*storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[feedKey]
	if !ok {
		return nil, storage.ErrNoSnapshot
	}
	return snap, nil
}

func newTestServer(t *testing.T, password string) *httptest.Server {
	t.Helper()
	fetcher := &fakeFetcher{table: &feed.Table{
		Header: []string{"Deal Name", "Associate", "Date", "Associate Error T/F", "Error Type"},
		Rows: [][]string{
			{"Acme", "A", "1/1/2024", "yes", ""},
			{"Globex", "A", "1/2/2024", "no", ""},
		},
	}}
	m := pipeline.NewManager([]pipeline.FeedConfig{
		{Key: "deal", Label: "Deal Processing", Schema: dataset.DefaultSchema()},
	}, fetcher, newFakeStore(), nil)

	h, err := New(m, password).Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIOpenWithoutPassword(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/api/feeds")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv := newTestServer(t, "hunter2")
	resp, err := http.Get(srv.URL + "/api/feeds")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLoginFlow(t *testing.T) {
	srv := newTestServer(t, "hunter2")

	// Wrong password.
	resp, err := http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(`{"password":"wrong"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}

	// Right password issues a session cookie.
	resp, err = http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(`{"password":"hunter2"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "dealscope_session" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie")
	}

	// The cookie unlocks the API.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/feeds", nil)
	req.AddCookie(session)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", resp.StatusCode)
	}

	// Logout revokes it.
	req, _ = http.NewRequest(http.MethodPost, srv.URL+"/api/logout", nil)
	req.AddCookie(session)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/feeds", nil)
	req.AddCookie(session)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestRefreshAndErrorRateEndToEnd(t *testing.T) {
	srv := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/api/refresh?feed=deal", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	var state struct {
		Provenance  string `json:"provenance"`
		RecordCount int    `json:"recordCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if state.Provenance != "live" || state.RecordCount != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}

	resp, err = http.Get(srv.URL + "/api/series/error-rate?feed=deal&associate=A")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	var series []struct {
		Week string  `json:"week"`
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(series) != 1 {
		t.Fatalf("expected 1 week, got %d", len(series))
	}
	if series[0].Rate != 50.0 {
		t.Fatalf("expected rate 50.0, got %v", series[0].Rate)
	}
	if series[0].Week != "1/1/2024" {
		t.Fatalf("expected week 1/1/2024, got %q", series[0].Week)
	}
}

func TestUnknownFeed(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/api/state?feed=bogus")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMonthsRequiresYear(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/api/months?feed=deal")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
