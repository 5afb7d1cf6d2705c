package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleCSV = `Deal Name,Associate,Date,Associate Error T/F,Error Type
Acme,Sam,1/1/2024,yes,DocA
,,,
Globex,Kim,1/2/2024,no,
`

func newTestClient() *Client {
	return NewClient(5 * time.Second)
}

func TestParseCSV(t *testing.T) {
	table, err := ParseCSV([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table.Header) != 5 {
		t.Fatalf("expected 5 header columns, got %d", len(table.Header))
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected blank row skipped, got %d rows", len(table.Rows))
	}
	if table.Rows[0][1] != "Sam" {
		t.Fatalf("unexpected first row: %v", table.Rows[0])
	}
}

func TestParseCSV_HeaderOnlyIsValid(t *testing.T) {
	table, err := ParseCSV([]byte("Associate,Date\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Fatalf("expected 0 rows, got %d", len(table.Rows))
	}
}

func TestParseCSV_EmptyBody(t *testing.T) {
	if _, err := ParseCSV(nil); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestFetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	table, err := newTestClient().Fetch(context.Background(), srv.URL, FormatCSV)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
}

func TestFetchCSV_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := newTestClient().FetchCSV(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestFetchCSV_HTMLErrorPageTitleInMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<html><head><title>Sheet not published</title></head><body>gone</body></html>"))
	}))
	defer srv.Close()

	_, err := newTestClient().FetchCSV(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Sheet not published") {
		t.Fatalf("expected page title in error, got: %v", err)
	}
}

func TestFetch_UnknownFormat(t *testing.T) {
	if _, err := newTestClient().Fetch(context.Background(), "http://127.0.0.1:0", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestFetchCSV_NetworkError(t *testing.T) {
	// Port 0 is never listening.
	if _, err := newTestClient().FetchCSV(context.Background(), "http://127.0.0.1:1/feed"); err == nil {
		t.Fatal("expected network error")
	}
}
