// Package feed fetches published spreadsheet feeds and decodes them into raw
// tables. Transport failures are returned as errors for the pipeline layer
// to turn into a cache fallback; nothing here retries on its own.
package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

// Feed formats. A published Google sheet exposes both a CSV endpoint and a
// gviz JSON endpoint; CSV is the default.
const (
	FormatCSV  = "csv"
	FormatGviz = "gviz"
)

// Table is a decoded feed: a header row plus data rows. Rows may be ragged;
// the normalizer treats missing cells as blank.
type Table struct {
	Header []string
	Rows   [][]string
}

// Client fetches feed tables over HTTP. Retries are disabled on purpose: a
// failed fetch degrades to the cached snapshot and the user refreshes
// explicitly, so the transport must not paper over outages.
type Client struct {
	http *retryablehttp.Client
}

// NewClient builds a feed client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	c := retryablehttp.NewClient()
	c.Logger = log.New(io.Discard, "", 0)
	c.RetryMax = 0
	c.HTTPClient.Timeout = timeout
	return &Client{http: c}
}

// Fetch retrieves one feed in the named format. An empty format means CSV.
func (c *Client) Fetch(ctx context.Context, url, format string) (*Table, error) {
	switch format {
	case "", FormatCSV:
		return c.FetchCSV(ctx, url)
	case FormatGviz:
		return c.FetchGviz(ctx, url)
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}
}

// FetchCSV GETs a CSV feed and decodes it.
func (c *Client) FetchCSV(ctx context.Context, url string) (*Table, error) {
	body, err := c.get(ctx, url, "text/csv")
	if err != nil {
		return nil, err
	}
	table, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("feed body is not a CSV table%s: %w", htmlTitleHint(body), err)
	}
	return table, nil
}

// FetchGviz GETs the JSON flavor of a published sheet and decodes it.
func (c *Client) FetchGviz(ctx context.Context, url string) (*Table, error) {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return nil, err
	}
	table, err := ParseGviz(body)
	if err != nil {
		return nil, fmt.Errorf("feed body is not a gviz payload%s: %w", htmlTitleHint(body), err)
	}
	return table, nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed returned status %d%s", resp.StatusCode, htmlTitleHint(body))
	}
	return body, nil
}

// ParseCSV decodes a CSV body with a header row. Ragged rows are tolerated
// (the sheets are hand-maintained) and fully blank rows are skipped.
func ParseCSV(body []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("empty feed body")
	}

	table := &Table{Header: records[0]}
	for _, row := range records[1:] {
		if blankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// htmlTitleHint pulls the <title> out of an HTML error page so a failed
// fetch logs something more useful than raw markup. Published-sheet
// endpoints answer permission problems with a full HTML page.
func htmlTitleHint(body []byte) string {
	probe := body
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	if !bytes.Contains(bytes.ToLower(probe), []byte("<html")) {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" (page title: %q)", title)
}
