// Package socrata is a small client for Socrata Open Data (SODA) resource
// endpoints such as https://data.cityofnewyork.us/resource/erm2-nwe9.json.
//
// Only the pieces this pipeline needs are implemented: a GET against one
// dataset with $limit, $where and a stable $order, decoded into raw records.
package socrata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nypd311/internal/datasource/httpds"
	jsonparser "nypd311/internal/parser/json"
	"nypd311/pkg/records"
)

// DefaultBaseURL is the NYC open-data portal.
const DefaultBaseURL = "https://data.cityofnewyork.us"

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	// Body holds the start of the response body; SODA puts its error message
	// (e.g. "query.soql.no-such-column") there.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("socrata: http %d", e.StatusCode)
	}
	return fmt.Sprintf("socrata: http %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	AppToken string
	// Order is sent as $order so repeated queries return rows in the same
	// sequence. Defaults to ":id".
	Order string
	HTTP  httpds.Config
}

// Client issues SODA queries. It holds one HTTP session for its lifetime;
// call Close when done.
type Client struct {
	base  *url.URL
	order string
	http  *httpds.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("socrata: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("socrata: base url %q must be absolute", base)
	}

	httpCfg := cfg.HTTP
	hdr := http.Header{}
	for k, vs := range httpCfg.BaseHeaders {
		hdr[k] = append([]string(nil), vs...)
	}
	hdr.Set("Accept", "application/json")
	if cfg.AppToken != "" {
		hdr.Set("X-App-Token", cfg.AppToken)
	}
	httpCfg.BaseHeaders = hdr

	order := cfg.Order
	if order == "" {
		order = ":id"
	}

	return &Client{base: u, order: order, http: httpds.NewClient(httpCfg)}, nil
}

// ResourceURL builds the request URL for one query.
func (c *Client) ResourceURL(dataset string, limit int, where string) string {
	q := url.Values{}
	q.Set("$limit", strconv.Itoa(limit))
	if where != "" {
		q.Set("$where", where)
	}
	if c.order != "" {
		q.Set("$order", c.order)
	}
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/resource/" + url.PathEscape(dataset) + ".json"
	u.RawQuery = q.Encode()
	return u.String()
}

// Get fetches at most limit rows of dataset matching where.
func (c *Client) Get(ctx context.Context, dataset string, limit int, where string) ([]records.Record, error) {
	if dataset == "" {
		return nil, errors.New("socrata: dataset must not be empty")
	}
	if limit < 1 {
		return nil, fmt.Errorf("socrata: limit must be >= 1, got %d", limit)
	}

	resp, err := c.http.Get(ctx, c.ResourceURL(dataset, limit, where), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	recs, err := jsonparser.DecodeAll(ctx, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("socrata: decode %s: %w", dataset, err)
	}
	return recs, nil
}

// Close releases the underlying HTTP session.
func (c *Client) Close() { c.http.Close() }
