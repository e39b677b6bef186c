// Package etl pulls the vacant storefront dataset from the city's open data
// portal and publishes the two files the map reads.
package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
)

// Record is one dataset row with every field the portal returned.
type Record map[string]any

type Fetcher interface {
	Fetch(ctx context.Context) ([]Record, error)
}

type SocrataQuery struct {
	Domain   string
	Dataset  string
	AppToken string
	Where    string
	Limit    int
}

// SocrataClient reads a dataset through the SODA resource endpoint.
type SocrataClient struct {
	http  *http.Client
	base  *url.URL
	query SocrataQuery
}

func NewSocrataClient(q SocrataQuery, client *http.Client) (*SocrataClient, error) {
	if q.Dataset == "" {
		return nil, fmt.Errorf("socrata: dataset id is required")
	}
	base, err := url.Parse(q.Domain)
	if err != nil {
		return nil, fmt.Errorf("socrata domain: %w", err)
	}
	if base.Scheme == "" {
		base = &url.URL{Scheme: "https", Host: q.Domain}
	}
	return &SocrataClient{http: client, base: base, query: q}, nil
}

func (c *SocrataClient) Fetch(ctx context.Context) ([]Record, error) {
	u := c.base.JoinPath("resource", c.query.Dataset+".json")
	v := url.Values{}
	if c.query.Limit > 0 {
		v.Set("$limit", strconv.Itoa(c.query.Limit))
	}
	if c.query.Where != "" {
		v.Set("$where", c.query.Where)
	}
	u.RawQuery = v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("socrata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.query.AppToken != "" {
		req.Header.Set("X-App-Token", c.query.AppToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.ObserveUpstreamLatency("socrata", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("socrata fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("socrata fetch: status %d: %s", resp.StatusCode, body)
	}

	var out []Record
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("socrata decode: %w", err)
	}
	return out, nil
}
