package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mohammed-shakir/storefront-map/internal/core/model"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
)

// HTTPSource fetches data/properties.json and data/activities.json relative
// to a base URL, e.g. a static bucket website.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse data url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("data url must be http(s), got %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{base: u, client: client}, nil
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Properties(ctx context.Context) ([]model.PropertyRecord, error) {
	b, err := s.get(ctx, "data/"+PropertiesFile)
	if err != nil {
		return nil, err
	}
	return decodeProperties(b)
}

func (s *HTTPSource) Activities(ctx context.Context) ([]string, error) {
	b, err := s.get(ctx, "data/"+ActivitiesFile)
	if err != nil {
		return nil, err
	}
	return decodeActivities(b)
}

func (s *HTTPSource) get(ctx context.Context, rel string) ([]byte, error) {
	u := s.base.JoinPath(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	observability.ObserveUpstreamLatency("data", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: status %d", u, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	return b, nil
}
