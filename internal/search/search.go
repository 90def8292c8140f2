// Package search looks up local businesses for the collaborator API. Results
// from every configured source are concatenated in source order.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicsource/civicsource/internal/civic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLocation       = "Memphis, TN"
	DefaultPerSourceLimit = 3
	DefaultTimeout        = 8 * time.Second

	metersPerMile = 1609.34
	maxYelpRadius = 40000
)

// Query describes what the buyer is looking for.
type Query struct {
	Text     string
	Location string
	// Radius is in miles.
	Radius int
	Limit  int
}

// Source is one business directory.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]civic.Candidate, error)
}

// Aggregator queries all sources concurrently. A failing source is logged and
// contributes nothing.
type Aggregator struct {
	sources        []Source
	perSourceLimit int
	fallback       []civic.Candidate
	logger         *zap.Logger
}

func NewAggregator(sources []Source, perSourceLimit int, logger *zap.Logger) *Aggregator {
	if perSourceLimit <= 0 {
		perSourceLimit = DefaultPerSourceLimit
	}
	return &Aggregator{
		sources:        sources,
		perSourceLimit: perSourceLimit,
		fallback:       Sample(),
		logger:         logger,
	}
}

// Search returns at most q.Limit candidates. When no source produced anything
// the built-in sample directory is served instead.
func (a *Aggregator) Search(ctx context.Context, q Query) ([]civic.Candidate, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if strings.TrimSpace(q.Location) == "" {
		q.Location = DefaultLocation
	}

	perSource := q
	perSource.Limit = a.perSourceLimit

	results := make([][]civic.Candidate, len(a.sources))

	g, gCtx := errgroup.WithContext(ctx)
	for idx, source := range a.sources {
		g.Go(func() error {
			found, err := source.Search(gCtx, perSource)
			if err != nil {
				a.logger.Warn("search source failed",
					zap.String("source", source.Name()),
					zap.Error(err),
				)
				return nil
			}
			if len(found) > perSource.Limit {
				found = found[:perSource.Limit]
			}
			results[idx] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []civic.Candidate
	for _, found := range results {
		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 {
		a.logger.Info("no live search results, serving sample directory",
			zap.String("query", q.Text),
			zap.Int("sources", len(a.sources)),
		)
		candidates = append(candidates, a.fallback...)
	}

	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	return candidates, nil
}

// httpSource holds what the HTTP-backed sources share.
type httpSource struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func newHTTPSource(baseURL, apiKey string) httpSource {
	return httpSource{
		client:  &http.Client{Timeout: DefaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (s httpSource) getJSON(ctx context.Context, path string, params url.Values, headers map[string]string, target interface{}) error {
	endpoint := s.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// city returns the part of a "City, ST" location before the comma.
func city(location string) string {
	name, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(name)
}
