package search

import (
	"context"
	"net/url"
	"strconv"

	"github.com/civicsource/civicsource/internal/civic"
)

const (
	RapidAPIBaseURL = "https://local-business-data.p.rapidapi.com"
	rapidAPIHost    = "local-business-data.p.rapidapi.com"
)

// RapidAPI queries the local-business-data directory.
type RapidAPI struct {
	httpSource
}

func NewRapidAPI(apiKey, baseURL string) *RapidAPI {
	if baseURL == "" {
		baseURL = RapidAPIBaseURL
	}
	return &RapidAPI{httpSource: newHTTPSource(baseURL, apiKey)}
}

func (r *RapidAPI) Name() string { return "RapidAPI" }

type rapidResponse struct {
	Data []struct {
		Name        string   `json:"name"`
		Address     string   `json:"address"`
		Website     string   `json:"website"`
		PhoneNumber string   `json:"phone_number"`
		Rating      *float64 `json:"rating"`
		ReviewCount *int     `json:"review_count"`
		PlaceLink   string   `json:"place_link"`
		Subtypes    []string `json:"subtypes"`
	} `json:"data"`
}

func (r *RapidAPI) Search(ctx context.Context, q Query) ([]civic.Candidate, error) {
	params := url.Values{}
	params.Set("query", q.Text)
	params.Set("city", city(q.Location))
	params.Set("limit", strconv.Itoa(q.Limit))

	headers := map[string]string{
		"X-RapidAPI-Key":  r.apiKey,
		"X-RapidAPI-Host": rapidAPIHost,
	}

	var resp rapidResponse
	if err := r.getJSON(ctx, "/search", params, headers, &resp); err != nil {
		return nil, err
	}

	candidates := make([]civic.Candidate, 0, len(resp.Data))
	for _, d := range resp.Data {
		candidates = append(candidates, civic.Candidate{
			Name:       d.Name,
			Address:    d.Address,
			Rating:     d.Rating,
			Reviews:    d.ReviewCount,
			Phone:      d.PhoneNumber,
			Website:    d.Website,
			MapsURL:    d.PlaceLink,
			URL:        d.Website,
			Categories: d.Subtypes,
			Source:     r.Name(),
		})
	}
	return candidates, nil
}
