package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/civicsource/civicsource/internal/civic"
)

const GooglePlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

type GooglePlaces struct {
	httpSource
}

func NewGooglePlaces(apiKey, baseURL string) *GooglePlaces {
	if baseURL == "" {
		baseURL = GooglePlacesBaseURL
	}
	return &GooglePlaces{httpSource: newHTTPSource(baseURL, apiKey)}
}

func (g *GooglePlaces) Name() string { return "Google Places" }

type placesResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name             string   `json:"name"`
		Rating           *float64 `json:"rating"`
		UserRatingsTotal *int     `json:"user_ratings_total"`
		FormattedAddress string   `json:"formatted_address"`
		PlaceID          string   `json:"place_id"`
		Types            []string `json:"types"`
	} `json:"results"`
}

func (g *GooglePlaces) Search(ctx context.Context, q Query) ([]civic.Candidate, error) {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(q.Text+" "+strings.ReplaceAll(q.Location, ",", "")))
	params.Set("key", g.apiKey)

	var resp placesResponse
	if err := g.getJSON(ctx, "/textsearch/json", params, nil, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "", "OK", "ZERO_RESULTS":
	default:
		return nil, fmt.Errorf("places status %s: %s", resp.Status, resp.ErrorMessage)
	}

	candidates := make([]civic.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		c := civic.Candidate{
			Name:    r.Name,
			Address: r.FormattedAddress,
			Rating:  r.Rating,
			Reviews: r.UserRatingsTotal,
			Source:  g.Name(),
		}
		for _, t := range r.Types {
			c.Categories = append(c.Categories, strings.ReplaceAll(t, "_", " "))
		}
		if r.PlaceID != "" {
			c.MapsURL = "https://www.google.com/maps/place/?q=place_id:" + r.PlaceID
			c.URL = c.MapsURL
		}
		candidates = append(candidates, c)
		if q.Limit > 0 && len(candidates) == q.Limit {
			break
		}
	}
	return candidates, nil
}
