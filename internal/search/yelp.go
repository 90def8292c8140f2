package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/civicsource/civicsource/internal/civic"
)

const YelpBaseURL = "https://api.yelp.com/v3"

type Yelp struct {
	httpSource
}

func NewYelp(apiKey, baseURL string) *Yelp {
	if baseURL == "" {
		baseURL = YelpBaseURL
	}
	return &Yelp{httpSource: newHTTPSource(baseURL, apiKey)}
}

func (y *Yelp) Name() string { return "Yelp" }

type yelpResponse struct {
	Businesses []struct {
		Name        string   `json:"name"`
		Rating      *float64 `json:"rating"`
		ReviewCount *int     `json:"review_count"`
		Phone       string   `json:"display_phone"`
		URL         string   `json:"url"`
		Distance    *float64 `json:"distance"`
		Location    struct {
			DisplayAddress []string `json:"display_address"`
		} `json:"location"`
		Categories []struct {
			Title string `json:"title"`
		} `json:"categories"`
	} `json:"businesses"`
}

func (y *Yelp) Search(ctx context.Context, q Query) ([]civic.Candidate, error) {
	params := url.Values{}
	params.Set("term", q.Text)
	params.Set("location", q.Location)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort_by", "rating")
	if q.Radius > 0 {
		meters := int(float64(q.Radius) * metersPerMile)
		if meters > maxYelpRadius {
			meters = maxYelpRadius
		}
		params.Set("radius", strconv.Itoa(meters))
	}

	var resp yelpResponse
	headers := map[string]string{"Authorization": "Bearer " + y.apiKey}
	if err := y.getJSON(ctx, "/businesses/search", params, headers, &resp); err != nil {
		return nil, err
	}

	candidates := make([]civic.Candidate, 0, len(resp.Businesses))
	for _, b := range resp.Businesses {
		c := civic.Candidate{
			Name:    b.Name,
			Address: strings.Join(b.Location.DisplayAddress, " "),
			Rating:  b.Rating,
			Reviews: b.ReviewCount,
			Phone:   b.Phone,
			URL:     b.URL,
			Source:  y.Name(),
		}
		for _, category := range b.Categories {
			c.Categories = append(c.Categories, category.Title)
		}
		if b.Distance != nil {
			miles := *b.Distance / metersPerMile
			c.DistanceMiles = &miles
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
