package backend

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/civicsource/civicsource/internal/civic"
	"github.com/mitchellh/mapstructure"
)

const (
	DefaultSearchRadius = 25
	DefaultSearchLimit  = 12
)

// SearchParams are the query parameters of a business search.
type SearchParams struct {
	// query is the custom tag used to build the URL. Zero values are omitted.
	Query      string   `query:"query" mapstructure:"query"`
	Location   string   `query:"location" mapstructure:"location"`
	Radius     int      `query:"radius" mapstructure:"radius"`
	Limit      int      `query:"limit" mapstructure:"limit"`
	Categories []string `query:"category" mapstructure:"categories"`
}

type searchResponse struct {
	Businesses *[]map[string]interface{} `json:"businesses"`
}

// SearchBusinesses returns candidate businesses in the order the backend ranks them.
func (c *Client) SearchBusinesses(ctx context.Context, params *SearchParams) ([]civic.Candidate, error) {
	if params == nil {
		params = &SearchParams{}
	}
	if params.Radius == 0 {
		params.Radius = DefaultSearchRadius
	}
	if params.Limit == 0 {
		params.Limit = DefaultSearchLimit
	}

	var resp searchResponse
	if err := c.getJSON(ctx, searchPath, buildParams(params), &resp); err != nil {
		return nil, err
	}

	if resp.Businesses == nil {
		return nil, fmt.Errorf("%w: businesses are missing", ErrMalformedResponse)
	}

	return DecodeCandidates(*resp.Businesses)
}

// DecodeCandidates converts loosely typed search results into candidates.
// Numbers sent as strings and nulls are tolerated.
func DecodeCandidates(items []map[string]interface{}) ([]civic.Candidate, error) {
	candidates := make([]civic.Candidate, 0, len(items))

	cfg := &mapstructure.DecoderConfig{
		Result:           &candidates,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ZeroFields:       true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return candidates, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		key := field.Tag.Get("query")
		if key == "" {
			continue
		}

		value := reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface()
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		case int:
			if v != 0 {
				q.Set(key, strconv.Itoa(v))
			}
		default:
			if s := fmt.Sprintf("%v", v); s != "" {
				q.Set(key, s)
			}
		}
	}

	return q
}
