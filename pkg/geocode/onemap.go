package geocode

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/school-finder/internal/resilience"
)

const searchPath = "/api/common/elastic/search"

type searchResponse struct {
	Found   int            `json:"found"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Address   string `json:"ADDRESS"`
	Latitude  string `json:"LATITUDE"`
	Longitude string `json:"LONGITUDE"`
}

// Search geocodes query and returns the first result.
func (c *oneMap) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Result{Matched: false}, nil
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Result, error) {
		return c.search(ctx, query)
	})
}

// LocatePostalCode geocodes a postal code after validating it.
func (c *oneMap) LocatePostalCode(ctx context.Context, postal string) (*Result, error) {
	postal = strings.TrimSpace(postal)
	if err := ValidatePostalCode(postal); err != nil {
		return nil, err
	}
	return c.Search(ctx, postal)
}

func (c *oneMap) search(ctx context.Context, query string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: onemap rate limit")
	}

	params := url.Values{
		"searchVal":      {query},
		"returnGeom":     {"Y"},
		"getAddrDetails": {"Y"},
		"pageNum":        {"1"},
	}
	reqURL := strings.TrimRight(c.baseURL, "/") + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: onemap build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "geocode: onemap request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckStatus("geocode: onemap", resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: onemap read body")
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, eris.Wrap(err, "geocode: onemap parse response")
	}

	if sr.Found == 0 || len(sr.Results) == 0 {
		return &Result{Matched: false}, nil
	}

	first := sr.Results[0]
	lat, latOK := parseCoord(first.Latitude)
	lng, lngOK := parseCoord(first.Longitude)
	if !latOK || !lngOK {
		return &Result{Matched: false}, nil
	}

	return &Result{
		Latitude:  lat,
		Longitude: lng,
		Address:   first.Address,
		Matched:   true,
	}, nil
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
