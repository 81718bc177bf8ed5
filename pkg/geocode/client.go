// Package geocode resolves Singapore addresses and postal codes to
// coordinates through the OneMap search API.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"

	"github.com/sells-group/school-finder/internal/geo"
	"github.com/sells-group/school-finder/internal/resilience"
)

// DefaultBaseURL is the public OneMap host.
const DefaultBaseURL = "https://www.onemap.gov.sg"

// DefaultRateInterval keeps a batch under OneMap's ~250 requests per minute.
const DefaultRateInterval = 300 * time.Millisecond

// Client looks up coordinates.
type Client interface {
	// Search geocodes a free-text query such as a street address.
	Search(ctx context.Context, query string) (*Result, error)

	// LocatePostalCode validates and geocodes a 6-digit postal code.
	LocatePostalCode(ctx context.Context, postal string) (*Result, error)
}

// Result holds the first match for a query. Matched is false when the
// service found nothing; that is not an error.
type Result struct {
	Latitude  float64
	Longitude float64
	Address   string
	Matched   bool
}

// Point returns the match as a WGS84 point, or nil when unmatched.
func (r *Result) Point() *geom.Point {
	if r == nil || !r.Matched {
		return nil
	}
	return geo.NewPoint(r.Latitude, r.Longitude)
}

// Option configures the client.
type Option func(*oneMap)

// WithBaseURL points the client at another host.
func WithBaseURL(u string) Option {
	return func(c *oneMap) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *oneMap) {
		c.httpClient = hc
	}
}

// WithRateInterval sets the minimum gap between requests. Zero or negative
// disables limiting.
func WithRateInterval(d time.Duration) Option {
	return func(c *oneMap) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(p resilience.Policy) Option {
	return func(c *oneMap) {
		c.retry = p
	}
}

type oneMap struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.Policy
}

// NewClient creates a OneMap Client with the given options.
func NewClient(opts ...Option) Client {
	c := &oneMap{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(DefaultRateInterval), 1),
		retry:      resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.LogRetry("onemap", "search")
	}
	return c
}
