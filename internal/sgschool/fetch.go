package sgschool

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/school-finder/internal/resilience"
)

// maxPageBytes caps how much of a page is read.
const maxPageBytes = 4 << 20

// BlockType describes an anti-bot response.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
)

// DetectBlock checks a response for a challenge page instead of content.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable) {
		if resp.Header.Get("cf-ray") != "" || strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	switch {
	case strings.Contains(lower, "checking your browser"),
		strings.Contains(lower, "cf-browser-verification"):
		return BlockCloudflare
	case strings.Contains(lower, "g-recaptcha"),
		strings.Contains(lower, "h-captcha"):
		return BlockCaptcha
	}
	return BlockNone
}

// Fetcher downloads pages one at a time with a fixed gap between requests.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	retry     resilience.Policy
}

// NewFetcher creates a Fetcher. A delay of zero disables the gap.
func NewFetcher(userAgent string, delay, timeout time.Duration, retry resilience.Policy) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		lim = rate.NewLimiter(rate.Every(delay), 1)
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.LogRetry("sgschooling", "fetch")
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		limiter:   lim,
		retry:     retry,
	}
}

// Get returns the body of url, retrying transient failures.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	return resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]byte, error) {
		return f.get(ctx, url)
	})
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sgschool: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sgschool: create request")
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "sgschool: fetch %s", url), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "sgschool: read %s", url)
	}

	if block := DetectBlock(resp, body); block != BlockNone {
		return nil, eris.Errorf("sgschool: blocked (%s) at %s", block, url)
	}
	if err := resilience.CheckStatus("sgschool: "+url, resp.StatusCode); err != nil {
		return nil, err
	}
	return body, nil
}
