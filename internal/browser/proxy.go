package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// ProxyOptions configures an optional upstream proxy resolver. Shape
// (timeout'd http.Client hitting a JSON endpoint for connection details)
// is carried over from the teacher's BrightData HTTP client
// (internal/scraper/engines/brightdata/brightdata.go); the LinkedIn
// dataset-scraping logic that client used is not reused — here the
// endpoint only resolves a proxy address for the browser launcher.
type ProxyOptions struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// ProxyResolver looks up a proxy connection descriptor from a configured
// endpoint once at startup, rather than per-navigation.
type ProxyResolver struct {
	opts       ProxyOptions
	httpClient *http.Client
}

// NewProxyResolver constructs a resolver; httpClient.Timeout follows the
// same cfg.Timeout-on-client pattern the teacher's BrightData client uses.
func NewProxyResolver(opts ProxyOptions) *ProxyResolver {
	return &ProxyResolver{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// proxyDescriptorResponse is the JSON shape the endpoint returns.
type proxyDescriptorResponse struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProxyDescriptor is a resolved proxy connection the launcher can apply.
type ProxyDescriptor struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Resolve fetches the current proxy descriptor. When proxying is
// disabled it returns (nil, nil) so callers can treat it as a no-op.
func (r *ProxyResolver) Resolve(ctx context.Context) (*ProxyDescriptor, error) {
	if !r.opts.Enabled {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.opts.Endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "browser: build proxy resolution request")
	}
	if r.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.opts.APIKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "browser: proxy resolution request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("browser: proxy resolution returned status %d", resp.StatusCode)
	}

	var parsed proxyDescriptorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "browser: decode proxy resolution response")
	}

	return &ProxyDescriptor{
		Host:     parsed.Host,
		Port:     parsed.Port,
		Username: parsed.Username,
		Password: parsed.Password,
	}, nil
}
