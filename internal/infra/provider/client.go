package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/datatypes"
)

const DefaultBaseURL = "https://pokeapi.co/api/v2/pokemon"

// maxBodySize caps upstream documents; PokeAPI records are well below this.
const maxBodySize = 8 << 20

var ErrNotFound = errors.New("not found upstream")

// Error reports a failed lookup for Key. Err is ErrNotFound when the upstream
// answered 404, otherwise the transport, status or decoding failure.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider: fetch %q: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "creature_upstream_requests_total",
	Help: "Upstream creature lookups by outcome.",
}, []string{"outcome"})

// Collectors exposes the client's metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{requestsTotal}
}

// Client fetches creature documents from a read-only upstream API.
// Each call makes exactly one request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchByKey returns the raw upstream document for a name or numeric id.
func (c *Client) FetchByKey(ctx context.Context, key string) (datatypes.JSON, error) {
	lookup := strings.ToLower(strings.TrimSpace(key))
	payload, err := c.fetch(ctx, lookup)
	switch {
	case err == nil:
		requestsTotal.WithLabelValues("ok").Inc()
		return payload, nil
	case errors.Is(err, ErrNotFound):
		requestsTotal.WithLabelValues("not_found").Inc()
	default:
		requestsTotal.WithLabelValues("error").Inc()
	}
	return nil, &Error{Key: key, Err: err}
}

func (c *Client) fetch(ctx context.Context, lookup string) (datatypes.JSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(lookup), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return datatypes.JSON(body), nil
}
