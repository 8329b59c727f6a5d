package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/transport/http/response"
)

const maxResponseSize = 4 << 20

// APIError is a non-2xx answer from the catalog API. Message is the
// server-provided text when the envelope carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// API talks to the catalog HTTP API.
type API struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/creatures",
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *API) List(ctx context.Context) ([]response.Creature, error) {
	var out response.CreatureListResponse
	if err := a.do(ctx, http.MethodGet, "", nil, &out, "failed to fetch creatures"); err != nil {
		return nil, err
	}
	if out.Creatures == nil {
		out.Creatures = []response.Creature{}
	}
	return out.Creatures, nil
}

func (a *API) Get(ctx context.Context, id string) (response.Creature, error) {
	var out response.Creature
	err := a.do(ctx, http.MethodGet, "/"+url.PathEscape(id), nil, &out, fmt.Sprintf("failed to fetch creature with id %s", id))
	return out, err
}

func (a *API) Create(ctx context.Context, name string) (response.CreatureResponse, error) {
	var out response.CreatureResponse
	err := a.do(ctx, http.MethodPost, "", nameBody{Name: name}, &out, "failed to create creature")
	return out, err
}

func (a *API) Update(ctx context.Context, id, name string) (response.CreatureResponse, error) {
	var out response.CreatureResponse
	err := a.do(ctx, http.MethodPut, "/"+url.PathEscape(id), nameBody{Name: name}, &out, "failed to update creature")
	return out, err
}

func (a *API) Delete(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, nil, "failed to delete creature")
}

type nameBody struct {
	Name string `json:"name"`
}

func (a *API) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: envelopeMessage(data, fallback)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", fallback, err)
	}
	return nil
}

// envelopeMessage reads error.message, or error when it is a plain string.
func envelopeMessage(data []byte, fallback string) string {
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &env); err != nil || len(env.Error) == 0 {
		return fallback
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if err := json.Unmarshal(env.Error, &plain); err == nil && plain != "" {
		return plain
	}
	return fallback
}
