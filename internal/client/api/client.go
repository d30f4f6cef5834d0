// Package api is the terminal storefront's client for the storefront API.
// Every call takes a context so callers can abandon it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/GreenCart/internal/models"
)

var (
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError carries a non-2xx response the client has no sentinel for.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.Code, e.Body)
}

// Client calls the storefront API at BaseURL.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// New returns a Client with a bounded timeout.
func New(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 300:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// States lists covered states.
func (c *Client) States(ctx context.Context) ([]models.State, error) {
	var out []models.State
	err := c.do(ctx, http.MethodGet, "/api/states", "", nil, &out)
	return out, err
}

// SearchState resolves a name or abbreviation. Returns ErrNotFound for unknown states.
func (c *Client) SearchState(ctx context.Context, query string) (models.State, string, error) {
	var out struct {
		State models.State `json:"state"`
		Route string       `json:"route"`
	}
	err := c.do(ctx, http.MethodGet, "/api/states/search?q="+url.QueryEscape(query), "", nil, &out)
	return out.State, out.Route, err
}

// Dispensaries lists a state's dispensaries. state may be a name or slug.
func (c *Client) Dispensaries(ctx context.Context, state string) ([]models.Dispensary, error) {
	var out []models.Dispensary
	err := c.do(ctx, http.MethodGet, "/api/states/"+url.PathEscape(state)+"/dispensaries", "", nil, &out)
	return out, err
}

// Menu lists a dispensary's products.
func (c *Client) Menu(ctx context.Context, dispensaryID string) ([]models.Product, error) {
	var out []models.Product
	err := c.do(ctx, http.MethodGet, "/api/dispensaries/"+url.PathEscape(dispensaryID)+"/products", "", nil, &out)
	return out, err
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id string) (models.Product, error) {
	var out models.Product
	err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), "", nil, &out)
	return out, err
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, login, password, displayName string) error {
	in := map[string]string{"login": login, "password": password, "display_name": displayName}
	return c.do(ctx, http.MethodPost, "/api/auth/signup", "", in, nil)
}

// SignIn opens a session. Returns ErrUnauthorized for bad credentials.
func (c *Client) SignIn(ctx context.Context, login, password string) (*models.AuthSession, error) {
	var out models.AuthSession
	in := map[string]string{"login": login, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut ends the session identified by token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", token, nil, nil)
}

// Session resolves token. Returns ErrUnauthorized once it is no longer valid.
func (c *Client) Session(ctx context.Context, token string) (*models.AuthSession, error) {
	var out models.AuthSession
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", token, nil, &out); err != nil {
		return nil, err
	}
	out.Token = token
	return &out, nil
}

// Recommend asks the server for strain recommendations.
func (c *Client) Recommend(ctx context.Context, preferences string) ([]models.Recommendation, error) {
	var out struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	err := c.do(ctx, http.MethodPost, "/api/recommendations", "", map[string]string{"preferences": preferences}, &out)
	return out.Recommendations, err
}
