package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperFunc makes it easy to stub http.Client.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *Client {
	return &Client{HTTP: &http.Client{Transport: fn, Timeout: time.Second}, BaseURL: "http://example.com"}
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestSearchState(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/states/search", req.URL.Path)
		if req.URL.Query().Get("q") == "New York" {
			return respond(200, `{"state":{"name":"New York","abbreviation":"NY"},"route":"/state/new-york"}`), nil
		}
		return respond(404, "state not found\n"), nil
	})

	st, route, err := c.SearchState(context.Background(), "New York")
	require.NoError(t, err)
	assert.Equal(t, "NY", st.Abbreviation)
	assert.Equal(t, "/state/new-york", route)

	_, _, err = c.SearchState(context.Background(), "Nowhereland")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSignIn_SendsCredentials(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body["password"] != "pw" {
			return respond(401, "invalid credentials\n"), nil
		}
		return respond(200, `{"user_id":"alice","display_name":"Alice","token":"tok"}`), nil
	})

	sess, err := c.SignIn(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)

	_, err = c.SignIn(context.Background(), "alice", "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSession_KeepsToken(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		return respond(200, `{"user_id":"alice","display_name":"Alice"}`), nil
	})

	sess, err := c.Session(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &models.AuthSession{UserID: "alice", DisplayName: "Alice", Token: "tok"}, sess)
}

func TestSignOut_NoContent(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	assert.NoError(t, c.SignOut(context.Background(), "tok"))
}

func TestErrors(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/api/states":
			return respond(200, "not-json"), nil
		case "/api/recommendations":
			return respond(502, "recommendations unavailable\n"), nil
		}
		return nil, errors.New("network down")
	})

	_, err := c.States(context.Background())
	assert.ErrorContains(t, err, "invalid response")

	_, err = c.Recommend(context.Background(), "calm")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 502, se.Code)
	assert.Equal(t, "recommendations unavailable", se.Body)

	_, err = c.Menu(context.Background(), "x")
	assert.ErrorContains(t, err, "network down")
}

func TestCanceledContext(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Product(ctx, "p1")
	assert.ErrorIs(t, err, context.Canceled)
}
