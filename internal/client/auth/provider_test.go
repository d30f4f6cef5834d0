package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/GreenCart/internal/client/api"
	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSessionAPI struct {
	mu          sync.Mutex
	valid       map[string]*models.AuthSession
	sessionErr  error
	signOutErr  error
	signedOut   []string
	sessionHits int
}

func (f *fakeSessionAPI) SignIn(ctx context.Context, login, password string) (*models.AuthSession, error) {
	if password != "pw" {
		return nil, api.ErrUnauthorized
	}
	s := &models.AuthSession{UserID: login, Token: "tok-" + login}
	f.mu.Lock()
	f.valid[s.Token] = s
	f.mu.Unlock()
	return s, nil
}

func (f *fakeSessionAPI) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, token)
	delete(f.valid, token)
	return f.signOutErr
}

func (f *fakeSessionAPI) Session(ctx context.Context, token string) (*models.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionHits++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	s, ok := f.valid[token]
	if !ok {
		return nil, api.ErrUnauthorized
	}
	return s, nil
}

func (f *fakeSessionAPI) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.valid, token)
}

func newFakeSessionAPI() *fakeSessionAPI {
	return &fakeSessionAPI{valid: map[string]*models.AuthSession{}}
}

func TestHTTPProvider_InitRestoresToken(t *testing.T) {
	a := newFakeSessionAPI()
	a.valid["saved"] = &models.AuthSession{UserID: "erin", Token: "saved"}

	p := NewHTTPProvider(a, "saved", zap.NewNop())
	require.NoError(t, p.Init(context.Background()))
	require.NotNil(t, p.Current())
	assert.Equal(t, "erin", p.Current().UserID)
}

func TestHTTPProvider_InitStaleToken(t *testing.T) {
	p := NewHTTPProvider(newFakeSessionAPI(), "stale", zap.NewNop())
	require.NoError(t, p.Init(context.Background()))
	assert.Nil(t, p.Current())
}

func TestHTTPProvider_InitTransportError(t *testing.T) {
	a := newFakeSessionAPI()
	a.sessionErr = errors.New("dial tcp: connection refused")

	p := NewHTTPProvider(a, "tok", zap.NewNop())
	assert.Error(t, p.Init(context.Background()))

	s := NewStore(context.Background(), p, zap.NewNop())
	sess, resolved := s.Current()
	assert.True(t, resolved)
	assert.Nil(t, sess)
}

func TestHTTPProvider_SignInOutThroughStore(t *testing.T) {
	a := newFakeSessionAPI()
	p := NewHTTPProvider(a, "", zap.NewNop())
	s := NewStore(context.Background(), p, zap.NewNop())

	var seen []State
	s.Subscribe(func(st State) { seen = append(seen, st) })

	_, err := p.SignIn(context.Background(), "frank", "nope")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Empty(t, seen)

	_, err = p.SignIn(context.Background(), "frank", "pw")
	require.NoError(t, err)
	sess, _ := s.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "frank", sess.UserID)

	require.NoError(t, p.SignOut(context.Background()))
	sess, _ = s.Current()
	assert.Nil(t, sess)
	assert.Equal(t, []string{"tok-frank"}, a.signedOut)
	assert.Len(t, seen, 2)

	require.NoError(t, p.SignOut(context.Background()))
	assert.Len(t, a.signedOut, 1)
}

func TestHTTPProvider_SignOutServerError(t *testing.T) {
	a := newFakeSessionAPI()
	a.signOutErr = errors.New("network down")
	p := NewHTTPProvider(a, "", zap.NewNop())

	_, err := p.SignIn(context.Background(), "gina", "pw")
	require.NoError(t, err)
	assert.Error(t, p.SignOut(context.Background()))
	assert.Nil(t, p.Current())
}

func TestHTTPProvider_WatchNoticesRevocation(t *testing.T) {
	a := newFakeSessionAPI()
	p := NewHTTPProvider(a, "", zap.NewNop())
	s := NewStore(context.Background(), p, zap.NewNop())

	_, err := p.SignIn(context.Background(), "hank", "pw")
	require.NoError(t, err)

	ended := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(st State) {
		if st.Session == nil {
			once.Do(func() { close(ended) })
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Watch(ctx, 5*time.Millisecond)
	a.revoke("tok-hank")

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("store was not told about the revoked session")
	}
	sess, _ := s.Current()
	assert.Nil(t, sess)
}

func TestHTTPProvider_WatchNonPositiveInterval(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewHTTPProvider(newFakeSessionAPI(), "", zap.New(core))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NotPanics(t, func() {
		p.Watch(ctx, 0)
		p.Watch(ctx, -time.Second)
	})

	entries := logs.FilterMessage("invalid session poll interval, using default").All()
	require.Len(t, entries, 2)
	assert.Equal(t, DefaultWatchInterval, entries[1].ContextMap()["default"])
}

func TestHTTPProvider_RefreshKeepsNewerSession(t *testing.T) {
	a := newFakeSessionAPI()
	p := NewHTTPProvider(a, "", zap.NewNop())

	_, err := p.SignIn(context.Background(), "ivy", "pw")
	require.NoError(t, err)
	p.publishIf("some-older-token", nil)
	require.NotNil(t, p.Current())
	assert.Equal(t, "ivy", p.Current().UserID)
}
