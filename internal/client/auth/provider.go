package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/atinyakov/GreenCart/internal/client/api"
	"github.com/atinyakov/GreenCart/internal/models"
	"go.uber.org/zap"
)

// DefaultWatchInterval replaces a non-positive Watch interval.
const DefaultWatchInterval = 30 * time.Second

// SessionAPI is the subset of the storefront API the provider talks to.
type SessionAPI interface {
	SignIn(ctx context.Context, login, password string) (*models.AuthSession, error)
	SignOut(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*models.AuthSession, error)
}

// HTTPProvider is the identity provider backed by the storefront API.
// Server-side invalidation is noticed by Watch polling the session.
type HTTPProvider struct {
	api SessionAPI
	log *zap.Logger

	mu      sync.Mutex
	token   string
	current *models.AuthSession
	subs    map[int]func(*models.AuthSession)
	nextID  int
}

// NewHTTPProvider returns a provider that will restore token, if non-empty, on Init.
func NewHTTPProvider(a SessionAPI, token string, log *zap.Logger) *HTTPProvider {
	return &HTTPProvider{api: a, token: token, log: log, subs: make(map[int]func(*models.AuthSession))}
}

// Init validates the initial token. An unknown or expired token resolves to
// signed out; transport failures are returned.
func (p *HTTPProvider) Init(ctx context.Context) error {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()
	if token == "" {
		return nil
	}
	sess, err := p.api.Session(ctx, token)
	if errors.Is(err, api.ErrUnauthorized) {
		p.publish(nil)
		return nil
	}
	if err != nil {
		return err
	}
	p.publish(sess)
	return nil
}

// Current returns the signed-in session, or nil.
func (p *HTTPProvider) Current() *models.AuthSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers fn for session changes.
func (p *HTTPProvider) Subscribe(fn func(*models.AuthSession)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// SignIn opens a session and publishes it.
func (p *HTTPProvider) SignIn(ctx context.Context, login, password string) (*models.AuthSession, error) {
	sess, err := p.api.SignIn(ctx, login, password)
	if err != nil {
		return nil, err
	}
	p.publish(sess)
	return sess, nil
}

// SignOut ends the session locally and on the server. The local session is
// dropped even when the server call fails; that error is still returned.
func (p *HTTPProvider) SignOut(ctx context.Context) error {
	cur := p.Current()
	if cur == nil {
		return nil
	}
	p.publish(nil)
	return p.api.SignOut(ctx, cur.Token)
}

// Watch re-validates the session every interval until ctx is done.
// A non-positive interval falls back to DefaultWatchInterval.
func (p *HTTPProvider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		p.log.Warn("invalid session poll interval, using default",
			zap.Duration("interval", interval), zap.Duration("default", DefaultWatchInterval))
		interval = DefaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.refresh(ctx)
			}
		}
	}()
}

func (p *HTTPProvider) refresh(ctx context.Context) {
	cur := p.Current()
	if cur == nil {
		return
	}
	_, err := p.api.Session(ctx, cur.Token)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		p.log.Info("session ended by provider", zap.String("user", cur.UserID))
		p.publishIf(cur.Token, nil)
	case err != nil && ctx.Err() == nil:
		p.log.Warn("session check failed", zap.Error(err))
	}
}

func (p *HTTPProvider) publish(sess *models.AuthSession) {
	p.mu.Lock()
	p.commitLocked(sess)
}

// publishIf publishes only if the session still carries token, so a stale
// refresh does not clobber a newer sign-in.
func (p *HTTPProvider) publishIf(token string, sess *models.AuthSession) {
	p.mu.Lock()
	if p.current == nil || p.current.Token != token {
		p.mu.Unlock()
		return
	}
	p.commitLocked(sess)
}

// commitLocked must be called with p.mu held; it releases it before notifying.
func (p *HTTPProvider) commitLocked(sess *models.AuthSession) {
	if sameSession(p.current, sess) {
		p.mu.Unlock()
		return
	}
	p.current = sess
	p.token = ""
	if sess != nil {
		p.token = sess.Token
	}
	subs := make([]func(*models.AuthSession), 0, len(p.subs))
	for id := 0; id < p.nextID; id++ {
		if fn, ok := p.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

func sameSession(a, b *models.AuthSession) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Token == b.Token
}
