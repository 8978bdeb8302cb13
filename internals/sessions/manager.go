package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Resource-Library/internals/common"
	"Resource-Library/internals/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

type Options struct {
	CookieName string
	Secret     []byte
	MaxAge     time.Duration
	Secure     bool
	CacheSize  int
}

// Manager issues session cookies and resolves them back to identities.
// The cookie holds an HS256 token whose jti is the server-side session id;
// the session record itself is the source of truth.
type Manager struct {
	store *Store
	cache *lru.Cache
	opts  Options
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewManager(store *Store, opts Options, log logrus.FieldLogger) (*Manager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Manager{store: store, cache: cache, opts: opts, log: log, now: time.Now}, nil
}

// Start creates a fresh session for who, replacing any session the request
// already carried, and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, who models.Identity) (*models.Session, error) {
	if old := m.sessionID(r); old != "" {
		if err := m.forget(ctx, old); err != nil {
			m.log.WithError(err).Warn("failed to drop previous session")
		}
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    who.UserID,
		Username:  who.Username,
		ExpiresAt: m.now().Add(m.opts.MaxAge).Truncate(time.Second),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	m.cache.Add(sess.ID, sess)

	token, err := m.sign(sess)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Load returns the live session referenced by the request, or nil when the
// request carries none or it has expired.
func (m *Manager) Load(r *http.Request) (*models.Session, error) {
	sid := m.sessionID(r)
	if sid == "" {
		return nil, nil
	}
	ctx := r.Context()

	if v, ok := m.cache.Get(sid); ok {
		sess := v.(*models.Session)
		if !sess.Expired(m.now()) {
			return sess, nil
		}
	}

	sess, err := m.store.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			m.cache.Remove(sid)
			return nil, nil
		}
		return nil, err
	}
	if sess.Expired(m.now()) {
		return nil, m.forget(ctx, sid)
	}
	m.cache.Add(sid, sess)
	return sess, nil
}

// Destroy removes the request's session, if any, and clears the cookie.
// It is safe to call repeatedly.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	if sid := m.sessionID(r); sid != "" {
		return m.forget(ctx, sid)
	}
	return nil
}

// Purge deletes expired sessions from the store.
func (m *Manager) Purge(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) forget(ctx context.Context, sid string) error {
	m.cache.Remove(sid)
	return m.store.Delete(ctx, sid)
}

func (m *Manager) sign(sess *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// sessionID returns the session id from a correctly signed cookie, or "".
// Expiry is judged by the stored session, not by the token.
func (m *Manager) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return m.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return ""
	}
	return claims.ID
}
