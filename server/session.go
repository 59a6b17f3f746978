package server

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"sync"
	"time"

	"songshelf/core/playlist"
	"songshelf/logger"
	"songshelf/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookieName   = "songshelf_session"
	sessionCookieMaxAge = 365 * 24 * time.Hour
)

// session is one listener's player state. mu is held for the whole request,
// so commands of one listener run one at a time.
type session struct {
	mu sync.Mutex

	id       string
	ctrl     *playlist.Controller
	audio    *audioElement
	notice   *playlist.Notice
	lang     string
	lastSeen time.Time
}

// takeNotice returns the pending notice and clears it.
func (s *session) takeNotice() *playlist.Notice {
	n := s.notice
	s.notice = nil
	return n
}

// sessionManager maps signed session cookies to in-memory sessions. The
// custom playlist outlives a session through the store; the selection does not.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session

	store  playlist.Store
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func newSessionManager(store playlist.Store, secret []byte, ttl time.Duration) *sessionManager {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(fmt.Sprintf("failed to generate session secret: %v", err))
		}
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	return &sessionManager{
		sessions: make(map[string]*session),
		store:    store,
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}
}

// acquire finds or creates the caller's session, issuing a cookie for new
// ones, and returns it locked. The caller must unlock s.mu. If the custom
// playlist cannot be loaded, s.ctrl stays nil and the next request loads again.
func (m *sessionManager) acquire(ctx context.Context, w http.ResponseWriter, r *http.Request) (*session, error) {
	id, ok := m.idFromRequest(r)
	if !ok {
		id = uuid.NewString()
		m.setCookie(w, id)
	}

	m.mu.Lock()
	s, exists := m.sessions[id]
	if !exists {
		s = &session{id: id, audio: &audioElement{}}
		m.sessions[id] = s
		metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
	s.lastSeen = m.now()
	m.mu.Unlock()

	s.mu.Lock()
	if s.ctrl == nil {
		ctrl, err := playlist.NewController(ctx, m.store, id, s.audio)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.ctrl = ctrl
	}
	return s, nil
}

func (m *sessionManager) idFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, err := m.parseToken(c.Value)
	if err != nil {
		logger.Debug("Rejected session cookie", logger.ErrorField(err))
		return "", false
	}
	return id, true
}

func (m *sessionManager) setCookie(w http.ResponseWriter, id string) {
	token, err := m.signToken(id)
	if err != nil {
		logger.Error("Failed to sign session token", logger.ErrorField(err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *sessionManager) signToken(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(m.now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *sessionManager) parseToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("invalid session subject: %w", err)
	}
	return id.String(), nil
}

// sweep drops sessions idle for longer than the ttl and returns how many.
func (m *sessionManager) sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return removed
}

// sweepLoop runs sweep every interval until ctx is done.
func (m *sessionManager) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sweep(); n > 0 {
				logger.Info("Swept idle sessions", logger.Int("count", n))
			}
		}
	}
}

func (m *sessionManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
