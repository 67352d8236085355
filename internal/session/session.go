// Package session scopes the shopper state containers to one sign-in.
//
// A Session is opened at sign-in and owns the cart, the wishlist mirror,
// the checkout flow and the plant listing of that sign-in. Sign-out closes
// it. The Registry decides whether a session id is still valid so that a
// token stops working as soon as its session is closed.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/cart"
	"nursery/internal/catalog"
	"nursery/internal/checkout"
	"nursery/internal/wishlist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is the authenticated caller carried by a token.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

// Session holds the state containers of one sign-in.
type Session struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time
	// ExpiresAt is zero when the manager has no ttl.
	ExpiresAt time.Time

	Cart     *cart.Cart
	Wishlist *wishlist.Mirror
	Checkout *checkout.Flow
	Listing  *catalog.Listing
}

// Dependencies are the stores the containers read from and write to.
type Dependencies struct {
	Plants    catalog.Finder
	Wishlists wishlist.Store
	Orders    checkout.OrderPlacer
}

// Manager opens, resumes and closes sessions.
type Manager struct {
	registry Registry
	deps     Dependencies
	ttl      time.Duration
	log      *zap.Logger

	mu   sync.Mutex
	live map[string]*Session
}

// NewManager creates a Manager. ttl is how long a session stays valid in
// the registry and should match the token lifetime.
func NewManager(registry Registry, deps Dependencies, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		registry: registry,
		deps:     deps,
		ttl:      ttl,
		log:      log,
		live:     make(map[string]*Session),
	}
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return uuid.New().String()
}

// Open registers a session for id and builds its containers. An empty
// id.SessionID is replaced by a new one.
func (m *Manager) Open(ctx context.Context, id Identity) (*Session, error) {
	if id.SessionID == "" {
		id.SessionID = NewSessionID()
	}
	rec := Record{SessionID: id.SessionID, UserID: id.UserID, Email: id.Email, CreatedAt: time.Now().UTC()}
	if err := m.registry.Put(ctx, rec, m.ttl); err != nil {
		return nil, apperrors.DataStore("session.Open", err)
	}

	m.Sweep(ctx, rec.CreatedAt)
	s := m.build(ctx, rec)
	m.mu.Lock()
	m.live[s.ID] = s
	m.mu.Unlock()
	m.log.Info("session opened", zap.String("session_id", s.ID), zap.String("user_id", s.UserID))
	return s, nil
}

// Resume returns the live session of id. When the registry still holds the
// session but this process does not, for example after a restart, fresh
// containers are built for it.
func (m *Manager) Resume(ctx context.Context, id Identity) (*Session, error) {
	const op = "session.Resume"

	rec, err := m.registry.Get(ctx, id.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		m.evict(ctx, id.SessionID)
		return nil, apperrors.Auth(op, "session expired or signed out", err)
	}
	if err != nil {
		return nil, apperrors.DataStore(op, err)
	}
	if rec.UserID != id.UserID {
		return nil, apperrors.Auth(op, "session does not belong to this user", nil)
	}

	m.mu.Lock()
	s, ok := m.live[id.SessionID]
	m.mu.Unlock()
	if ok {
		if s.expired(time.Now()) {
			m.evict(ctx, id.SessionID)
			return nil, apperrors.Auth(op, "session expired or signed out", nil)
		}
		return s, nil
	}

	s = m.build(ctx, *rec)
	m.mu.Lock()
	// Another request may have rebuilt it meanwhile.
	if existing, ok := m.live[s.ID]; ok {
		s = existing
	} else {
		m.live[s.ID] = s
	}
	m.mu.Unlock()
	return s, nil
}

// Close signs the session out: the wishlist mirror is reset, the
// containers are dropped and the registry entry is deleted.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	m.evict(ctx, sessionID)
	if err := m.registry.Delete(ctx, sessionID); err != nil {
		return apperrors.DataStore("session.Close", err)
	}
	m.log.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Sweep tears down every live session that expired at or before now and
// returns how many were removed. Registry entries expire on their own.
func (m *Manager) Sweep(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.live {
		if s.expired(now) {
			expired = append(expired, s)
			delete(m.live, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.teardown(ctx)
	}
	if len(expired) > 0 {
		m.log.Debug("expired sessions evicted", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.Sweep(ctx, now)
		}
	}
}

// Len returns the number of sessions live in this process.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *Manager) drop(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live[sessionID]
	if !ok {
		return nil
	}
	delete(m.live, sessionID)
	return s
}

func (m *Manager) evict(ctx context.Context, sessionID string) {
	if s := m.drop(sessionID); s != nil {
		s.teardown(ctx)
	}
}

func (m *Manager) build(ctx context.Context, rec Record) *Session {
	c := cart.New()
	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = rec.CreatedAt.Add(m.ttl)
	}
	s := &Session{
		ID:        rec.SessionID,
		UserID:    rec.UserID,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: expiresAt,
		Cart:      c,
		Wishlist:  wishlist.NewMirror(m.deps.Wishlists),
		Checkout:  checkout.NewFlow(rec.UserID, c, m.deps.Orders),
		Listing:   catalog.NewListing(m.deps.Plants),
	}
	if err := s.Wishlist.SetUser(ctx, rec.UserID); err != nil {
		// The mirror stays empty; the next add refetches.
		m.log.Warn("initial wishlist fetch failed", zap.String("session_id", rec.SessionID), zap.Error(err))
	}
	return s
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) teardown(ctx context.Context) {
	_ = s.Wishlist.SetUser(ctx, "")
	s.Cart.Clear()
}
