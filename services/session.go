package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"airbnb-dashboard/models"
)

// ErrSessionClosed is returned when a disposed session is used.
var ErrSessionClosed = errors.New("session closed")

// Session is the explicit per-user context handed to every pipeline stage:
// the dataset snapshot the user works against and the dashboard layout.
// Filter selections are not stored; each interaction supplies its own.
type Session struct {
	ID        string
	CreatedAt time.Time

	dataset   *models.Dataset
	dashboard *Dashboard

	mu       sync.Mutex
	lastUsed time.Time
	closed   bool
}

// NewSession starts a session over dataset.
func NewSession(dataset *models.Dataset, dashboard *Dashboard) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		dataset:   dataset,
		dashboard: dashboard,
		lastUsed:  now,
	}
}

// Dataset returns the session's snapshot, or nil once closed. Callers must
// not modify it.
func (s *Session) Dataset() *models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// Dashboard returns the session's view layout.
func (s *Session) Dashboard() *Dashboard { return s.dashboard }

// Render runs one interaction: filter the snapshot by sel and compute every
// chart of the named view.
func (s *Session) Render(view string, sel models.FilterSelection) (*models.ViewResult, error) {
	ds, err := s.touch()
	if err != nil {
		return nil, err
	}
	return s.dashboard.Run(ds.Listings, view, sel)
}

// RenderChart computes a single chart of the named view.
func (s *Session) RenderChart(view, chart string, sel models.FilterSelection) (*models.Chart, error) {
	ds, err := s.touch()
	if err != nil {
		return nil, err
	}
	return s.dashboard.RunChart(ds.Listings, view, chart, sel)
}

// Options returns the selector choices of the named view.
func (s *Session) Options(view string, sel models.FilterSelection) ([]Choice, error) {
	ds, err := s.touch()
	if err != nil {
		return nil, err
	}
	return s.dashboard.Options(ds.Listings, view, sel)
}

// LastUsed reports when the session last served an interaction.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close disposes of the session. Further interactions fail with
// ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.dataset = nil
}

func (s *Session) touch() (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.lastUsed = time.Now()
	if s.dataset == nil {
		return &models.Dataset{}, nil
	}
	return s.dataset, nil
}

// SessionStore tracks live sessions and expires idle ones.
type SessionStore struct {
	dataset   *models.Dataset
	dashboard *Dashboard
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates a store whose sessions all start from dataset.
func NewSessionStore(dataset *models.Dataset, dashboard *Dashboard, ttl time.Duration) *SessionStore {
	return &SessionStore{
		dataset:   dataset,
		dashboard: dashboard,
		ttl:       ttl,
		sessions:  make(map[string]*Session),
	}
}

// Acquire returns the live session with id, or a new one when id is unknown
// or expired. created reports which.
func (st *SessionStore) Acquire(id string) (s *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		if st.ttl <= 0 || time.Since(s.LastUsed()) < st.ttl {
			return s, false
		}
		s.Close()
		delete(st.sessions, id)
	}

	s = NewSession(st.dataset, st.dashboard)
	st.sessions[s.ID] = s
	return s, true
}

// Release closes and forgets the session with id.
func (st *SessionStore) Release(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return false
	}
	s.Close()
	delete(st.sessions, id)
	return true
}

// Sweep closes sessions idle for longer than the TTL and returns how many.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	n := 0
	for id, s := range st.sessions {
		if time.Since(s.LastUsed()) >= st.ttl {
			s.Close()
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// CloseAll disposes of every session.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.Close()
		delete(st.sessions, id)
	}
}
