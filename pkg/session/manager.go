package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"book-discovery-be/internal/repository/contract"
	"book-discovery-be/pkg/store"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Manager serializes every read-modify-write of a session behind a
// per-session mutex, so concurrent requests for one reader never race.
type Manager struct {
	repo contract.SessionRepository

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(repo contract.SessionRepository) *Manager {
	return &Manager{repo: repo, locks: make(map[string]*sessionLock)}
}

// Create stores a new session
func (m *Manager) Create(ctx context.Context, session *store.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	return m.repo.Save(ctx, session)
}

// View loads a session under its lock without saving it back
func (m *Manager) View(ctx context.Context, id string, fn func(*store.Session) error) error {
	unlock := m.lock(id)
	defer unlock()

	session, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	return fn(session)
}

// Update loads a session under its lock, applies fn and saves the result.
// Nothing is saved when fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*store.Session) error) error {
	unlock := m.lock(id)
	defer unlock()

	session, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(session); err != nil {
		return err
	}
	session.UpdatedAt = time.Now()
	return m.repo.Save(ctx, session)
}

func (m *Manager) load(ctx context.Context, id string) (*store.Session, error) {
	session, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, id)
		}
		m.mu.Unlock()
	}
}
