package web

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"jobconsole/common/cache"
	"jobconsole/services/console/internal/jobform"
	"jobconsole/services/console/internal/joblist"
	"jobconsole/services/console/internal/notify"
	"jobconsole/services/console/internal/passwordreset"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is everything one browser has open in the console.
type Session struct {
	ID      string
	JobList joblist.State
	JobForm jobform.State
	Reset   passwordreset.State
	Flashes notify.Queue
	// KeepList is set by actions that redirect back to /jobs. The next list
	// page shows the patched list instead of fetching it again.
	KeepList bool
}

func newSession(id string) *Session {
	return &Session{
		ID:      id,
		JobList: joblist.NewState(),
		JobForm: jobform.NewState(),
		Reset:   passwordreset.NewState(),
	}
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// SessionStore loads and saves sessions through a cache. Requests for the
// same session are serialised by Acquire.
type SessionStore struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

func NewSessionStore(c cache.Cache, ttl time.Duration, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		cache:  c,
		ttl:    ttl,
		logger: logger,
		locks:  make(map[string]*sessionLock),
	}
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Acquire blocks until the caller owns the session and returns it together
// with the function that releases it. A missing or expired session starts
// blank.
func (s *SessionStore) Acquire(ctx context.Context, id string) (*Session, func()) {
	unlock := s.lock(id)

	sess := newSession(id)
	if err := s.cache.Get(ctx, id, sess); err != nil {
		if !stderrors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("failed to load session, starting fresh",
				zap.String("session_id", id),
				zap.Error(err))
		}
		sess = newSession(id)
	}
	return sess, unlock
}

func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	return s.cache.Set(ctx, sess.ID, sess, s.ttl)
}

func (s *SessionStore) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
