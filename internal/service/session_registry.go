package service

import (
	"context"
	"sync"

	"interview-coach/internal/domain"

	"golang.org/x/sync/singleflight"
)

// liveSession is one client's in-memory session. mu serialises events.
type liveSession struct {
	mu      sync.Mutex
	session domain.Session
}

// SessionRegistry holds the live sessions of this process. A miss is
// rebuilt by the loader, and concurrent misses for one ID share a load.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
	group    singleflight.Group
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*liveSession)}
}

func (r *SessionRegistry) get(sessionID string) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	live, ok := r.sessions[sessionID]
	return live, ok
}

// getOrLoad returns the live session for sessionID, calling load at most
// once across concurrent callers when it is missing.
func (r *SessionRegistry) getOrLoad(ctx context.Context, sessionID string, load func(context.Context) (domain.Session, error)) (*liveSession, error) {
	if live, ok := r.get(sessionID); ok {
		return live, nil
	}
	v, err, _ := r.group.Do(sessionID, func() (interface{}, error) {
		if live, ok := r.get(sessionID); ok {
			return live, nil
		}
		s, err := load(ctx)
		if err != nil {
			return nil, err
		}
		live := &liveSession{session: s}
		r.mu.Lock()
		r.sessions[sessionID] = live
		r.mu.Unlock()
		return live, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*liveSession), nil
}

func (r *SessionRegistry) remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
