// Package sessions keeps the server-side records of in-progress multipart
// transfers: an arena of ephemeral sessions keyed by the store-assigned
// upload id, with a time-based reaper for sessions abandoned past a grace
// period.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Session is one in-progress multipart transfer. It is created on
// initiation, mutated by each part-URL issuance and consumed on finalize
// or abort.
type Session struct {
	ID          string
	StorageKey  string
	ContentType string
	CreatedAt   time.Time

	// parts holds the numbers of every part the session recorded.
	parts map[int32]struct{}
}

// Parts returns the recorded part numbers, unsorted.
func (s *Session) Parts() []int32 {
	out := make([]int32, 0, len(s.parts))
	for p := range s.parts {
		out = append(out, p)
	}
	return out
}

// ReapFunc is called for every session the reaper removes so the caller can
// release store-side resources (abort the multipart upload).
type ReapFunc func(ctx context.Context, s *Session)

// Registry is the in-memory session arena. All methods are safe for
// concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	grace    time.Duration

	now func() time.Time
}

// NewRegistry builds a registry whose reaper considers sessions older than
// grace abandoned.
func NewRegistry(grace time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		grace:    grace,
		now:      time.Now,
	}
}

// Add registers a freshly initiated session.
func (r *Registry) Add(id, storageKey, contentType string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{
		ID:          id,
		StorageKey:  storageKey,
		ContentType: contentType,
		CreatedAt:   r.now(),
		parts:       make(map[int32]struct{}),
	}
	r.sessions[id] = s
	return s
}

// Get returns the session for id or common.ErrSessionNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	return s, nil
}

// RecordPart notes that a part URL was issued for partNumber.
func (r *Registry) RecordPart(id string, partNumber int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return common.ErrSessionNotFound
	}
	s.parts[partNumber] = struct{}{}
	return nil
}

// Finalize validates the submitted completion payload against the session
// and consumes it. The payload must be ascending and contiguous from 1..N
// and must cover every part the session recorded; otherwise the session is
// left untouched and common.ErrPartListInvalid is returned.
func (r *Registry) Finalize(id string, parts []models.CompletedPart) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}

	if len(parts) == 0 {
		return nil, common.ErrPartListInvalid
	}
	for i, p := range parts {
		if p.PartNumber != int32(i+1) {
			return nil, common.ErrPartListInvalid
		}
	}
	n := int32(len(parts))
	for recorded := range s.parts {
		if recorded > n {
			return nil, common.ErrPartListInvalid
		}
	}

	delete(r.sessions, id)
	return s, nil
}

// Abort consumes the session without validation.
func (r *Registry) Abort(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return s, nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// reap removes and returns every session older than the grace period.
func (r *Registry) reap() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.grace)
	var expired []*Session
	for id, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	return expired
}

// RunReaper periodically removes abandoned sessions, invoking onReap for
// each so the caller can abort the store-side upload. It blocks until ctx
// is cancelled.
func (r *Registry) RunReaper(ctx context.Context, interval time.Duration, onReap ReapFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range r.reap() {
				if onReap != nil {
					onReap(ctx, s)
				}
			}
		}
	}
}
