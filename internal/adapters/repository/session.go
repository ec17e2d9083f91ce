package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/statboard/internal/adapters/source"
	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/pkg/metrics"
)

// Defaults for the session store.
const (
	defaultMaxSessions   = 1000
	defaultTTL           = time.Hour
	defaultSweepInterval = time.Minute
)

// LoadFunc loads a dataset from a source.
type LoadFunc func(ctx context.Context, src source.Source) (model.Dataset, error)

// Info describes a live session.
type Info struct {
	ID         string
	Source     string
	Rows       int
	CreatedAt  time.Time
	LastAccess time.Time
}

// session is one cache slot. A nil upload means the default source is used.
type session struct {
	id         string
	upload     *source.Source
	identity   string
	dataset    model.Dataset
	loaded     bool
	createdAt  time.Time
	lastAccess time.Time
}

// SessionStore caches one dataset per session, keyed by the identity of the
// source it was loaded from. Recency order is kept in an LRU list whose front
// is the most recently accessed session.
type SessionStore struct {
	mu            sync.Mutex
	byID          map[string]*list.Element
	lru           *list.List
	maxSessions   int
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	closed   bool
}

// NewSessionStore constructs a session store and starts its expiry sweeper.
func NewSessionStore(ctx context.Context, opts ...Option) *SessionStore {
	s := &SessionStore{
		byID:          make(map[string]*list.Element),
		lru:           list.New(),
		maxSessions:   defaultMaxSessions,
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateActiveSessions(0)
	if s.sweepInterval > 0 {
		s.startSweeper(ctx)
	}
	return s
}

// startSweeper removes expired sessions at the configured interval.
func (s *SessionStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Close stops the sweeper. Sessions stay readable.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.stopChan)
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

// Create issues a new session id. At capacity the least recently accessed
// session is evicted first.
func (s *SessionStore) Create(_ context.Context) string {
	now := s.now()
	sess := &session{
		id:         uuid.NewString(),
		createdAt:  now,
		lastAccess: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(now)
	for s.lru.Len() >= s.maxSessions {
		s.removeLocked(s.lru.Back())
		metrics.RecordSessionEviction()
	}
	s.byID[sess.id] = s.lru.PushFront(sess)
	metrics.UpdateActiveSessions(s.lru.Len())
	return sess.id
}

// Exists reports whether id names a live session.
func (s *SessionStore) Exists(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.touchLocked(id, s.now())
	return err == nil
}

// SetSource records the source uploaded for a session. The cached dataset is
// dropped and reloaded on the next Dataset call.
func (s *SessionStore) SetSource(_ context.Context, id string, src source.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touchLocked(id, s.now())
	if err != nil {
		return err
	}
	upload := src
	sess.upload = &upload
	sess.identity = ""
	sess.dataset = model.Dataset{}
	sess.loaded = false
	return nil
}

// Put records src for the session together with a dataset already loaded
// from it.
func (s *SessionStore) Put(_ context.Context, id string, src source.Source, ds model.Dataset) error {
	identity, err := src.Identity()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touchLocked(id, s.now())
	if err != nil {
		return err
	}
	upload := src
	sess.upload = &upload
	sess.identity = identity
	sess.dataset = ds
	sess.loaded = true
	return nil
}

// Dataset returns the session's dataset. The session's uploaded source is
// used when present, fallback otherwise. A cached dataset is returned while
// the source identity is unchanged; otherwise load runs and its result
// replaces the cache. Failed loads are not cached.
func (s *SessionStore) Dataset(ctx context.Context, id string, fallback source.Source, load LoadFunc) (model.Dataset, error) {
	s.mu.Lock()
	sess, err := s.touchLocked(id, s.now())
	if err != nil {
		s.mu.Unlock()
		return model.Dataset{}, err
	}
	upload := sess.upload
	src := fallback
	if upload != nil {
		src = *upload
	}
	cachedIdentity, cached, loaded := sess.identity, sess.dataset, sess.loaded
	s.mu.Unlock()

	identity, idErr := src.Identity()
	if loaded && idErr == nil && identity == cachedIdentity {
		metrics.RecordSessionCacheHit()
		return cached, nil
	}
	metrics.RecordSessionCacheMiss()

	ds, err := load(ctx, src)
	if err != nil {
		return ds, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have been evicted or re-pointed while loading.
	if elem, ok := s.byID[id]; ok {
		current := elem.Value.(*session)
		if current.upload == upload && idErr == nil {
			current.identity = identity
			current.dataset = ds
			current.loaded = true
		}
	}
	return ds, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.removeLocked(elem)
	metrics.UpdateActiveSessions(s.lru.Len())
	return nil
}

// Info describes a live session.
func (s *SessionStore) Info(_ context.Context, id string) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.byID[id]
	if !ok {
		return Info{}, ErrSessionNotFound
	}
	sess := elem.Value.(*session)
	info := Info{
		ID:         sess.id,
		Rows:       sess.dataset.Len(),
		CreatedAt:  sess.createdAt,
		LastAccess: sess.lastAccess,
	}
	if sess.upload != nil {
		info.Source = sess.upload.Name
	}
	return info, nil
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (s *SessionStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expireLocked(s.now())
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// touchLocked looks a session up and marks it accessed. Expired sessions are
// removed and reported as missing.
func (s *SessionStore) touchLocked(id string, now time.Time) (*session, error) {
	elem, ok := s.byID[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := elem.Value.(*session)
	if now.Sub(sess.lastAccess) > s.ttl {
		s.removeLocked(elem)
		metrics.RecordSessionEviction()
		metrics.UpdateActiveSessions(s.lru.Len())
		return nil, ErrSessionNotFound
	}
	sess.lastAccess = now
	s.lru.MoveToFront(elem)
	return sess, nil
}

// expireLocked walks from the least recently accessed end and drops every
// session past its TTL.
func (s *SessionStore) expireLocked(now time.Time) int {
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		sess := elem.Value.(*session)
		if now.Sub(sess.lastAccess) <= s.ttl {
			break
		}
		prev := elem.Prev()
		s.removeLocked(elem)
		metrics.RecordSessionEviction()
		removed++
		elem = prev
	}
	if removed > 0 {
		metrics.UpdateActiveSessions(s.lru.Len())
	}
	return removed
}

func (s *SessionStore) removeLocked(elem *list.Element) {
	sess := s.lru.Remove(elem).(*session)
	delete(s.byID, sess.id)
}
