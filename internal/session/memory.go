package session

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process with LRU eviction and an idle TTL
// that slides on every access.
type MemoryStore struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
	closed  bool

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type entry struct {
	session   *Session
	expiresAt time.Time
}

// NewMemoryStore creates a store holding at most maxSize sessions.
// A cleanup goroutine removes idle sessions every cleanupInterval when it is
// positive; Close stops it.
func NewMemoryStore(maxSize int, ttl, cleanupInterval time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	s := &MemoryStore{
		maxSize:     maxSize,
		ttl:         ttl,
		items:       make(map[string]*list.Element),
		lru:         list.New(),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.startCleanup(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// Create stores and returns a new empty session.
func (s *MemoryStore) Create(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	now := s.now()
	sess := New(now)
	elem := s.lru.PushFront(&entry{session: sess, expiresAt: now.Add(s.ttl)})
	s.items[sess.ID] = elem

	if s.lru.Len() > s.maxSize {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
	return sess.Clone(), nil
}

// Load returns a copy of the session and refreshes its idle deadline.
func (s *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	return e.session.Clone(), nil
}

// Update applies fn to the stored session under the store lock.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.touch(id)
	if err != nil {
		return nil, err
	}
	next := e.session.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	e.session = next
	return next.Clone(), nil
}

// touch must be called with mu held.
func (s *MemoryStore) touch(id string) (*entry, error) {
	if s.closed {
		return nil, ErrClosed
	}
	elem, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := elem.Value.(*entry)
	now := s.now()
	if now.After(e.expiresAt) {
		s.removeElement(elem)
		return nil, ErrNotFound
	}
	e.expiresAt = now.Add(s.ttl)
	s.lru.MoveToFront(elem)
	return e, nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[id]; ok {
		s.removeElement(elem)
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included until
// the next cleanup.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items), nil
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.items, e.session.ID)
	s.lru.Remove(elem)
}

// CleanExpired removes idle sessions and returns how many were dropped.
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	return len(toRemove)
}

// Close stops the cleanup goroutine and rejects further use.
func (s *MemoryStore) Close() error {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return nil
}
