package main

import (
	"context"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
)

// recencyKey orders the entry index: newest createdAt first, then highest id.
type recencyKey struct {
	createdAt time.Time
	id        int64
}

func compareRecency(a, b interface{}) int {
	ka, kb := a.(recencyKey), b.(recencyKey)
	switch {
	case ka.createdAt.After(kb.createdAt):
		return -1
	case ka.createdAt.Before(kb.createdAt):
		return 1
	case ka.id > kb.id:
		return -1
	case ka.id < kb.id:
		return 1
	}
	return 0
}

// memStorage holds everything in process memory. Nothing survives a restart.
type memStorage struct {
	mu sync.RWMutex

	entries     map[int64]*GuestbookEntry
	byRecency   *treemap.Map
	nextEntryID int64
	lastCreated time.Time

	users      map[int64]*User
	usernames  map[string]int64
	nextUserID int64

	now func() time.Time
}

func newMemStorage() *memStorage {
	return &memStorage{
		entries:     make(map[int64]*GuestbookEntry),
		byRecency:   treemap.NewWith(compareRecency),
		nextEntryID: 1,
		users:       make(map[int64]*User),
		usernames:   make(map[string]int64),
		nextUserID:  1,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *memStorage) CreateEntry(ctx context.Context, draft EntryDraft) (*GuestbookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// createdAt never runs backwards relative to insertion order
	now := s.now()
	if now.Before(s.lastCreated) {
		now = s.lastCreated
	}
	s.lastCreated = now

	e := &GuestbookEntry{
		ID:        s.nextEntryID,
		Name:      draft.Name,
		Message:   draft.Message,
		Signature: normalizeSignature(draft.Signature),
		CreatedAt: now,
	}
	s.nextEntryID++
	s.entries[e.ID] = e
	s.byRecency.Put(recencyKey{createdAt: e.CreatedAt, id: e.ID}, e)
	return cloneEntry(e), nil
}

func (s *memStorage) ListEntries(ctx context.Context) ([]*GuestbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*GuestbookEntry, 0, s.byRecency.Size())
	for _, v := range s.byRecency.Values() {
		out = append(out, cloneEntry(v.(*GuestbookEntry)))
	}
	return out, nil
}

func (s *memStorage) GetEntry(ctx context.Context, id int64) (*GuestbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return cloneEntry(e), nil
}

func (s *memStorage) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernames[username]; taken {
		return nil, ErrUsernameTaken
	}
	u := &User{
		ID:        s.nextUserID,
		Username:  username,
		Password:  passwordHash,
		CreatedAt: s.now(),
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.usernames[username] = u.ID
	return cloneUser(u), nil
}

func (s *memStorage) GetUser(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *memStorage) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *memStorage) Close() error { return nil }
