package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byEmail: make(map[string]Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) FindByEmail(_ context.Context, email string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

func (m *MemoryStore) Create(_ context.Context, rec Record) (*Record, error) {
	key := strings.ToLower(rec.Email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[key]; exists {
		return nil, ErrDuplicateEmail
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = m.now().UTC()
	m.byEmail[key] = *clone(rec)

	return clone(rec), nil
}

// clone copies the pointer fields so callers cannot mutate stored state.
func clone(rec Record) *Record {
	if rec.PasswordHash != nil {
		v := *rec.PasswordHash
		rec.PasswordHash = &v
	}
	if rec.ProviderSubjectID != nil {
		v := *rec.ProviderSubjectID
		rec.ProviderSubjectID = &v
	}
	return &rec
}

var _ Store = (*MemoryStore)(nil)
