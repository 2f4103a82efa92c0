// Package usertest holds the behavioural suite every user.Store backend
// must pass.
package usertest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"google-auth-service/internal/auth"
	"google-auth-service/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory creates the Store under test.
type StoreFactory func(t *testing.T) user.Store

// RunStoreTests runs the complete Store suite against the provided factory.
func RunStoreTests(t *testing.T, factory StoreFactory) {
	t.Run("FindByEmail_NotFound", func(t *testing.T) { testFindNotFound(t, factory) })
	t.Run("Create_ThenFind", func(t *testing.T) { testCreateThenFind(t, factory) })
	t.Run("Create_PasswordAccount", func(t *testing.T) { testPasswordAccount(t, factory) })
	t.Run("Create_DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, factory) })
	t.Run("Email_CaseInsensitive", func(t *testing.T) { testCaseInsensitive(t, factory) })
	t.Run("Create_ConcurrentSameEmail", func(t *testing.T) { testConcurrentCreate(t, factory) })
	t.Run("Service_ConcurrentFindOrCreate", func(t *testing.T) { testConcurrentFindOrCreate(t, factory) })
}

// uniqueEmail keeps runs against shared databases independent.
func uniqueEmail() string {
	return "user-" + uuid.NewString() + "@example.com"
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func ptr(s string) *string { return &s }

func testFindNotFound(t *testing.T, factory StoreFactory) {
	s := factory(t)

	rec, err := s.FindByEmail(ctx(t), uniqueEmail())
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func testCreateThenFind(t *testing.T, factory StoreFactory) {
	s := factory(t)
	email := uniqueEmail()

	before := time.Now().Add(-time.Minute)
	created, err := s.Create(ctx(t), user.Record{
		Email:             email,
		DisplayName:       "A",
		ProviderSubjectID: ptr("u1"),
		AvatarURL:         "p",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.CreatedAt.After(before), "created_at %v", created.CreatedAt)

	found, err := s.FindByEmail(ctx(t), email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, email, found.Email)
	assert.Equal(t, "A", found.DisplayName)
	assert.Equal(t, "p", found.AvatarURL)
	assert.Nil(t, found.PasswordHash)
	require.NotNil(t, found.ProviderSubjectID)
	assert.Equal(t, "u1", *found.ProviderSubjectID)
	assert.WithinDuration(t, created.CreatedAt, found.CreatedAt, time.Millisecond)
}

func testPasswordAccount(t *testing.T, factory StoreFactory) {
	s := factory(t)
	email := uniqueEmail()

	_, err := s.Create(ctx(t), user.Record{
		Email:        email,
		DisplayName:  "Registered",
		PasswordHash: ptr("$2a$10$hash"),
	})
	require.NoError(t, err)

	found, err := s.FindByEmail(ctx(t), email)
	require.NoError(t, err)
	require.NotNil(t, found.PasswordHash)
	assert.Equal(t, "$2a$10$hash", *found.PasswordHash)
	assert.Nil(t, found.ProviderSubjectID)
}

func testDuplicateEmail(t *testing.T, factory StoreFactory) {
	s := factory(t)
	email := uniqueEmail()

	first, err := s.Create(ctx(t), user.Record{Email: email, DisplayName: "A", ProviderSubjectID: ptr("u1")})
	require.NoError(t, err)

	_, err = s.Create(ctx(t), user.Record{Email: email, DisplayName: "B", ProviderSubjectID: ptr("u2")})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	found, err := s.FindByEmail(ctx(t), email)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "A", found.DisplayName)
	assert.Equal(t, "u1", *found.ProviderSubjectID)
}

func testCaseInsensitive(t *testing.T, factory StoreFactory) {
	s := factory(t)
	email := uniqueEmail()

	created, err := s.Create(ctx(t), user.Record{Email: email, ProviderSubjectID: ptr("u1")})
	require.NoError(t, err)

	found, err := s.FindByEmail(ctx(t), strings.ToUpper(email))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.Create(ctx(t), user.Record{Email: strings.ToUpper(email)})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func testConcurrentCreate(t *testing.T, factory StoreFactory) {
	s := factory(t)
	email := uniqueEmail()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.Create(context.Background(), user.Record{Email: email, ProviderSubjectID: ptr("u1")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, user.ErrDuplicateEmail):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
}

func testConcurrentFindOrCreate(t *testing.T, factory StoreFactory) {
	svc := user.NewService(factory(t))
	email := uniqueEmail()

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]int{}
		created int
		errs    []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			rec, wasCreated, err := svc.FindOrCreate(context.Background(), &auth.Identity{
				ProviderSubjectID: "u1",
				Email:             email,
				DisplayName:       "caller",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[rec.ID]++
			if wasCreated {
				created++
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, ids, 1, "every caller must see the same record")
	assert.Equal(t, 1, created)
}
