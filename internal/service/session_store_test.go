package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-coach/internal/adapter"
	"interview-coach/internal/cache"
	"interview-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validSnapshot() domain.Snapshot {
	return domain.Snapshot{
		AppState: domain.StateInterview,
		User:     &domain.User{Name: "Alice", Email: "alice@example.com"},
		InterviewData: []domain.InterviewData{
			{Question: domain.InterviewQuestion{ID: 1, Category: "Behavioral", Question: "Q1"}, Answer: "A1"},
			{Question: domain.InterviewQuestion{ID: 2, Category: "Teamwork", Question: "Q2"}},
		},
		CurrentQuestionIndex: 1,
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(adapter.NewMemoryCacheAdapter(), time.Hour)

	user, err := store.LoadIdentity(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, store.SaveIdentity(ctx, "s1", domain.User{Name: "Alice", Email: "alice@example.com"}))
	user, err = store.LoadIdentity(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	snap := validSnapshot()
	require.NoError(t, store.SaveSnapshot(ctx, "s1", snap))
	loaded, err := store.LoadSnapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, snap, *loaded)

	require.NoError(t, store.ClearSnapshot(ctx, "s1"))
	require.NoError(t, store.ClearIdentity(ctx, "s1"))
	loaded, err = store.LoadSnapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
	user, err = store.LoadIdentity(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionStore_DiscardsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	mem := adapter.NewMemoryCacheAdapter()
	store := NewSessionStore(mem, 0)

	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"appState":`},
		{"missing user", `{"appState":4,"interviewData":[],"currentQuestionIndex":0}`},
		{"missing interview data", `{"appState":4,"user":{"name":"A","email":"a@b.co"},"currentQuestionIndex":0}`},
		{"not an interview state", `{"appState":10,"user":{"name":"A","email":"a@b.co"},"interviewData":[],"currentQuestionIndex":0}`},
		{"index out of range", `{"appState":4,"user":{"name":"A","email":"a@b.co"},"interviewData":[],"currentQuestionIndex":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := cache.SnapshotKey("s1")
			require.NoError(t, mem.Set(ctx, key, tt.raw, 0))

			snap, err := store.LoadSnapshot(ctx, "s1")
			require.NoError(t, err)
			assert.Nil(t, snap)

			_, err = mem.Get(ctx, key)
			assert.ErrorIs(t, err, domain.ErrCacheMiss, "invalid entry is deleted")
		})
	}

	require.NoError(t, mem.Set(ctx, cache.IdentityKey("s2"), `[1,2]`, 0))
	user, err := store.LoadIdentity(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionStore_CacheError(t *testing.T) {
	ctx := context.Background()
	c := new(MockCache)
	c.On("Get", ctx, cache.IdentityKey("s1")).Return("", errors.New("connection reset"))
	c.On("Set", ctx, cache.SnapshotKey("s1"), mock.Anything, time.Minute).Return(errors.New("read only"))
	store := NewSessionStore(c, time.Minute)

	_, err := store.LoadIdentity(ctx, "s1")
	assert.ErrorContains(t, err, "connection reset")
	assert.ErrorContains(t, store.SaveSnapshot(ctx, "s1", validSnapshot()), "read only")
	c.AssertExpectations(t)
}
