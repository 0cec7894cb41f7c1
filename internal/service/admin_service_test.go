package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"interview-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func scoredRecord(email string, date time.Time, score float64) domain.InterviewRecord {
	fb := &domain.IndividualFeedback{Scores: domain.FeedbackScores{Clarity: score, Relevance: score, Structure: score}}
	return domain.InterviewRecord{
		UserEmail:     email,
		Date:          date,
		InterviewData: []domain.InterviewData{{Answer: "a", Feedback: fb}},
	}
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	histories := new(MockHistoryRepository)
	svc := NewAdminService(users, histories)

	users.On("List", ctx).Return([]domain.StoredUser{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Sneaky", Email: domain.AdminEmail},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Carol", Email: "carol@example.com"},
	}, nil)
	latest := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	histories.On("ListByEmail", mock.Anything, "alice@example.com").Return([]domain.InterviewRecord{
		scoredRecord("alice@example.com", latest, 8),
		scoredRecord("alice@example.com", latest.AddDate(0, -1, 0), 3),
	}, nil)
	histories.On("ListByEmail", mock.Anything, "bob@example.com").Return([]domain.InterviewRecord{}, nil)
	histories.On("ListByEmail", mock.Anything, "carol@example.com").Return(nil, errors.New("timeout"))

	views, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, "alice@example.com", views[0].Email)
	require.NotNil(t, views[0].LatestScore)
	assert.Equal(t, 80, *views[0].LatestScore)
	assert.Equal(t, 2, views[0].Interviews)
	assert.True(t, latest.Equal(*views[0].LastInterview))

	assert.Equal(t, "bob@example.com", views[1].Email)
	assert.Nil(t, views[1].LatestScore)
	assert.Equal(t, "carol@example.com", views[2].Email)
	assert.Nil(t, views[2].LatestScore)
	histories.AssertNotCalled(t, "ListByEmail", mock.Anything, domain.AdminEmail)
}

func TestAdminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades history first", func(t *testing.T) {
		users := new(MockUserRepository)
		histories := new(MockHistoryRepository)
		var order []string
		histories.On("DeleteByEmail", ctx, "bob@example.com").Return(3, nil).Run(func(mock.Arguments) { order = append(order, "histories") })
		users.On("Delete", ctx, "bob@example.com").Return(1, nil).Run(func(mock.Arguments) { order = append(order, "user") })

		require.NoError(t, NewAdminService(users, histories).DeleteUser(ctx, "Bob@Example.com"))
		assert.Equal(t, []string{"histories", "user"}, order)
	})

	t.Run("history failure keeps the user", func(t *testing.T) {
		users := new(MockUserRepository)
		histories := new(MockHistoryRepository)
		histories.On("DeleteByEmail", ctx, "bob@example.com").Return(0, errors.New("locked"))

		err := NewAdminService(users, histories).DeleteUser(ctx, "bob@example.com")
		requireCode(t, err, domain.ErrPersistence)
		assert.Equal(t, domain.MsgDeleteFailed, domain.UserFriendlyMessage(err))
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(MockUserRepository)
		histories := new(MockHistoryRepository)
		histories.On("DeleteByEmail", ctx, "ghost@example.com").Return(0, nil)
		users.On("Delete", ctx, "ghost@example.com").Return(0, nil)

		err := NewAdminService(users, histories).DeleteUser(ctx, "ghost@example.com")
		requireCode(t, err, domain.ErrNotFound)
	})

	t.Run("administrator is protected", func(t *testing.T) {
		err := NewAdminService(new(MockUserRepository), new(MockHistoryRepository)).DeleteUser(ctx, domain.AdminEmail)
		requireCode(t, err, domain.ErrForbidden)
	})
}

func TestAdminService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := NewAdminService(users, new(MockHistoryRepository))

	users.On("UpdatePassword", ctx, "bob@example.com", mock.MatchedBy(func(hash string) bool {
		ok, _ := CheckPassword(hash, "newpass")
		return ok
	})).Return(domain.UpdateResult{Matched: 1, Modified: 1}, nil).Once()
	require.NoError(t, svc.ResetPassword(ctx, "bob@example.com", "newpass"))

	users.On("UpdatePassword", ctx, "bob@example.com", mock.Anything).Return(domain.UpdateResult{}, errors.New("io")).Once()
	err := svc.ResetPassword(ctx, "bob@example.com", "newpass")
	requireCode(t, err, domain.ErrPersistence)
	assert.Equal(t, domain.MsgPasswordFailed, domain.UserFriendlyMessage(err))

	users.On("UpdatePassword", ctx, "ghost@example.com", mock.Anything).Return(domain.UpdateResult{}, nil).Once()
	requireCode(t, svc.ResetPassword(ctx, "ghost@example.com", "newpass"), domain.ErrNotFound)
}
