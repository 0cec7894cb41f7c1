package service

import (
	"context"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// historyLookupLimit bounds concurrent history reads in ListUsers.
const historyLookupLimit = 8

// AdminService backs the administrator panel.
type AdminService interface {
	// ListUsers returns every stored user except the administrator, with the
	// score of their most recent interview.
	ListUsers(ctx context.Context) ([]dto.AdminUserView, error)
	// DeleteUser removes the user's history, then the user.
	DeleteUser(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type adminServiceImpl struct {
	users     domain.UserRepository
	histories domain.HistoryRepository
}

func NewAdminService(users domain.UserRepository, histories domain.HistoryRepository) AdminService {
	return &adminServiceImpl{users: users, histories: histories}
}

func (s *adminServiceImpl) ListUsers(ctx context.Context) ([]dto.AdminUserView, error) {
	stored, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list users", err)
	}

	views := make([]dto.AdminUserView, 0, len(stored))
	for _, u := range stored {
		if domain.IsAdminEmail(u.Email) {
			continue
		}
		views = append(views, dto.AdminUserView{Name: u.Name, Email: u.Email})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyLookupLimit)
	for i := range views {
		i := i
		g.Go(func() error {
			email := views[i].Email
			records, err := s.histories.ListByEmail(gctx, email)
			if err != nil {
				// a user whose history cannot be read is listed without a score
				logger.Get().Warn("Failed to load history for admin listing", zap.String("email", email), zap.Error(err))
				return nil
			}
			if len(records) == 0 {
				return nil
			}
			// each goroutine owns views[i]
			latest := records[0]
			score := domain.ComputeScore(&latest)
			date := latest.Date
			views[i].Interviews = len(records)
			views[i].LatestScore = &score
			views[i].LastInterview = &date
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *adminServiceImpl) DeleteUser(ctx context.Context, email string) error {
	l := logger.Get()
	email = domain.NormalizeEmail(email)
	if domain.IsAdminEmail(email) {
		return domain.NewForbiddenError("the administrator account cannot be deleted")
	}

	removed, err := s.histories.DeleteByEmail(ctx, email)
	if err != nil {
		l.Error("Failed to delete user history", zap.String("email", email), zap.Error(err))
		return domain.NewPersistenceError(domain.MsgDeleteFailed, err)
	}
	deleted, err := s.users.Delete(ctx, email)
	if err != nil {
		l.Error("Failed to delete user", zap.String("email", email), zap.Error(err))
		return domain.NewPersistenceError(domain.MsgDeleteFailed, err)
	}
	if deleted == 0 {
		return domain.NewNotFoundError("User not found")
	}

	l.Info("User deleted", zap.String("email", email), zap.Int("records", removed))
	return nil
}

func (s *adminServiceImpl) ResetPassword(ctx context.Context, email, password string) error {
	email = domain.NormalizeEmail(email)
	if domain.IsAdminEmail(email) {
		return domain.NewForbiddenError("the administrator password is set in configuration")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return domain.NewPersistenceError(domain.MsgPasswordFailed, err)
	}
	res, err := s.users.UpdatePassword(ctx, email, hash)
	if err != nil {
		logger.Get().Error("Failed to update password", zap.String("email", email), zap.Error(err))
		return domain.NewPersistenceError(domain.MsgPasswordFailed, err)
	}
	if res.Matched == 0 {
		return domain.NewNotFoundError("User not found")
	}
	logger.Get().Info("Password reset by administrator", zap.String("email", email))
	return nil
}
