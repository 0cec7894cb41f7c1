package service

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"interview-coach/internal/domain"
	"interview-coach/internal/dto"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
)

const (
	msgProfileFailed = "Failed to update profile."
	msgResumeFailed  = "Failed to save resume."
	resumePreviewLen = 200
)

// ProfileService serves the profile screen: identity, interview history and
// the uploaded resume.
type ProfileService interface {
	GetProfile(ctx context.Context, user domain.User) (*dto.ProfileResponse, error)
	// UpdateProfile renames the session's user. The session must be on the
	// profile screen. History moves with a changed email.
	UpdateProfile(ctx context.Context, sessionID string, req dto.UpdateProfileRequest) (domain.Session, error)
	UploadResume(ctx context.Context, user domain.User, filename string, r io.Reader) (*dto.ResumeResponse, error)
}

type profileServiceImpl struct {
	users      domain.UserRepository
	histories  domain.HistoryRepository
	controller InterviewController
	extractor  domain.ResumeExtractor
}

func NewProfileService(users domain.UserRepository, histories domain.HistoryRepository, controller InterviewController, extractor domain.ResumeExtractor) ProfileService {
	return &profileServiceImpl{users: users, histories: histories, controller: controller, extractor: extractor}
}

func (s *profileServiceImpl) GetProfile(ctx context.Context, user domain.User) (*dto.ProfileResponse, error) {
	l := logger.Get()
	resp := &dto.ProfileResponse{User: user, History: []domain.InterviewRecord{}}
	if user.IsAdmin() {
		return resp, nil
	}

	stored, err := s.users.FindByEmail(ctx, user.Email)
	if err != nil {
		l.Error("Failed to load user for profile", zap.String("email", user.Email), zap.Error(err))
	} else if stored != nil {
		resp.HasResume = strings.TrimSpace(stored.ResumeText) != ""
	}

	history, err := s.histories.ListByEmail(ctx, user.Email)
	if err != nil {
		l.Error("Failed to load interview history", zap.String("email", user.Email), zap.Error(err))
		return resp, nil
	}
	if history != nil {
		resp.History = history
	}
	return resp, nil
}

func (s *profileServiceImpl) UpdateProfile(ctx context.Context, sessionID string, req dto.UpdateProfileRequest) (domain.Session, error) {
	// The store writes happen under the session lock, so a concurrent
	// Back or Home cannot leave the stored user renamed and the session not.
	return s.controller.Update(ctx, sessionID, func(session domain.Session) (domain.Event, error) {
		return s.applyProfileUpdate(ctx, session, req)
	})
}

func (s *profileServiceImpl) applyProfileUpdate(ctx context.Context, session domain.Session, req dto.UpdateProfileRequest) (domain.Event, error) {
	l := logger.Get()
	switch {
	case session.User == nil:
		return nil, domain.NewUnauthorizedError("not signed in")
	case session.User.IsAdmin():
		return nil, domain.NewForbiddenError("the administrator profile cannot be edited")
	case session.State != domain.StateProfile:
		return nil, domain.NewInvalidTransitionError(session.State, domain.ProfileUpdated{})
	}

	oldEmail := domain.NormalizeEmail(session.User.Email)
	newEmail := domain.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	if domain.IsAdminEmail(newEmail) {
		return nil, domain.NewError(domain.ErrReservedEmail, domain.MsgReservedEmail, nil)
	}
	if newEmail != oldEmail {
		existing, err := s.users.FindByEmail(ctx, newEmail)
		if err != nil {
			return nil, domain.NewPersistenceError(msgProfileFailed, err)
		}
		if existing != nil {
			return nil, domain.NewError(domain.ErrDuplicateEmail, domain.MsgDuplicateEmail, nil)
		}
	}

	if _, err := s.users.UpdateProfile(ctx, oldEmail, name, newEmail); err != nil {
		return nil, domain.NewPersistenceError(msgProfileFailed, err)
	}
	if newEmail != oldEmail {
		moved, err := s.histories.Reassign(ctx, oldEmail, newEmail)
		if err != nil {
			l.Error("Failed to move interview history to new email",
				zap.String("from", oldEmail), zap.String("to", newEmail), zap.Error(err))
		} else {
			l.Info("Interview history moved", zap.String("from", oldEmail), zap.String("to", newEmail), zap.Int("records", moved))
		}
	}
	return domain.ProfileUpdated{User: domain.User{Name: name, Email: newEmail}}, nil
}

func (s *profileServiceImpl) UploadResume(ctx context.Context, user domain.User, filename string, r io.Reader) (*dto.ResumeResponse, error) {
	if user.IsAdmin() {
		return nil, domain.NewForbiddenError("the administrator cannot upload a resume")
	}
	text, err := s.extractor.Extract(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	res, err := s.users.UpdateResume(ctx, user.Email, text)
	if err != nil {
		return nil, domain.NewPersistenceError(msgResumeFailed, err)
	}
	if res.Matched == 0 {
		return nil, domain.NewNotFoundError("Only registered users can upload a resume.")
	}

	logger.Get().Info("Resume stored", zap.String("email", user.Email), zap.String("filename", filename), zap.Int("chars", utf8.RuneCountInString(text)))
	return &dto.ResumeResponse{Characters: utf8.RuneCountInString(text), Preview: preview(text, resumePreviewLen)}, nil
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
