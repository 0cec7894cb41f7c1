package dto

import "interview-coach/internal/domain"

// ProfileResponse is the profile page: identity and past interviews, most
// recent first.
type ProfileResponse struct {
	User      domain.User              `json:"user"`
	HasResume bool                     `json:"hasResume"`
	History   []domain.InterviewRecord `json:"history"`
}

// UpdateProfileRequest is the body of PUT /api/profile.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ResumeResponse reports the stored resume after an upload.
type ResumeResponse struct {
	Characters int    `json:"characters"`
	Preview    string `json:"preview"`
}
