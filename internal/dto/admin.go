package dto

import "time"

// AdminUserView is one row of the admin panel.
type AdminUserView struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Interviews    int        `json:"interviews"`
	LatestScore   *int       `json:"latestScore"`
	LastInterview *time.Time `json:"lastInterview,omitempty"`
}

// ResetPasswordRequest is the body of PUT /api/admin/users/:email/password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}
