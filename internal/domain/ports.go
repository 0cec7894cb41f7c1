package domain

import (
	"context"
	"io"
)

// InterviewCoach is the AI collaborator. Every call is independent; a
// failure is reported as an LLM_SERVICE_ERROR DomainError.
type InterviewCoach interface {
	// GenerateInterviewQuestions returns the opening batch (IDs 1..5). resume
	// may be empty; when set the questions are grounded in it.
	GenerateInterviewQuestions(ctx context.Context, resume string) ([]InterviewQuestion, error)
	// GenerateTechnicalQuestions returns the technical batch (IDs 6..10).
	GenerateTechnicalQuestions(ctx context.Context, topic string) ([]InterviewQuestion, error)
	AnalyzeAnswer(ctx context.Context, question, answer string) (*IndividualFeedback, error)
	GenerateCodingProblem(ctx context.Context, topic string) (*CodingProblem, error)
	AnalyzeCodingSolution(ctx context.Context, problem CodingProblem, solution string) (*CodingFeedback, error)
	// GenerateFinalReport summarises the interview. challenge is nil when no
	// coding solution was submitted.
	GenerateFinalReport(ctx context.Context, data []InterviewData, challenge *CodingChallengeData) (*FinalReport, error)
}

// Document is a schemaless JSON object held in a DocumentCollection.
type Document map[string]any

// DocumentIDField is the key under which collections store generated IDs.
const DocumentIDField = "_id"

// UpdateResult reports the outcome of UpdateOne.
type UpdateResult struct {
	Matched  int `json:"matchedCount"`
	Modified int `json:"modifiedCount"`
}

// DocumentCollection is a linear-scan document collection. Queries match by
// exact equality on every specified field; an empty query matches all.
type DocumentCollection interface {
	Find(ctx context.Context, query Document) ([]Document, error)
	// FindOne returns the first match or (nil, nil).
	FindOne(ctx context.Context, query Document) (Document, error)
	InsertOne(ctx context.Context, doc Document) (Document, error)
	// UpdateOne applies set to the first match only.
	UpdateOne(ctx context.Context, query Document, set Document) (UpdateResult, error)
	DeleteOne(ctx context.Context, query Document) (int, error)
	DeleteMany(ctx context.Context, query Document) (int, error)
}

// Collection names.
const (
	UsersCollection   = "users"
	HistoryCollection = "interviewHistories"
)

// UserRepository persists registered users.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*StoredUser, error)
	Create(ctx context.Context, user *StoredUser) (*StoredUser, error)
	List(ctx context.Context) ([]StoredUser, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) (UpdateResult, error)
	UpdateProfile(ctx context.Context, email string, name, newEmail string) (UpdateResult, error)
	UpdateResume(ctx context.Context, email, resumeText string) (UpdateResult, error)
	Delete(ctx context.Context, email string) (int, error)
}

// HistoryRepository persists completed interview records.
type HistoryRepository interface {
	Save(ctx context.Context, record *InterviewRecord) error
	// ListByEmail returns the user's records, most recent first.
	ListByEmail(ctx context.Context, email string) ([]InterviewRecord, error)
	DeleteByEmail(ctx context.Context, email string) (int, error)
	Reassign(ctx context.Context, fromEmail, toEmail string) (int, error)
}

// SessionStore keeps the per-client identity and resumable snapshot.
type SessionStore interface {
	LoadIdentity(ctx context.Context, sessionID string) (*User, error)
	SaveIdentity(ctx context.Context, sessionID string, user User) error
	ClearIdentity(ctx context.Context, sessionID string) error
	// LoadSnapshot returns nil when no valid snapshot exists. Invalid entries
	// are discarded.
	LoadSnapshot(ctx context.Context, sessionID string) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, sessionID string, snap Snapshot) error
	ClearSnapshot(ctx context.Context, sessionID string) error
}

// ResumeExtractor turns an uploaded document into plain text.
type ResumeExtractor interface {
	Extract(ctx context.Context, filename string, r io.Reader) (string, error)
}
