package domain

import (
	"strings"
	"time"
)

// AdminEmail is the reserved privileged identity. It is never stored in or
// validated against the document store.
const AdminEmail = "admin@admin.com"

// DefaultCodingTopic is used for the coding problem when no technical topic was picked.
const DefaultCodingTopic = "general software engineering"

// GeneralCategories are the categories of the opening question batch.
var GeneralCategories = []string{"Behavioral", "Problem-Solving", "Teamwork"}

// TechnicalTopics are the topics offered for the optional technical round.
var TechnicalTopics = []string{
	"Web Development",
	"Python",
	"Java",
	"Node.js",
	"Full Stack",
	"Data Science",
	"PHP",
}

// Question batch layout.
const (
	QuestionBatchSize        = 5
	GeneralFirstQuestionID   = 1
	TechnicalFirstQuestionID = 6
)

// User is the identity of a candidate or the administrator.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsAdmin reports whether the user is the privileged identity.
func (u *User) IsAdmin() bool {
	return u != nil && IsAdminEmail(u.Email)
}

// IsAdminEmail compares case-insensitively against the reserved address.
func IsAdminEmail(email string) bool {
	return NormalizeEmail(email) == AdminEmail
}

// NormalizeEmail lower-cases and trims an email address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// StoredUser is the persisted form of a registered user.
type StoredUser struct {
	ID           string `json:"_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	ResumeText   string `json:"resumeText,omitempty"`
}

// User returns the public identity of the stored user.
func (s *StoredUser) User() User {
	return User{Name: s.Name, Email: s.Email}
}

type InterviewQuestion struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
}

type FeedbackScores struct {
	Clarity   float64 `json:"clarity"`
	Relevance float64 `json:"relevance"`
	Structure float64 `json:"structure"`
}

type IndividualFeedback struct {
	Scores       FeedbackScores `json:"scores"`
	Strengths    string         `json:"strengths"`
	Improvements string         `json:"improvements"`
}

// InterviewData pairs a question with the candidate's answer and, after
// analysis, the feedback for it.
type InterviewData struct {
	Question InterviewQuestion   `json:"question"`
	Answer   string              `json:"answer"`
	Feedback *IndividualFeedback `json:"feedback"`
}

type CodingProblem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

type CodingFeedback struct {
	Summary     string  `json:"summary"`
	Correctness float64 `json:"correctness"`
	Efficiency  float64 `json:"efficiency"`
	Style       float64 `json:"style"`
	Suggestions string  `json:"suggestions"`
}

type CodingChallengeData struct {
	Problem  CodingProblem   `json:"problem"`
	Solution string          `json:"solution"`
	Feedback *CodingFeedback `json:"feedback"`
}

// HasSolution reports whether a challenge exists and was answered.
func (c *CodingChallengeData) HasSolution() bool {
	return c != nil && strings.TrimSpace(c.Solution) != ""
}

type FinalReport struct {
	OverallSummary          string          `json:"overallSummary"`
	KeyStrengths            string          `json:"keyStrengths"`
	AreasForImprovement     string          `json:"areasForImprovement"`
	ActionableTips          []string        `json:"actionableTips"`
	CodingChallengeFeedback *CodingFeedback `json:"codingChallengeFeedback,omitempty"`
}

// ArchivedChallenge is the coding part of an InterviewRecord.
type ArchivedChallenge struct {
	Problem  CodingProblem `json:"problem"`
	Solution string        `json:"solution"`
}

// InterviewRecord is the durable artifact of a completed interview.
type InterviewRecord struct {
	ID              string             `json:"_id,omitempty"`
	UserEmail       string             `json:"userEmail"`
	Date            time.Time          `json:"date"`
	InterviewData   []InterviewData    `json:"interviewData"`
	FinalReport     FinalReport        `json:"finalReport"`
	CodingChallenge *ArchivedChallenge `json:"codingChallenge,omitempty"`
}

// NewInterviewRecord builds the archival record for a finished session.
// The coding challenge is kept only when it carries a solution.
func NewInterviewRecord(email string, date time.Time, data []InterviewData, report FinalReport, challenge *CodingChallengeData) InterviewRecord {
	rec := InterviewRecord{
		UserEmail:     NormalizeEmail(email),
		Date:          date.UTC(),
		InterviewData: data,
		FinalReport:   report,
	}
	if challenge.HasSolution() {
		rec.CodingChallenge = &ArchivedChallenge{Problem: challenge.Problem, Solution: challenge.Solution}
	}
	return rec
}
