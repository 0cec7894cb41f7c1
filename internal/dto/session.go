package dto

import "interview-coach/internal/domain"

// SessionView is what the client renders for the current session.
type SessionView struct {
	State           string                      `json:"state"`
	User            *domain.User                `json:"user,omitempty"`
	IsAdmin         bool                        `json:"isAdmin"`
	Question        *domain.InterviewQuestion   `json:"question,omitempty"`
	QuestionNumber  int                         `json:"questionNumber,omitempty"`
	TotalQuestions  int                         `json:"totalQuestions"`
	InterviewData   []domain.InterviewData      `json:"interviewData"`
	Topics          []string                    `json:"topics,omitempty"`
	SelectedTopic   string                      `json:"selectedTopic,omitempty"`
	CodingChallenge *domain.CodingChallengeData `json:"codingChallenge,omitempty"`
	Report          *domain.FinalReport         `json:"report,omitempty"`
	Error           string                      `json:"error,omitempty"`
}

// NewSessionView projects a session for the client.
func NewSessionView(s domain.Session) SessionView {
	v := SessionView{
		State:           s.State.String(),
		User:            s.User,
		IsAdmin:         s.User.IsAdmin(),
		TotalQuestions:  len(s.Data),
		InterviewData:   s.Data,
		SelectedTopic:   s.SelectedTopic,
		CodingChallenge: s.Challenge,
		Report:          s.Report,
		Error:           s.Error,
	}
	if v.InterviewData == nil {
		v.InterviewData = []domain.InterviewData{}
	}
	if q := s.CurrentQuestion(); q != nil {
		v.Question = q
		v.QuestionNumber = s.CurrentIndex + 1
	}
	if s.State == domain.StateTechnicalChoice {
		v.Topics = domain.TechnicalTopics
	}
	return v
}

// AnswerRequest is the body of POST /api/session/answer.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// TopicRequest is the body of POST /api/session/technical/select.
type TopicRequest struct {
	Topic string `json:"topic"`
}

// SolutionRequest is the body of POST /api/session/coding/submit.
type SolutionRequest struct {
	Solution string `json:"solution"`
}
