package domain

import (
	"fmt"
	"strings"
)

// AppState is the interview controller's current screen. The ordinal
// values are persisted in snapshots and must stay stable.
type AppState int

const (
	StateInit AppState = iota
	StateLogin
	StateGeneratingQuestions
	StateGeneratingTechnicalQuestions
	StateInterview
	StateTechnicalChoice
	StateCodingChoice
	StateGeneratingCodingChallenge
	StateCodingChallenge
	StateAnalyzing
	StateReport
	StateProfile
	StateAbout
	StateAdminPanel
)

var stateNames = [...]string{
	"INIT",
	"LOGIN",
	"GENERATING_QUESTIONS",
	"GENERATING_TECHNICAL_QUESTIONS",
	"INTERVIEW",
	"TECHNICAL_CHOICE",
	"CODING_CHOICE",
	"GENERATING_CODING_CHALLENGE",
	"CODING_CHALLENGE",
	"ANALYZING",
	"REPORT",
	"PROFILE",
	"ABOUT",
	"ADMIN_PANEL",
}

func (s AppState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("AppState(%d)", int(s))
	}
	return stateNames[s]
}

// Valid reports whether s is a known state.
func (s AppState) Valid() bool {
	return s >= StateInit && s <= StateAdminPanel
}

// IsInterviewPhase reports whether a snapshot may be persisted in s.
func (s AppState) IsInterviewPhase() bool {
	switch s {
	case StateInterview, StateTechnicalChoice, StateCodingChoice, StateCodingChallenge:
		return true
	}
	return false
}

// Session is the complete live state of one client's interview.
type Session struct {
	State         AppState
	Previous      *AppState
	User          *User
	Data          []InterviewData
	CurrentIndex  int
	SelectedTopic string
	Challenge     *CodingChallengeData
	Report        *FinalReport
	Error         string
}

// NewSession returns a session in the Init state.
func NewSession() Session {
	return Session{State: StateInit}
}

// CurrentQuestion returns the question being asked, if any.
func (s Session) CurrentQuestion() *InterviewQuestion {
	if s.State != StateInterview || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Data) {
		return nil
	}
	q := s.Data[s.CurrentIndex].Question
	return &q
}

// ShouldPersist reports whether the snapshot must be written for s.
func (s Session) ShouldPersist() bool {
	return s.User != nil && !s.User.IsAdmin() && s.State.IsInterviewPhase()
}

// Snapshot projects the resumable part of the session.
func (s Session) Snapshot() Snapshot {
	var user *User
	if s.User != nil {
		u := *s.User
		user = &u
	}
	return Snapshot{
		AppState:             s.State,
		User:                 user,
		InterviewData:        cloneData(s.Data),
		CurrentQuestionIndex: s.CurrentIndex,
		CodingChallenge:      cloneChallenge(s.Challenge),
	}
}

// Snapshot is the persisted projection of an in-progress interview.
type Snapshot struct {
	AppState             AppState             `json:"appState"`
	User                 *User                `json:"user"`
	InterviewData        []InterviewData      `json:"interviewData"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
	CodingChallenge      *CodingChallengeData `json:"codingChallenge"`
}

// Valid reports whether the snapshot can be resumed.
func (s *Snapshot) Valid() bool {
	if s == nil || s.User == nil || s.InterviewData == nil || !s.AppState.IsInterviewPhase() {
		return false
	}
	if s.CurrentQuestionIndex < 0 {
		return false
	}
	if s.AppState == StateInterview && s.CurrentQuestionIndex >= len(s.InterviewData) {
		return false
	}
	if s.AppState == StateCodingChallenge && s.CodingChallenge == nil {
		return false
	}
	return true
}

// Effect is a side effect requested by a transition. The runner executes
// effects in order and feeds any results back as events.
type Effect int

const (
	EffectSaveIdentity Effect = iota + 1
	EffectClearIdentity
	EffectClearSnapshot
	EffectGenerateQuestions
	EffectGenerateTechnicalQuestions
	EffectGenerateCodingProblem
	// EffectScheduleAnalysis waits the UI settle delay, then feeds AnalysisStarted.
	EffectScheduleAnalysis
	EffectAnalyze
)

var effectNames = map[Effect]string{
	EffectSaveIdentity:               "save_identity",
	EffectClearIdentity:              "clear_identity",
	EffectClearSnapshot:              "clear_snapshot",
	EffectGenerateQuestions:          "generate_questions",
	EffectGenerateTechnicalQuestions: "generate_technical_questions",
	EffectGenerateCodingProblem:      "generate_coding_problem",
	EffectScheduleAnalysis:           "schedule_analysis",
	EffectAnalyze:                    "analyze",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// EventName returns a stable name for logging and error messages.
func EventName(e Event) string {
	if e == nil {
		return "<nil>"
	}
	return e.eventName()
}

type (
	// Started initialises a fresh session from persisted client state.
	Started struct {
		Identity *User
		Snapshot *Snapshot
	}
	LoggedIn  struct{ User User }
	LoggedOut struct{}

	QuestionsGenerated          struct{ Questions []InterviewQuestion }
	TechnicalQuestionsGenerated struct{ Questions []InterviewQuestion }
	CodingProblemGenerated      struct{ Problem CodingProblem }
	// GenerationFailed reports a failed question or problem generation for
	// whichever generating state the session is in.
	GenerationFailed struct{ Message string }

	AnswerSubmitted   struct{ Answer string }
	TopicSelected     struct{ Topic string }
	TechnicalSkipped  struct{}
	CodingAccepted    struct{}
	CodingSkipped     struct{}
	SolutionSubmitted struct{ Solution string }

	AnalysisStarted   struct{}
	AnalysisCompleted struct {
		Data      []InterviewData
		Challenge *CodingChallengeData
		Report    FinalReport
		// Warning is surfaced alongside the report, e.g. when archiving failed.
		Warning string
	}
	AnalysisFailed struct{ Message string }

	RestartRequested struct{}
	ProfileOpened    struct{}
	AboutOpened      struct{}
	BackRequested    struct{}
	HomeRequested    struct{}
	ProfileUpdated   struct{ User User }
)

func (Started) eventName() string                     { return "start" }
func (LoggedIn) eventName() string                    { return "login" }
func (LoggedOut) eventName() string                   { return "logout" }
func (QuestionsGenerated) eventName() string          { return "questions_generated" }
func (TechnicalQuestionsGenerated) eventName() string { return "technical_questions_generated" }
func (CodingProblemGenerated) eventName() string      { return "coding_problem_generated" }
func (GenerationFailed) eventName() string            { return "generation_failed" }
func (AnswerSubmitted) eventName() string             { return "submit_answer" }
func (TopicSelected) eventName() string               { return "select_topic" }
func (TechnicalSkipped) eventName() string            { return "skip_technical" }
func (CodingAccepted) eventName() string              { return "accept_coding" }
func (CodingSkipped) eventName() string               { return "skip_coding" }
func (SolutionSubmitted) eventName() string           { return "submit_solution" }
func (AnalysisStarted) eventName() string             { return "analysis_started" }
func (AnalysisCompleted) eventName() string           { return "analysis_completed" }
func (AnalysisFailed) eventName() string              { return "analysis_failed" }
func (RestartRequested) eventName() string            { return "restart" }
func (ProfileOpened) eventName() string               { return "open_profile" }
func (AboutOpened) eventName() string                 { return "open_about" }
func (BackRequested) eventName() string               { return "back" }
func (HomeRequested) eventName() string               { return "home" }
func (ProfileUpdated) eventName() string              { return "update_profile" }

// Reduce applies ev to s. It performs no I/O: side effects are returned for
// the caller to execute. An event the current state does not accept yields
// an INVALID_STATE error and leaves s unchanged.
func Reduce(s Session, ev Event) (Session, []Effect, error) {
	invalid := func() (Session, []Effect, error) {
		return s, nil, NewInvalidTransitionError(s.State, ev)
	}

	switch e := ev.(type) {
	case Started:
		if s.State != StateInit {
			return invalid()
		}
		if e.Identity == nil {
			s.State = StateLogin
			return s, nil, nil
		}
		user := *e.Identity
		if user.IsAdmin() {
			return Session{State: StateAdminPanel, User: &user}, nil, nil
		}
		if e.Snapshot.Valid() {
			return Session{
				State:        e.Snapshot.AppState,
				User:         &user,
				Data:         cloneData(e.Snapshot.InterviewData),
				CurrentIndex: e.Snapshot.CurrentQuestionIndex,
				Challenge:    cloneChallenge(e.Snapshot.CodingChallenge),
			}, nil, nil
		}
		return startInterview(&user), []Effect{EffectGenerateQuestions}, nil

	case LoggedIn:
		if s.State != StateLogin {
			return invalid()
		}
		user := e.User
		if user.IsAdmin() {
			return Session{State: StateAdminPanel, User: &user}, []Effect{EffectSaveIdentity}, nil
		}
		return startInterview(&user), []Effect{EffectSaveIdentity, EffectGenerateQuestions}, nil

	case LoggedOut:
		return Session{State: StateLogin}, []Effect{EffectClearSnapshot, EffectClearIdentity}, nil

	case QuestionsGenerated:
		if s.State != StateGeneratingQuestions {
			return invalid()
		}
		if len(e.Questions) == 0 {
			s.State = StateLogin
			s.Error = MsgUnexpected
			return s, nil, nil
		}
		s.Data = newData(e.Questions)
		s.CurrentIndex = 0
		s.State = StateInterview
		return s, nil, nil

	case TechnicalQuestionsGenerated:
		if s.State != StateGeneratingTechnicalQuestions {
			return invalid()
		}
		if len(e.Questions) == 0 {
			s.State = StateCodingChoice
			s.Error = MsgUnexpected
			return s, nil, nil
		}
		s.Data = append(cloneData(s.Data), newData(e.Questions)...)
		s.CurrentIndex++
		s.State = StateInterview
		return s, nil, nil

	case CodingProblemGenerated:
		if s.State != StateGeneratingCodingChallenge {
			return invalid()
		}
		s.Challenge = &CodingChallengeData{Problem: e.Problem}
		s.State = StateCodingChallenge
		return s, nil, nil

	case GenerationFailed:
		switch s.State {
		case StateGeneratingQuestions:
			s.State = StateLogin
		case StateGeneratingTechnicalQuestions:
			s.State = StateCodingChoice
		case StateGeneratingCodingChallenge:
			s.Error = e.Message
			s.State = StateAnalyzing
			return s, []Effect{EffectAnalyze}, nil
		default:
			return invalid()
		}
		s.Error = e.Message
		return s, nil, nil

	case AnswerSubmitted:
		if s.State != StateInterview || s.CurrentIndex >= len(s.Data) {
			return invalid()
		}
		i := s.CurrentIndex
		s.Data = cloneData(s.Data)
		s.Data[i].Answer = e.Answer
		last := len(s.Data) - 1
		switch {
		case len(s.Data) == QuestionBatchSize && i == last:
			s.State = StateTechnicalChoice
		case i == last:
			s.State = StateCodingChoice
		default:
			s.CurrentIndex++
		}
		return s, nil, nil

	case TopicSelected:
		if s.State != StateTechnicalChoice {
			return invalid()
		}
		s.SelectedTopic = e.Topic
		s.Error = ""
		s.State = StateGeneratingTechnicalQuestions
		return s, []Effect{EffectGenerateTechnicalQuestions}, nil

	case TechnicalSkipped:
		if s.State != StateTechnicalChoice {
			return invalid()
		}
		s.State = StateCodingChoice
		return s, nil, nil

	case CodingAccepted:
		if s.State != StateCodingChoice {
			return invalid()
		}
		s.Error = ""
		s.State = StateGeneratingCodingChallenge
		return s, []Effect{EffectGenerateCodingProblem}, nil

	case CodingSkipped:
		if s.State != StateCodingChoice {
			return invalid()
		}
		s.State = StateAnalyzing
		return s, []Effect{EffectAnalyze}, nil

	case SolutionSubmitted:
		if s.State != StateCodingChallenge || s.Challenge == nil {
			return invalid()
		}
		s.Challenge = cloneChallenge(s.Challenge)
		s.Challenge.Solution = e.Solution
		return s, []Effect{EffectScheduleAnalysis}, nil

	case AnalysisStarted:
		if s.State != StateCodingChallenge {
			return invalid()
		}
		s.State = StateAnalyzing
		return s, []Effect{EffectAnalyze}, nil

	case AnalysisCompleted:
		if s.State != StateAnalyzing {
			return invalid()
		}
		report := e.Report
		s.Data = cloneData(e.Data)
		s.Challenge = cloneChallenge(e.Challenge)
		s.Report = &report
		s.Error = e.Warning
		s.State = StateReport
		return s, []Effect{EffectClearSnapshot}, nil

	case AnalysisFailed:
		if s.State != StateAnalyzing {
			return invalid()
		}
		s.Error = e.Message
		s.State = StateReport
		return s, []Effect{EffectClearSnapshot}, nil

	case RestartRequested:
		if s.State != StateReport || s.User == nil || s.User.IsAdmin() {
			return invalid()
		}
		return startInterview(s.User), []Effect{EffectGenerateQuestions}, nil

	case ProfileOpened:
		return openSideBranch(s, StateProfile)

	case AboutOpened:
		return openSideBranch(s, StateAbout)

	case BackRequested:
		if s.State != StateProfile && s.State != StateAbout {
			return invalid()
		}
		return returnFromSideBranch(s), nil, nil

	case HomeRequested:
		if s.User.IsAdmin() {
			s.State = StateAdminPanel
			s.Previous = nil
			return s, nil, nil
		}
		if s.State == StateProfile || s.State == StateAbout {
			return returnFromSideBranch(s), nil, nil
		}
		return s, nil, nil

	case ProfileUpdated:
		if s.State != StateProfile || s.User == nil {
			return invalid()
		}
		user := e.User
		s.User = &user
		return s, []Effect{EffectSaveIdentity}, nil
	}

	return invalid()
}

func startInterview(user *User) Session {
	u := *user
	return Session{State: StateGeneratingQuestions, User: &u}
}

// openSideBranch records the current state in the single previous slot. A
// nested entry (About from Profile) overwrites the slot, so returning lands
// on the side branch that was left rather than the screen before it.
func openSideBranch(s Session, target AppState) (Session, []Effect, error) {
	if s.User == nil {
		return s, nil, NewInvalidTransitionError(s.State, sideBranchEvent(target))
	}
	if s.State == target {
		return s, nil, nil
	}
	prev := s.State
	s.Previous = &prev
	s.State = target
	return s, nil, nil
}

func sideBranchEvent(target AppState) Event {
	if target == StateAbout {
		return AboutOpened{}
	}
	return ProfileOpened{}
}

func returnFromSideBranch(s Session) Session {
	if s.Previous != nil {
		s.State = *s.Previous
	} else {
		s.State = StateInterview
	}
	s.Previous = nil
	return s
}

func newData(questions []InterviewQuestion) []InterviewData {
	data := make([]InterviewData, len(questions))
	for i, q := range questions {
		data[i] = InterviewData{Question: q}
	}
	return data
}

func cloneData(data []InterviewData) []InterviewData {
	if data == nil {
		return nil
	}
	out := make([]InterviewData, len(data))
	for i, d := range data {
		out[i] = d
		if d.Feedback != nil {
			fb := *d.Feedback
			out[i].Feedback = &fb
		}
	}
	return out
}

func cloneChallenge(c *CodingChallengeData) *CodingChallengeData {
	if c == nil {
		return nil
	}
	out := *c
	if c.Feedback != nil {
		fb := *c.Feedback
		out.Feedback = &fb
	}
	return &out
}

// Answered reports whether the entry carries an answer worth analysing.
func (d InterviewData) Answered() bool {
	return strings.TrimSpace(d.Answer) != ""
}
