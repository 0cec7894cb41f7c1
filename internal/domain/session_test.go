package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var candidate = User{Name: "Ada", Email: "ada@example.com"}

func generalBatch() []InterviewQuestion {
	qs := make([]InterviewQuestion, QuestionBatchSize)
	for i := range qs {
		qs[i] = InterviewQuestion{ID: GeneralFirstQuestionID + i, Category: GeneralCategories[i%3], Question: fmt.Sprintf("general %d", i+1)}
	}
	return qs
}

func technicalBatch() []InterviewQuestion {
	qs := make([]InterviewQuestion, QuestionBatchSize)
	for i := range qs {
		qs[i] = InterviewQuestion{ID: TechnicalFirstQuestionID + i, Category: "Go", Question: fmt.Sprintf("technical %d", i+1)}
	}
	return qs
}

// mustReduce applies events in order and fails the test on any error.
func mustReduce(t *testing.T, s Session, events ...Event) (Session, []Effect) {
	t.Helper()
	var effects []Effect
	for _, ev := range events {
		var err error
		s, effects, err = Reduce(s, ev)
		require.NoError(t, err, "event %s", EventName(ev))
	}
	return s, effects
}

func interviewing(t *testing.T) Session {
	t.Helper()
	s, _ := mustReduce(t, NewSession(),
		Started{},
		LoggedIn{User: candidate},
		QuestionsGenerated{Questions: generalBatch()},
	)
	require.Equal(t, StateInterview, s.State)
	return s
}

func TestReduce_Started(t *testing.T) {
	admin := User{Name: "Admin", Email: AdminEmail}
	valid := &Snapshot{
		AppState:             StateInterview,
		User:                 &candidate,
		InterviewData:        newData(generalBatch()),
		CurrentQuestionIndex: 3,
	}

	tests := []struct {
		name        string
		event       Started
		wantState   AppState
		wantEffects []Effect
	}{
		{"no identity lands on login", Started{}, StateLogin, nil},
		{"admin identity goes to admin panel", Started{Identity: &admin}, StateAdminPanel, nil},
		{"admin identity ignores snapshot", Started{Identity: &admin, Snapshot: valid}, StateAdminPanel, nil},
		{"identity with snapshot resumes", Started{Identity: &candidate, Snapshot: valid}, StateInterview, nil},
		{"identity without snapshot starts interview", Started{Identity: &candidate}, StateGeneratingQuestions, []Effect{EffectGenerateQuestions}},
		{
			"out of range index is treated as no snapshot",
			Started{Identity: &candidate, Snapshot: &Snapshot{AppState: StateInterview, User: &candidate, InterviewData: newData(generalBatch()), CurrentQuestionIndex: 9}},
			StateGeneratingQuestions, []Effect{EffectGenerateQuestions},
		},
		{
			"snapshot outside interview phase is ignored",
			Started{Identity: &candidate, Snapshot: &Snapshot{AppState: StateAnalyzing, User: &candidate, InterviewData: newData(generalBatch())}},
			StateGeneratingQuestions, []Effect{EffectGenerateQuestions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, effects, err := Reduce(NewSession(), tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, s.State)
			assert.Equal(t, tt.wantEffects, effects)
		})
	}
}

func TestReduce_ResumeRestoresExactSnapshot(t *testing.T) {
	data := newData(generalBatch())
	data[0].Answer = "first"
	data[1].Answer = "second"
	snap := &Snapshot{AppState: StateInterview, User: &candidate, InterviewData: data, CurrentQuestionIndex: 2}

	s, _ := mustReduce(t, NewSession(), Started{Identity: &candidate, Snapshot: snap})

	assert.Equal(t, 2, s.CurrentIndex)
	assert.Equal(t, data, s.Data)
	assert.Equal(t, "general 3", s.CurrentQuestion().Question)

	// mutating the session must not leak into the snapshot it came from
	s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "third"})
	assert.Empty(t, snap.InterviewData[2].Answer)
}

func TestReduce_LoginFlow(t *testing.T) {
	s, effects := mustReduce(t, NewSession(), Started{}, LoggedIn{User: candidate})
	assert.Equal(t, StateGeneratingQuestions, s.State)
	assert.Equal(t, []Effect{EffectSaveIdentity, EffectGenerateQuestions}, effects)

	s, _ = mustReduce(t, s, QuestionsGenerated{Questions: generalBatch()})
	assert.Equal(t, StateInterview, s.State)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Len(t, s.Data, 5)
	for _, d := range s.Data {
		assert.Empty(t, d.Answer)
		assert.Nil(t, d.Feedback)
	}
}

func TestReduce_AdminLogin(t *testing.T) {
	s, effects := mustReduce(t, NewSession(), Started{}, LoggedIn{User: User{Name: "Admin", Email: "ADMIN@admin.com"}})
	assert.Equal(t, StateAdminPanel, s.State)
	assert.Equal(t, []Effect{EffectSaveIdentity}, effects)
	assert.False(t, s.ShouldPersist())
}

func TestReduce_GenerationFailureReturnsToLogin(t *testing.T) {
	s, _ := mustReduce(t, NewSession(), Started{}, LoggedIn{User: candidate}, GenerationFailed{Message: MsgRateLimited})
	assert.Equal(t, StateLogin, s.State)
	assert.Equal(t, MsgRateLimited, s.Error)
}

func TestReduce_TechnicalChoiceOnlyAtLengthFive(t *testing.T) {
	s := interviewing(t)
	for i := 0; i < 4; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: fmt.Sprintf("answer %d", i+1)})
		assert.Equal(t, StateInterview, s.State)
		assert.Equal(t, i+1, s.CurrentIndex)
	}
	s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "answer 5"})
	assert.Equal(t, StateTechnicalChoice, s.State)

	t.Run("batch of other size skips the technical round", func(t *testing.T) {
		s, _ := mustReduce(t, NewSession(), Started{}, LoggedIn{User: candidate}, QuestionsGenerated{Questions: generalBatch()[:4]})
		for i := 0; i < 4; i++ {
			s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})
		}
		assert.Equal(t, StateCodingChoice, s.State)
	})
}

func TestReduce_TechnicalRound(t *testing.T) {
	s := interviewing(t)
	for i := 0; i < 5; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})
	}

	s, effects := mustReduce(t, s, TopicSelected{Topic: "Python"})
	assert.Equal(t, StateGeneratingTechnicalQuestions, s.State)
	assert.Equal(t, []Effect{EffectGenerateTechnicalQuestions}, effects)
	assert.Equal(t, "Python", s.SelectedTopic)

	s, _ = mustReduce(t, s, TechnicalQuestionsGenerated{Questions: technicalBatch()})
	assert.Equal(t, StateInterview, s.State)
	assert.Len(t, s.Data, 10)
	assert.Equal(t, 5, s.CurrentIndex)
	assert.Equal(t, TechnicalFirstQuestionID, s.CurrentQuestion().ID)

	for i := 5; i < 9; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "b"})
		assert.Equal(t, StateInterview, s.State)
	}
	s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "b"})
	assert.Equal(t, StateCodingChoice, s.State, "the technical round is offered at most once")
}

func TestReduce_TechnicalFailureFallsBackToCodingChoice(t *testing.T) {
	s := interviewing(t)
	for i := 0; i < 5; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})
	}
	s, _ = mustReduce(t, s, TopicSelected{Topic: "Java"}, GenerationFailed{Message: MsgUnexpected})
	assert.Equal(t, StateCodingChoice, s.State)
	assert.Equal(t, MsgUnexpected, s.Error)
	assert.Len(t, s.Data, 5)
}

func TestReduce_CodingBranch(t *testing.T) {
	s := interviewing(t)
	for i := 0; i < 5; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})
	}
	s, _ = mustReduce(t, s, TechnicalSkipped{})
	require.Equal(t, StateCodingChoice, s.State)

	t.Run("skip goes straight to analysis", func(t *testing.T) {
		s, effects := mustReduce(t, s, CodingSkipped{})
		assert.Equal(t, StateAnalyzing, s.State)
		assert.Equal(t, []Effect{EffectAnalyze}, effects)
		assert.Nil(t, s.Challenge)
	})

	t.Run("accept then submit schedules analysis", func(t *testing.T) {
		s, effects := mustReduce(t, s, CodingAccepted{})
		assert.Equal(t, StateGeneratingCodingChallenge, s.State)
		assert.Equal(t, []Effect{EffectGenerateCodingProblem}, effects)

		s, _ = mustReduce(t, s, CodingProblemGenerated{Problem: CodingProblem{Title: "Two Sum"}})
		assert.Equal(t, StateCodingChallenge, s.State)
		assert.Empty(t, s.Challenge.Solution)

		s, effects = mustReduce(t, s, SolutionSubmitted{Solution: "return nil"})
		assert.Equal(t, StateCodingChallenge, s.State)
		assert.Equal(t, []Effect{EffectScheduleAnalysis}, effects)
		assert.Equal(t, "return nil", s.Challenge.Solution)

		s, effects = mustReduce(t, s, AnalysisStarted{})
		assert.Equal(t, StateAnalyzing, s.State)
		assert.Equal(t, []Effect{EffectAnalyze}, effects)
	})

	t.Run("problem failure abandons the challenge", func(t *testing.T) {
		s, effects := mustReduce(t, s, CodingAccepted{}, GenerationFailed{Message: MsgModelService})
		assert.Equal(t, StateAnalyzing, s.State)
		assert.Equal(t, []Effect{EffectAnalyze}, effects)
		assert.Nil(t, s.Challenge)
	})
}

func TestReduce_AnalysisOutcome(t *testing.T) {
	s := interviewing(t)
	for i := 0; i < 5; i++ {
		s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})
	}
	s, _ = mustReduce(t, s, TechnicalSkipped{}, CodingSkipped{})

	t.Run("completed", func(t *testing.T) {
		report := FinalReport{OverallSummary: "solid"}
		done, effects := mustReduce(t, s, AnalysisCompleted{Data: s.Data, Report: report})
		assert.Equal(t, StateReport, done.State)
		assert.Equal(t, []Effect{EffectClearSnapshot}, effects)
		assert.Equal(t, "solid", done.Report.OverallSummary)
		assert.Empty(t, done.Error)
	})

	t.Run("failed", func(t *testing.T) {
		failed, effects := mustReduce(t, s, AnalysisFailed{Message: MsgRateLimited})
		assert.Equal(t, StateReport, failed.State)
		assert.Equal(t, []Effect{EffectClearSnapshot}, effects)
		assert.Nil(t, failed.Report)
		assert.Equal(t, MsgRateLimited, failed.Error)
	})

	t.Run("restart resets the interview", func(t *testing.T) {
		done, _ := mustReduce(t, s, AnalysisCompleted{Data: s.Data, Report: FinalReport{}})
		again, effects := mustReduce(t, done, RestartRequested{})
		assert.Equal(t, StateGeneratingQuestions, again.State)
		assert.Equal(t, []Effect{EffectGenerateQuestions}, effects)
		assert.Nil(t, again.Report)
		assert.Nil(t, again.Challenge)
		assert.Empty(t, again.Data)
		assert.Equal(t, candidate, *again.User)
	})
}

func TestReduce_SideBranches(t *testing.T) {
	s := interviewing(t)
	s, _ = mustReduce(t, s, AnswerSubmitted{Answer: "a"})

	t.Run("profile and back", func(t *testing.T) {
		p, _ := mustReduce(t, s, ProfileOpened{})
		assert.Equal(t, StateProfile, p.State)
		p, _ = mustReduce(t, p, ProfileOpened{})
		require.NotNil(t, p.Previous)
		assert.Equal(t, StateInterview, *p.Previous, "re-entering the same branch keeps the slot")

		back, _ := mustReduce(t, p, BackRequested{})
		assert.Equal(t, StateInterview, back.State)
		assert.Nil(t, back.Previous)
		assert.Equal(t, 1, back.CurrentIndex)
	})

	t.Run("nested entry overwrites the previous slot", func(t *testing.T) {
		n, _ := mustReduce(t, s, ProfileOpened{}, AboutOpened{})
		assert.Equal(t, StateProfile, *n.Previous)
		n, _ = mustReduce(t, n, BackRequested{})
		assert.Equal(t, StateProfile, n.State)
		n, _ = mustReduce(t, n, BackRequested{})
		assert.Equal(t, StateInterview, n.State)
	})

	t.Run("home returns from a side branch", func(t *testing.T) {
		h, _ := mustReduce(t, s, AboutOpened{}, HomeRequested{})
		assert.Equal(t, StateInterview, h.State)
		h, _ = mustReduce(t, h, HomeRequested{})
		assert.Equal(t, StateInterview, h.State)
	})

	t.Run("profile update saves identity", func(t *testing.T) {
		p, effects := mustReduce(t, s, ProfileOpened{}, ProfileUpdated{User: User{Name: "Ada L.", Email: candidate.Email}})
		assert.Equal(t, []Effect{EffectSaveIdentity}, effects)
		assert.Equal(t, "Ada L.", p.User.Name)
	})

	t.Run("admin home", func(t *testing.T) {
		a, _ := mustReduce(t, NewSession(), Started{Identity: &User{Name: "Admin", Email: AdminEmail}}, AboutOpened{}, HomeRequested{})
		assert.Equal(t, StateAdminPanel, a.State)
	})
}

func TestReduce_Logout(t *testing.T) {
	s := interviewing(t)
	s, effects := mustReduce(t, s, LoggedOut{})
	assert.Equal(t, StateLogin, s.State)
	assert.Equal(t, []Effect{EffectClearSnapshot, EffectClearIdentity}, effects)
	assert.Nil(t, s.User)
	assert.Empty(t, s.Data)
	assert.Nil(t, s.Previous)
}

func TestReduce_InvalidTransitions(t *testing.T) {
	s := interviewing(t)
	tests := []Event{
		TopicSelected{Topic: "PHP"},
		CodingAccepted{},
		AnalysisStarted{},
		RestartRequested{},
		BackRequested{},
		QuestionsGenerated{Questions: generalBatch()},
		Started{},
	}
	for _, ev := range tests {
		t.Run(EventName(ev), func(t *testing.T) {
			next, effects, err := Reduce(s, ev)
			require.Error(t, err)
			var domainErr *DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, ErrInvalidState, domainErr.Code)
			assert.Nil(t, effects)
			assert.Equal(t, s, next)
		})
	}
}

func TestSession_ShouldPersist(t *testing.T) {
	admin := User{Email: AdminEmail}
	tests := []struct {
		name string
		s    Session
		want bool
	}{
		{"interview", Session{State: StateInterview, User: &candidate}, true},
		{"technical choice", Session{State: StateTechnicalChoice, User: &candidate}, true},
		{"coding choice", Session{State: StateCodingChoice, User: &candidate}, true},
		{"coding challenge", Session{State: StateCodingChallenge, User: &candidate}, true},
		{"analyzing", Session{State: StateAnalyzing, User: &candidate}, false},
		{"profile", Session{State: StateProfile, User: &candidate}, false},
		{"no user", Session{State: StateInterview}, false},
		{"admin", Session{State: StateInterview, User: &admin}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.ShouldPersist())
		})
	}
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "INIT", StateInit.String())
	assert.Equal(t, "ADMIN_PANEL", StateAdminPanel.String())
	assert.Equal(t, 13, int(StateAdminPanel))
	assert.Equal(t, "AppState(42)", AppState(42).String())
}
