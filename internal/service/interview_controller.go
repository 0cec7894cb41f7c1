package service

import (
	"context"
	"time"

	"interview-coach/internal/domain"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
)

// InterviewController drives domain.Reduce for every client session and
// executes the effects it requests.
type InterviewController interface {
	// Load returns the live session, rebuilding it from the session store
	// when this process has none.
	Load(ctx context.Context, sessionID string) (domain.Session, error)
	// Dispatch applies ev and runs its effects to completion. An event the
	// current state rejects returns an INVALID_STATE error and the unchanged
	// session.
	Dispatch(ctx context.Context, sessionID string, ev domain.Event) (domain.Session, error)
	// Update calls build with the live session while holding its lock and
	// dispatches the returned event. No other event for the session runs in
	// between; nothing is dispatched when build fails.
	Update(ctx context.Context, sessionID string, build func(domain.Session) (domain.Event, error)) (domain.Session, error)
	// Forget drops the live copy; the next Load rebuilds it.
	Forget(sessionID string)
}

type interviewControllerImpl struct {
	coach         domain.InterviewCoach
	store         domain.SessionStore
	users         domain.UserRepository
	histories     domain.HistoryRepository
	registry      *SessionRegistry
	analysisDelay time.Duration
	now           func() time.Time
}

// NewInterviewController creates the controller. analysisDelay is the pause
// between a submitted solution and the start of analysis.
func NewInterviewController(
	coach domain.InterviewCoach,
	store domain.SessionStore,
	users domain.UserRepository,
	histories domain.HistoryRepository,
	registry *SessionRegistry,
	analysisDelay time.Duration,
) InterviewController {
	return &interviewControllerImpl{
		coach:         coach,
		store:         store,
		users:         users,
		histories:     histories,
		registry:      registry,
		analysisDelay: analysisDelay,
		now:           time.Now,
	}
}

func (c *interviewControllerImpl) Load(ctx context.Context, sessionID string) (domain.Session, error) {
	live, err := c.live(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()
	return live.session, nil
}

func (c *interviewControllerImpl) Dispatch(ctx context.Context, sessionID string, ev domain.Event) (domain.Session, error) {
	live, err := c.live(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	s, err := c.transition(ctx, sessionID, live.session, ev)
	live.session = s
	return s, err
}

func (c *interviewControllerImpl) Update(ctx context.Context, sessionID string, build func(domain.Session) (domain.Event, error)) (domain.Session, error) {
	live, err := c.live(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	live.mu.Lock()
	defer live.mu.Unlock()

	ev, err := build(live.session)
	if err != nil {
		return live.session, err
	}
	s, err := c.transition(ctx, sessionID, live.session, ev)
	live.session = s
	return s, err
}

func (c *interviewControllerImpl) Forget(sessionID string) {
	c.registry.remove(sessionID)
}

func (c *interviewControllerImpl) live(ctx context.Context, sessionID string) (*liveSession, error) {
	return c.registry.getOrLoad(ctx, sessionID, func(ctx context.Context) (domain.Session, error) {
		return c.start(ctx, sessionID)
	})
}

// start rebuilds a session from the persisted identity and snapshot. Store
// failures read as nothing persisted.
func (c *interviewControllerImpl) start(ctx context.Context, sessionID string) (domain.Session, error) {
	l := logger.Get()

	identity, err := c.store.LoadIdentity(ctx, sessionID)
	if err != nil {
		l.Error("Failed to load session identity", zap.String("session_id", sessionID), zap.Error(err))
		identity = nil
	}
	var snapshot *domain.Snapshot
	if identity != nil {
		snapshot, err = c.store.LoadSnapshot(ctx, sessionID)
		if err != nil {
			l.Error("Failed to load session snapshot", zap.String("session_id", sessionID), zap.Error(err))
			snapshot = nil
		}
	}

	s, err := c.transition(ctx, sessionID, domain.NewSession(), domain.Started{Identity: identity, Snapshot: snapshot})
	if err != nil {
		return domain.Session{}, err
	}
	l.Info("Session loaded",
		zap.String("session_id", sessionID),
		zap.Stringer("state", s.State),
		zap.Bool("resumed", snapshot != nil && s.State == snapshot.AppState))
	return s, nil
}

// transition reduces ev, persists the snapshot when the new state calls for
// it, then runs the effects in order.
func (c *interviewControllerImpl) transition(ctx context.Context, sessionID string, s domain.Session, ev domain.Event) (domain.Session, error) {
	next, effects, err := domain.Reduce(s, ev)
	if err != nil {
		logger.Get().Debug("Event rejected",
			zap.String("session_id", sessionID),
			zap.String("event", domain.EventName(ev)),
			zap.Stringer("state", s.State))
		return s, err
	}
	logger.Get().Debug("Session transition",
		zap.String("session_id", sessionID),
		zap.String("event", domain.EventName(ev)),
		zap.Stringer("from", s.State),
		zap.Stringer("to", next.State))

	if next.ShouldPersist() {
		if err := c.store.SaveSnapshot(ctx, sessionID, next.Snapshot()); err != nil {
			logger.Get().Error("Failed to save session snapshot", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return c.run(ctx, sessionID, next, effects)
}

func (c *interviewControllerImpl) run(ctx context.Context, sessionID string, s domain.Session, effects []domain.Effect) (domain.Session, error) {
	l := logger.Get()
	for _, effect := range effects {
		var follow domain.Event

		switch effect {
		case domain.EffectSaveIdentity:
			if s.User != nil {
				if err := c.store.SaveIdentity(ctx, sessionID, *s.User); err != nil {
					l.Error("Failed to save session identity", zap.String("session_id", sessionID), zap.Error(err))
				}
			}
		case domain.EffectClearIdentity:
			if err := c.store.ClearIdentity(ctx, sessionID); err != nil {
				l.Error("Failed to clear session identity", zap.String("session_id", sessionID), zap.Error(err))
			}
		case domain.EffectClearSnapshot:
			if err := c.store.ClearSnapshot(ctx, sessionID); err != nil {
				l.Error("Failed to clear session snapshot", zap.String("session_id", sessionID), zap.Error(err))
			}
		case domain.EffectGenerateQuestions:
			qs, err := c.coach.GenerateInterviewQuestions(ctx, c.resume(ctx, s.User))
			follow = generated(err, domain.QuestionsGenerated{Questions: qs})
		case domain.EffectGenerateTechnicalQuestions:
			qs, err := c.coach.GenerateTechnicalQuestions(ctx, s.SelectedTopic)
			follow = generated(err, domain.TechnicalQuestionsGenerated{Questions: qs})
		case domain.EffectGenerateCodingProblem:
			p, err := c.coach.GenerateCodingProblem(ctx, s.SelectedTopic)
			if err == nil {
				follow = domain.CodingProblemGenerated{Problem: *p}
			} else {
				follow = generated(err, nil)
			}
		case domain.EffectScheduleAnalysis:
			if err := sleep(ctx, c.analysisDelay); err != nil {
				return s, err
			}
			follow = domain.AnalysisStarted{}
		case domain.EffectAnalyze:
			follow = c.analyze(ctx, sessionID, s)
		default:
			l.Warn("Unknown effect ignored", zap.Stringer("effect", effect))
		}

		if follow == nil {
			continue
		}
		next, err := c.transition(ctx, sessionID, s, follow)
		if err != nil {
			return next, err
		}
		s = next
	}
	return s, nil
}

// generated turns a generation outcome into the event fed back to Reduce.
func generated(err error, ok domain.Event) domain.Event {
	if err != nil {
		logger.Get().Error("Generation failed", zap.Error(err))
		return domain.GenerationFailed{Message: domain.UserFriendlyMessage(err)}
	}
	return ok
}

// analyze produces feedback for each answered question in interview order,
// then the coding feedback and the final report. The first failure aborts
// the whole analysis and nothing is archived.
func (c *interviewControllerImpl) analyze(ctx context.Context, sessionID string, s domain.Session) domain.Event {
	l := logger.Get()
	failed := func(step string, err error) domain.Event {
		l.Error("Interview analysis failed", zap.String("session_id", sessionID), zap.String("step", step), zap.Error(err))
		return domain.AnalysisFailed{Message: domain.UserFriendlyMessage(err)}
	}

	data := make([]domain.InterviewData, len(s.Data))
	copy(data, s.Data)
	for i := range data {
		if !data[i].Answered() {
			continue
		}
		fb, err := c.coach.AnalyzeAnswer(ctx, data[i].Question.Question, data[i].Answer)
		if err != nil {
			return failed("answer_feedback", err)
		}
		data[i].Feedback = fb
	}

	var challenge *domain.CodingChallengeData
	if s.Challenge != nil {
		ch := *s.Challenge
		challenge = &ch
	}
	var solved *domain.CodingChallengeData
	if challenge.HasSolution() {
		fb, err := c.coach.AnalyzeCodingSolution(ctx, challenge.Problem, challenge.Solution)
		if err != nil {
			return failed("coding_feedback", err)
		}
		challenge.Feedback = fb
		solved = challenge
	}

	report, err := c.coach.GenerateFinalReport(ctx, data, solved)
	if err != nil {
		return failed("final_report", err)
	}

	done := domain.AnalysisCompleted{Data: data, Challenge: challenge, Report: *report}
	if s.User == nil || s.User.IsAdmin() {
		return done
	}
	record := domain.NewInterviewRecord(s.User.Email, c.now(), data, *report, challenge)
	if err := c.histories.Save(ctx, &record); err != nil {
		l.Error("Failed to save interview record", zap.String("session_id", sessionID), zap.Error(err))
		done.Warning = domain.MsgSaveFailed
		return done
	}
	l.Info("Interview record saved", zap.String("session_id", sessionID), zap.String("record_id", record.ID))
	return done
}

// resume returns the uploaded resume text of user, or "" when there is none.
func (c *interviewControllerImpl) resume(ctx context.Context, user *domain.User) string {
	if user == nil || user.IsAdmin() {
		return ""
	}
	stored, err := c.users.FindByEmail(ctx, user.Email)
	if err != nil {
		logger.Get().Warn("Failed to load resume, generating generic questions", zap.String("email", user.Email), zap.Error(err))
		return ""
	}
	if stored == nil {
		return ""
	}
	return stored.ResumeText
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
