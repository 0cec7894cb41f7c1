package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interview-coach/internal/domain"
	"interview-coach/internal/logger"

	"go.uber.org/zap"
)

// Coach implements domain.InterviewCoach on top of a Generator.
type Coach struct {
	gen     Generator
	prompts *Prompts
	timeout time.Duration
}

var _ domain.InterviewCoach = (*Coach)(nil)

// NewCoach creates a coach. A zero timeout leaves the caller's deadline in
// charge.
func NewCoach(gen Generator, prompts *Prompts, timeout time.Duration) *Coach {
	return &Coach{gen: gen, prompts: prompts, timeout: timeout}
}

// generate renders p, calls the model and decodes the JSON answer into out.
func (c *Coach) generate(ctx context.Context, op string, p *Prompt, data any, schema *Schema, out any) error {
	l := logger.Get()

	prompt, err := p.Render(data)
	if err != nil {
		return domain.NewLLMServiceError(fmt.Errorf("%s: render prompt: %w", op, err))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.gen.GenerateJSON(ctx, Request{Prompt: prompt, Schema: schema, Temperature: p.Temperature})
	if err != nil {
		l.Error("Model call failed", zap.String("op", op), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return domain.NewLLMServiceError(fmt.Errorf("%s: %w", op, err))
	}
	l.Debug("Model call completed", zap.String("op", op), zap.Duration("elapsed", time.Since(start)))

	payload, err := extractJSON(raw)
	if err != nil {
		l.Error("Model response contained no JSON", zap.String("op", op), zap.String("raw_response", truncate(raw, 500)))
		return domain.NewLLMServiceError(fmt.Errorf("%s: %w", op, err))
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		l.Error("Failed to unmarshal model response", zap.String("op", op), zap.String("json", truncate(payload, 500)), zap.Error(err))
		return domain.NewLLMServiceError(fmt.Errorf("%s: failed to unmarshal JSON from model: %w", op, err))
	}
	return nil
}

func (c *Coach) GenerateInterviewQuestions(ctx context.Context, resume string) ([]domain.InterviewQuestion, error) {
	var qs []domain.InterviewQuestion
	data := struct{ Resume string }{Resume: strings.TrimSpace(resume)}
	if err := c.generate(ctx, "interview_questions", &c.prompts.InterviewQuestions, data, questionsSchema, &qs); err != nil {
		return nil, err
	}
	return normalizeQuestions(qs, domain.GeneralFirstQuestionID)
}

func (c *Coach) GenerateTechnicalQuestions(ctx context.Context, topic string) ([]domain.InterviewQuestion, error) {
	var qs []domain.InterviewQuestion
	data := struct{ Topic string }{Topic: topic}
	if err := c.generate(ctx, "technical_questions", &c.prompts.TechnicalQuestions, data, questionsSchema, &qs); err != nil {
		return nil, err
	}
	return normalizeQuestions(qs, domain.TechnicalFirstQuestionID)
}

func (c *Coach) AnalyzeAnswer(ctx context.Context, question, answer string) (*domain.IndividualFeedback, error) {
	var fb domain.IndividualFeedback
	data := struct{ Question, Answer string }{Question: question, Answer: answer}
	if err := c.generate(ctx, "answer_feedback", &c.prompts.AnswerFeedback, data, feedbackSchema, &fb); err != nil {
		return nil, err
	}
	fb.Scores.Clarity = clampScore(fb.Scores.Clarity)
	fb.Scores.Relevance = clampScore(fb.Scores.Relevance)
	fb.Scores.Structure = clampScore(fb.Scores.Structure)
	return &fb, nil
}

func (c *Coach) GenerateCodingProblem(ctx context.Context, topic string) (*domain.CodingProblem, error) {
	if strings.TrimSpace(topic) == "" {
		topic = domain.DefaultCodingTopic
	}
	var p domain.CodingProblem
	data := struct{ Topic string }{Topic: topic}
	if err := c.generate(ctx, "coding_problem", &c.prompts.CodingProblem, data, codingProblemSchema, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" {
		return nil, domain.NewLLMServiceError(fmt.Errorf("coding_problem: model returned an incomplete problem"))
	}
	return &p, nil
}

func (c *Coach) AnalyzeCodingSolution(ctx context.Context, problem domain.CodingProblem, solution string) (*domain.CodingFeedback, error) {
	var fb domain.CodingFeedback
	data := struct {
		Problem  domain.CodingProblem
		Solution string
	}{Problem: problem, Solution: solution}
	if err := c.generate(ctx, "coding_feedback", &c.prompts.CodingFeedback, data, codingFeedbackSchema, &fb); err != nil {
		return nil, err
	}
	clampCodingFeedback(&fb)
	return &fb, nil
}

type reportEntry struct {
	Question string                     `json:"question"`
	Answer   string                     `json:"answer"`
	Feedback *domain.IndividualFeedback `json:"feedback"`
}

func (c *Coach) GenerateFinalReport(ctx context.Context, data []domain.InterviewData, challenge *domain.CodingChallengeData) (*domain.FinalReport, error) {
	entries := make([]reportEntry, 0, len(data))
	for _, d := range data {
		entries = append(entries, reportEntry{Question: d.Question.Question, Answer: d.Answer, Feedback: d.Feedback})
	}
	interviewJSON, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, domain.NewLLMServiceError(err)
	}

	var suppliedFeedback *domain.CodingFeedback
	if challenge.HasSolution() && challenge.Feedback != nil {
		suppliedFeedback = challenge.Feedback
	}
	var codingJSON string
	if suppliedFeedback != nil {
		raw, err := json.MarshalIndent(suppliedFeedback, "", "  ")
		if err != nil {
			return nil, domain.NewLLMServiceError(err)
		}
		codingJSON = string(raw)
	}

	promptData := struct {
		InterviewData  string
		CodingFeedback string
	}{InterviewData: string(interviewJSON), CodingFeedback: codingJSON}

	var report domain.FinalReport
	if err := c.generate(ctx, "final_report", &c.prompts.FinalReport, promptData, finalReportSchema, &report); err != nil {
		return nil, err
	}

	switch {
	case !challenge.HasSolution():
		report.CodingChallengeFeedback = nil
	case report.CodingChallengeFeedback != nil && strings.TrimSpace(report.CodingChallengeFeedback.Summary) == "":
		report.CodingChallengeFeedback = nil
	case report.CodingChallengeFeedback == nil && suppliedFeedback != nil:
		fb := *suppliedFeedback
		report.CodingChallengeFeedback = &fb
	}
	if report.CodingChallengeFeedback != nil {
		clampCodingFeedback(report.CodingChallengeFeedback)
	}
	if report.ActionableTips == nil {
		report.ActionableTips = []string{}
	}
	return &report, nil
}

// normalizeQuestions renumbers a batch from firstID regardless of the IDs
// the model chose.
func normalizeQuestions(qs []domain.InterviewQuestion, firstID int) ([]domain.InterviewQuestion, error) {
	out := make([]domain.InterviewQuestion, 0, len(qs))
	for _, q := range qs {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		q.ID = firstID + len(out)
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, domain.NewLLMServiceError(fmt.Errorf("model returned no questions"))
	}
	return out, nil
}

func clampScore(v float64) float64 {
	switch {
	case v < 1:
		return 1
	case v > 10:
		return 10
	}
	return v
}

func clampCodingFeedback(fb *domain.CodingFeedback) {
	fb.Correctness = clampScore(fb.Correctness)
	fb.Efficiency = clampScore(fb.Efficiency)
	fb.Style = clampScore(fb.Style)
}
