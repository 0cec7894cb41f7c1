package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"interview-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func newTestCoach(t *testing.T) (*Coach, *MockGenerator) {
	t.Helper()
	prompts, err := DefaultPrompts()
	require.NoError(t, err)
	gen := new(MockGenerator)
	return NewCoach(gen, prompts, 0), gen
}

func withTemperature(temp float64) any {
	return mock.MatchedBy(func(r Request) bool { return r.Temperature == temp })
}

func TestCoach_GenerateInterviewQuestions(t *testing.T) {
	c, gen := newTestCoach(t)
	raw := `<think>five questions</think>
[{"id":9,"category":"Behavioral","question":"Tell me about a conflict."},
 {"id":9,"category":"Teamwork","question":"How do you onboard?"},
 {"id":3,"category":"Teamwork","question":"  "}]`
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.Temperature == 1.0 && strings.Contains(r.Prompt, "Built a payments platform") && r.Schema == questionsSchema
	})).Return(raw, nil).Once()

	qs, err := c.GenerateInterviewQuestions(context.Background(), "Built a payments platform")
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[0].ID)
	assert.Equal(t, 2, qs[1].ID)
	assert.Equal(t, "Teamwork", qs[1].Category)
	gen.AssertExpectations(t)
}

func TestCoach_GenerateInterviewQuestions_WithoutResume(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return !strings.Contains(r.Prompt, "Resume:")
	})).Return(`[{"id":1,"category":"Behavioral","question":"Q"}]`, nil).Once()

	_, err := c.GenerateInterviewQuestions(context.Background(), "   ")
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestCoach_GenerateTechnicalQuestions(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.Temperature == 0.8 && strings.Contains(r.Prompt, `"Python" software engineering role`)
	})).Return("```json\n[{\"id\":1,\"category\":\"Algorithms\",\"question\":\"Explain the GIL.\"}]\n```", nil).Once()

	qs, err := c.GenerateTechnicalQuestions(context.Background(), "Python")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, domain.TechnicalFirstQuestionID, qs[0].ID)
}

func TestCoach_EmptyQuestionBatchIsAnError(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return(`[]`, nil).Once()

	_, err := c.GenerateTechnicalQuestions(context.Background(), "PHP")
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrLLMServiceError, domainErr.Code)
}

func TestCoach_AnalyzeAnswer_ClampsScores(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, withTemperature(0.5)).
		Return(`{"scores":{"clarity":12,"relevance":0,"structure":7.5},"strengths":"Clear","improvements":"Add metrics"}`, nil).Once()

	fb, err := c.AnalyzeAnswer(context.Background(), "Why Go?", "Because of goroutines.")
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackScores{Clarity: 10, Relevance: 1, Structure: 7.5}, fb.Scores)
	assert.Equal(t, "Clear", fb.Strengths)
}

func TestCoach_GeneratorErrorIsLLMServiceError(t *testing.T) {
	c, gen := newTestCoach(t)
	upstream := errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("", upstream).Once()

	_, err := c.AnalyzeAnswer(context.Background(), "Q", "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, domain.MsgRateLimited, domain.UserFriendlyMessage(err))
}

func TestCoach_MalformedJSON(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.Anything).Return(`I cannot comply.`, nil).Once()

	_, err := c.GenerateCodingProblem(context.Background(), "Java")
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrLLMServiceError, domainErr.Code)
}

func TestCoach_GenerateCodingProblem_DefaultTopic(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.Temperature == 0.9 && strings.Contains(r.Prompt, domain.DefaultCodingTopic)
	})).Return(`{"title":"Two Sum","description":"Find two numbers.","example":"[2,7] -> 9"}`, nil).Once()

	p, err := c.GenerateCodingProblem(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", p.Title)
}

func TestCoach_AnalyzeCodingSolution(t *testing.T) {
	c, gen := newTestCoach(t)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
		return r.Temperature == 0.4 && strings.Contains(r.Prompt, "return a + b") && strings.Contains(r.Prompt, "Two Sum")
	})).Return(`{"summary":"Works","correctness":9,"efficiency":-3,"style":8,"suggestions":"Name things"}`, nil).Once()

	fb, err := c.AnalyzeCodingSolution(context.Background(), domain.CodingProblem{Title: "Two Sum", Description: "d"}, "return a + b")
	require.NoError(t, err)
	assert.Equal(t, 1.0, fb.Efficiency)
	assert.Equal(t, 9.0, fb.Correctness)
}

func TestCoach_GenerateFinalReport(t *testing.T) {
	data := []domain.InterviewData{{
		Question: domain.InterviewQuestion{ID: 1, Category: "Behavioral", Question: "Tell me about yourself."},
		Answer:   "I write Go.",
		Feedback: &domain.IndividualFeedback{Scores: domain.FeedbackScores{Clarity: 8, Relevance: 8, Structure: 8}},
	}}
	supplied := &domain.CodingFeedback{Summary: "Solid", Correctness: 8, Efficiency: 7, Style: 9, Suggestions: "Tests"}

	t.Run("DropsCodingFeedbackWithoutSolution", func(t *testing.T) {
		c, gen := newTestCoach(t)
		gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
			return r.Temperature == 0.6 && strings.Contains(r.Prompt, "Not attempted.") && strings.Contains(r.Prompt, "I write Go.")
		})).Return(`{"overallSummary":"Good","keyStrengths":"k","areasForImprovement":"a","actionableTips":["t1"],
			"codingChallengeFeedback":{"summary":"invented","correctness":5,"efficiency":5,"style":5,"suggestions":"s"}}`, nil).Once()

		report, err := c.GenerateFinalReport(context.Background(), data, &domain.CodingChallengeData{Solution: "  "})
		require.NoError(t, err)
		assert.Nil(t, report.CodingChallengeFeedback)
		assert.Equal(t, []string{"t1"}, report.ActionableTips)
	})

	t.Run("DropsCodingFeedbackWithEmptySummary", func(t *testing.T) {
		c, gen := newTestCoach(t)
		gen.On("GenerateJSON", mock.Anything, mock.Anything).
			Return(`{"overallSummary":"Good","keyStrengths":"k","areasForImprovement":"a","actionableTips":[],
				"codingChallengeFeedback":{"summary":"","correctness":5}}`, nil).Once()

		report, err := c.GenerateFinalReport(context.Background(), data, &domain.CodingChallengeData{Solution: "x", Feedback: supplied})
		require.NoError(t, err)
		assert.Nil(t, report.CodingChallengeFeedback)
	})

	t.Run("FillsOmittedCodingFeedback", func(t *testing.T) {
		c, gen := newTestCoach(t)
		gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(r Request) bool {
			return strings.Contains(r.Prompt, `"summary": "Solid"`)
		})).Return(`{"overallSummary":"Good","keyStrengths":"k","areasForImprovement":"a"}`, nil).Once()

		report, err := c.GenerateFinalReport(context.Background(), data, &domain.CodingChallengeData{Solution: "x", Feedback: supplied})
		require.NoError(t, err)
		require.NotNil(t, report.CodingChallengeFeedback)
		assert.Equal(t, *supplied, *report.CodingChallengeFeedback)
		assert.NotNil(t, report.ActionableTips)
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, false},
		{"prose around object", "Sure! {\"a\":1} Hope it helps.", `{"a":1}`, false},
		{"array first", `[{"a":1},{"b":2}]`, `[{"a":1},{"b":2}]`, false},
		{"think block with braces", "<think>{draft}</think>\n{\"a\":2}", `{"a":2}`, false},
		{"no json", "nothing here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePrompts(t *testing.T) {
	_, err := ParsePrompts([]byte("interview_questions:\n  template: hi\n"))
	assert.Error(t, err, "missing templates must be rejected")

	p, err := DefaultPrompts()
	require.NoError(t, err)
	_, err = p.TechnicalQuestions.Render(struct{ Other string }{})
	assert.Error(t, err, "unknown template fields must fail")
}

func TestSchema_ToGenAIAndHint(t *testing.T) {
	s := finalReportSchema.toGenAI()
	require.NotNil(t, s)
	assert.Len(t, s.Properties, 5)
	assert.Equal(t, finalReportSchema.Required, s.Required)
	assert.NotNil(t, s.Properties["actionableTips"].Items)

	hint := feedbackSchema.PromptHint()
	assert.Contains(t, hint, `"strengths"`)
	assert.Empty(t, (*Schema)(nil).PromptHint())
}
