package coach

import (
	"context"
	"encoding/json"
	"strings"
)

// Generator produces a JSON document from a prompt. Implementations may
// enforce the schema natively or only describe it in the prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}

// Request is a single schema-constrained generation call.
type Request struct {
	Prompt      string
	Schema      *Schema
	Temperature float64
}

type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
)

// Schema is the subset of JSON schema the coach needs to describe its
// responses.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// PromptHint renders the schema as an instruction for models without a
// native response schema.
func (s *Schema) PromptHint() string {
	if s == nil {
		return ""
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nRespond with ONLY valid JSON, no prose and no markdown fences. The JSON must match this schema:\n")
	sb.Write(raw)
	return sb.String()
}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }
func num(desc string) *Schema { return &Schema{Type: TypeNumber, Description: desc} }

var (
	questionsSchema = &Schema{
		Type: TypeArray,
		Items: &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"id":       {Type: TypeInteger, Description: "A unique integer ID for the question."},
				"category": str("The category of the question (e.g., 'Behavioral', 'Problem-Solving', 'Teamwork')."),
				"question": str("The interview question text."),
			},
			Required: []string{"id", "category", "question"},
		},
	}

	feedbackSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"scores": {
				Type: TypeObject,
				Properties: map[string]*Schema{
					"clarity":   num("Clarity of the answer on a scale of 1 to 10."),
					"relevance": num("Relevance of the answer to the question on a scale of 1 to 10."),
					"structure": num("Structure of the answer (e.g., STAR method) on a scale of 1 to 10."),
				},
				Required: []string{"clarity", "relevance", "structure"},
			},
			"strengths":    str("A concise summary of the answer's strengths."),
			"improvements": str("A concise summary of areas for improvement."),
		},
		Required: []string{"scores", "strengths", "improvements"},
	}

	codingProblemSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"title":       str("A short, descriptive title for the problem."),
			"description": str("A detailed description of the coding problem to be solved."),
			"example":     str("A simple example with input and expected output to clarify the problem."),
		},
		Required: []string{"title", "description", "example"},
	}

	codingFeedbackSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"summary":     str("A brief, encouraging summary of the code's quality and approach."),
			"correctness": num("A score from 1-10 on whether the code correctly solves the problem."),
			"efficiency":  num("A score from 1-10 on the code's efficiency (time and space complexity)."),
			"style":       num("A score from 1-10 on code style, readability, and best practices."),
			"suggestions": str("Strengths and specific, actionable suggestions for improvement."),
		},
		Required: []string{"summary", "correctness", "efficiency", "style", "suggestions"},
	}

	finalReportSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"overallSummary":      str("A brief, encouraging summary of the candidate's overall performance."),
			"keyStrengths":        str("A summary of key strengths demonstrated across all answers."),
			"areasForImprovement": str("A summary of recurring areas for improvement identified in the interview."),
			"actionableTips": {
				Type:        TypeArray,
				Items:       str("A single actionable tip for improvement."),
				Description: "A list of 3-5 concrete, actionable tips for the candidate's next interview.",
			},
			"codingChallengeFeedback": {
				Type:        TypeObject,
				Description: "Feedback on the coding challenge, if one was completed. Omit when no challenge was attempted.",
				Properties: map[string]*Schema{
					"summary":     str(""),
					"correctness": num(""),
					"efficiency":  num(""),
					"style":       num(""),
					"suggestions": str(""),
				},
			},
		},
		Required: []string{"overallSummary", "keyStrengths", "areasForImprovement", "actionableTips"},
	}
)
