package coach

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompt is one entry of the prompt catalogue.
type Prompt struct {
	Temperature float64 `yaml:"temperature"`
	Template    string  `yaml:"template"`

	tmpl *template.Template
}

// Prompts holds the template for every coach operation.
type Prompts struct {
	InterviewQuestions Prompt `yaml:"interview_questions"`
	TechnicalQuestions Prompt `yaml:"technical_questions"`
	AnswerFeedback     Prompt `yaml:"answer_feedback"`
	CodingProblem      Prompt `yaml:"coding_problem"`
	CodingFeedback     Prompt `yaml:"coding_feedback"`
	FinalReport        Prompt `yaml:"final_report"`
}

// DefaultPrompts parses the embedded catalogue.
func DefaultPrompts() (*Prompts, error) {
	return ParsePrompts(defaultPrompts)
}

// ParsePrompts parses a YAML catalogue and compiles its templates.
func ParsePrompts(raw []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalogue: %w", err)
	}
	entries := map[string]*Prompt{
		"interview_questions": &p.InterviewQuestions,
		"technical_questions": &p.TechnicalQuestions,
		"answer_feedback":     &p.AnswerFeedback,
		"coding_problem":      &p.CodingProblem,
		"coding_feedback":     &p.CodingFeedback,
		"final_report":        &p.FinalReport,
	}
	for name, entry := range entries {
		if strings.TrimSpace(entry.Template) == "" {
			return nil, fmt.Errorf("prompt %q has no template", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(entry.Template)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", name, err)
		}
		entry.tmpl = tmpl
	}
	return &p, nil
}

// Render executes the template with data.
func (p *Prompt) Render(data any) (string, error) {
	if p.tmpl == nil {
		return "", fmt.Errorf("prompt template not compiled")
	}
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}
