package domain

import "math"

// Blend weights for the administrative score.
const (
	questionWeight = 0.6
	codingWeight   = 0.4
)

// ComputeScore returns the 0-100 score shown in the admin panel for a
// record. Question feedback and coding feedback are averaged separately and
// blended 60/40 when both exist.
func ComputeScore(rec *InterviewRecord) int {
	if rec == nil {
		return 0
	}

	var questionTotal float64
	var scored int
	for _, d := range rec.InterviewData {
		if d.Feedback == nil {
			continue
		}
		s := d.Feedback.Scores
		questionTotal += (s.Clarity + s.Relevance + s.Structure) / 3
		scored++
	}

	hasQuestions := scored > 0
	var questionAvg float64
	if hasQuestions {
		questionAvg = questionTotal / float64(scored)
	}

	cf := rec.FinalReport.CodingChallengeFeedback
	hasCoding := cf != nil
	var codingAvg float64
	if hasCoding {
		codingAvg = (cf.Correctness + cf.Efficiency + cf.Style) / 3
	}

	var blended float64
	switch {
	case hasQuestions && hasCoding:
		blended = questionAvg*questionWeight + codingAvg*codingWeight
	case hasQuestions:
		blended = questionAvg
	case hasCoding:
		blended = codingAvg
	default:
		return 0
	}
	return int(math.Floor(blended*10 + 0.5))
}
