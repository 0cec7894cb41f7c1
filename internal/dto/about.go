package dto

// AboutFeature is one highlighted capability on the about page.
type AboutFeature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AboutResponse is the static content of the about page.
type AboutResponse struct {
	Title      string         `json:"title"`
	Paragraphs []string       `json:"paragraphs"`
	Features   []AboutFeature `json:"features"`
	Closing    string         `json:"closing"`
}

// About is served by GET /api/about.
var About = AboutResponse{
	Title: "AI Interview Coach",
	Paragraphs: []string{
		"AI Interview Coach lets you rehearse a job interview end to end: answer questions out loud or in writing, " +
			"take an optional technical round and coding challenge, and get a written review when you finish.",
		"Every answer is scored for clarity, relevance and structure, and the final report collects your strengths, " +
			"the areas to work on and concrete tips for next time.",
	},
	Features: []AboutFeature{
		{Name: "Personalized Questions", Description: "Each session gets a fresh set of questions, grounded in your resume when you upload one."},
		{Name: "Voice Interaction", Description: "Questions can be read aloud and answered through the microphone."},
		{Name: "Answer Analysis", Description: "Each response is reviewed by a language model once the interview ends."},
		{Name: "Comprehensive Report", Description: "A closing report summarizes the whole session, including the coding challenge."},
	},
	Closing: "Practice until the real thing feels familiar.",
}
