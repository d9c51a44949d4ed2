package quizgen

// GeneratedQuestion is one unanswered multiple-choice item handed to the
// client. Nothing is persisted at generation time; the answered quiz comes
// back through the evaluation endpoint.
type GeneratedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Topic         string   `json:"topic"`
	Difficulty    string   `json:"difficulty"`
	Passage       string   `json:"passage,omitempty"`
}

// Quiz is the generation result returned to the caller.
type Quiz struct {
	Questions         []GeneratedQuestion `json:"questions"`
	GeneratedForLevel string              `json:"generated_for_level"`
	ModelUsed         string              `json:"model_used,omitempty"`
	// Fallback marks quizzes drawn from the static bank. Debug flag only:
	// the client renders both paths identically.
	Fallback bool `json:"fallback,omitempty"`
}

// Request are the caller-supplied generation parameters.
type Request struct {
	Topic        string `json:"topic"`
	NumQuestions int    `json:"num_questions"`
}
