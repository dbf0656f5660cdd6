package domain

// Difficulty levels accepted by the generator.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyMixed  = "mixed"
)

// Question types accepted by the generator.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeMixed          = "mixed"
)

var (
	Difficulties  = []string{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyMixed}
	QuestionTypes = []string{QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeMixed}
)

// GenerationRequest is one quiz-generation call. It is never persisted.
type GenerationRequest struct {
	Content       string
	QuestionCount int
	Difficulty    string
	QuestionType  string
	FocusArea     string
	Model         string
	APIKey        string
}

// Outcome tells the caller how much of a quiz came from a real model.
type Outcome string

const (
	// OutcomeGenerated means every question came from a model.
	OutcomeGenerated Outcome = "generated"
	// OutcomePartial means some batches were replaced with filler questions.
	OutcomePartial Outcome = "partial"
	// OutcomeSynthetic means no model call succeeded.
	OutcomeSynthetic Outcome = "synthetic"
)

// OrchestrationResult is what one fallback pass over the registry produced.
type OrchestrationResult struct {
	Quiz      QuizData
	Model     string
	Synthetic bool
}

// GenerationResult is the final, always-usable output of a generation call.
type GenerationResult struct {
	Quiz             QuizData `json:"quiz"`
	Outcome          Outcome  `json:"outcome"`
	Requested        int      `json:"requested"`
	Batches          int      `json:"batches"`
	SyntheticBatches int      `json:"synthetic_batches"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Shortfall is how many requested questions are missing from the result.
func (r GenerationResult) Shortfall() int {
	if d := r.Requested - r.Quiz.Len(); d > 0 {
		return d
	}
	return 0
}
