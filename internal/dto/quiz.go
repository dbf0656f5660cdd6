package dto

import (
	"smartstudy/internal/domain"
)

// GenerateQuizRequest is the body of a quiz generation request
// @Description Request body for generating a quiz from study material
type GenerateQuizRequest struct {
	Content       string `json:"content" form:"content"`
	QuestionCount int    `json:"question_count" form:"question_count"`
	Difficulty    string `json:"difficulty,omitempty" form:"difficulty"`
	QuestionType  string `json:"question_type,omitempty" form:"question_type"`
	FocusArea     string `json:"focus_area,omitempty" form:"focus_area"`
	Model         string `json:"model,omitempty" form:"model"`
	APIKey        string `json:"api_key,omitempty" form:"api_key"`
}

// ToDomain converts the request into a generation request.
func (r GenerateQuizRequest) ToDomain() domain.GenerationRequest {
	return domain.GenerationRequest{
		Content:       r.Content,
		QuestionCount: r.QuestionCount,
		Difficulty:    r.Difficulty,
		QuestionType:  r.QuestionType,
		FocusArea:     r.FocusArea,
		Model:         r.Model,
		APIKey:        r.APIKey,
	}
}

// QuestionResponse is one generated multiple-choice question
type QuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// GenerateQuizResponse is the generated quiz and how it was produced
// @Description Generated quiz. outcome is generated, partial or synthetic.
type GenerateQuizResponse struct {
	Questions        []QuestionResponse `json:"questions"`
	Outcome          string             `json:"outcome"`
	Requested        int                `json:"requested"`
	Generated        int                `json:"generated"`
	Batches          int                `json:"batches"`
	SyntheticBatches int                `json:"synthetic_batches"`
	Warnings         []string           `json:"warnings,omitempty"`
}

// NewGenerateQuizResponse maps a generation result to its API shape.
func NewGenerateQuizResponse(result domain.GenerationResult) GenerateQuizResponse {
	questions := make([]QuestionResponse, 0, len(result.Quiz.Questions))
	for _, q := range result.Quiz.Questions {
		questions = append(questions, QuestionResponse{
			Question:    q.Question,
			Options:     q.Options,
			Correct:     q.Correct,
			Explanation: q.Explanation,
		})
	}
	return GenerateQuizResponse{
		Questions:        questions,
		Outcome:          string(result.Outcome),
		Requested:        result.Requested,
		Generated:        len(questions),
		Batches:          result.Batches,
		SyntheticBatches: result.SyntheticBatches,
		Warnings:         result.Warnings,
	}
}

// ExtractTextResponse carries the combined text of uploaded documents
type ExtractTextResponse struct {
	Text       string `json:"text"`
	Characters int    `json:"characters"`
}

// ModelResponse describes one selectable model
type ModelResponse struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Priority        int    `json:"priority"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

// ModelsResponse lists the models in fallback order
type ModelsResponse struct {
	Default string          `json:"default"`
	Models  []ModelResponse `json:"models"`
}

// NewModelsResponse maps registry entries to their API shape.
func NewModelsResponse(models []domain.ModelDescriptor) ModelsResponse {
	out := ModelsResponse{Default: domain.AutoModel, Models: make([]ModelResponse, 0, len(models))}
	for _, m := range models {
		out.Models = append(out.Models, ModelResponse{
			Name:            m.Name,
			Kind:            string(m.Kind),
			Priority:        m.Priority,
			MaxOutputTokens: m.MaxOutputTokens,
		})
	}
	return out
}

// JobCreatedResponse is returned when an asynchronous generation starts
type JobCreatedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// ProgressResponse is one progress event of a job
type ProgressResponse struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Batch   int    `json:"batch,omitempty"`
	Batches int    `json:"batches,omitempty"`
}

func newProgressResponse(e domain.ProgressEvent) ProgressResponse {
	return ProgressResponse{
		Stage:   string(e.Stage),
		Message: e.Message,
		Current: e.Current,
		Total:   e.Total,
		Batch:   e.Batch,
		Batches: e.Batches,
	}
}

// JobResponse is the state of an asynchronous generation
type JobResponse struct {
	JobID    string                `json:"job_id"`
	Status   string                `json:"status"`
	Progress *ProgressResponse     `json:"progress,omitempty"`
	Events   []ProgressResponse    `json:"events,omitempty"`
	Result   *GenerateQuizResponse `json:"result,omitempty"`
}

// NewJobResponse maps a job to its API shape.
func NewJobResponse(job *domain.Job) JobResponse {
	resp := JobResponse{JobID: job.ID, Status: string(job.Status)}
	if job.Progress != nil {
		p := newProgressResponse(*job.Progress)
		resp.Progress = &p
	}
	for _, e := range job.Events {
		resp.Events = append(resp.Events, newProgressResponse(e))
	}
	if job.Result != nil {
		r := NewGenerateQuizResponse(*job.Result)
		resp.Result = &r
	}
	return resp
}

// ScoreQuizRequest holds a quiz and the selected option per question
// @Description answers[i] is the chosen option index for questions[i]; -1 means unanswered
type ScoreQuizRequest struct {
	Questions []QuestionResponse `json:"questions"`
	Answers   []int              `json:"answers"`
}

// ToDomain returns the quiz being scored.
func (r ScoreQuizRequest) ToDomain() domain.QuizData {
	quiz := domain.QuizData{Questions: make([]domain.QuizQuestion, 0, len(r.Questions))}
	for _, q := range r.Questions {
		quiz.Questions = append(quiz.Questions, domain.QuizQuestion{
			Question:    q.Question,
			Options:     q.Options,
			Correct:     q.Correct,
			Explanation: q.Explanation,
		})
	}
	return quiz
}

// ScoreQuizResponse is the graded quiz
type ScoreQuizResponse = domain.ScoreReport

// HealthResponse reports the service and its dependencies
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
