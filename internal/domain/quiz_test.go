package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(correct int) QuizQuestion {
	return QuizQuestion{Question: "Q?", Options: []string{"A", "B", "C", "D"}, Correct: correct, Explanation: "E"}
}

func TestQuizQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       QuizQuestion
		wantErr bool
	}{
		{"valid", question(3), false},
		{"blank text", QuizQuestion{Question: "  ", Options: []string{"A", "B", "C", "D"}}, true},
		{"three options", QuizQuestion{Question: "Q?", Options: []string{"A", "B", "C"}}, true},
		{"negative correct", question(-1), true},
		{"correct past options", question(4), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				var verr ValidationError
				assert.ErrorAs(t, err, &verr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuizData_LenOnNil(t *testing.T) {
	var q *QuizData
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 2, (&QuizData{Questions: []QuizQuestion{question(0), question(1)}}).Len())
}

func TestScoreQuiz(t *testing.T) {
	quiz := QuizData{Questions: []QuizQuestion{question(0), question(1), question(2)}}

	report := ScoreQuiz(quiz, []int{0, 3})

	assert.Equal(t, 1, report.Score)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 33, report.Percentage)
	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[0].IsCorrect)
	assert.False(t, report.Results[1].IsCorrect)
	assert.Equal(t, -1, report.Results[2].Selected, "missing answers count as unanswered")
	assert.False(t, report.Results[2].IsCorrect)

	assert.Equal(t, 67, ScoreQuiz(quiz, []int{0, 1, -1}).Percentage)
	assert.Equal(t, 0, ScoreQuiz(QuizData{}, nil).Percentage)
}

func TestGenerationResult_Shortfall(t *testing.T) {
	r := GenerationResult{Quiz: QuizData{Questions: []QuizQuestion{question(0)}}, Requested: 3}
	assert.Equal(t, 2, r.Shortfall())
	r.Requested = 1
	assert.Equal(t, 0, r.Shortfall())
}

func TestModelRegistry(t *testing.T) {
	registry, err := NewModelRegistry([]ModelDescriptor{
		{Name: "slow", MaxOutputTokens: 8192, Priority: 3},
		{Name: "fast", MaxOutputTokens: 4096, Priority: 1},
		{Name: "mid", Kind: ModelKindOpenAI, MaxOutputTokens: 2048, Priority: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fast", "mid", "slow"}, registry.Names())
	assert.Equal(t, ModelKindGemini, registry.Models()[0].Kind)

	m, ok := registry.Lookup("mid")
	require.True(t, ok)
	assert.Equal(t, ModelKindOpenAI, m.Kind)

	assert.Equal(t, []string{"mid"}, names(registry.Candidates("mid")))
	assert.Equal(t, []string{"fast", "mid", "slow"}, names(registry.Candidates(AutoModel)))
	assert.Equal(t, []string{"fast", "mid", "slow"}, names(registry.Candidates("")))
	assert.Equal(t, []string{"fast", "mid", "slow"}, names(registry.Candidates("unknown")))

	models := registry.Models()
	models[0].Name = "mutated"
	assert.Equal(t, "fast", registry.Names()[0], "Models returns a copy")
}

func TestModelRegistry_Rejects(t *testing.T) {
	cases := map[string][]ModelDescriptor{
		"empty":      nil,
		"blank name": {{Name: " ", MaxOutputTokens: 1}},
		"auto":       {{Name: AutoModel, MaxOutputTokens: 1}},
		"duplicate":  {{Name: "a", MaxOutputTokens: 1}, {Name: "a", MaxOutputTokens: 1}},
		"no tokens":  {{Name: "a"}},
	}
	for name, models := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewModelRegistry(models)
			assert.Error(t, err)
		})
	}
}

func names(models []ModelDescriptor) []string {
	out := make([]string, len(models))
	for i, m := range models {
		out[i] = m.Name
	}
	return out
}

func TestDomainError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExtractionError("extractor unreachable", cause).WithContext("status", 502)

	assert.Equal(t, "extractor unreachable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 502, err.Context["status"])

	raw, jsonErr := err.MarshalJSON()
	require.NoError(t, jsonErr)
	assert.JSONEq(t, `{"code":"EXTRACTION_FAILED","message":"extractor unreachable","context":{"status":502}}`, string(raw))

	unsupported := NewUnsupportedFileError("virus.exe", ".exe")
	assert.Equal(t, CodeUnsupportedFile, unsupported.Code)
	assert.Equal(t, "virus.exe", unsupported.Context["filename"])
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{NewMissingFieldError("content"), NewOutOfRangeError("question_count", 0, 1, 50)}
	assert.Equal(t, "content: field is required; question_count: must be between 1 and 50", errs.Error())
	assert.Equal(t, "boom", NewValidationError("boom").Error())
}

func TestBackendErrors(t *testing.T) {
	status := &BackendStatusError{Model: "m", StatusCode: 503, Body: "overloaded"}
	assert.True(t, status.Overloaded())
	assert.False(t, (&BackendStatusError{StatusCode: 500}).Overloaded())

	wrapped := fmt.Errorf("call failed: %w", &BackendTransportError{Model: "m", Err: errors.New("timeout")})
	var transport *BackendTransportError
	require.ErrorAs(t, wrapped, &transport)
	assert.Equal(t, "m", transport.Model)
}

func TestProgressFunc(t *testing.T) {
	var got string
	ProgressFunc(func(message string, current, total int) {
		got = fmt.Sprintf("%s %d/%d", message, current, total)
	}).Report(ProgressEvent{Message: "Batch 1 completed!", Current: 5, Total: 12})
	assert.Equal(t, "Batch 1 completed! 5/12", got)

	assert.NotPanics(t, func() { ProgressFunc(nil).Report(ProgressEvent{}) })
}
