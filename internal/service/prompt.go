package service

import (
	"fmt"
	"strings"
)

const truncationMarker = "... [Content truncated for length]"

const quizPromptTemplate = `Generate exactly %d %s %s quiz questions based on this content. %s

IMPORTANT: Return ONLY valid JSON with this exact structure, no additional text:
{
  "questions": [
    {
      "question": "Clear, specific question text",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct": 0,
      "explanation": "Brief but detailed explanation of why this is correct"
    }
  ]
}

Content: %s`

// TruncateContent cuts content to at most maxChars runes, appending a marker
// when anything was dropped.
func TruncateContent(content string, maxChars int) string {
	runes := []rune(content)
	if maxChars <= 0 || len(runes) <= maxChars {
		return content
	}
	return string(runes[:maxChars]) + truncationMarker
}

// BuildQuizPrompt renders the generation prompt for count questions.
func BuildQuizPrompt(content string, count int, difficulty, questionType, focusArea string, maxChars int) string {
	focus := ""
	if f := strings.TrimSpace(focusArea); f != "" {
		focus = "Focus specifically on: " + f
	}
	return fmt.Sprintf(quizPromptTemplate,
		count,
		difficulty,
		questionType,
		focus,
		TruncateContent(content, maxChars),
	)
}
