package service

import (
	"strings"
	"unicode"

	"smartstudy/internal/domain"
)

// NormalizeQuestionText lowercases, drops punctuation and collapses whitespace.
func NormalizeQuestionText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Dedupe keeps the first question of each normalized text, preserving order.
func Dedupe(questions []domain.QuizQuestion) []domain.QuizQuestion {
	seen := make(map[string]struct{}, len(questions))
	out := make([]domain.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		key := NormalizeQuestionText(q.Question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}
