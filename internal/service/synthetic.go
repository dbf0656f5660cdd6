package service

import (
	"fmt"

	"smartstudy/internal/domain"
)

// FallbackQuiz is the fixed quiz returned when no model produced anything.
func FallbackQuiz() domain.QuizData {
	return domain.QuizData{Questions: []domain.QuizQuestion{
		{
			Question:    "What is the main concept discussed in the uploaded document?",
			Options:     []string{"Concept A", "Concept B", "Concept C", "Concept D"},
			Correct:     0,
			Explanation: "Based on your document, Concept A is the primary focus as mentioned throughout the text.",
		},
		{
			Question:    "Which key benefit is highlighted in the material?",
			Options:     []string{"Efficiency", "Cost reduction", "User satisfaction", "All of the above"},
			Correct:     3,
			Explanation: "The document emphasizes multiple interconnected benefits for comprehensive understanding.",
		},
		{
			Question:    "According to the material, what approach is recommended?",
			Options:     []string{"Traditional method", "Modern approach", "Hybrid solution", "Case-by-case basis"},
			Correct:     2,
			Explanation: "The document suggests that a hybrid approach combining multiple strategies yields the best results.",
		},
	}}
}

var fillerTemplates = []domain.QuizQuestion{
	{
		Question:    "What is the main topic discussed in the document?",
		Options:     []string{"Topic A", "Topic B", "Topic C", "Topic D"},
		Correct:     0,
		Explanation: "Based on the document content, Topic A is the primary focus.",
	},
	{
		Question:    "Which concept is most important according to the material?",
		Options:     []string{"Concept A", "Concept B", "Concept C", "Concept D"},
		Correct:     1,
		Explanation: "The document emphasizes Concept B as the most critical element.",
	},
	{
		Question:    "What approach is recommended in the text?",
		Options:     []string{"Traditional", "Modern", "Hybrid", "Experimental"},
		Correct:     2,
		Explanation: "The document suggests a hybrid approach for optimal results.",
	},
	{
		Question:    "Which benefit is highlighted most prominently?",
		Options:     []string{"Efficiency", "Cost savings", "User experience", "All of the above"},
		Correct:     3,
		Explanation: "The document mentions multiple interconnected benefits.",
	},
	{
		Question:    "What is the key takeaway from this material?",
		Options:     []string{"Process improvement", "Technology adoption", "Strategic planning", "All of the above"},
		Correct:     3,
		Explanation: "The document covers multiple aspects that work together.",
	},
	{
		Question:    "Which statement best summarizes the author's position?",
		Options:     []string{"Strongly in favor", "Cautiously supportive", "Neutral", "Opposed"},
		Correct:     1,
		Explanation: "The material presents its recommendations with measured support and caveats.",
	},
	{
		Question:    "What kind of evidence does the material rely on most?",
		Options:     []string{"Examples and case studies", "Statistics", "Expert opinion", "Personal anecdotes"},
		Correct:     0,
		Explanation: "The document illustrates its points mainly through concrete examples.",
	},
	{
		Question:    "Which challenge is identified in the document?",
		Options:     []string{"Limited resources", "Lack of awareness", "Technical complexity", "All of the above"},
		Correct:     3,
		Explanation: "Several related challenges are discussed together in the material.",
	},
	{
		Question:    "Who is the intended audience of the material?",
		Options:     []string{"Beginners", "Practitioners", "Researchers", "General readers"},
		Correct:     1,
		Explanation: "The document assumes working familiarity with the subject.",
	},
	{
		Question:    "What is suggested as the next step after studying this material?",
		Options:     []string{"Apply the concepts", "Review the basics", "Consult further sources", "Discuss with peers"},
		Correct:     0,
		Explanation: "The document encourages putting the described ideas into practice.",
	},
}

// FillerTemplateCount is the size of the filler template pool.
var FillerTemplateCount = len(fillerTemplates)

// FillerQuestions builds count placeholder questions for a failed batch.
// Templates are taken cyclically starting at offset and every question is
// tagged with the batch number; a second pass within one call gets a pass tag
// so texts stay distinct.
func FillerQuestions(count, batchNumber, offset int) []domain.QuizQuestion {
	if count <= 0 {
		return nil
	}
	n := len(fillerTemplates)
	out := make([]domain.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		tpl := fillerTemplates[((offset+i)%n+n)%n]
		tag := fmt.Sprintf("(Batch %d)", batchNumber)
		if pass := i / n; pass > 0 {
			tag = fmt.Sprintf("(Batch %d, set %d)", batchNumber, pass+1)
		}
		options := make([]string, len(tpl.Options))
		copy(options, tpl.Options)
		out = append(out, domain.QuizQuestion{
			Question:    tpl.Question + " " + tag,
			Options:     options,
			Correct:     tpl.Correct,
			Explanation: tpl.Explanation,
		})
	}
	return out
}

// IsFillerQuestion reports whether q was produced from the filler pool.
func IsFillerQuestion(q domain.QuizQuestion) bool {
	for _, tpl := range fillerTemplates {
		if len(q.Question) > len(tpl.Question) && q.Question[:len(tpl.Question)] == tpl.Question {
			return true
		}
	}
	return false
}
