package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"smartstudy/internal/domain"
	"smartstudy/internal/service"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	file         string
	count        int
	difficulty   string
	questionType string
	focus        string
	model        string
	apiKey       string
	report       bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz from a document",
	Example: `  quizctl generate --file notes.txt --count 12
  quizctl generate --file lecture.pdf --difficulty hard --focus "cell division"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, _, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runGenerate(ctx, services.Quizzes, genOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.file, "file", "f", "", "Document to generate from (.txt is read directly, other types go through the extractor)")
	f.IntVarP(&genOpts.count, "count", "n", 10, "Number of questions")
	f.StringVar(&genOpts.difficulty, "difficulty", domain.DifficultyMedium, "easy, medium, hard or mixed")
	f.StringVar(&genOpts.questionType, "type", domain.QuestionTypeMultipleChoice, "multiple_choice, true_false or mixed")
	f.StringVar(&genOpts.focus, "focus", "", "Topic to emphasise")
	f.StringVar(&genOpts.model, "model", domain.AutoModel, "Model name or auto")
	f.StringVar(&genOpts.apiKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	f.BoolVar(&genOpts.report, "report", false, "Print the full result with outcome and warnings instead of the bare quiz")
	_ = generateCmd.MarkFlagRequired("file")
}

func runGenerate(ctx context.Context, quizzes service.QuizService, opts generateOptions, stdout, stderr io.Writer) error {
	req := domain.GenerationRequest{
		QuestionCount: opts.count,
		Difficulty:    opts.difficulty,
		QuestionType:  opts.questionType,
		FocusArea:     opts.focus,
		Model:         opts.model,
		APIKey:        opts.apiKey,
	}
	reporter := newProgressPrinter(stderr)

	var (
		result domain.GenerationResult
		err    error
	)
	if strings.EqualFold(filepath.Ext(opts.file), ".txt") {
		data, readErr := os.ReadFile(opts.file)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", opts.file, readErr)
		}
		req.Content = string(data)
		result, err = quizzes.GenerateQuiz(ctx, req, reporter)
	} else {
		f, openErr := os.Open(opts.file)
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", opts.file, openErr)
		}
		defer f.Close()
		files := []domain.UploadedFile{{Name: filepath.Base(opts.file), Content: f}}
		result, err = quizzes.GenerateFromFiles(ctx, files, req, reporter)
	}
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if opts.report {
		return enc.Encode(result)
	}
	return enc.Encode(result.Quiz)
}

// newProgressPrinter writes one line per progress event.
func newProgressPrinter(w io.Writer) domain.ProgressReporter {
	return domain.ProgressFunc(func(message string, current, total int) {
		fmt.Fprintf(w, "[%d/%d] %s\n", current, total, message)
	})
}
