package handler

import (
	"smartstudy/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the public and /api routes on app.
func RegisterRoutes(app *fiber.App, quiz *QuizHandler, health *HealthHandler, vm *middleware.ValidationMiddleware) {
	app.Get("/", health.Root)
	app.Get("/health", health.Health)

	api := app.Group("/api")
	api.Get("/models", quiz.ListModels)
	api.Post("/extract-text", vm.ValidateUploadForm(false), quiz.ExtractText)

	quizzes := api.Group("/quizzes")
	quizzes.Post("/", vm.ValidateGenerateQuiz(), quiz.GenerateQuiz)
	quizzes.Post("/from-files", vm.ValidateUploadForm(true), quiz.GenerateFromFiles)
	quizzes.Post("/score", vm.ValidateScore(), quiz.ScoreQuiz)

	jobs := api.Group("/quiz-jobs")
	jobs.Post("/", vm.ValidateGenerateQuiz(), quiz.StartJob)
	jobs.Get("/:id", vm.ValidateJobID(), quiz.GetJob)
}
