package service

import (
	"context"
	"errors"
	"time"

	"smartstudy/internal/domain"
	"smartstudy/internal/util"

	"go.uber.org/zap"
)

// QuizInvoker asks one model for a quiz. A false result means the caller
// should move on to the next model.
type QuizInvoker interface {
	Invoke(ctx context.Context, prompt, apiKey string, model domain.ModelDescriptor) (*domain.QuizData, bool)
}

// invokeState is a step of the single-model retry machine:
// Trying(model, attempt) -> Success | Retry | NextModel | Exhausted.
type invokeState int

const (
	stateTrying invokeState = iota
	stateRetry
	stateSuccess
	stateNextModel
	stateExhausted
)

func (s invokeState) String() string {
	switch s {
	case stateTrying:
		return "trying"
	case stateRetry:
		return "retry"
	case stateSuccess:
		return "success"
	case stateNextModel:
		return "next_model"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// nextInvokeState decides what follows an attempt that ended with err.
// Overload (503) and transport failures are retried while attempt < maxRetries;
// any other status or unusable output hands over to the next model.
func nextInvokeState(err error, attempt, maxRetries int) invokeState {
	if err == nil {
		return stateSuccess
	}
	if errors.Is(err, ErrInvalidModelOutput) {
		return stateNextModel
	}
	var statusErr *domain.BackendStatusError
	if errors.As(err, &statusErr) && !statusErr.Overloaded() {
		return stateNextModel
	}
	var transportErr *domain.BackendTransportError
	if statusErr == nil && !errors.As(err, &transportErr) {
		// not a wire failure, e.g. no backend for the model kind
		return stateNextModel
	}
	if attempt < maxRetries {
		return stateRetry
	}
	return stateExhausted
}

// Invoker is the single-call invoker: one model, bounded retries.
type Invoker struct {
	backends    domain.BackendResolver
	maxRetries  int
	backoffBase time.Duration
	sleep       Sleeper
	logger      *zap.Logger
}

// NewInvoker creates an Invoker. A nil sleep uses ContextSleep.
func NewInvoker(backends domain.BackendResolver, maxRetries int, backoffBase time.Duration, sleep Sleeper, logger *zap.Logger) *Invoker {
	if sleep == nil {
		sleep = ContextSleep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{
		backends:    backends,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		sleep:       sleep,
		logger:      logger,
	}
}

// Invoke runs the retry machine for one model and returns the parsed quiz.
func (i *Invoker) Invoke(ctx context.Context, prompt, apiKey string, model domain.ModelDescriptor) (*domain.QuizData, bool) {
	backend, err := i.backends.BackendFor(model)
	if err != nil {
		i.logger.Warn("No backend for model", zap.String("model", model.Name), zap.String("kind", string(model.Kind)), zap.Error(err))
		return nil, false
	}

	call := domain.BackendCall{Prompt: prompt, APIKey: apiKey, Model: model}
	attempt := 0
	state := stateTrying
	for {
		var quiz *domain.QuizData
		text, err := backend.Call(ctx, call)
		if err == nil {
			quiz, err = ParseQuizText(text)
		}

		state = nextInvokeState(err, attempt, i.maxRetries)
		switch state {
		case stateSuccess:
			i.logger.Info("Model call succeeded",
				zap.String("model", model.Name),
				zap.Int("attempt", attempt),
				zap.Int("questions", quiz.Len()),
			)
			return quiz, true

		case stateRetry:
			delay := util.BackoffDelay(i.backoffBase, attempt)
			i.logger.Warn("Model call failed, retrying",
				zap.String("model", model.Name),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", i.maxRetries),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if sleepErr := i.sleep(ctx, delay); sleepErr != nil {
				i.logger.Warn("Retry wait interrupted", zap.String("model", model.Name), zap.Error(sleepErr))
				return nil, false
			}
			attempt++

		case stateNextModel:
			i.logger.Warn("Model cannot serve request", zap.String("model", model.Name), zap.Error(err))
			return nil, false

		default:
			i.logger.Warn("Model retries exhausted",
				zap.String("model", model.Name),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return nil, false
		}
	}
}

var _ QuizInvoker = (*Invoker)(nil)
