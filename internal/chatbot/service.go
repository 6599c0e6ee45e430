package chatbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"

	"github.com/redmonkez12/healthmate-api/internal/logging"
)

// fallbackModels are tried, in order, after the configured model.
var fallbackModels = []string{
	"gemini-1.5-flash-latest",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.5-pro-latest",
	"gemini-1.5-pro",
	"gemini-1.0-pro",
	"gemini-pro",
}

var ErrNotConfigured = errors.New("gemini API key is not set")

// Generator is the subset of the Gemini API the assistant needs.
type Generator interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
	ListModels(ctx context.Context) ([]Model, error)
}

// Answer is a generated reply.
type Answer struct {
	Text     string
	Model    string
	Language string
}

type attempt struct {
	model string
	err   error
}

// GenerationError lists every failed model attempt.
type GenerationError struct {
	Attempts []attempt
}

func (e *GenerationError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("model=%s err=%v", a.model, a.err)
	}
	return "all model attempts failed: " + strings.Join(parts, " | ")
}

// UpstreamNotFound reports whether every attempt that reached the API was
// answered with 404.
func (e *GenerationError) UpstreamNotFound() bool {
	seen := false
	for _, a := range e.Attempts {
		var apiErr *APIError
		if !errors.As(a.err, &apiErr) {
			continue
		}
		if apiErr.StatusCode != http.StatusNotFound {
			return false
		}
		seen = true
	}
	return seen
}

// Config tunes the assistant.
type Config struct {
	// Model is tried before the built-in candidates when set
	Model         string
	MaxConcurrent int
}

// Service answers health questions through Gemini. Calls pass through a
// bulkhead and a circuit breaker; failed calls are not retried.
type Service struct {
	client         Generator
	configured     bool
	candidates     []string
	circuitBreaker circuitbreaker.CircuitBreaker[*Answer]
	bulkhead       bulkhead.Bulkhead[*Answer]
	logger         *logging.Logger
}

// NewService builds the assistant. A nil client marks it unconfigured and
// Ask returns ErrNotConfigured.
func NewService(client Generator, cfg Config, logger *logging.Logger) *Service {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Service{
		client:     client,
		configured: client != nil,
		candidates: modelCandidates(cfg.Model),
		logger:     logger,
	}

	s.circuitBreaker = circuitbreaker.New[*Answer](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("gemini circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	s.bulkhead = bulkhead.New[*Answer](bulkhead.Config{
		MaxConcurrent: maxConcurrent,
		MaxQueue:      maxConcurrent * 2,
		QueueTimeout:  30 * time.Second,
	})

	return s
}

func modelCandidates(preferred string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range append([]string{strings.TrimSpace(preferred)}, fallbackModels...) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func (s *Service) Configured() bool {
	return s != nil && s.configured
}

// Ask answers question in language, detecting the language when it is empty.
func (s *Service) Ask(ctx context.Context, question, language string) (*Answer, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if language == "" {
		language = DetectLanguage(question)
	}
	prompt := buildPrompt(question, language)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A caller that goes away is not an upstream failure, so the breaker
	// sees those calls as successful and the error is returned from here.
	var abandoned error
	answer, err := s.circuitBreaker.Execute(ctx, func(cbCtx context.Context) (*Answer, error) {
		answer, err := s.bulkhead.Execute(cbCtx, func(bhCtx context.Context) (*Answer, error) {
			return s.generate(bhCtx, prompt, language)
		})
		if err != nil && ctx.Err() != nil {
			abandoned = err
			return nil, nil
		}
		return answer, err
	})
	if abandoned != nil {
		return nil, abandoned
	}
	return answer, err
}

// generate tries the candidate models in order, then any listed model that
// supports generateContent. The first non-empty reply wins.
func (s *Service) generate(ctx context.Context, prompt, language string) (*Answer, error) {
	logger := logging.FromContext(ctx)
	var attempts []attempt

	try := func(model string) *Answer {
		text, err := s.client.GenerateContent(ctx, model, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty response text")
		}
		if err != nil {
			logger.Debug("gemini model attempt failed", "model", model, "error", err)
			attempts = append(attempts, attempt{model: model, err: err})
			return nil
		}
		return &Answer{Text: text, Model: model, Language: language}
	}

	tried := map[string]bool{}
	for _, model := range s.candidates {
		tried[model] = true
		if answer := try(model); answer != nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	models, err := s.client.ListModels(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		attempts = append(attempts, attempt{model: "listModels", err: err})
		return nil, &GenerationError{Attempts: attempts}
	}

	for _, m := range models {
		id := m.ID()
		if id == "" || tried[id] || !m.SupportsGenerateContent() {
			continue
		}
		tried[id] = true
		if answer := try(id); answer != nil {
			return answer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, &GenerationError{Attempts: attempts}
}
