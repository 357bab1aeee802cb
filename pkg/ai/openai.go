package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	draftDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "classroom",
		Subsystem: "ai",
		Name:      "draft_duration_seconds",
		Help:      "Duration of AI question drafting requests",
	}, []string{"model"})

	draftFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classroom",
		Subsystem: "ai",
		Name:      "draft_failures_total",
		Help:      "Number of AI question drafting failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/noah-isme/classroom-go-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// GenerateQuestions asks the model for draft questions and parses the reply.
func (g *OpenAIGenerator) GenerateQuestions(parent context.Context, topic string, count int) ([]QuestionDraft, error) {
	ctx, span := g.tracer.Start(parent, "openai.draft_questions", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("count", count),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: generatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildDraftPrompt(topic, count),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	draftDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		draftFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("openai draft questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		draftFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	drafts, err := parseDraftResponse(content)
	if err != nil {
		draftFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return drafts, nil
}

func generatorSystemPrompt() string {
	return "You are a teaching assistant that writes multiple-choice quiz questions. Respond with a JSON object containing a " +
		"questions array; each entry has text, choices (array of strings), correct_index (zero-based) and points (integer >= 1)."
}

func buildDraftPrompt(topic string, count int) string {
	builder := strings.Builder{}
	builder.WriteString("Write ")
	fmt.Fprintf(&builder, "%d", count)
	builder.WriteString(" multiple-choice questions about the following topic. Each question needs between 2 and 6 choices ")
	builder.WriteString("with exactly one correct answer.\n\n## Topic\n")
	builder.WriteString(topic)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseDraftResponse(content string) ([]QuestionDraft, error) {
	type payload struct {
		Questions []QuestionDraft `json:"questions"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, fmt.Errorf("parse draft json: %w", err)
	}

	return data.Questions, nil
}
