package advisor

import (
	"context"
	"fmt"

	"crypto-swing-advisor/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// CommentaryService turns a finished analysis report into a prose
// synthesis for the trader. It is stateless: each report gets a single
// one-shot completion, no conversation history.
type CommentaryService struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewCommentaryService(tracer trace.Tracer, llm LLMClient, model string) *CommentaryService {
	return &CommentaryService{
		tracer: tracer,
		llm:    llm,
		model:  model,
	}
}

// Comment generates the written synthesis for one report.
func (s *CommentaryService) Comment(ctx context.Context, report domain.AnalysisReport) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.comment")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", report.Symbol),
		attribute.String("interval", string(report.Interval)),
	)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(analystCharter),
		openai.UserMessage(BuildReportPrompt(report)),
	}

	reply, err := s.callLLM(ctx, messages)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("commentary unavailable: %w", err)
	}
	return reply, nil
}

func (s *CommentaryService) callLLM(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.llm-call")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", s.model),
		attribute.Int("llm.message_count", len(messages)),
	)

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
