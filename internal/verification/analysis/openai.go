package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"rentwise/internal/verification/models"
)

const openAIProvider = "openai"

const documentPrompt = `You check identity documents for a rental platform.
The image should be a %s. Answer with a single JSON object and nothing else:
{"is_valid": bool, "quality": "good"|"fair"|"poor", "confidence": number between 0 and 1, "notes": string}
is_valid is true only when the image shows a genuine, unexpired document of the expected type with legible details.`

const selfiePrompt = `You check selfies submitted for identity verification on a rental platform.
Answer with a single JSON object and nothing else:
{"face_detected": bool, "quality": "good"|"fair"|"poor", "confidence": number between 0 and 1, "notes": string}
face_detected is true only when exactly one live human face is clearly visible.`

// OpenAIConfig configures the OpenAI vision adapter.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAIAnalyzer asks a vision-capable chat model to grade the images and
// parses its JSON answer strictly. The SDK's own retries are disabled.
type OpenAIAnalyzer struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIAnalyzer(cfg OpenAIConfig) *OpenAIAnalyzer {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &OpenAIAnalyzer{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: cfg.Timeout,
	}
}

func (a *OpenAIAnalyzer) AnalyzeDocument(ctx context.Context, imageRef string, docType models.DocumentType) (models.DocumentAnalysis, error) {
	raw, err := a.complete(ctx, fmt.Sprintf(documentPrompt, documentLabel(docType)), imageRef)
	if err != nil {
		return models.DocumentAnalysis{}, err
	}
	return ParseDocumentAnalysis(openAIProvider, raw)
}

func (a *OpenAIAnalyzer) AnalyzeSelfie(ctx context.Context, imageRef string) (models.SelfieAnalysis, error) {
	raw, err := a.complete(ctx, selfiePrompt, imageRef)
	if err != nil {
		return models.SelfieAnalysis{}, err
	}
	return ParseSelfieAnalysis(openAIProvider, raw)
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, prompt, imageRef string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: imageRef}),
			}),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", classifyOpenAIError(ctx, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", NewProviderError(ErrorBadData, openAIProvider, "empty completion", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps SDK and transport errors onto the category taxonomy.
// A cancelled caller context is returned unwrapped.
func classifyOpenAIError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(ErrorTimeout, openAIProvider, "request timed out", err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return NewProviderError(categoryForStatus(apiErr.StatusCode), openAIProvider,
			fmt.Sprintf("api returned status %d", apiErr.StatusCode), err)
	}
	return NewProviderError(ErrorProviderOutage, openAIProvider, "request failed", err)
}

func categoryForStatus(status int) ErrorCategory {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrorAuthentication
	case status == http.StatusTooManyRequests:
		return ErrorRateLimited
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return ErrorTimeout
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrorBadData
	case status >= 500:
		return ErrorProviderOutage
	}
	return ErrorInternal
}

func documentLabel(t models.DocumentType) string {
	switch t {
	case models.DocumentPassport:
		return "passport"
	case models.DocumentDriversLicense:
		return "driver's license"
	case models.DocumentNationalID:
		return "national identity card"
	}
	return "government-issued identity document"
}
