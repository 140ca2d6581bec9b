package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/speak_genie/internal/domain"
	notificator "github.com/Vovarama1992/speak_genie/internal/error_notificator"
	openai "github.com/sashabaranov/go-openai"
)

type AiService struct {
	completer Completer
	model     string
	timeout   time.Duration
	Notifier  notificator.Notificator
}

func NewAiService(
	completer Completer,
	model string,
	timeout time.Duration,
	notifier notificator.Notificator,
) *AiService {
	return &AiService{
		completer: completer,
		model:     model,
		timeout:   timeout,
		Notifier:  notifier,
	}
}

// диагностика ошибок апстрима для алерта
func analyzeOpenAIError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return "Invalid OpenRouter API key."
		case 402, 429:
			return "OpenRouter quota or rate limit exceeded."
		case 404:
			return "Model not found."
		case 400:
			return "Malformed completion request."
		}
		if apiErr.HTTPStatusCode >= 500 {
			return "OpenRouter internal error."
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("OpenRouter responded with HTTP %d.", reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "OpenRouter call timed out."
	}
	return "Unknown OpenRouter error: " + err.Error()
}

// Reply отдаёт следующий ответ ассистента на полную историю диалога.
// Входной слайс не меняется.
func (s *AiService) Reply(ctx context.Context, messages []domain.Message) (string, error) {
	if err := domain.ValidateMessages(messages); err != nil {
		return "", err
	}

	start := time.Now()
	log.Printf("[ai] >>> START model=%s messages=%d", s.model, len(messages))

	req := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		req = append(req, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	ctxGPT, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.completer.GetCompletion(ctxGPT, req)
	log.Printf("[ai][%.1fs] GPT done err=%v", time.Since(start).Seconds(), err)

	if err != nil {
		notificator.Dispatch(ctx, s.Notifier, "gpt", err,
			fmt.Sprintf("model=%s messages=%d\n%s", s.model, len(messages), analyzeOpenAIError(err)))
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionFailed, err)
	}

	return reply, nil
}
