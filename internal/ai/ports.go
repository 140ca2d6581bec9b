package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Completer — провайдер чат-комплишена (OpenRouter).
type Completer interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Transcriber — голос → текст (Whisper / Deepgram).
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}
