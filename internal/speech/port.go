package speech

import "context"

type STTClient interface {
	Transcribe(ctx context.Context, filePath string) (string, error) // голос → текст
}

type TTSClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error) // текст → mp3
}
