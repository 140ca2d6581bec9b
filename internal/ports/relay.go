package ports

import (
	"context"
	"io"

	"github.com/Vovarama1992/speak_genie/internal/domain"
)

type TranscriptionService interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

type CompletionService interface {
	// Reply не должен менять переданный слайс
	Reply(ctx context.Context, messages []domain.Message) (string, error)
}

type SynthesisService interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// UploadStore — временное хранилище загруженного аудио.
type UploadStore interface {
	Save(r io.Reader, filename string) (path string, cleanup func(), err error)
}
