package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest = errors.New("invalid request")

	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrCompletionFailed    = errors.New("completion failed")
	ErrSynthesisFailed     = errors.New("synthesis failed")
)

func InvalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// IsUpstream — ошибка провайдера, наружу отдаём только общий текст.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrTranscriptionFailed) ||
		errors.Is(err, ErrCompletionFailed) ||
		errors.Is(err, ErrSynthesisFailed)
}
