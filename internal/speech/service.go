package speech

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Vovarama1992/speak_genie/internal/domain"
	notificator "github.com/Vovarama1992/speak_genie/internal/error_notificator"
	"github.com/dustin/go-humanize"
)

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	stt      STTClient
	tts      TTSClient
	timeout  time.Duration
	notifier notificator.Notificator
}

func NewService(stt STTClient, tts TTSClient, timeout time.Duration, notifier notificator.Notificator) *Service {
	return &Service{
		stt:      stt,
		tts:      tts,
		timeout:  timeout,
		notifier: notifier,
	}
}

func (s *Service) Transcribe(ctx context.Context, filePath string) (string, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.stt.Transcribe(callCtx, filePath)
	if err != nil {
		notificator.Dispatch(ctx, s.notifier, "transcribe", err, "file="+filePath)
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptionFailed, err)
	}

	log.Printf("[speech][%.1fs] transcribed: %q", time.Since(start).Seconds(), text)
	return text, nil
}

func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if domain.IsBlank(text) {
		return nil, domain.InvalidRequestf("text is required")
	}

	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	audio, err := s.tts.Synthesize(callCtx, text)
	if err != nil {
		notificator.Dispatch(ctx, s.notifier, "speak", err, fmt.Sprintf("text_len=%d", len(text)))
		return nil, fmt.Errorf("%w: %v", domain.ErrSynthesisFailed, err)
	}

	log.Printf("[speech][%.1fs] synthesized %s", time.Since(start).Seconds(), humanize.Bytes(uint64(len(audio))))
	return audio, nil
}
