package conversation

import (
	"context"
	"errors"

	"github.com/Vovarama1992/speak_genie/internal/domain"
)

var (
	ErrTurnInFlight = errors.New("a turn is already in progress")
	ErrEmptyInput   = errors.New("nothing to send")
	ErrNoRecorder   = errors.New("voice capture is not available")
)

// Relay — три эндпоинта релей-сервера.
type Relay interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Complete(ctx context.Context, messages []domain.Message) (string, error)
	Speak(ctx context.Context, text string) ([]byte, error)
}

type Recording struct {
	Data     []byte
	Filename string
}

// Recorder captures audio until ctx is done (or its source runs out) and
// returns what it has. Hitting the ctx deadline is the normal way a capture
// ends, not an error.
type Recorder interface {
	Record(ctx context.Context) (Recording, error)
}

// AudioArtifact — синтезированная речь одного хода, живёт до следующего.
type AudioArtifact struct {
	ID     string
	Text   string
	Data   []byte
	Handle string // от плеера (путь к файлу и т.п.), задаётся до публикации
}

// Player loads an artifact before the session publishes it and plays it
// afterwards. Play must not modify the artifact.
type Player interface {
	Load(a *AudioArtifact) (handle string, err error)
	Play(ctx context.Context, a *AudioArtifact) error
}

// Releaser is implemented by players that hold a resource per artifact.
type Releaser interface {
	Release(a *AudioArtifact)
}
