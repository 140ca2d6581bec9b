package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/speak_genie/internal/domain"
	"github.com/Vovarama1992/speak_genie/internal/scenario"
	"github.com/google/uuid"
)

// DefaultCaptureWindow — запись голоса обрывается по таймеру, без VAD.
const DefaultCaptureWindow = 4 * time.Second

// Snapshot is a consistent copy of the session for rendering.
type Snapshot struct {
	TurnID     string
	State      State
	Status     string
	Scenario   scenario.Scenario
	Persona    string
	Transcript []domain.Message
	Audio      *AudioArtifact
}

type Option func(*Session)

func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }

func WithPlayer(p Player) Option { return func(s *Session) { s.player = p } }

func WithCaptureWindow(d time.Duration) Option {
	return func(s *Session) { s.captureWindow = d }
}

func WithHistoryFitter(f *HistoryFitter) Option { return func(s *Session) { s.fitter = f } }

// WithObserver registers a callback run after every state or status change.
func WithObserver(fn func(Snapshot)) Option { return func(s *Session) { s.observer = fn } }

// Session — один диалог одного пользователя. Одновременно идёт не больше одного хода.
type Session struct {
	relay     Relay
	scenarios scenario.Service
	recorder  Recorder
	player    Player
	fitter    *HistoryFitter
	observer  func(Snapshot)

	captureWindow time.Duration

	mu       sync.Mutex
	history  []domain.Message
	scenario scenario.Scenario
	persona  string
	state    State
	status   string
	audio    *AudioArtifact
	turnID   string
	inFlight bool
	cancel   context.CancelFunc
}

func NewSession(relay Relay, scenarios scenario.Service, opts ...Option) *Session {
	s := &Session{
		relay:         relay,
		scenarios:     scenarios,
		captureWindow: DefaultCaptureWindow,
		state:         Idle,
	}
	if free, err := scenarios.Get(scenario.FreeKey); err == nil {
		s.scenario = free
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		TurnID:     s.turnID,
		State:      s.state,
		Status:     s.status,
		Scenario:   s.scenario,
		Persona:    s.persona,
		Transcript: domain.CloneMessages(s.history),
		Audio:      s.audio,
	}
}

func (s *Session) Transcript() []domain.Message { return s.Snapshot().Transcript }

func (s *Session) State() State { return s.Snapshot().State }

func (s *Session) Status() string { return s.Snapshot().Status }

// SelectPersona sets the assistant role used when the scenario has no prompt.
func (s *Session) SelectPersona(persona string) {
	s.mu.Lock()
	s.persona = strings.TrimSpace(persona)
	s.mu.Unlock()
	s.notify()
}

// SelectScenario resets the conversation. A scenario with a greeting opens
// with it and sends it straight to synthesis, skipping the completion relay.
func (s *Session) SelectScenario(ctx context.Context, key string) error {
	sc, err := s.scenarios.Get(key)
	if err != nil {
		return err
	}

	turnCtx, end, err := s.beginTurn(ctx, Idle, "")
	if err != nil {
		return err
	}
	defer end()

	s.mu.Lock()
	s.scenario = sc
	s.history = nil
	s.releaseAudioLocked()
	s.mu.Unlock()
	s.notify()

	if !sc.HasGreeting() {
		return nil
	}

	s.appendMessage(domain.Message{Role: domain.RoleAssistant, Content: sc.Greeting})
	return s.speak(turnCtx, sc.Greeting)
}

// SubmitText runs a typed turn. Blank input is ignored with ErrEmptyInput.
func (s *Session) SubmitText(ctx context.Context, text string) error {
	if domain.IsBlank(text) {
		return ErrEmptyInput
	}

	turnCtx, end, err := s.beginTurn(ctx, Composing, "")
	if err != nil {
		return err
	}
	defer end()

	return s.converse(turnCtx, text)
}

// SubmitVoice records for the capture window, transcribes and runs the turn.
func (s *Session) SubmitVoice(ctx context.Context) error {
	if s.recorder == nil {
		return ErrNoRecorder
	}

	turnCtx, end, err := s.beginTurn(ctx, Capturing, StatusListening)
	if err != nil {
		return err
	}
	defer end()

	captureCtx, stop := context.WithTimeout(turnCtx, s.captureWindow)
	rec, err := s.recorder.Record(captureCtx)
	stop()
	if err != nil {
		return s.fail(turnCtx, StatusMicFailed, fmt.Errorf("record: %w", err))
	}
	if err := turnCtx.Err(); err != nil {
		return s.fail(turnCtx, StatusCancelled, err)
	}

	s.transition(AwaitingTranscription, StatusTranscribing)
	text, err := s.relay.Transcribe(turnCtx, rec.Data, rec.Filename)
	if err != nil {
		return s.fail(turnCtx, StatusVoiceFailed, fmt.Errorf("transcribe: %w", err))
	}
	if domain.IsBlank(text) {
		s.setStatus(StatusNoSpeech)
		return ErrEmptyInput
	}

	return s.converse(turnCtx, text)
}

// Cancel aborts the turn in flight, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) converse(ctx context.Context, text string) error {
	s.appendMessage(domain.Message{Role: domain.RoleUser, Content: text})

	s.transition(AwaitingCompletion, StatusThinking)
	reply, err := s.relay.Complete(ctx, s.completionRequest())
	if err != nil {
		return s.fail(ctx, StatusGPTFailed, fmt.Errorf("complete: %w", err))
	}

	s.appendMessage(domain.Message{Role: domain.RoleAssistant, Content: reply})
	return s.speak(ctx, reply)
}

func (s *Session) speak(ctx context.Context, text string) error {
	s.transition(AwaitingSynthesis, StatusSpeaking)

	data, err := s.relay.Speak(ctx, text)
	if err != nil {
		return s.fail(ctx, StatusSpeechFailed, fmt.Errorf("speak: %w", err))
	}

	artifact := &AudioArtifact{ID: uuid.NewString(), Text: text, Data: data}
	if s.player != nil {
		handle, err := s.player.Load(artifact)
		if err != nil {
			return s.fail(ctx, StatusPlayFailed, fmt.Errorf("load audio: %w", err))
		}
		artifact.Handle = handle
	}

	// после публикации артефакт только читается
	s.mu.Lock()
	s.releaseAudioLocked()
	s.audio = artifact
	s.mu.Unlock()
	s.notify()

	if s.player != nil {
		if err := s.player.Play(ctx, artifact); err != nil {
			return s.fail(ctx, StatusPlayFailed, fmt.Errorf("play: %w", err))
		}
	}

	s.setStatus("")
	return nil
}

// completionRequest: системный промпт (сценарий или персона) + история.
func (s *Session) completionRequest() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var system *domain.Message
	switch {
	case s.scenario.Prompt != "":
		system = &domain.Message{Role: domain.RoleSystem, Content: s.scenario.Prompt}
	case s.persona != "":
		system = &domain.Message{Role: domain.RoleSystem, Content: "You are " + s.persona + "."}
	}
	return s.fitter.Fit(system, s.history)
}

func (s *Session) beginTurn(ctx context.Context, st State, status string) (context.Context, func(), error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, nil, ErrTurnInFlight
	}
	turnCtx, cancel := context.WithCancel(ctx)
	s.inFlight = true
	s.cancel = cancel
	s.turnID = uuid.NewString()
	s.state = st
	s.status = status
	s.mu.Unlock()
	s.notify()

	end := func() {
		cancel()
		s.mu.Lock()
		s.inFlight = false
		s.cancel = nil
		s.state = Idle
		s.mu.Unlock()
		s.notify()
	}
	return turnCtx, end, nil
}

func (s *Session) fail(ctx context.Context, status string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		status = StatusCancelled
	}
	s.mu.Lock()
	turnID := s.turnID
	s.status = status
	s.mu.Unlock()

	log.Printf("[session] turn=%s %s: %v", turnID, status, err)
	s.notify()
	return err
}

func (s *Session) transition(st State, status string) {
	s.mu.Lock()
	s.state = st
	s.status = status
	s.mu.Unlock()
	s.notify()
}

func (s *Session) setStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	s.notify()
}

func (s *Session) appendMessage(m domain.Message) {
	s.mu.Lock()
	s.history = append(s.history, m)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) releaseAudioLocked() {
	if s.audio == nil {
		return
	}
	if r, ok := s.player.(Releaser); ok {
		r.Release(s.audio)
	}
	s.audio = nil
}

func (s *Session) notify() {
	if s.observer == nil {
		return
	}
	s.observer(s.Snapshot())
}
