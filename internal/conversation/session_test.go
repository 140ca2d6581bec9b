package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/speak_genie/internal/domain"
	"github.com/Vovarama1992/speak_genie/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	mu sync.Mutex

	transcript    string
	transcribeErr error
	gotAudio      []byte

	reply       string
	completeErr error
	requests    [][]domain.Message
	started     chan struct{}
	gate        chan struct{}

	audio    []byte
	speakErr error
	spoken   []string
}

func (f *fakeRelay) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotAudio = audio
	return f.transcript, f.transcribeErr
}

func (f *fakeRelay) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, domain.CloneMessages(messages))
	started, gate := f.started, f.gate
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.completeErr
}

func (f *fakeRelay) Speak(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return f.audio, f.speakErr
}

type fakeRecorder struct {
	data     []byte
	err      error
	deadline time.Duration
}

func (r *fakeRecorder) Record(ctx context.Context) (Recording, error) {
	if r.err != nil {
		return Recording{}, r.err
	}
	if dl, ok := ctx.Deadline(); ok {
		r.deadline = time.Until(dl)
	}
	<-ctx.Done()
	return Recording{Data: r.data, Filename: "input.webm"}, nil
}

type fakePlayer struct {
	played   []*AudioArtifact
	released []*AudioArtifact
	err      error
}

func (p *fakePlayer) Load(a *AudioArtifact) (string, error) {
	return "handle-" + a.ID, nil
}

func (p *fakePlayer) Play(_ context.Context, a *AudioArtifact) error {
	p.played = append(p.played, a)
	return p.err
}

func (p *fakePlayer) Release(a *AudioArtifact) { p.released = append(p.released, a) }

func newRelay() *fakeRelay {
	return &fakeRelay{transcript: "Hello", reply: "Hi there!", audio: []byte("mp3")}
}

func TestSubmitTextFullTurn(t *testing.T) {
	relay := newRelay()
	player := &fakePlayer{}
	var states []State
	sess := NewSession(relay, scenario.NewService(),
		WithPlayer(player),
		WithObserver(func(s Snapshot) { states = append(states, s.State) }),
	)

	require.NoError(t, sess.SubmitText(context.Background(), "Hello"))

	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleAssistant, Content: "Hi there!"},
	}, sess.Transcript())
	require.Len(t, relay.requests, 1)
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "Hello"}}, relay.requests[0])
	assert.Equal(t, []string{"Hi there!"}, relay.spoken)

	snap := sess.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Status)
	require.NotNil(t, snap.Audio)
	assert.Equal(t, []byte("mp3"), snap.Audio.Data)
	require.Len(t, player.played, 1)

	assert.Contains(t, states, Composing)
	assert.Contains(t, states, AwaitingCompletion)
	assert.Contains(t, states, AwaitingSynthesis)
	assert.Equal(t, Idle, states[len(states)-1])
}

func TestSubmitTextIgnoresBlank(t *testing.T) {
	relay := newRelay()
	sess := NewSession(relay, scenario.NewService())

	assert.ErrorIs(t, sess.SubmitText(context.Background(), "   "), ErrEmptyInput)
	assert.Empty(t, relay.requests)
	assert.Empty(t, sess.Transcript())
}

func TestScenarioPromptLeadsRequest(t *testing.T) {
	relay := newRelay()
	sess := NewSession(relay, scenario.NewService())
	ctx := context.Background()

	require.NoError(t, sess.SelectScenario(ctx, "store"))
	require.NoError(t, sess.SubmitText(ctx, "A ball, please"))

	require.Len(t, relay.requests, 1)
	assert.Equal(t, []domain.Message{
		{Role: domain.RoleSystem, Content: "You are a shopkeeper."},
		{Role: domain.RoleAssistant, Content: "Welcome! What do you want to buy today?"},
		{Role: domain.RoleUser, Content: "A ball, please"},
	}, relay.requests[0])

	// системное сообщение не попадает в видимую историю
	for _, m := range sess.Transcript() {
		assert.NotEqual(t, domain.RoleSystem, m.Role)
	}
}

func TestPersonaOnlyInFreeChat(t *testing.T) {
	relay := newRelay()
	sess := NewSession(relay, scenario.NewService())
	ctx := context.Background()

	sess.SelectPersona(scenario.Personas[3])
	require.NoError(t, sess.SubmitText(ctx, "Hi"))
	assert.Equal(t, domain.Message{Role: domain.RoleSystem, Content: "You are a space alien learning Earth language."}, relay.requests[0][0])

	require.NoError(t, sess.SelectScenario(ctx, "home"))
	require.NoError(t, sess.SubmitText(ctx, "My mom"))
	assert.Equal(t, "You are a family member.", relay.requests[1][0].Content)
}

func TestSelectScenarioGreetingIsDeterministic(t *testing.T) {
	ctx := context.Background()

	for _, prior := range []string{"", "Hello", "Tell me a story"} {
		relay := newRelay()
		sess := NewSession(relay, scenario.NewService())
		if prior != "" {
			require.NoError(t, sess.SubmitText(ctx, prior))
		}
		relay.spoken = nil

		require.NoError(t, sess.SelectScenario(ctx, "school"))

		assert.Equal(t, []domain.Message{
			{Role: domain.RoleAssistant, Content: "Good morning! What's your name?"},
		}, sess.Transcript())
		assert.Equal(t, []string{"Good morning! What's your name?"}, relay.spoken)
	}
}

func TestSelectScenarioSkipsCompletion(t *testing.T) {
	relay := newRelay()
	sess := NewSession(relay, scenario.NewService())

	require.NoError(t, sess.SelectScenario(context.Background(), "school"))
	assert.Empty(t, relay.requests)
}

func TestSelectFreeClearsHistory(t *testing.T) {
	relay := newRelay()
	player := &fakePlayer{}
	sess := NewSession(relay, scenario.NewService(), WithPlayer(player))
	ctx := context.Background()

	require.NoError(t, sess.SubmitText(ctx, "Hello"))
	relay.spoken = nil

	require.NoError(t, sess.SelectScenario(ctx, scenario.FreeKey))
	assert.Empty(t, sess.Transcript())
	assert.Empty(t, relay.spoken)
	assert.Nil(t, sess.Snapshot().Audio)
	assert.Len(t, player.released, 1)
}

func TestSelectUnknownScenario(t *testing.T) {
	sess := NewSession(newRelay(), scenario.NewService())
	assert.ErrorIs(t, sess.SelectScenario(context.Background(), "mars"), scenario.ErrNotFound)
}

func TestCompletionFailureKeepsTranscript(t *testing.T) {
	relay := newRelay()
	relay.completeErr = errors.New("500 GPT request failed")
	sess := NewSession(relay, scenario.NewService())

	err := sess.SubmitText(context.Background(), "Hello")
	require.Error(t, err)

	snap := sess.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Equal(t, StatusGPTFailed, snap.Status)
	assert.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "Hello"}}, snap.Transcript)
	assert.Empty(t, relay.spoken)
}

func TestSynthesisFailureKeepsReply(t *testing.T) {
	relay := newRelay()
	relay.speakErr = errors.New("tts down")
	sess := NewSession(relay, scenario.NewService())

	require.Error(t, sess.SubmitText(context.Background(), "Hello"))

	snap := sess.Snapshot()
	assert.Equal(t, StatusSpeechFailed, snap.Status)
	assert.Len(t, snap.Transcript, 2)
	assert.Nil(t, snap.Audio)
}

func TestNewAudioReplacesPrevious(t *testing.T) {
	relay := newRelay()
	player := &fakePlayer{}
	sess := NewSession(relay, scenario.NewService(), WithPlayer(player))
	ctx := context.Background()

	require.NoError(t, sess.SubmitText(ctx, "one"))
	first := sess.Snapshot().Audio
	require.NoError(t, sess.SubmitText(ctx, "two"))

	require.Len(t, player.released, 1)
	assert.Same(t, first, player.released[0])
	assert.NotEqual(t, first.ID, sess.Snapshot().Audio.ID)
}

func TestAudioPublishedWithHandle(t *testing.T) {
	var seen []*AudioArtifact
	var handles []string
	sess := NewSession(newRelay(), scenario.NewService(),
		WithPlayer(&fakePlayer{}),
		WithObserver(func(s Snapshot) {
			if s.Audio != nil {
				seen = append(seen, s.Audio)
				handles = append(handles, s.Audio.Handle)
			}
		}),
	)

	require.NoError(t, sess.SubmitText(context.Background(), "Hello"))

	require.NotEmpty(t, seen)
	id := seen[0].ID
	for _, h := range handles {
		assert.Equal(t, "handle-"+id, h)
	}
}

func TestSubmitVoice(t *testing.T) {
	relay := newRelay()
	rec := &fakeRecorder{data: []byte("webm")}
	sess := NewSession(relay, scenario.NewService(),
		WithRecorder(rec),
		WithCaptureWindow(20*time.Millisecond),
	)

	require.NoError(t, sess.SubmitVoice(context.Background()))

	assert.LessOrEqual(t, rec.deadline, 20*time.Millisecond)
	assert.Equal(t, []byte("webm"), relay.gotAudio)
	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleAssistant, Content: "Hi there!"},
	}, sess.Transcript())
}

func TestSubmitVoiceWithoutRecorder(t *testing.T) {
	sess := NewSession(newRelay(), scenario.NewService())
	assert.ErrorIs(t, sess.SubmitVoice(context.Background()), ErrNoRecorder)
}

func TestSubmitVoiceFailures(t *testing.T) {
	t.Run("mic", func(t *testing.T) {
		sess := NewSession(newRelay(), scenario.NewService(),
			WithRecorder(&fakeRecorder{err: errors.New("permission denied")}))
		require.Error(t, sess.SubmitVoice(context.Background()))
		assert.Equal(t, StatusMicFailed, sess.Status())
	})

	t.Run("transcription", func(t *testing.T) {
		relay := newRelay()
		relay.transcribeErr = errors.New("500")
		sess := NewSession(relay, scenario.NewService(),
			WithRecorder(&fakeRecorder{}), WithCaptureWindow(time.Millisecond))
		require.Error(t, sess.SubmitVoice(context.Background()))
		assert.Equal(t, StatusVoiceFailed, sess.Status())
		assert.Empty(t, sess.Transcript())
	})

	t.Run("silence", func(t *testing.T) {
		relay := newRelay()
		relay.transcript = " "
		sess := NewSession(relay, scenario.NewService(),
			WithRecorder(&fakeRecorder{}), WithCaptureWindow(time.Millisecond))
		assert.ErrorIs(t, sess.SubmitVoice(context.Background()), ErrEmptyInput)
		assert.Equal(t, StatusNoSpeech, sess.Status())
		assert.Empty(t, relay.requests)
	})
}

func TestTurnsDoNotInterleave(t *testing.T) {
	relay := newRelay()
	relay.started = make(chan struct{}, 1)
	relay.gate = make(chan struct{})
	sess := NewSession(relay, scenario.NewService(), WithRecorder(&fakeRecorder{}))
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- sess.SubmitText(ctx, "first") }()
	<-relay.started

	assert.Equal(t, AwaitingCompletion, sess.State())
	assert.ErrorIs(t, sess.SubmitText(ctx, "second"), ErrTurnInFlight)
	assert.ErrorIs(t, sess.SubmitVoice(ctx), ErrTurnInFlight)
	assert.ErrorIs(t, sess.SelectScenario(ctx, "school"), ErrTurnInFlight)

	close(relay.gate)
	require.NoError(t, <-errc)
	assert.Equal(t, Idle, sess.State())

	require.NoError(t, sess.SubmitText(ctx, "second"))
	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "Hi there!"},
		{Role: domain.RoleUser, Content: "second"},
		{Role: domain.RoleAssistant, Content: "Hi there!"},
	}, sess.Transcript())
}

func TestCancelAbortsTurn(t *testing.T) {
	relay := newRelay()
	relay.started = make(chan struct{}, 1)
	relay.gate = make(chan struct{})
	sess := NewSession(relay, scenario.NewService())

	errc := make(chan error, 1)
	go func() { errc <- sess.SubmitText(context.Background(), "Hello") }()
	<-relay.started

	sess.Cancel()

	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, Idle, sess.State())
	assert.Equal(t, StatusCancelled, sess.Status())

	// после отмены можно начинать новый ход
	relay.gate = nil
	require.NoError(t, sess.SubmitText(context.Background(), "again"))
}
