package conversation

type State int

const (
	Idle State = iota
	Capturing
	Composing
	AwaitingTranscription
	AwaitingCompletion
	AwaitingSynthesis
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Composing:
		return "composing"
	case AwaitingTranscription:
		return "awaiting_transcription"
	case AwaitingCompletion:
		return "awaiting_completion"
	case AwaitingSynthesis:
		return "awaiting_synthesis"
	}
	return "unknown"
}

// Статусы для пользователя
const (
	StatusListening    = "🎙️ Listening..."
	StatusTranscribing = "📝 Transcribing..."
	StatusThinking     = "🤖 Thinking..."
	StatusSpeaking     = "🔊 Speaking..."

	StatusMicFailed    = "Mic access failed"
	StatusVoiceFailed  = "Voice failed"
	StatusNoSpeech     = "Didn't catch that"
	StatusGPTFailed    = "GPT failed"
	StatusSpeechFailed = "Speech failed"
	StatusPlayFailed   = "Playback failed"
	StatusCancelled    = "Cancelled"
)
