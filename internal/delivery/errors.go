package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/speak_genie/internal/domain"
)

// Тексты ошибок для клиента; детали апстрима остаются в логах.
const (
	msgTranscriptionFailed = "Transcription failed"
	msgCompletionFailed    = "GPT request failed"
	msgSynthesisFailed     = "Text-to-speech failed"
	msgMessagesRequired    = "messages array is required"
	msgAudioRequired       = "audio file is required"
	msgTextRequired        = "text is required"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a service error onto the relay's two failure classes.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
