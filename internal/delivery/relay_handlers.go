package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/speak_genie/internal/domain"
	"github.com/Vovarama1992/speak_genie/internal/ports"
)

const maxAudioUpload = 25 << 20 // лимит Whisper

type RelayHandler struct {
	stt     ports.TranscriptionService
	gpt     ports.CompletionService
	tts     ports.SynthesisService
	uploads ports.UploadStore
	log     *logger.ZapLogger
}

func NewRelayHandler(
	stt ports.TranscriptionService,
	gpt ports.CompletionService,
	tts ports.SynthesisService,
	uploads ports.UploadStore,
	log *logger.ZapLogger,
) *RelayHandler {
	return &RelayHandler{
		stt:     stt,
		gpt:     gpt,
		tts:     tts,
		uploads: uploads,
		log:     log,
	}
}

// POST /api/transcribe (multipart, поле audio)
func (h *RelayHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUpload)
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		writeError(w, http.StatusBadRequest, msgAudioRequired)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio", Error: err})
		writeError(w, http.StatusBadRequest, msgAudioRequired)
		return
	}
	defer file.Close()

	path, cleanup, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store upload", Error: err})
		writeError(w, http.StatusInternalServerError, msgTranscriptionFailed)
		return
	}
	// удаляем и при успехе, и при ошибке
	defer cleanup()

	text, err := h.stt.Transcribe(r.Context(), path)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "transcription error", Error: err})
		writeError(w, statusFor(err), msgTranscriptionFailed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// POST /api/gpt { messages: [...] }
func (h *RelayHandler) GPT(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMessagesRequired)
		return
	}
	if err := domain.ValidateMessages(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, msgMessagesRequired)
		return
	}

	reply, err := h.gpt.Reply(r.Context(), req.Messages)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "gpt error", Error: err})
		status := statusFor(err)
		msg := msgCompletionFailed
		if status == http.StatusBadRequest {
			msg = msgMessagesRequired
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// POST /api/speak { text } → audio/mpeg
func (h *RelayHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || domain.IsBlank(req.Text) {
		writeError(w, http.StatusBadRequest, msgTextRequired)
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "tts error", Error: err})
		status := statusFor(err)
		msg := msgSynthesisFailed
		if status == http.StatusBadRequest {
			msg = msgTextRequired
		}
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
