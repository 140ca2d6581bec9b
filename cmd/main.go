package main

import (
	"log"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Vovarama1992/speak_genie/internal/ai"
	"github.com/Vovarama1992/speak_genie/internal/config"
	"github.com/Vovarama1992/speak_genie/internal/delivery"
	"github.com/Vovarama1992/speak_genie/internal/error_notificator"
	"github.com/Vovarama1992/speak_genie/internal/scenario"
	"github.com/Vovarama1992/speak_genie/internal/speech"
	"github.com/Vovarama1992/speak_genie/internal/uploads"
)

func main() {

	// =========================================================================
	// ENV
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	notifiers := []error_notificator.Notificator{error_notificator.NewLogInfra(zl)}
	if cfg.AlertsEnabled() {
		tg, err := error_notificator.NewTelegramInfraFromToken(cfg.AlertBotToken, cfg.AlertChatID)
		if err != nil {
			log.Printf("[main] telegram alerts disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	errService := error_notificator.NewService(notifiers...)

	// =========================================================================
	// CLIENTS (STT / GPT / TTS)
	// =========================================================================

	var sttClient speech.STTClient
	switch cfg.STTProvider {
	case config.STTDeepgram:
		sttClient = ai.NewDeepgramClient(cfg.DeepgramKey, cfg.DeepgramURL)
	default:
		sttClient = ai.NewWhisperClient(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}

	chatClient := ai.NewOpenRouterClient(
		cfg.OpenRouterKey,
		cfg.OpenRouterBaseURL,
		cfg.OpenRouterModel,
		cfg.OpenRouterReferer,
		cfg.OpenRouterTitle,
	)

	ttsClient := speech.NewElevenLabsClient(
		cfg.ElevenLabsKey,
		cfg.ElevenLabsBaseURL,
		cfg.ElevenLabsVoiceID,
		cfg.ElevenLabsModelID,
		speech.VoiceSettings{
			Stability:       cfg.ElevenLabsStability,
			SimilarityBoost: cfg.ElevenLabsSimilarity,
		},
	)

	// =========================================================================
	// SERVICES
	// =========================================================================

	uploadStore, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to init uploads: %v", err)
	}

	speechService := speech.NewService(sttClient, ttsClient, cfg.UpstreamTimeout, errService)
	aiService := ai.NewAiService(chatClient, chatClient.Model(), cfg.UpstreamTimeout, errService)
	scenarioService := scenario.NewService()

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	relayHandler := delivery.NewRelayHandler(speechService, aiService, speechService, uploadStore, zl)
	scenarioHandler := scenario.NewHandler(scenarioService)

	delivery.RegisterRoutes(r, relayHandler, scenarioHandler)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "speak_genie",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
