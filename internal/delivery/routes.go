package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/speak_genie/internal/scenario"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(
	r chi.Router,
	h *RelayHandler,
	hScenarios *scenario.Handler,
) {
	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Use(httputil.RecoverMiddleware)

		// --- релей ---
		ar.Post("/transcribe", h.Transcribe)
		ar.Post("/gpt", h.GPT)
		ar.Post("/speak", h.Speak)

		// --- сценарии ---
		ar.Get("/scenarios", hScenarios.List)
	})
}
