package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-hud/internal/hub"
	"github.com/DoyleJ11/arena-hud/internal/journal"
	"github.com/DoyleJ11/arena-hud/internal/ws"
)

func SetupRoutes(h *hub.Hub, j journal.Reader, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if j == nil {
		j = journal.Nop{}
	}
	log = log.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))

	r.Route("/surfaces", func(r chi.Router) {
		r.Get("/", ListSurfaces(h))
		r.Route("/{surface}", func(r chi.Router) {
			r.Post("/messages", PostMessage(h, log))
			r.Get("/host", ws.HostHandler(h, log))
			r.Get("/state", SurfaceState(h))
			r.Get("/journal", Journal(j, log))
		})
	})
	return r
}
