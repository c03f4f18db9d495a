package api

import (
	"net/http"

	"github.com/seanblong/ahkfinder/internal/ps99"
)

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)

	mux.HandleFunc("POST /api/search/github", h.SearchGithub)

	mux.HandleFunc("GET /api/scripts/personal", h.ListPersonal)
	mux.HandleFunc("POST /api/scripts/personal", h.CreatePersonal)
	mux.HandleFunc("DELETE /api/scripts/personal/{id}", h.DeletePersonal)
	mux.HandleFunc("GET /api/scripts/curated", h.ListCurated)

	mux.HandleFunc("POST /api/ai/generate", h.Generate)
	mux.HandleFunc("POST /api/ai/transcribe", h.Transcribe)
	mux.HandleFunc("POST /api/ai/game-script", h.GameScript)

	mux.HandleFunc("GET /api/ps99/clans", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.Clans(r.Context(), r.URL.Query())
	}))
	mux.HandleFunc("GET /api/ps99/clan/{name}", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.Clan(r.Context(), r.PathValue("name"))
	}))
	mux.HandleFunc("GET /api/ps99/clan-battle", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.ActiveClanBattle(r.Context())
	}))
	mux.HandleFunc("GET /api/ps99/rap", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.RAP(r.Context())
	}))
	mux.HandleFunc("GET /api/ps99/exists", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.Exists(r.Context())
	}))
	mux.HandleFunc("GET /api/ps99/collections", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.Collections(r.Context())
	}))
	mux.HandleFunc("GET /api/ps99/collection/{name}", h.ps99Proxy(func(r *http.Request) (ps99.Response, error) {
		return h.ps99.Collection(r.Context(), r.PathValue("name"))
	}))

	return mux
}
