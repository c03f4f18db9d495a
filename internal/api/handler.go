package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/seanblong/ahkfinder/internal/ai"
	"github.com/seanblong/ahkfinder/internal/library"
	"github.com/seanblong/ahkfinder/internal/ps99"
	"github.com/seanblong/ahkfinder/internal/search"
	"github.com/seanblong/ahkfinder/pkg/models"
)

const (
	maxBodyBytes  = 1 << 20
	searchTimeout = 30 * time.Second
	aiTimeout     = 2 * time.Minute
)

type Searcher interface {
	Search(ctx context.Context, req search.Request) (search.Response, error)
}

type Library interface {
	ListPersonal(ctx context.Context) ([]models.Script, error)
	ListCurated(ctx context.Context) ([]models.Script, error)
	CreatePersonal(ctx context.Context, in models.ScriptInput) (models.Script, error)
	DeletePersonal(ctx context.Context, id string) error
}

type Assistant interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Transcribe(ctx context.Context, req ai.TranscribeRequest) (string, error)
	GameScript(ctx context.Context, req ai.GameScriptRequest) (string, error)
}

// PS99 is the subset of the Pet Simulator 99 proxy the handlers call.
type PS99 interface {
	Clans(ctx context.Context, params url.Values) (ps99.Response, error)
	Clan(ctx context.Context, name string) (ps99.Response, error)
	ActiveClanBattle(ctx context.Context) (ps99.Response, error)
	RAP(ctx context.Context) (ps99.Response, error)
	Exists(ctx context.Context) (ps99.Response, error)
	Collections(ctx context.Context) (ps99.Response, error)
	Collection(ctx context.Context, name string) (ps99.Response, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	search    Searcher
	library   Library
	assistant Assistant
	ps99      PS99
	pinger    Pinger
}

func New(s Searcher, lib Library, a Assistant, p PS99) *Handler {
	return &Handler{search: s, library: lib, assistant: a, ps99: p}
}

// SetPinger makes /healthz fail with 503 while p cannot be reached.
func (h *Handler) SetPinger(p Pinger) { h.pinger = p }

func (h *Handler) SearchGithub(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	res, err := h.search.Search(ctx, req)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Invalid request parameters")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("query", req.Query).Msg("search failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	hlog.FromRequest(r).Info().Str("query", req.Query).Int("total", res.Total).Int("total_count", res.TotalCount).Msg("search served")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"results":    res.Results,
		"total":      res.Total,
		"totalCount": res.TotalCount,
	})
}

func (h *Handler) ListPersonal(w http.ResponseWriter, r *http.Request) {
	scripts, err := h.library.ListPersonal(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list personal scripts")
		writeError(w, http.StatusInternalServerError, "Failed to fetch scripts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scripts": scripts})
}

func (h *Handler) ListCurated(w http.ResponseWriter, r *http.Request) {
	scripts, err := h.library.ListCurated(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("list curated scripts")
		writeError(w, http.StatusInternalServerError, "Failed to fetch scripts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scripts": scripts})
}

// createScriptRequest accepts the script fields at the top level or nested
// under "script".
type createScriptRequest struct {
	models.ScriptInput
	Script *models.ScriptInput `json:"script"`
}

func (h *Handler) CreatePersonal(w http.ResponseWriter, r *http.Request) {
	var req createScriptRequest
	if !decode(w, r, &req) {
		return
	}
	in := req.ScriptInput
	if req.Script != nil {
		in = *req.Script
	}

	sc, err := h.library.CreatePersonal(r.Context(), in)
	if err != nil {
		var verr *library.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   verr.Error(),
				"fields":  verr.Fields,
			})
		case errors.Is(err, library.ErrInvalidScript):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			hlog.FromRequest(r).Error().Err(err).Msg("create script")
			writeError(w, http.StatusInternalServerError, "Failed to create script")
		}
		return
	}

	hlog.FromRequest(r).Info().Str("id", sc.ID).Str("version", string(sc.Version)).Msg("script created")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "script": sc})
}

func (h *Handler) DeletePersonal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.library.DeletePersonal(r.Context(), id); err != nil {
		if errors.Is(err, library.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Script not found")
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("id", id).Msg("delete script")
		writeError(w, http.StatusInternalServerError, "Failed to delete script")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	code, err := h.assistant.Generate(ctx, req.Prompt)
	if err != nil {
		writeAIError(w, r, "generate", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "code": code})
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req ai.TranscribeRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	out, err := h.assistant.Transcribe(ctx, req)
	if err != nil {
		writeAIError(w, r, "transcribe", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": out})
}

func (h *Handler) GameScript(w http.ResponseWriter, r *http.Request) {
	var req ai.GameScriptRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), aiTimeout)
	defer cancel()

	out, err := h.assistant.GameScript(ctx, req)
	if err != nil {
		writeAIError(w, r, "game-script", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": out})
}

// ps99Proxy adapts one upstream call into a pass-through handler. Upstream
// status codes, including non-2xx, are forwarded as received; only transport
// failures are rewritten, to 502.
func (h *Handler) ps99Proxy(call func(r *http.Request) (ps99.Response, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := call(r)
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("path", r.URL.Path).Msg("ps99 upstream unreachable")
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		w.Header().Set("Content-Type", resp.ContentType)
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(resp.Body); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("write ps99 response")
		}
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func writeAIError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ai.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hlog.FromRequest(r).Error().Err(err).Str("op", op).Msg("ai request failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decode reads a JSON body of at most maxBodyBytes into v. It writes the 400
// response itself and reports whether decoding succeeded.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
