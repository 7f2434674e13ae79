package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/typeshape/pkg/buildinfo"
	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/observability"
	"github.com/matzehuels/typeshape/pkg/pipeline"
	"github.com/matzehuels/typeshape/pkg/render"
	"github.com/matzehuels/typeshape/pkg/store"
)

// Cache headers report whether each stage was served from cache.
const (
	HeaderSchemaCache = "X-Schema-Cache"
	HeaderRenderCache = "X-Render-Cache"
)

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

type listResponse struct {
	Records []*store.Record `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]

	result, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(HeaderSchemaCache, hitOrMiss(result.CacheInfo.SchemaHit))
	w.Header().Set(HeaderRenderCache, hitOrMiss(result.CacheInfo.RenderHit))
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleCreateSchema(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{render.FormatJSON}

	result, err := s.opts.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := store.New(result.Declaration, result.ProjectHash, result.Schema)
	if err := s.opts.Store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/schemas/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{Declaration: q.Get("declaration")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		opts.Limit = n
	}

	recs, err := s.opts.Store.List(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Records: recs})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	rec, err := s.opts.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusOK, rec)
		return
	}
	data, err := render.Render(r.Context(), rec.Schema, format, render.DOTOptions{Detailed: queryBool(r, "detailed")})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pipelineOptions reads the project body and query parameters over the
// server defaults.
func (s *Server) pipelineOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}

	q := r.URL.Query()
	d := s.opts.Defaults
	opts := pipeline.Options{
		Project:          body,
		Source:           "request " + RequestID(r.Context()),
		DereferenceDepth: d.DereferenceDepth,
		Declaration:      q.Get("declaration"),
		Strict:           d.Strict,
		MaxDepth:         d.MaxDepth,
		MaxNodes:         d.MaxNodes,
		Refresh:          queryBool(r, "refresh"),
		Detailed:         queryBool(r, "detailed"),
		Logger:           s.opts.Runner.Logger,
	}
	if q.Has("strict") {
		opts.Strict = queryBool(r, "strict")
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	msg := errors.UserMessage(err)
	code := errors.GetCode(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func queryBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
