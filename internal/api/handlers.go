package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/roomweaver/pkg/buildinfo"
	"github.com/matzehuels/roomweaver/pkg/collectable"
	rwerrors "github.com/matzehuels/roomweaver/pkg/errors"
	"github.com/matzehuels/roomweaver/pkg/generator"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
	"github.com/matzehuels/roomweaver/pkg/store"
)

// =============================================================================
// Wire Types
// =============================================================================

// GenerateRequest is the body of POST /v1/layouts.
type GenerateRequest struct {
	Blueprint *pio.Blueprint   `json:"blueprint"`
	Options   pipeline.Options `json:"options"`
}

// LayoutResponse reports the outcome of one seed.
type LayoutResponse struct {
	ID           string                   `json:"id,omitempty"`
	Name         string                   `json:"name"`
	Seed         int64                    `json:"seed"`
	State        generator.State          `json:"state"`
	Reason       string                   `json:"reason,omitempty"`
	Rooms        int                      `json:"rooms"`
	Connections  int                      `json:"connections"`
	Floors       []int                    `json:"floors,omitempty"`
	Restarts     int                      `json:"restarts"`
	Attempts     int                      `json:"attempts"`
	Cached       bool                     `json:"cached"`
	Collectables []collectable.Assignment `json:"collectables,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    rwerrors.Code `json:"code,omitempty"`
	Message string        `json:"message"`
}

func newLayoutResponse(name string, seed int64, res *pipeline.Result) LayoutResponse {
	out := LayoutResponse{
		Name:         name,
		Seed:         seed,
		State:        res.State,
		Reason:       res.Search.Reason,
		Restarts:     res.Search.Restarts,
		Attempts:     res.Search.Attempts,
		Cached:       res.CacheInfo.LayoutHit,
		Collectables: res.Assignments,
	}
	if l := res.Layout; l != nil {
		out.ID = l.ID
		out.Rooms = l.RoomCount()
		out.Connections = l.ConnectionCount()
		out.Floors = l.Floors()
	}
	return out
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

// createLayouts generates one layout, or a batch when options.count > 1.
// A single failed search answers 422 with the failure reason.
func (s *Server) createLayouts(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, rwerrors.Wrap(rwerrors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if req.Blueprint == nil {
		s.writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidInput, "blueprint is required"))
		return
	}

	ctx := r.Context()
	opts := req.Options
	job, err := s.runner.Prepare(ctx, req.Blueprint, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if opts.Count > 1 {
		results, err := s.runner.GenerateBatch(ctx, job, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		seeds := opts.Seeds(job.Seed(opts))
		out := make([]LayoutResponse, len(results))
		for i, res := range results {
			out[i] = newLayoutResponse(job.Model.Name, seeds[i], res)
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	seed := job.Seed(opts)
	res, err := s.runner.Generate(ctx, job, seed, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if res.State != generator.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, newLayoutResponse(job.Model.Name, seed, res))
		return
	}
	if err := s.runner.Save(ctx, res.Layout); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/layouts/"+res.Layout.ID)
	writeJSON(w, http.StatusCreated, newLayoutResponse(job.Model.Name, seed, res))
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.runner.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	l, err := s.runner.Fetch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := pio.WriteLayout(w, l); err != nil {
		s.logger.Warn("write layout", "id", l.ID, "error", err)
	}
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.runner.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getFloor renders one floor map. Query parameters cell_size and labels
// tune the image.
func (s *Server) getFloor(w http.ResponseWriter, r *http.Request) {
	z, err := strconv.Atoi(chi.URLParam(r, "z"))
	if err != nil {
		s.writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidInput, "floor must be an integer"))
		return
	}
	opts := pipeline.Options{}
	q := r.URL.Query()
	if v := q.Get("cell_size"); v != "" {
		if opts.CellSize, err = strconv.Atoi(v); err != nil {
			s.writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidOptions, "cell_size must be an integer"))
			return
		}
	}
	if v := q.Get("labels"); v != "" {
		if opts.Labels, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, rwerrors.New(rwerrors.ErrCodeInvalidOptions, "labels must be a boolean"))
			return
		}
	}

	ctx := r.Context()
	l, err := s.runner.Fetch(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	png, err := s.runner.RenderFloor(ctx, l, z, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(png)
}

// =============================================================================
// Responses
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	code := rwerrors.GetCode(err)
	if code == "" && errors.Is(err, store.ErrNotFound) {
		code = rwerrors.ErrCodeLayoutNotFound
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: rwerrors.UserMessage(err)}})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case rwerrors.IsValidation(err):
		return http.StatusBadRequest
	}
	switch rwerrors.GetCode(err) {
	case rwerrors.ErrCodeNotFound, rwerrors.ErrCodeLayoutNotFound, rwerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case rwerrors.ErrCodeStructural, rwerrors.ErrCodeUnsatisfiable:
		return http.StatusUnprocessableEntity
	case rwerrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case rwerrors.ErrCodeCancelled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
