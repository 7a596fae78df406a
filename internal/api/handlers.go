package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/hay-kot/tabula/internal/core/item"
)

const (
	defaultPage     = 0
	defaultPageSize = 10
	maxBodyBytes    = 1 << 20
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid query", err)
		return
	}

	page, err := s.backend.Fetch(r.Context(), q)
	if err != nil {
		s.writeBackendError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, page)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var it item.Item
	if err := decodeBody(w, r, &it); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON payload", err)
		return
	}

	added, err := s.backend.Add(r.Context(), it)
	if err != nil {
		s.writeBackendError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, added)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch item.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON payload", err)
		return
	}

	updated, err := s.backend.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.writeBackendError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.backend.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeBackendError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, deleted)
}

type health struct {
	Status string `json:"status"`
	Items  *int   `json:"items,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok"}
	if s.storeSize != nil {
		n := s.storeSize()
		h.Items = &n
	}
	writeResult(w, r, http.StatusOK, h)
}

// writeBackendError maps backend sentinels to status codes.
func (s *Server) writeBackendError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, item.ErrValidation):
		status, msg = http.StatusBadRequest, "validation failed"
	case errors.Is(err, item.ErrNotFound):
		status, msg = http.StatusNotFound, "item not found"
	case errors.Is(err, item.ErrConflict):
		status, msg = http.StatusConflict, "item already exists"
	case errors.Is(err, item.ErrTransient):
		status, msg = s.transientStatus, "backend unavailable"
		s.metrics.transient.Inc()
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("backend error")
	}
	writeError(w, r, status, msg, err)
}

func parseQuery(r *http.Request) (item.Query, error) {
	values := r.URL.Query()
	q := item.Query{
		Page:     defaultPage,
		PageSize: defaultPageSize,
		Search:   values.Get("search"),
	}

	var errs criterio.FieldErrorsBuilder
	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = errs.Append("page", errors.New("must be an integer"))
		}
		q.Page = n
	}
	if raw := values.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = errs.Append("pageSize", errors.New("must be an integer"))
		}
		q.PageSize = n
	}
	if err := errs.ToError(); err != nil {
		return item.Query{}, fmt.Errorf("%w: %w", item.ErrValidation, err)
	}
	return q, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
