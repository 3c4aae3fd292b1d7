package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/digestservice"
	"github.com/anurajdeol90/team-digest/internal/window"
)

// Handler holds API route handlers.
type Handler struct {
	svc      *digestservice.Service
	defaults digestservice.Options
	now      func() time.Time
}

// NewHandler creates a new Handler. defaults supply every option a request
// leaves out.
func NewHandler(svc *digestservice.Service, defaults digestservice.Options) *Handler {
	return &Handler{svc: svc, defaults: defaults, now: time.Now}
}

// rangeFromQuery resolves ?start and ?end. Missing bounds default to the
// seven days ending today.
func (h *Handler) rangeFromQuery(r *http.Request) (window.Range, error) {
	q := r.URL.Query()
	return window.Resolve(q.Get("start"), q.Get("end"), h.now())
}

func boolParam(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Digest handles GET /api/digest.
//
//	@Summary		Build a digest for a date window
//	@Tags			digest
//	@Produce		text/markdown,json,html
//	@Param			start	query		string	false	"First day (YYYY-MM-DD or e.g. yesterday)"
//	@Param			end		query		string	false	"Last day, inclusive"
//	@Param			mode	query		string	false	"Grouping mode"	Enums(flat-legacy, group-by-priority, flat-by-owner)
//	@Param			kpis	query		bool	false	"Emit the KPI block"
//	@Param			owners	query		bool	false	"Emit the owner breakdown"
//	@Param			format	query		string	false	"Output format"	Enums(md, json, html)
//	@Param			title	query		string	false	"Title override"
//	@Success		200
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/digest [get]
func (h *Handler) Digest(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	q := r.URL.Query()
	opts := h.defaults
	if m := q.Get("mode"); m != "" {
		mode, err := digest.ParseMode(m)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		opts.Mode = mode
	}
	opts.EmitKPIs = boolParam(r, "kpis", opts.EmitKPIs)
	opts.OwnerBreakdown = boolParam(r, "owners", opts.OwnerBreakdown)
	if f := q.Get("format"); f != "" {
		opts.Format = f
	}
	if t := q.Get("title"); t != "" {
		opts.Title = t
	}

	d, err := h.svc.Build(r.Context(), rng, opts)
	if err != nil {
		writeError(w, "build digest failed", err)
		return
	}
	w.Header().Set("Content-Type", d.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Body)
}

// Diagnose handles GET /api/diagnose.
//
//	@Summary		Scan the logs in a date window
//	@Tags			digest
//	@Produce		json
//	@Param			start	query		string	false	"First day"
//	@Param			end		query		string	false	"Last day, inclusive"
//	@Success		200		{object}	DiagnoseResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/diagnose [get]
func (h *Handler) Diagnose(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	diags, err := h.svc.Diagnose(r.Context(), rng)
	if err != nil {
		writeError(w, "diagnose failed", err)
		return
	}
	writeJSON(w, http.StatusOK, DiagnoseResponse{
		Start: rng.Start.Format(digest.DateLayout),
		End:   rng.End.Format(digest.DateLayout),
		Files: diags,
	})
}

func writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidRange), errors.Is(err, apperr.ErrInvalidConfig):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNoFilesInRange):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		slog.Error(msg, slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
