package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ShinyNito/jobdash/cacheadmin"
	"github.com/ShinyNito/jobdash/core"
	"github.com/ShinyNito/jobdash/dashboard"
)

const (
	defaultPageSize = 10
	maxWebhookBody  = 64 << 10
)

type app struct {
	dash          *dashboard.Client
	cache         *core.Cache[[]byte]
	logger        *slog.Logger
	registry      *prometheus.Registry
	webhookSecret string
	now           func() time.Time
}

func (a *app) routes() http.Handler {
	checker := grpchealth.NewStaticChecker(cacheadmin.ServiceName)

	mux := http.NewServeMux()
	mux.Handle(cacheadmin.NewHandler(a.cache, a.logger))
	mux.Handle(grpchealth.NewHandler(checker))
	mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /api/jobs", a.listJobs)
	mux.HandleFunc("GET /api/jobs/{id}", a.getJob)
	mux.HandleFunc("POST /api/jobs/{id}/status", a.updateJobStatus)
	mux.HandleFunc("GET /api/summary", a.summary)
	mux.HandleFunc("GET /api/contacts", a.listContacts)
	mux.HandleFunc("GET /api/notifications", a.notifications)
	mux.HandleFunc("POST /api/notifications/{id}/read", a.markNotificationRead)
	mux.HandleFunc("POST /webhooks/changes", a.changes)

	return mux
}

func (a *app) listJobs(w http.ResponseWriter, r *http.Request) {
	q, err := pageQuery(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	page, err := a.dash.ListJobs(r.Context(), q)
	a.respond(w, r, page, err)
}

func (a *app) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	job, err := a.dash.GetJob(r.Context(), id)
	a.respond(w, r, job, err)
}

func (a *app) updateJobStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var in struct {
		Status dashboard.JobStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		a.writeError(w, r, errors.Join(dashboard.ErrInvalidArgument, err))
		return
	}

	job, err := a.dash.UpdateJobStatus(r.Context(), id, in.Status)
	a.respond(w, r, job, err)
}

func (a *app) summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := dashboard.Period(q.Get("period"))
	if period == "" {
		period = dashboard.PeriodMonth
	}
	summary, err := a.dash.Summary(r.Context(), period, q.Get("location"))
	a.respond(w, r, summary, err)
}

func (a *app) listContacts(w http.ResponseWriter, r *http.Request) {
	q, err := pageQuery(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	page, err := a.dash.ListContacts(r.Context(), q)
	a.respond(w, r, page, err)
}

func (a *app) notifications(w http.ResponseWriter, r *http.Request) {
	notes, err := a.dash.Notifications(r.Context(), r.URL.Query().Get("location"))
	a.respond(w, r, notes, err)
}

func (a *app) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.dash.MarkNotificationRead(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *app) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *app) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	code := "upstream_error"

	if apiErr, ok := errors.AsType[*core.APIError](err); ok {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		if apiErr.Code != "" {
			code = apiErr.Code
		}
	}
	if errors.Is(err, dashboard.ErrInvalidArgument) {
		status = http.StatusBadRequest
		code = "invalid_argument"
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	a.logger.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pageQuery(r *http.Request) (dashboard.PageQuery, error) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		return dashboard.PageQuery{}, err
	}
	size, err := intParam(q.Get("page_size"), defaultPageSize)
	if err != nil {
		return dashboard.PageQuery{}, err
	}
	return dashboard.PageQuery{Page: page, PageSize: size, Location: q.Get("location")}, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Join(dashboard.ErrInvalidArgument, err)
	}
	return n, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.Join(dashboard.ErrInvalidArgument, err)
	}
	return id, nil
}
