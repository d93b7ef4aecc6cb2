// Package server exposes the extraction and lifecycle core over HTTP. It is
// the request/response collaborator: it owns no parsing or lifecycle logic of
// its own.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/birrflow/birrflow/internal/common"
	"github.com/birrflow/birrflow/internal/lifecycle"
	"github.com/birrflow/birrflow/internal/model"
	"github.com/birrflow/birrflow/internal/parser"
	"github.com/birrflow/birrflow/internal/report"
	"github.com/birrflow/birrflow/internal/service"
)

// Server wires the extraction engine, lifecycle manager, and storage behind
// the HTTP API.
type Server struct {
	engine    *parser.Engine
	lifecycle *lifecycle.Manager
	storage   service.Storage
	metrics   *Metrics
}

// New creates a Server over the given collaborators.
func New(engine *parser.Engine, manager *lifecycle.Manager, storage service.Storage, metrics *Metrics) *Server {
	return &Server{
		engine:    engine,
		lifecycle: manager,
		storage:   storage,
		metrics:   metrics,
	}
}

// Router builds the HTTP router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(s.durationMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/transfers", s.handleCreateTransfer)
		r.Get("/transfers", s.handleListTransfers)
		r.Get("/transfers/stats/{userID}", s.handleStats)
		r.Patch("/transfers/{reference}", s.handleTransition)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type createTransferRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type transitionRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type listTransfersResponse struct {
	Transfers []model.TransferRecord `json:"transfers"`
	Total     int                    `json:"total"`
	Limit     int                    `json:"limit"`
	Offset    int                    `json:"offset"`
}

// handleCreateTransfer ingests raw notification text, extracts a candidate,
// and admits it for the submitting user.
func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "user_id and text are required")
		return
	}

	candidate, err := s.engine.Parse(req.Text)
	if err != nil {
		s.metrics.ObserveParse("none", parseOutcome(err))
		writeError(w, http.StatusUnprocessableEntity, common.UserMessage(err))
		return
	}
	s.metrics.ObserveParse(candidate.BankName, "ok")

	record, err := s.lifecycle.Admit(r.Context(), *candidate, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateReference):
			s.metrics.ObserveAdmission("duplicate")
			writeError(w, http.StatusConflict, "transfer with this reference already exists")
		case errors.Is(err, common.ErrInvalidAmount), errors.Is(err, common.ErrMissingAmount):
			s.metrics.ObserveAdmission("rejected")
			writeError(w, http.StatusUnprocessableEntity, common.UserMessage(err))
		default:
			s.metrics.ObserveAdmission("error")
			slog.Error("admission failed", "error", err, "user", req.UserID)
			writeError(w, http.StatusInternalServerError, "failed to record transfer")
		}
		return
	}
	s.metrics.ObserveAdmission("ok")

	writeJSON(w, http.StatusCreated, record)
}

// handleListTransfers serves a user's transfers with optional filters:
// status, bank_name, start_date, end_date (YYYY-MM-DD), limit, offset.
func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID := q.Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	filter := service.TransferFilter{
		UserID:   userID,
		BankName: q.Get("bank_name"),
		Limit:    50,
	}

	if status := q.Get("status"); status != "" {
		ts := model.TransferStatus(status)
		if !ts.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status "+status)
			return
		}
		filter.Status = ts
	}
	for name, dst := range map[string]**time.Time{
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
	} {
		if raw := q.Get(name); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, name+" must be YYYY-MM-DD")
				return
			}
			*dst = &t
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	records, err := s.storage.GetTransfers(r.Context(), filter)
	if err != nil {
		slog.Error("listing transfers failed", "error", err, "user", userID)
		writeError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}
	total, err := s.storage.CountTransfers(r.Context(), userID)
	if err != nil {
		slog.Error("counting transfers failed", "error", err, "user", userID)
		writeError(w, http.StatusInternalServerError, "failed to list transfers")
		return
	}

	if records == nil {
		records = []model.TransferRecord{}
	}
	writeJSON(w, http.StatusOK, listTransfersResponse{
		Transfers: records,
		Total:     total,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

// handleStats recomputes the aggregate snapshot for a user.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	records, err := s.storage.GetTransfers(r.Context(), service.TransferFilter{UserID: userID})
	if err != nil {
		slog.Error("loading transfers for stats failed", "error", err, "user", userID)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, report.Summarize(records, time.Now()))
}

// handleTransition applies a verify/fraud/cancel request to a pending
// transfer.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "user_id and status are required")
		return
	}

	record, err := s.lifecycle.Transition(r.Context(), req.UserID, reference, model.TransferStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			writeError(w, http.StatusNotFound, "transfer not found")
		case errors.Is(err, common.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			slog.Error("transition failed", "error", err, "reference", reference)
			writeError(w, http.StatusInternalServerError, "failed to update transfer")
		}
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "birrflow",
	})
}

// durationMiddleware records per-route request durations.
func (s *Server) durationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.metrics.ObserveRequest(r.URL.Path, time.Since(start).Seconds())
	})
}

func parseOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrMissingAmount):
		return "missing_amount"
	case errors.Is(err, common.ErrUnrecognizedFormat):
		return "unrecognized"
	default:
		return "error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
