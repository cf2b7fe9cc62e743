package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hakan-sariman/webhook-inbox/internal/metrics"
	"github.com/hakan-sariman/webhook-inbox/internal/service"
	"github.com/hakan-sariman/webhook-inbox/internal/storage"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	limited := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(limited)
	if err != nil {
		s.log.Warn("webhook: body read failed", zap.Error(err))
		s.metrics.IncWebhook(metrics.OutcomeValidationError)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
		return
	}

	res, err := s.msgSvc.Ingest(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			s.metrics.IncWebhook(metrics.OutcomeInvalidSignature)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid signature"})
		case errors.As(err, &ve):
			s.metrics.IncWebhook(metrics.OutcomeValidationError)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": ve.Error()})
		default:
			s.log.Error("webhook: storage failure", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "storage unavailable"})
		}
		return
	}

	// created and duplicate answer identically; only metrics differ
	s.metrics.IncWebhook(string(res))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit := storage.DefaultQueryLimit
	if v := params.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	offset, _ := strconv.Atoi(params.Get("offset"))

	q := storage.Query{
		Limit:  limit,
		Offset: offset,
		From:   params.Get("from"),
		Since:  params.Get("since"),
		Text:   params.Get("q"),
	}
	page, err := s.msgSvc.ListMessages(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.msgSvc.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if err := s.msgSvc.Ready(r.Context()); err != nil {
		s.log.Warn("readiness check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
