package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/audit"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/extract"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

type scanRequest struct {
	Text string `json:"text"`
	// Detectors optionally restricts the scan, e.g. ["pattern", "model:hf_ner"].
	Detectors []string `json:"detectors,omitempty"`
}

func (req *scanRequest) options() detect.Options {
	opts := detect.Options{}
	for _, d := range req.Detectors {
		opts.Detectors = append(opts.Detectors, detect.Source(d))
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	}
	if r.URL.Query().Get("detail") == "true" {
		components := map[string]string{"pipeline": "ok"}
		if s.auditStore == nil {
			components["audit_store"] = "disabled"
		} else {
			components["audit_store"] = "ok"
		}
		resp["components"] = components
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	res, err := s.pipeline.Scan(r.Context(), req.Text, req.options())
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	s.logEvent(r, audit.EventScan, req.Text, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	res, err := s.pipeline.Redact(r.Context(), req.Text, req.options())
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	if s.auditStore != nil {
		score, tier := s.pipeline.Score(res.Findings)
		s.logEvent(r, audit.EventRedact, req.Text, &detect.ScanResult{
			Findings: res.Findings, RiskScore: score, RiskTier: tier,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.extractor.MaxSize()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, s.extractor.MaxSize()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "reading upload: "+err.Error())
		return
	}

	text, err := s.extractor.Extract(r.Context(), content, header.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "extraction_failed", err.Error())
		return
	}

	res, err := s.pipeline.Scan(r.Context(), text, detect.Options{})
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	s.logEvent(r, audit.EventUpload, text, res)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   header.Filename,
		"id":         res.ID,
		"findings":   res.Findings,
		"risk_score": res.RiskScore,
		"risk_tier":  res.RiskTier,
		"warnings":   res.Warnings,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditStore == nil {
		writeError(w, http.StatusNotFound, "audit_disabled", "audit log is not configured")
		return
	}
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.auditStore.List(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("audit_list_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": records})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.dashboardHTML == "" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.dashboardHTML))
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, detect.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away or the request timed out mid-scan.
		writeError(w, http.StatusRequestTimeout, "canceled", err.Error())
	default:
		log.Error().Err(err).Func(otel.LogTraceFields(r.Context())).Msg("scan_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// logEvent records an audit event after the result is finalized. Audit
// failures never fail the request.
func (s *Server) logEvent(r *http.Request, eventType, input string, res *detect.ScanResult) {
	if s.auditStore == nil {
		return
	}
	if err := s.auditStore.Log(r.Context(), eventType, input, res); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("audit_log_failed")
	}
}
