// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/reporting"
	"github.com/QuadKenya/growth-engine/internal/workflow"
)

// Server exposes the vetting pipeline over HTTP. It is a thin layer:
// every route decodes, delegates to the orchestrator or reporter and
// encodes; no workflow decisions live here.
type Server struct {
	orch     *workflow.Orchestrator
	reporter *reporting.Reporter
	sweepCfg config.SweepConfig
	logger   logger.Logger
	http     *http.Server
}

func NewServer(addr string, orch *workflow.Orchestrator, reporter *reporting.Reporter, sweepCfg config.SweepConfig, log logger.Logger) *Server {
	s := &Server{
		orch:     orch,
		reporter: reporter,
		sweepCfg: sweepCfg,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}

	mux := http.NewServeMux()
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.withLogging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.routes(mux)
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook/form", s.handleIngest)

	mux.HandleFunc("GET /candidates", s.handleList)
	mux.HandleFunc("GET /candidates/{id}", s.handleGet)
	mux.HandleFunc("POST /candidates/{id}/ops/interest-response", s.handleInterestResponse)
	mux.HandleFunc("POST /candidates/{id}/ops/approve-draft", s.handleApproveDraft)
	mux.HandleFunc("POST /candidates/{id}/ops/init-checklist", s.handleInitChecklist)
	mux.HandleFunc("POST /candidates/{id}/ops/checklist-item", s.handleChecklistItem)
	mux.HandleFunc("POST /candidates/{id}/ops/financial-assessment", s.handleFinancialAssessment)
	mux.HandleFunc("POST /candidates/{id}/ops/psych-complete", s.handlePsychComplete)
	mux.HandleFunc("POST /candidates/{id}/ops/interview-result", s.handleInterviewResult)
	mux.HandleFunc("POST /candidates/{id}/ops/start-site-review", s.handleStartSiteReview)
	mux.HandleFunc("POST /candidates/{id}/ops/pre-visit-item", s.handlePreVisitItem)
	mux.HandleFunc("POST /candidates/{id}/ops/site-scorecard", s.handleSiteScorecard)
	mux.HandleFunc("POST /candidates/{id}/ops/close-contract", s.handleCloseContract)
	mux.HandleFunc("POST /candidates/{id}/ops/move-to-warm", s.handleMoveToWarm)
	mux.HandleFunc("POST /candidates/{id}/ops/hard-reject", s.handleHardReject)
	mux.HandleFunc("POST /candidates/{id}/ops/reactivate", s.handleReactivate)
	mux.HandleFunc("POST /candidates/{id}/ops/note", s.handleAddNote)

	mux.HandleFunc("POST /sweep", s.handleSweep)

	mux.HandleFunc("GET /reports/funnel", s.handleFunnel)
	mux.HandleFunc("GET /reports/stats", s.handleStats)
	mux.HandleFunc("GET /reports/cycle-times", s.handleCycleTimes)
	mux.HandleFunc("GET /reports/forecast", s.handleForecast)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) Start() error {
	s.logger.Info("http server starting", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{"error": err})
	}
}

// writeError maps domain error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := map[string]interface{}{"error": err.Error()}

	switch e := err.(type) {
	case *apperrors.ValidationError:
		status = http.StatusBadRequest
		body["field"] = e.Field
	case *apperrors.StandardError:
		body["code"] = e.Code
		switch e.Code {
		case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeFinancialDataInvalid:
			status = http.StatusBadRequest
		case apperrors.ErrCodeCandidateNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeInvalidStage, apperrors.ErrCodeNoDraftPending,
			apperrors.ErrCodeChecklistUndefined, apperrors.ErrCodeDuplicateCandidate:
			status = http.StatusConflict
		case apperrors.ErrCodeLockNotAcquired:
			status = http.StatusLocked
		}
	}
	s.writeJSON(w, status, body)
}

// decode reads a JSON body into v. An empty body is fine: several
// operations take only optional fields.
func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return apperrors.NewValidationError("body", err.Error())
	}
	return nil
}
