// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/workflow"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if err := decode(r, &sub); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.Ingest(r.Context(), sub)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.orch.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.orch.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleInterestResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Response string `json:"response"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.HandleInterestResponse(r.Context(), r.PathValue("id"), workflow.InterestResponse(req.Response))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleApproveDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Override string `json:"override,omitempty"`
		Author   string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.ApproveDraft(r.Context(), r.PathValue("id"), req.Override, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleInitChecklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChecklistType string `json:"checklistType,omitempty"`
		Author        string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.InitializeChecklist(r.Context(), r.PathValue("id"), req.ChecklistType, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item    string `json:"item"`
		Checked bool   `json:"checked"`
		Author  string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.UpdateChecklistItem(r.Context(), r.PathValue("id"), req.Item, req.Checked, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleFinancialAssessment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data   *models.FinancialData `json:"data"`
		Author string                `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.SubmitFinancialAssessment(r.Context(), r.PathValue("id"), req.Data, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePsychComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.CompletePsychAssessment(r.Context(), r.PathValue("id"), req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleInterviewResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passed bool   `json:"passed"`
		Notes  string `json:"notes,omitempty"`
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.LogInterviewResult(r.Context(), r.PathValue("id"), req.Passed, req.Notes, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStartSiteReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.StartSiteReview(r.Context(), r.PathValue("id"), req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePreVisitItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item    string `json:"item"`
		Checked bool   `json:"checked"`
		Author  string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.UpdatePreVisitChecklist(r.Context(), r.PathValue("id"), req.Item, req.Checked, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSiteScorecard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scorecard *models.SiteScorecard `json:"scorecard"`
		Author    string                `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.SubmitSiteScorecard(r.Context(), r.PathValue("id"), req.Scorecard, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCloseContract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.CloseContract(r.Context(), r.PathValue("id"), req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleMoveToWarm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.MoveToWarm(r.Context(), r.PathValue("id"), req.Reason, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHardReject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.HardReject(r.Context(), r.PathValue("id"), req.Reason, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleReactivate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.ReactivateLead(r.Context(), r.PathValue("id"), req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		Author string `json:"author,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := s.orch.AddNote(r.Context(), r.PathValue("id"), req.Text, req.Author)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	result, err := s.orch.RunSweep(r.Context(), s.sweepCfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.Funnel(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reporter.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCycleTimes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reporter.CycleTimes(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	forecast, err := s.reporter.ProjectCloses(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
