// internal/api/server_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/drafting"
	"github.com/QuadKenya/growth-engine/internal/engine/finance"
	"github.com/QuadKenya/growth-engine/internal/engine/scoring"
	"github.com/QuadKenya/growth-engine/internal/engine/site"
	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/reporting"
	"github.com/QuadKenya/growth-engine/internal/store"
	"github.com/QuadKenya/growth-engine/internal/workflow"
)

func createTestServer(t *testing.T) *Server {
	log := logger.NewTestLogger(t)

	rules := &config.Rules{
		ScoringModel: []config.Criterion{
			{
				ID:         "clinical_profession",
				InputField: "current_profession",
				Weight:     1.0,
				Mapping:    map[string]float64{"Nurse": 1.0, "_default": 0.0},
			},
		},
		Thresholds: []config.Threshold{{MinScore: 0.5, Label: "Strong Fit"}},
		HardGates: config.HardGates{
			BusinessExpFailValue: "No",
			FinancialFailValue:   "I cannot raise the capital",
		},
		Prioritization: config.Prioritization{
			SiteReadyValue:       "Yes, I own or lease a location",
			CashReadyKeyword:     "adequate resources",
			WakeUpDaysExperience: 365,
			WakeUpDaysDefault:    90,
		},
		Financial: config.FinancialRules{
			RevenueThreshold: 240000, InstallmentThreshold: 60000,
			NetIncomeRatio: 0.5, InstallmentRatio: 0.5,
		},
		Checklists: map[string][]string{"KYC": {"National ID"}},
		SiteVetting: config.SiteVetting{
			Competition:      map[string]config.CompetitionThresholds{"_default": {Green: 2, Amber: 3}},
			FootTrafficMin:   map[string]int{"_default": 80},
			MinBuildingSqft:  400,
			ArchetypeWeights: map[string]float64{"_default": 1.0},
			PassThreshold:    0.7,
		},
		ReadinessMaps: map[string]config.ReadinessMap{
			"financial": {Ready: []string{"adequate resources"}},
			"location":  {Ready: []string{"own or lease"}},
		},
	}
	territories := config.Territories{"Nairobi": {"Kasarani"}}

	s, err := store.NewJSONFileStore(filepath.Join(t.TempDir(), "candidates.json"))
	require.NoError(t, err)

	orch := workflow.New(workflow.Deps{
		Store:   s,
		Drafter: drafting.NewTemplateDrafter(),
		Scorer:  scoring.NewEngine(rules, territories, log),
		Finance: finance.NewCalculator(rules.Financial),
		Site:    site.NewCalculator(rules.SiteVetting),
		Rules:   rules,
		Logger:  log,
		Now:     func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
	})
	reporter := reporting.New(s, log, nil)

	return NewServer("127.0.0.1:0", orch, reporter, config.SweepConfig{NudgeAfterDays: 3, ProposalAfterDays: 7}, log)
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rr, req)
	return rr
}

func validSubmission() models.Submission {
	return models.Submission{
		Email:                   "jane@example.com",
		FirstName:               "Jane",
		LastName:                "Wambui",
		Phone:                   "0722123456",
		CurrentProfession:       "Nurse",
		ExperienceYears:         "5+ Years",
		HasBusinessExp:          "Yes, another business",
		FinancialReadinessInput: "I have adequate resources",
		LocationCountyInput:     "Nairobi",
		LocationStatusInput:     "Yes, I own or lease a location",
	}
}

func TestWebhookForm_Created(t *testing.T) {
	srv := createTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	require.Equal(t, http.StatusCreated, rr.Code)
	var rec models.CandidateRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "jane@example.com", rec.ID)
	assert.Equal(t, models.StagePotentialFit, rec.Stage)
}

func TestWebhookForm_ValidationError(t *testing.T) {
	srv := createTestServer(t)

	sub := validSubmission()
	sub.Email = "not-an-email"
	rr := doJSON(t, srv, http.MethodPost, "/webhook/form", sub)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "email", body["field"])
}

func TestGetCandidate(t *testing.T) {
	srv := createTestServer(t)
	doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	rr := doJSON(t, srv, http.MethodGet, "/candidates/jane@example.com", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, srv, http.MethodGet, "/candidates/nobody@example.com", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "CANDIDATE_NOT_FOUND", body["code"])
}

func TestOperationOnWrongStageConflicts(t *testing.T) {
	srv := createTestServer(t)
	doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	// Candidate sits in POTENTIAL_FIT; an interest response is premature.
	rr := doJSON(t, srv, http.MethodPost, "/candidates/jane@example.com/ops/interest-response",
		map[string]string{"response": "YES"})

	require.Equal(t, http.StatusConflict, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_STAGE", body["code"])
}

func TestApproveDraftFlow(t *testing.T) {
	srv := createTestServer(t)
	doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	rr := doJSON(t, srv, http.MethodPost, "/candidates/jane@example.com/ops/approve-draft",
		map[string]string{"author": "Achieng"})
	require.Equal(t, http.StatusOK, rr.Code)

	var rec models.CandidateRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, models.StageInterestCheckSent, rec.Stage)
	assert.Empty(t, rec.DraftMessage)
}

func TestListCandidates(t *testing.T) {
	srv := createTestServer(t)
	doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	rr := doJSON(t, srv, http.MethodGet, "/candidates", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var records []models.CandidateRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestReportsEndpoints(t *testing.T) {
	srv := createTestServer(t)
	doJSON(t, srv, http.MethodPost, "/webhook/form", validSubmission())

	for _, path := range []string{"/reports/funnel", "/reports/stats", "/reports/cycle-times", "/reports/forecast"} {
		rr := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestSweepEndpoint(t *testing.T) {
	srv := createTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/sweep", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var result workflow.SweepResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Scanned)
}

func TestHealthz(t *testing.T) {
	srv := createTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
