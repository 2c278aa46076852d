// internal/models/stage.go
package models

import "fmt"

// PipelineStage is the closed set of workflow stages a candidate can occupy.
type PipelineStage string

const (
	StageExpressedInterest   PipelineStage = "EXPRESSED_INTEREST"
	StagePotentialFit        PipelineStage = "POTENTIAL_FIT"
	StageNoFit               PipelineStage = "NO_FIT"
	StageWarmLead            PipelineStage = "WARM_LEAD"
	StageInterestCheckSent   PipelineStage = "INTEREST_CHECK_SENT"
	StageFAQSent             PipelineStage = "FAQ_SENT"
	StageReadyForCall        PipelineStage = "READY_FOR_CALL"
	StageKYCScreening        PipelineStage = "KYC_SCREENING"
	StageFinancialAssessment PipelineStage = "FINANCIAL_ASSESSMENT"
	StageAssessmentPsych     PipelineStage = "ASSESSMENT_PSYCH"
	StageAssessmentInterview PipelineStage = "ASSESSMENT_INTERVIEW"
	StageSiteSearch          PipelineStage = "SITE_SEARCH"
	StageSitePreVisit        PipelineStage = "SITE_PRE_VISIT"
	StageSitePostVisit       PipelineStage = "SITE_POST_VISIT"
	StageContracting         PipelineStage = "CONTRACTING"
	StageContractClosed      PipelineStage = "CONTRACT_CLOSED"
	StageTurnedDown          PipelineStage = "TURNED_DOWN"
	StageInactive            PipelineStage = "INACTIVE"
)

var allStages = map[PipelineStage]bool{
	StageExpressedInterest:   true,
	StagePotentialFit:        true,
	StageNoFit:               true,
	StageWarmLead:            true,
	StageInterestCheckSent:   true,
	StageFAQSent:             true,
	StageReadyForCall:        true,
	StageKYCScreening:        true,
	StageFinancialAssessment: true,
	StageAssessmentPsych:     true,
	StageAssessmentInterview: true,
	StageSiteSearch:          true,
	StageSitePreVisit:        true,
	StageSitePostVisit:       true,
	StageContracting:         true,
	StageContractClosed:      true,
	StageTurnedDown:          true,
	StageInactive:            true,
}

var terminalStages = map[PipelineStage]bool{
	StageNoFit:          true,
	StageTurnedDown:     true,
	StageContractClosed: true,
	StageInactive:       true,
}

// Valid reports whether s is a known pipeline stage.
func (s PipelineStage) Valid() bool {
	return allStages[s]
}

// Terminal reports whether s ends the candidate lifecycle.
func (s PipelineStage) Terminal() bool {
	return terminalStages[s]
}

// ParseStage normalizes a raw stage string at the boundary.
func ParseStage(raw string) (PipelineStage, error) {
	s := PipelineStage(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown pipeline stage %q", raw)
	}
	return s, nil
}

// RejectionType classifies how a candidate left the pipeline.
type RejectionType string

const (
	RejectionNone RejectionType = "None"
	RejectionSoft RejectionType = "Soft"
	RejectionHard RejectionType = "Hard"
)

// AuditCategory is the closed set of activity-log entry categories.
type AuditCategory string

const (
	AuditSystem     AuditCategory = "SYSTEM"
	AuditScoring    AuditCategory = "SCORING"
	AuditTransition AuditCategory = "TRANSITION"
	AuditMessage    AuditCategory = "MESSAGE"
	AuditCompliance AuditCategory = "COMPLIANCE"
	AuditFinance    AuditCategory = "FINANCE"
	AuditSite       AuditCategory = "SITE"
	AuditManual     AuditCategory = "MANUAL"
	AuditNote       AuditCategory = "NOTE"
)
