// internal/workflow/transitions.go
package workflow

import "github.com/QuadKenya/growth-engine/internal/models"

// transitionTable is the primary stage flow. Manual holding and
// rejection moves (WARM_LEAD, TURNED_DOWN, INACTIVE) are additionally
// allowed from any non-terminal stage; see CanTransition.
var transitionTable = map[models.PipelineStage][]models.PipelineStage{
	models.StageExpressedInterest: {
		models.StageNoFit,
		models.StageWarmLead,
		models.StagePotentialFit,
	},
	models.StagePotentialFit: {
		models.StageInterestCheckSent,
	},
	models.StageInterestCheckSent: {
		models.StageFAQSent,
		models.StageWarmLead,
		models.StageTurnedDown,
	},
	models.StageFAQSent: {
		models.StageReadyForCall,
	},
	models.StageReadyForCall: {
		models.StageKYCScreening,
	},
	models.StageKYCScreening: {
		models.StageFinancialAssessment,
	},
	models.StageFinancialAssessment: {
		models.StageAssessmentPsych,
		models.StageWarmLead,
	},
	models.StageAssessmentPsych: {
		models.StageAssessmentInterview,
	},
	models.StageAssessmentInterview: {
		models.StageSiteSearch,
		models.StageTurnedDown,
	},
	models.StageSiteSearch: {
		models.StageSitePreVisit,
	},
	models.StageSitePreVisit: {
		models.StageSitePostVisit,
	},
	models.StageSitePostVisit: {
		models.StageContracting,
		models.StageSiteSearch, // retry after a failed scorecard
	},
	models.StageContracting: {
		models.StageContractClosed,
	},
	models.StageWarmLead: {
		models.StagePotentialFit, // reactivation
	},
}

// manualTargets may be entered from any non-terminal stage.
var manualTargets = map[models.PipelineStage]bool{
	models.StageWarmLead:   true,
	models.StageTurnedDown: true,
	models.StageInactive:   true,
}

// CanTransition reports whether the state machine permits from -> to.
func CanTransition(from, to models.PipelineStage) bool {
	if from.Terminal() {
		return false
	}
	if manualTargets[to] {
		return true
	}
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
