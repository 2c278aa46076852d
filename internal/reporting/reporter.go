// internal/reporting/reporter.go
package reporting

import (
	"context"
	"math"
	"time"

	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/store"
)

// funnelOrder is the stage sequence reports present, from first touch
// to signed contract. Terminal offramps are reported separately.
var funnelOrder = []models.PipelineStage{
	models.StageExpressedInterest,
	models.StagePotentialFit,
	models.StageInterestCheckSent,
	models.StageFAQSent,
	models.StageReadyForCall,
	models.StageKYCScreening,
	models.StageFinancialAssessment,
	models.StageAssessmentPsych,
	models.StageAssessmentInterview,
	models.StageSiteSearch,
	models.StageSitePreVisit,
	models.StageSitePostVisit,
	models.StageContracting,
	models.StageContractClosed,
}

// FunnelRow is one stage's slice of the funnel.
type FunnelRow struct {
	Stage   models.PipelineStage `json:"stage"`
	Current int                  `json:"current"`
	Reached int                  `json:"reached"`
}

// FunnelReport shows where candidates sit now and how many ever
// reached each stage.
type FunnelReport struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	Total       int         `json:"total"`
	Rows        []FunnelRow `json:"rows"`
	NoFit       int         `json:"noFit"`
	TurnedDown  int         `json:"turnedDown"`
	Inactive    int         `json:"inactive"`
	WarmLeads   int         `json:"warmLeads"`
}

// PipelineStats are the headline numbers operators watch.
type PipelineStats struct {
	GeneratedAt    time.Time      `json:"generatedAt"`
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	Hot            int            `json:"hot"`
	Warm           int            `json:"warm"`
	HotWarmRatio   float64        `json:"hotWarmRatio"`
	Closed         int            `json:"closed"`
	Rejected       int            `json:"rejected"`
	ByPriority     map[int]int    `json:"byPriority"`
	Classification map[string]int `json:"classification"`
}

// CycleTimeRow is the average dwell between two adjacent stages, in
// days, over the candidates that made the hop.
type CycleTimeRow struct {
	From    models.PipelineStage `json:"from"`
	To      models.PipelineStage `json:"to"`
	AvgDays float64              `json:"avgDays"`
	Count   int                  `json:"count"`
}

// Forecast projects closes from candidates currently in flight, using
// the observed reach-through rate from each stage to a closed contract.
type Forecast struct {
	GeneratedAt     time.Time                      `json:"generatedAt"`
	ProjectedCloses float64                        `json:"projectedCloses"`
	StageRates      map[models.PipelineStage]float64 `json:"stageRates"`
}

// Reporter builds read-only state-of-the-pipeline views.
type Reporter struct {
	store  store.Store
	logger logger.Logger
	now    func() time.Time
}

func New(s store.Store, log logger.Logger, now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		store:  s,
		logger: log.WithFields(map[string]interface{}{"component": "reporter"}),
		now:    now,
	}
}

// Funnel counts candidates per stage, both where they are now and how
// many ever reached the stage.
func (r *Reporter) Funnel(ctx context.Context) (*FunnelReport, error) {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &FunnelReport{GeneratedAt: r.now(), Total: len(records)}
	current := make(map[models.PipelineStage]int)
	reached := make(map[models.PipelineStage]int)

	for _, rec := range records {
		current[rec.Stage]++
		for stage := range rec.StageHistory {
			reached[models.PipelineStage(stage)]++
		}
	}

	for _, stage := range funnelOrder {
		report.Rows = append(report.Rows, FunnelRow{
			Stage:   stage,
			Current: current[stage],
			Reached: reached[stage],
		})
	}
	report.NoFit = current[models.StageNoFit]
	report.TurnedDown = current[models.StageTurnedDown]
	report.Inactive = current[models.StageInactive]
	report.WarmLeads = current[models.StageWarmLead]
	return report, nil
}

// Stats computes the headline pipeline numbers. Hot means an active
// candidate past the interest check; warm is the parked list.
func (r *Reporter) Stats(ctx context.Context) (*PipelineStats, error) {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &PipelineStats{
		GeneratedAt:    r.now(),
		Total:          len(records),
		ByPriority:     make(map[int]int),
		Classification: make(map[string]int),
	}

	for _, rec := range records {
		stats.Classification[rec.FitClassification]++
		if rec.PriorityRank > 0 {
			stats.ByPriority[rec.PriorityRank]++
		}

		switch {
		case rec.Stage == models.StageContractClosed:
			stats.Closed++
		case rec.Stage == models.StageWarmLead:
			stats.Warm++
		case rec.Stage.Terminal():
			stats.Rejected++
		default:
			stats.Active++
			if pastInterestCheck(rec) {
				stats.Hot++
			}
		}
	}

	if stats.Warm > 0 {
		stats.HotWarmRatio = round2(float64(stats.Hot) / float64(stats.Warm))
	}
	return stats, nil
}

// CycleTimes averages the dwell between adjacent funnel stages from
// each record's stage-entry history.
func (r *Reporter) CycleTimes(ctx context.Context) ([]CycleTimeRow, error) {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]CycleTimeRow, 0, len(funnelOrder)-1)
	for i := 0; i < len(funnelOrder)-1; i++ {
		from, to := funnelOrder[i], funnelOrder[i+1]
		var totalDays float64
		var count int
		for _, rec := range records {
			enteredFrom, okFrom := rec.StageHistory[string(from)]
			enteredTo, okTo := rec.StageHistory[string(to)]
			if !okFrom || !okTo || enteredTo.Before(enteredFrom) {
				continue
			}
			totalDays += enteredTo.Sub(enteredFrom).Hours() / 24
			count++
		}
		row := CycleTimeRow{From: from, To: to, Count: count}
		if count > 0 {
			row.AvgDays = round2(totalDays / float64(count))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ProjectCloses estimates how many in-flight candidates will close,
// weighting each by the historical close rate from their current stage.
func (r *Reporter) ProjectCloses(ctx context.Context) (*Forecast, error) {
	records, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	reached := make(map[models.PipelineStage]int)
	closedFrom := make(map[models.PipelineStage]int)
	for _, rec := range records {
		_, closed := rec.StageHistory[string(models.StageContractClosed)]
		for stage := range rec.StageHistory {
			reached[models.PipelineStage(stage)]++
			if closed {
				closedFrom[models.PipelineStage(stage)]++
			}
		}
	}

	forecast := &Forecast{
		GeneratedAt: r.now(),
		StageRates:  make(map[models.PipelineStage]float64),
	}
	for _, stage := range funnelOrder {
		if reached[stage] > 0 {
			forecast.StageRates[stage] = round2(float64(closedFrom[stage]) / float64(reached[stage]))
		}
	}

	for _, rec := range records {
		if rec.Stage.Terminal() || rec.Stage == models.StageWarmLead || rec.Stage == models.StageContractClosed {
			continue
		}
		forecast.ProjectedCloses += forecast.StageRates[rec.Stage]
	}
	forecast.ProjectedCloses = round2(forecast.ProjectedCloses)
	return forecast, nil
}

func pastInterestCheck(rec *models.CandidateRecord) bool {
	switch rec.Stage {
	case models.StageExpressedInterest, models.StagePotentialFit, models.StageInterestCheckSent:
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
