// internal/workflow/sweep.go
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/drafting"
	"github.com/QuadKenya/growth-engine/internal/models"
)

// SweepResult summarizes one pass over the pipeline.
type SweepResult struct {
	Scanned     int      `json:"scanned"`
	Nudged      []string `json:"nudged,omitempty"`
	Reactivated []string `json:"reactivated,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// RunSweep walks every candidate once: warm leads whose wake-up date
// has passed come back into the pipeline, and stuck active candidates
// get a nudge draft queued for approval. Candidates already holding a
// pending draft are skipped so the sweep never stacks messages.
func (o *Orchestrator) RunSweep(ctx context.Context, cfg config.SweepConfig) (*SweepResult, error) {
	records, err := o.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := o.now()
	result := &SweepResult{Scanned: len(records)}

	for _, rec := range records {
		switch {
		case rec.Stage == models.StageWarmLead:
			if rec.WakeUpDate != nil && !rec.WakeUpDate.After(now) {
				if _, err := o.ReactivateLead(ctx, rec.ID, "Sweep"); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
					continue
				}
				result.Reactivated = append(result.Reactivated, rec.ID)
			}

		case rec.Stage.Terminal() || rec.HasDraft():
			// nothing to do

		default:
			if template, ok := o.nudgeFor(rec, cfg, now); ok {
				if _, err := o.queueNudge(ctx, rec.ID, template); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rec.ID, err))
					continue
				}
				result.Nudged = append(result.Nudged, rec.ID)
			}
		}
	}

	o.logger.Info("sweep completed", map[string]interface{}{
		"scanned":     result.Scanned,
		"nudged":      len(result.Nudged),
		"reactivated": len(result.Reactivated),
		"errors":      len(result.Errors),
	})
	return result, nil
}

// nudgeFor decides whether a candidate has sat in its current stage
// past the SLA and which reminder applies.
func (o *Orchestrator) nudgeFor(rec *models.CandidateRecord, cfg config.SweepConfig, now time.Time) (string, bool) {
	entered, ok := rec.StageHistory[string(rec.Stage)]
	if !ok {
		return "", false
	}
	// An outbound touch after entering the stage resets the clock.
	if rec.LastContactDate != nil && rec.LastContactDate.After(entered) {
		entered = *rec.LastContactDate
	}
	age := int(now.Sub(entered).Hours() / 24)

	switch rec.Stage {
	case models.StageReadyForCall:
		if age >= cfg.NudgeAfterDays {
			return drafting.TemplateNudgeBooking, true
		}
	case models.StageKYCScreening:
		if age >= cfg.NudgeAfterDays {
			return drafting.TemplateChecklistReminder, true
		}
	case models.StageContracting:
		if age >= cfg.ProposalAfterDays {
			return drafting.TemplateNudgeProposal, true
		}
	}
	return "", false
}

// queueNudge re-loads the record under its lock and attaches the
// reminder draft; the sweep's earlier read may be stale by now.
func (o *Orchestrator) queueNudge(ctx context.Context, id, template string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "queue_nudge", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage.Terminal() || rec.HasDraft() {
			return nil
		}
		o.draft(rec, template, now)
		return nil
	})
}
