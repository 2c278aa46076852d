// internal/workflow/orchestrator.go
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/common/metrics"
	"github.com/QuadKenya/growth-engine/internal/drafting"
	"github.com/QuadKenya/growth-engine/internal/engine/finance"
	"github.com/QuadKenya/growth-engine/internal/engine/scoring"
	"github.com/QuadKenya/growth-engine/internal/engine/site"
	"github.com/QuadKenya/growth-engine/internal/lock"
	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/search"
	"github.com/QuadKenya/growth-engine/internal/store"
)

// InterestResponse is a candidate's reply to the interest check.
type InterestResponse string

const (
	ResponseYes   InterestResponse = "YES"
	ResponseMaybe InterestResponse = "MAYBE"
	ResponseNo    InterestResponse = "NO"
)

// Checklist types selected when a candidate enters compliance.
const (
	ChecklistKYC = "KYC"
	ChecklistKYB = "KYB"
	// ChecklistSitePreVisit is the pre-visit site checklist definition.
	ChecklistSitePreVisit = "SITE_PRE_VISIT"
)

// Deps are the orchestrator's collaborators, injected at construction.
type Deps struct {
	Store   store.Store
	Drafter drafting.Drafter
	Scorer  *scoring.Engine
	Finance *finance.Calculator
	Site    *site.Calculator
	Rules   *config.Rules
	Locker  lock.Locker
	Indexer search.Indexer
	Logger  logger.Logger
	Now     func() time.Time
}

// Orchestrator is the stage machine. It is the only component that
// mutates candidate records: every operation loads by id under a
// per-record lock, applies engine calls, appends audit entries and
// persists.
type Orchestrator struct {
	store   store.Store
	drafter drafting.Drafter
	scorer  *scoring.Engine
	finance *finance.Calculator
	site    *site.Calculator
	rules   *config.Rules
	locker  lock.Locker
	indexer search.Indexer
	logger  logger.Logger
	now     func() time.Time
}

func New(deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Indexer == nil {
		deps.Indexer = search.NopIndexer{}
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewMemoryLocker()
	}
	return &Orchestrator{
		store:   deps.Store,
		drafter: deps.Drafter,
		scorer:  deps.Scorer,
		finance: deps.Finance,
		site:    deps.Site,
		rules:   deps.Rules,
		locker:  deps.Locker,
		indexer: deps.Indexer,
		logger:  deps.Logger.WithFields(map[string]interface{}{"component": "orchestrator"}),
		now:     deps.Now,
	}
}

// Ingest processes a new raw submission end to end: validate, hard
// gates, scoring, classification, soft-rejection routing, priority and
// the first outbound draft.
func (o *Orchestrator) Ingest(ctx context.Context, sub models.Submission) (*models.CandidateRecord, error) {
	now := o.now()

	rec, err := models.NewCandidate(sub, now)
	if err != nil {
		metrics.OperationsFailed.WithLabelValues("ingest", string(apperrors.ErrCodeValidationFailed)).Inc()
		return nil, err
	}

	release, err := o.locker.Acquire(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	defer o.observe("ingest", now)

	// A repeat webhook POST must not reset a candidate already in the
	// pipeline; stage changes go through the operations, never ingest.
	if _, err := o.store.Get(ctx, rec.ID); err == nil {
		metrics.OperationsFailed.WithLabelValues("ingest", string(apperrors.ErrCodeDuplicateCandidate)).Inc()
		return nil, apperrors.NewDuplicateCandidateError(rec.ID)
	} else if err != store.ErrNotFound {
		metrics.OperationsFailed.WithLabelValues("ingest", string(apperrors.ErrCodeStoreUnavailable)).Inc()
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	rec.AppendAudit("", models.AuditSystem, "Application received", now)

	gate := o.scorer.CheckHardGates(rec)
	if !gate.Passed {
		rec.RejectionType = models.RejectionHard
		rec.RejectionReason = gate.Reason
		o.transition(rec, models.StageNoFit, now,
			fmt.Sprintf("Hard gate failed: %s", gate.Reason))
		o.draft(rec, drafting.TemplateHardRejection, now)
		metrics.Rejections.WithLabelValues(string(models.RejectionHard), gate.Reason).Inc()
		return rec, o.persist(ctx, rec)
	}

	score, breakdown := o.scorer.CalculateScore(rec)
	rec.FitScore = score
	rec.FitClassification = o.scorer.Classify(score)
	rec.FinancialReadiness = o.scorer.ReadinessLabel(rec.FinancialReadinessInput, "financial")
	rec.LocationReadiness = o.scorer.ReadinessLabel(rec.LocationStatusInput, "location")
	rec.AppendAudit("", models.AuditScoring,
		fmt.Sprintf("Scored %.4f across %d criteria: %s", score, len(breakdown), rec.FitClassification), now)

	if rec.FitClassification == models.ClassificationNotAFit {
		soft := o.scorer.ClassifySoftRejection(rec)
		if soft.IsSoft {
			o.rejectSoft(rec, soft.Reason, now)
		} else {
			rec.RejectionType = models.RejectionHard
			rec.RejectionReason = "Did not meet minimum fit criteria"
			o.transition(rec, models.StageNoFit, now, "Below every classification threshold")
			o.draft(rec, drafting.TemplateHardRejection, now)
			metrics.Rejections.WithLabelValues(string(models.RejectionHard), rec.RejectionReason).Inc()
		}
		return rec, o.persist(ctx, rec)
	}

	rec.PriorityRank = o.scorer.DeterminePriority(rec)
	o.transition(rec, models.StagePotentialFit, now,
		fmt.Sprintf("Qualified as %s, priority rank %d", rec.FitClassification, rec.PriorityRank))
	o.draft(rec, draftForPriority(rec.PriorityRank), now)

	return rec, o.persist(ctx, rec)
}

// rejectSoft routes a nurturable candidate to WARM_LEAD with a wake-up
// date: a long window for experience gaps, a short one otherwise.
func (o *Orchestrator) rejectSoft(rec *models.CandidateRecord, reason scoring.SoftReason, now time.Time) {
	days := o.rules.Prioritization.WakeUpDaysDefault
	template := drafting.TemplateSoftRejectFinancial
	switch reason {
	case scoring.SoftExperience:
		days = o.rules.Prioritization.WakeUpDaysExperience
		template = drafting.TemplateSoftRejectExperience
	case scoring.SoftLocation:
		template = drafting.TemplateSoftRejectLocation
	}

	wake := rec.Timestamp.AddDate(0, 0, days)
	rec.WakeUpDate = &wake
	rec.RejectionType = models.RejectionSoft
	rec.RejectionReason = string(reason)
	o.transition(rec, models.StageWarmLead, now,
		fmt.Sprintf("Soft rejection (%s), wake-up in %d days", reason, days))
	o.draft(rec, template, now)
	metrics.Rejections.WithLabelValues(string(models.RejectionSoft), string(reason)).Inc()
}

// HandleInterestResponse records the candidate's reply to the interest
// check and routes accordingly.
func (o *Orchestrator) HandleInterestResponse(ctx context.Context, id string, response InterestResponse) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "handle_interest_response", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageInterestCheckSent {
			return apperrors.NewInvalidStageError("handle_interest_response", string(rec.Stage))
		}

		switch response {
		case ResponseYes:
			o.transition(rec, models.StageFAQSent, now, "Candidate confirmed interest")
			o.draft(rec, drafting.TemplateFAQScreen, now)
		case ResponseMaybe:
			wake := now.AddDate(0, 0, o.rules.Prioritization.WakeUpDaysDefault)
			rec.WakeUpDate = &wake
			o.transition(rec, models.StageWarmLead, now, "Candidate undecided, parked warm")
		case ResponseNo:
			o.transition(rec, models.StageTurnedDown, now, "Candidate declined to proceed")
		default:
			return apperrors.NewValidationError("response", fmt.Sprintf("unknown interest response %q", response))
		}
		return nil
	})
}

// ApproveDraft is the human sign-off on a pending outbound message.
// An edited text overrides the draft before it is recorded as sent;
// approval clears the draft, stamps last contact and advances the
// stage one step where the flow defines one.
func (o *Orchestrator) ApproveDraft(ctx context.Context, id, override, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "approve_draft", id, func(rec *models.CandidateRecord, now time.Time) error {
		if !rec.HasDraft() {
			return apperrors.NewNoDraftPendingError(id)
		}

		if override != "" {
			rec.DraftMessage = override
		}

		channel := "Email"
		if strings.Contains(rec.DraftMessage, "WhatsApp") {
			channel = "WhatsApp"
		}
		rec.MarkContacted(channel, now)
		rec.AppendAudit(author, models.AuditMessage,
			fmt.Sprintf("Draft approved and sent via %s", channel), now)
		rec.DraftMessage = ""

		switch rec.Stage {
		case models.StagePotentialFit:
			o.transition(rec, models.StageInterestCheckSent, now, "Interest check sent")
		case models.StageFAQSent:
			o.transition(rec, models.StageReadyForCall, now, "FAQ acknowledged, ready for intro call")
		}
		return nil
	})
}

// InitializeChecklist selects the compliance checklist and moves the
// candidate into KYC screening. An empty checklistType picks KYB for
// clinic owners and KYC otherwise.
func (o *Orchestrator) InitializeChecklist(ctx context.Context, id, checklistType, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "initialize_checklist", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageReadyForCall {
			return apperrors.NewInvalidStageError("initialize_checklist", string(rec.Stage))
		}

		if checklistType == "" {
			checklistType = ChecklistKYC
			if rec.OwnsClinic() {
				checklistType = ChecklistKYB
			}
		}

		items, ok := o.rules.Checklists[checklistType]
		if !ok {
			return apperrors.NewChecklistUndefinedError(checklistType)
		}

		rec.ChecklistType = checklistType
		rec.ChecklistStatus = make(map[string]bool, len(items))
		for _, item := range items {
			rec.ChecklistStatus[item] = false
		}

		o.transition(rec, models.StageKYCScreening, now,
			fmt.Sprintf("%s checklist initialized with %d items", checklistType, len(items)))
		rec.AppendAudit(author, models.AuditCompliance,
			fmt.Sprintf("Checklist %s started", checklistType), now)
		return nil
	})
}

// UpdateChecklistItem sets one compliance item. Items outside the
// current checklist are ignored. When the last item is checked the
// completion rule fires and the candidate advances automatically.
func (o *Orchestrator) UpdateChecklistItem(ctx context.Context, id, item string, checked bool, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "update_checklist", id, func(rec *models.CandidateRecord, now time.Time) error {
		if _, ok := rec.ChecklistStatus[item]; !ok {
			o.logger.Warn("checklist item not in current checklist, ignoring", map[string]interface{}{
				"candidateId": id,
				"item":        item,
			})
			return nil
		}

		rec.ChecklistStatus[item] = checked
		rec.AppendAudit(author, models.AuditCompliance,
			fmt.Sprintf("Checklist item %q set to %t", item, checked), now)

		if rec.Stage == models.StageKYCScreening && allChecked(rec.ChecklistStatus) {
			o.transition(rec, models.StageFinancialAssessment, now,
				"All compliance documents received")
		}
		return nil
	})
}

// SubmitFinancialAssessment runs the capacity calculator over the
// candidate's bank-statement data and routes on the outcome.
func (o *Orchestrator) SubmitFinancialAssessment(ctx context.Context, id string, data *models.FinancialData, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "submit_financial_assessment", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageFinancialAssessment {
			return apperrors.NewInvalidStageError("submit_financial_assessment", string(rec.Stage))
		}

		results, err := o.finance.Assess(data)
		if err != nil {
			return err
		}

		rec.Financial = data
		rec.FinancialResults = results
		rec.AppendAudit(author, models.AuditFinance,
			fmt.Sprintf("Financial assessment: revenue %.0f (pass=%t), installment capacity %.0f (pass=%t)",
				results.TotalRevenue, results.RevenuePass,
				results.InstallmentCapacity, results.InstallmentPass), now)

		if results.OverallPass {
			o.transition(rec, models.StageAssessmentPsych, now, "Financial capacity confirmed")
			return nil
		}

		wake := now.AddDate(0, 0, o.rules.Prioritization.WakeUpDaysDefault)
		rec.WakeUpDate = &wake
		rec.RejectionType = models.RejectionSoft
		rec.RejectionReason = "financial threshold"
		o.transition(rec, models.StageWarmLead, now, "Financial capacity below threshold, parked warm")
		metrics.Rejections.WithLabelValues(string(models.RejectionSoft), "financial threshold").Inc()
		return nil
	})
}

// CompletePsychAssessment advances a candidate who finished the
// psychometric stage to the interview.
func (o *Orchestrator) CompletePsychAssessment(ctx context.Context, id, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "complete_psych_assessment", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageAssessmentPsych {
			return apperrors.NewInvalidStageError("complete_psych_assessment", string(rec.Stage))
		}
		o.transition(rec, models.StageAssessmentInterview, now, "Psychometric assessment completed")
		rec.AppendAudit(author, models.AuditManual, "Psychometric assessment recorded", now)
		return nil
	})
}

// LogInterviewResult records the panel decision.
func (o *Orchestrator) LogInterviewResult(ctx context.Context, id string, passed bool, notes, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "log_interview_result", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageAssessmentInterview {
			return apperrors.NewInvalidStageError("log_interview_result", string(rec.Stage))
		}

		rec.AppendAudit(author, models.AuditManual,
			fmt.Sprintf("Interview result: passed=%t. %s", passed, notes), now)

		if passed {
			o.transition(rec, models.StageSiteSearch, now, "Interview passed, starting site search")
		} else {
			rec.RejectionType = models.RejectionHard
			rec.RejectionReason = "Failed assessment interview"
			o.transition(rec, models.StageTurnedDown, now, "Interview failed")
			metrics.Rejections.WithLabelValues(string(models.RejectionHard), rec.RejectionReason).Inc()
		}
		return nil
	})
}

// StartSiteReview opens the pre-visit checklist for a proposed site.
func (o *Orchestrator) StartSiteReview(ctx context.Context, id, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "start_site_review", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageSiteSearch {
			return apperrors.NewInvalidStageError("start_site_review", string(rec.Stage))
		}

		items := o.rules.Checklists[ChecklistSitePreVisit]
		preVisit := make(map[string]bool, len(items))
		for _, item := range items {
			preVisit[item] = false
		}
		rec.Site = &models.SiteData{PreVisit: preVisit}

		o.transition(rec, models.StageSitePreVisit, now, "Site review started")
		rec.AppendAudit(author, models.AuditSite, "Pre-visit checklist opened", now)
		return nil
	})
}

// UpdatePreVisitChecklist sets one pre-visit item; once every item is
// checked the candidate auto-advances to the post-visit scorecard.
func (o *Orchestrator) UpdatePreVisitChecklist(ctx context.Context, id, item string, checked bool, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "update_pre_visit_checklist", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageSitePreVisit || rec.Site == nil {
			return apperrors.NewInvalidStageError("update_pre_visit_checklist", string(rec.Stage))
		}
		if _, ok := rec.Site.PreVisit[item]; !ok {
			o.logger.Warn("pre-visit item not in checklist, ignoring", map[string]interface{}{
				"candidateId": id,
				"item":        item,
			})
			return nil
		}

		rec.Site.PreVisit[item] = checked
		rec.AppendAudit(author, models.AuditSite,
			fmt.Sprintf("Pre-visit item %q set to %t", item, checked), now)

		if allChecked(rec.Site.PreVisit) {
			o.transition(rec, models.StageSitePostVisit, now, "Pre-visit checklist complete")
		}
		return nil
	})
}

// SubmitSiteScorecard evaluates the post-visit scorecard. A pass moves
// to contracting with the contract date stamped; a fail sends the
// candidate back to site search with the reasons logged.
func (o *Orchestrator) SubmitSiteScorecard(ctx context.Context, id string, card *models.SiteScorecard, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "submit_site_scorecard", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageSitePostVisit {
			return apperrors.NewInvalidStageError("submit_site_scorecard", string(rec.Stage))
		}

		results := o.site.Evaluate(card)
		if rec.Site == nil {
			rec.Site = &models.SiteData{}
		}
		rec.Site.Scorecard = card
		rec.SiteResults = results

		rec.AppendAudit(author, models.AuditSite,
			fmt.Sprintf("Site scorecard: composite %.2f, competition %s, overall pass=%t",
				results.CompositeScore, results.CompetitionTier, results.OverallPass), now)

		if results.OverallPass {
			contract := now
			rec.ContractDate = &contract
			o.transition(rec, models.StageContracting, now, "Site approved, moving to contracting")
			return nil
		}

		o.transition(rec, models.StageSiteSearch, now,
			fmt.Sprintf("Site rejected: %s", strings.Join(o.siteFailures(results), ", ")))
		return nil
	})
}

// CloseContract completes the pipeline.
func (o *Orchestrator) CloseContract(ctx context.Context, id, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "close_contract", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageContracting {
			return apperrors.NewInvalidStageError("close_contract", string(rec.Stage))
		}
		o.transition(rec, models.StageContractClosed, now, "Contract signed")
		rec.AppendAudit(author, models.AuditManual, "Contract closed", now)
		return nil
	})
}

// MoveToWarm is a manual override parking an active candidate warm.
func (o *Orchestrator) MoveToWarm(ctx context.Context, id, reason, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "move_to_warm", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage.Terminal() {
			return apperrors.NewInvalidStageError("move_to_warm", string(rec.Stage))
		}
		wake := now.AddDate(0, 0, o.rules.Prioritization.WakeUpDaysDefault)
		rec.WakeUpDate = &wake
		o.transition(rec, models.StageWarmLead, now, fmt.Sprintf("Parked warm: %s", reason))
		rec.AppendAudit(author, models.AuditManual, fmt.Sprintf("Moved to warm list: %s", reason), now)
		return nil
	})
}

// HardReject is a manual override ending a candidate's pipeline.
func (o *Orchestrator) HardReject(ctx context.Context, id, reason, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "hard_reject", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage.Terminal() {
			return apperrors.NewInvalidStageError("hard_reject", string(rec.Stage))
		}
		rec.RejectionType = models.RejectionHard
		rec.RejectionReason = reason
		o.transition(rec, models.StageTurnedDown, now, fmt.Sprintf("Manually rejected: %s", reason))
		o.draft(rec, drafting.TemplateHardRejection, now)
		rec.AppendAudit(author, models.AuditManual, fmt.Sprintf("Hard rejected: %s", reason), now)
		metrics.Rejections.WithLabelValues(string(models.RejectionHard), reason).Inc()
		return nil
	})
}

// ReactivateLead pulls a warm lead back into the pipeline, recomputing
// priority and regenerating the appropriate outreach draft.
func (o *Orchestrator) ReactivateLead(ctx context.Context, id, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "reactivate_lead", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Stage != models.StageWarmLead {
			return apperrors.NewInvalidStageError("reactivate_lead", string(rec.Stage))
		}

		rec.WakeUpDate = nil
		rec.RejectionType = models.RejectionNone
		rec.RejectionReason = ""
		rec.PriorityRank = o.scorer.DeterminePriority(rec)

		o.transition(rec, models.StagePotentialFit, now,
			fmt.Sprintf("Reactivated at priority rank %d", rec.PriorityRank))
		o.draft(rec, draftForPriority(rec.PriorityRank), now)
		rec.AppendAudit(author, models.AuditManual, "Lead reactivated", now)
		return nil
	})
}

// AddNote appends an operator note without touching workflow state.
func (o *Orchestrator) AddNote(ctx context.Context, id, text, author string) (*models.CandidateRecord, error) {
	return o.withRecord(ctx, "add_note", id, func(rec *models.CandidateRecord, now time.Time) error {
		if rec.Notes == "" {
			rec.Notes = text
		} else {
			rec.Notes = rec.Notes + "\n" + text
		}
		rec.AppendAudit(author, models.AuditNote, text, now)
		return nil
	})
}

// Get returns a candidate by id.
func (o *Orchestrator) Get(ctx context.Context, id string) (*models.CandidateRecord, error) {
	rec, err := o.store.Get(ctx, id)
	if err == store.ErrNotFound {
		return nil, apperrors.NewCandidateNotFoundError(id)
	}
	return rec, err
}

// List returns every candidate sorted by application time, newest
// first. The store does not guarantee order, so sort here.
func (o *Orchestrator) List(ctx context.Context) ([]*models.CandidateRecord, error) {
	records, err := o.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// --- internals ---

// withRecord runs fn over the record under its lock, then persists.
func (o *Orchestrator) withRecord(ctx context.Context, op, id string, fn func(*models.CandidateRecord, time.Time) error) (*models.CandidateRecord, error) {
	release, err := o.locker.Acquire(ctx, id)
	if err != nil {
		metrics.OperationsFailed.WithLabelValues(op, string(apperrors.ErrCodeLockNotAcquired)).Inc()
		return nil, err
	}
	defer release()

	start := o.now()
	defer o.observe(op, start)

	rec, err := o.store.Get(ctx, id)
	if err == store.ErrNotFound {
		metrics.OperationsFailed.WithLabelValues(op, string(apperrors.ErrCodeCandidateNotFound)).Inc()
		return nil, apperrors.NewCandidateNotFoundError(id)
	}
	if err != nil {
		metrics.OperationsFailed.WithLabelValues(op, string(apperrors.ErrCodeStoreUnavailable)).Inc()
		return nil, apperrors.NewStoreUnavailableError(err)
	}

	if err := fn(rec, start); err != nil {
		if stdErr, ok := err.(*apperrors.StandardError); ok {
			metrics.OperationsFailed.WithLabelValues(op, string(stdErr.Code)).Inc()
		}
		return nil, err
	}

	return rec, o.persist(ctx, rec)
}

// transition validates and applies a stage change with audit and
// metrics. An edge the table does not permit is logged and skipped;
// the record is never left in an undeclared state.
func (o *Orchestrator) transition(rec *models.CandidateRecord, to models.PipelineStage, now time.Time, note string) {
	from := rec.Stage
	if !CanTransition(from, to) {
		o.logger.Error("transition not permitted by state machine", map[string]interface{}{
			"candidateId": rec.ID,
			"from":        from,
			"to":          to,
		})
		return
	}

	rec.EnterStage(to, now)
	rec.AppendAudit("", models.AuditTransition,
		fmt.Sprintf("%s -> %s: %s", from, to, note), now)
	metrics.PipelineTransitions.WithLabelValues(string(from), string(to)).Inc()

	o.logger.Info("stage transition", map[string]interface{}{
		"candidateId": rec.ID,
		"from":        from,
		"to":          to,
	})
}

func (o *Orchestrator) draft(rec *models.CandidateRecord, template string, now time.Time) {
	rec.DraftMessage = o.drafter.GenerateDraft(rec, template)
	rec.AppendAudit("", models.AuditMessage,
		fmt.Sprintf("Draft prepared from template %q, awaiting approval", template), now)
	metrics.DraftsGenerated.WithLabelValues(template).Inc()
}

func (o *Orchestrator) persist(ctx context.Context, rec *models.CandidateRecord) error {
	if err := o.store.Upsert(ctx, rec); err != nil {
		return apperrors.NewStoreUnavailableError(err)
	}
	if err := o.indexer.Index(ctx, rec); err != nil {
		// Search is a convenience view; the store already has the truth.
		o.logger.Warn("search index update failed", map[string]interface{}{
			"candidateId": rec.ID,
			"error":       err,
		})
	}
	return nil
}

func (o *Orchestrator) observe(op string, start time.Time) {
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func draftForPriority(rank int) string {
	if rank == 1 {
		return drafting.TemplateInviteToCallPriority
	}
	return drafting.TemplateInterestCheck
}

func allChecked(items map[string]bool) bool {
	if len(items) == 0 {
		return false
	}
	for _, done := range items {
		if !done {
			return false
		}
	}
	return true
}

func (o *Orchestrator) siteFailures(r *models.SiteResults) []string {
	var reasons []string
	if !r.CompetitionPass {
		reasons = append(reasons, "competition tier Red")
	}
	if !r.TrafficPass {
		reasons = append(reasons, "foot traffic below minimum")
	}
	if r.CompositeScore < o.rules.SiteVetting.PassThreshold {
		reasons = append(reasons, fmt.Sprintf("composite score %.2f below threshold", r.CompositeScore))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "composite score below threshold")
	}
	return reasons
}
