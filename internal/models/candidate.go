// internal/models/candidate.go
package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
)

// Submission is the raw key-value payload received from the intake form.
// All enumerated and free-text answers arrive as strings.
type Submission struct {
	LeadID                  string            `json:"leadId,omitempty"`
	Timestamp               string            `json:"timestamp,omitempty"`
	Email                   string            `json:"email"`
	FirstName               string            `json:"firstName"`
	MiddleName              string            `json:"middleName,omitempty"`
	LastName                string            `json:"lastName"`
	Phone                   string            `json:"phone"`
	Source                  string            `json:"source,omitempty"`
	CurrentProfession       string            `json:"currentProfession"`
	ExperienceYears         string            `json:"experienceYears"`
	HasBusinessExp          string            `json:"hasBusinessExp"`
	Certifications          string            `json:"certifications,omitempty"`
	FinancialReadinessInput string            `json:"financialReadinessInput"`
	LocationCountyInput     string            `json:"locationCountyInput"`
	LocationStatusInput     string            `json:"locationStatusInput"`
	FacilityMeta            map[string]string `json:"facilityMeta,omitempty"`
}

// AuditEntry is one append-only activity-log line on a candidate.
type AuditEntry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Author    string        `json:"author"`
	Category  AuditCategory `json:"category"`
	Text      string        `json:"text"`
	Stage     PipelineStage `json:"stage"`
}

// CandidateRecord is the canonical candidate entity flowing through the
// pipeline, keyed by a unique id (lowercased email unless supplied).
// Mutated exclusively through orchestrator operations.
type CandidateRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	MiddleName string    `json:"middleName,omitempty"`
	LastName   string    `json:"lastName"`
	Phone      string    `json:"phone"`
	Source     string    `json:"source"`

	CurrentProfession       string            `json:"currentProfession"`
	ExperienceYears         string            `json:"experienceYears"`
	HasBusinessExp          string            `json:"hasBusinessExp"`
	Certifications          string            `json:"certifications,omitempty"`
	FinancialReadinessInput string            `json:"financialReadinessInput"`
	LocationCountyInput     string            `json:"locationCountyInput"`
	LocationStatusInput     string            `json:"locationStatusInput"`
	FacilityMeta            map[string]string `json:"facilityMeta,omitempty"`

	Stage              PipelineStage `json:"stage"`
	FitScore           float64       `json:"fitScore"`
	FitClassification  string        `json:"fitClassification"`
	FinancialReadiness string        `json:"financialReadiness"`
	LocationReadiness  string        `json:"locationReadiness"`
	PriorityRank       int           `json:"priorityRank,omitempty"`
	RejectionType      RejectionType `json:"rejectionType"`
	RejectionReason    string        `json:"rejectionReason,omitempty"`
	WakeUpDate         *time.Time    `json:"wakeUpDate,omitempty"`

	ChecklistType   string          `json:"checklistType,omitempty"`
	ChecklistStatus map[string]bool `json:"checklistStatus,omitempty"`

	Financial        *FinancialData    `json:"financial,omitempty"`
	FinancialResults *FinancialResults `json:"financialResults,omitempty"`

	Site        *SiteData    `json:"site,omitempty"`
	SiteResults *SiteResults `json:"siteResults,omitempty"`

	DraftMessage       string     `json:"draftMessage,omitempty"`
	ContractDate       *time.Time `json:"contractDate,omitempty"`
	LastContactDate    *time.Time `json:"lastContactDate,omitempty"`
	LastContactChannel string     `json:"lastContactChannel,omitempty"`
	Notes              string     `json:"notes,omitempty"`

	StageHistory map[string]time.Time `json:"stageHistory,omitempty"`
	ActivityLog  []AuditEntry         `json:"activityLog,omitempty"`
}

const (
	// ClassificationUnscored is the neutral default until scoring runs.
	ClassificationUnscored = "Unscored"
	// ClassificationNotAFit is the fallback label below every threshold.
	ClassificationNotAFit = "Not A Fit"
)

// Timestamp layouts accepted from the intake form, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
}

// NewCandidate validates a raw submission and builds a record with
// defaults applied. Identity fields are checked up front; everything
// else passes through for the engines to judge.
func NewCandidate(s Submission, now time.Time) (*CandidateRecord, error) {
	if err := validation.Validate(s.Email, validation.Required, is.EmailFormat); err != nil {
		return nil, apperrors.NewValidationError("email", err.Error())
	}
	if err := validation.Validate(s.FirstName, validation.Required); err != nil {
		return nil, apperrors.NewValidationError("firstName", err.Error())
	}
	if err := validation.Validate(s.LastName, validation.Required); err != nil {
		return nil, apperrors.NewValidationError("lastName", err.Error())
	}
	if err := validation.Validate(s.Phone, validation.Required); err != nil {
		return nil, apperrors.NewValidationError("phone", err.Error())
	}

	id := strings.ToLower(strings.TrimSpace(s.LeadID))
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(s.Email))
	}

	source := s.Source
	if source == "" {
		source = "Web"
	}

	ts := ParseTimestamp(s.Timestamp, now)
	rec := &CandidateRecord{
		ID:         id,
		Timestamp:  ts,
		Email:      strings.TrimSpace(s.Email),
		FirstName:  strings.TrimSpace(s.FirstName),
		MiddleName: strings.TrimSpace(s.MiddleName),
		LastName:   strings.TrimSpace(s.LastName),
		Phone:      NormalizePhone(s.Phone),
		Source:     source,

		CurrentProfession:       s.CurrentProfession,
		ExperienceYears:         s.ExperienceYears,
		HasBusinessExp:          s.HasBusinessExp,
		Certifications:          s.Certifications,
		FinancialReadinessInput: s.FinancialReadinessInput,
		LocationCountyInput:     s.LocationCountyInput,
		LocationStatusInput:     s.LocationStatusInput,
		FacilityMeta:            s.FacilityMeta,

		Stage:             StageExpressedInterest,
		FitScore:          0.0,
		FitClassification: ClassificationUnscored,
		RejectionType:     RejectionNone,
		StageHistory:      map[string]time.Time{string(StageExpressedInterest): ts},
	}
	return rec, nil
}

// NormalizePhone strips non-digits and rewrites Kenyan national formats
// to the international 254 prefix. Already-international numbers pass
// through unchanged.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "0"):
		return "254" + digits[1:]
	case strings.HasPrefix(digits, "7"):
		return "254" + digits
	default:
		return digits
	}
}

// ParseTimestamp accepts the intake form's known timestamp layouts,
// stripping any fractional-seconds suffix first. Unparseable input
// defaults to now; the original text is not otherwise needed.
func ParseTimestamp(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	clean := raw
	if i := strings.Index(clean, "."); i >= 0 {
		clean = clean[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return t
		}
	}
	// RFC3339 with fractional seconds parses whole, try before giving up.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return now
}

// AppendAudit appends one activity-log entry with a stage snapshot.
// Author defaults to "System" when empty.
func (c *CandidateRecord) AppendAudit(author string, category AuditCategory, text string, at time.Time) {
	if author == "" {
		author = "System"
	}
	c.ActivityLog = append(c.ActivityLog, AuditEntry{
		ID:        uuid.New().String(),
		Timestamp: at,
		Author:    author,
		Category:  category,
		Text:      text,
		Stage:     c.Stage,
	})
}

// EnterStage moves the record to stage and records the first time each
// stage was entered, which reporting cycle times depend on.
func (c *CandidateRecord) EnterStage(stage PipelineStage, at time.Time) {
	c.Stage = stage
	if c.StageHistory == nil {
		c.StageHistory = make(map[string]time.Time)
	}
	if _, seen := c.StageHistory[string(stage)]; !seen {
		c.StageHistory[string(stage)] = at
	}
}

// MarkContacted stamps the last outbound touch on the record.
func (c *CandidateRecord) MarkContacted(channel string, at time.Time) {
	t := at
	c.LastContactDate = &t
	c.LastContactChannel = channel
}

// HasDraft reports whether the record is awaiting human approval.
func (c *CandidateRecord) HasDraft() bool {
	return c.DraftMessage != ""
}

// FullName joins the candidate's name parts for display and drafting.
func (c *CandidateRecord) FullName() string {
	parts := []string{c.FirstName}
	if c.MiddleName != "" {
		parts = append(parts, c.MiddleName)
	}
	parts = append(parts, c.LastName)
	return strings.Join(parts, " ")
}

// OwnsClinic reports whether facility metadata indicates the candidate
// already operates a clinic, which triggers conversion sub-gates.
func (c *CandidateRecord) OwnsClinic() bool {
	if c.FacilityMeta == nil {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(c.FacilityMeta["owns_clinic"]))
	return v == "yes" || v == "true"
}
