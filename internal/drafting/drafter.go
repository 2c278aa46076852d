// internal/drafting/drafter.go
package drafting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/QuadKenya/growth-engine/internal/models"
)

// Template keys the orchestrator supplies. The key space is an open
// string enum: unknown keys get a marked fallback, never an error.
const (
	TemplateInterestCheck         = "interest_check"
	TemplateInviteToCallPriority  = "invite_to_call_priority"
	TemplateSoftRejectExperience  = "soft_rejection_experience"
	TemplateSoftRejectFinancial   = "soft_rejection_financial"
	TemplateSoftRejectLocation    = "soft_rejection_location"
	TemplateFAQScreen             = "faq_screen"
	TemplateHardRejection         = "hard_rejection"
	TemplateNudgeBooking          = "nudge_booking"
	TemplateNudgeProposal         = "nudge_proposal"
	TemplateChecklistReminder     = "checklist_reminder"
)

// Drafter produces outbound message drafts for human approval.
type Drafter interface {
	GenerateDraft(rec *models.CandidateRecord, templateKey string) string
}

// TemplateDrafter renders the standard outreach templates. Messages go
// out over WhatsApp once an operator approves them; this service only
// writes the text.
type TemplateDrafter struct{}

func NewTemplateDrafter() *TemplateDrafter {
	return &TemplateDrafter{}
}

func (d *TemplateDrafter) GenerateDraft(rec *models.CandidateRecord, templateKey string) string {
	header := fmt.Sprintf("TO: %s\nCHANNEL: WhatsApp (+%s)\n\n", rec.Email, rec.Phone)

	switch templateKey {
	case TemplateInterestCheck:
		return header + fmt.Sprintf(
			"Habari %s,\n\n"+
				"Thank you for applying to Curafa! We have reviewed your application and you meet our initial vetting criteria.\n"+
				"Before we proceed to the next stage, are you still interested in moving forward right now?\n"+
				"Reply YES to proceed, or let us know if you prefer to wait.",
			rec.FirstName)

	case TemplateInviteToCallPriority:
		return header + fmt.Sprintf(
			"Habari %s,\n"+
				"Your application stood out, especially since you have a location ready in %s.\n"+
				"We are fast-tracking site owners. Are you available for a brief chat this week?",
			rec.FirstName, rec.LocationCountyInput)

	case TemplateSoftRejectExperience:
		return header + fmt.Sprintf(
			"Dear %s,\n"+
				"Your profile is promising! However, Curafa requires 3 years of clinical experience.\n"+
				"We have added you to our Talent Pool and will reach out in 12 months.",
			rec.FirstName)

	case TemplateSoftRejectFinancial:
		return header + fmt.Sprintf(
			"Dear %s,\n"+
				"We noticed you are still planning your funding. We recommend organizing capital approx KES 80k/month.\n"+
				"We will keep you on our Warm List for the next cohort.",
			rec.FirstName)

	case TemplateSoftRejectLocation:
		return header + fmt.Sprintf(
			"Dear %s,\n"+
				"We see you are still scouting in %s. Location is key.\n"+
				"Attached is our Site Selection Guide. We will check in next quarter.",
			rec.FirstName, rec.LocationCountyInput)

	case TemplateFAQScreen:
		return header +
			"Great! To ensure Curafa is the right fit, please review the commitment:\n" +
			"1. It is a Franchise business.\n" +
			"2. Timeline: Intro Call (Wk1) -> Contract (Wk12).\n\n" +
			"If you agree, reply with your preferred time for an Intro Call."

	case TemplateHardRejection:
		return header + fmt.Sprintf(
			"Dear %s,\n"+
				"Based on our current criteria regarding %s, we cannot proceed with your application at this time.",
			rec.FirstName, rec.RejectionReason)

	case TemplateNudgeBooking:
		return header + fmt.Sprintf(
			"Habari %s,\n"+
				"Just checking in. We sent you an invitation for an intro call a few days ago.\n"+
				"Is there a time this week that works for you?",
			rec.FirstName)

	case TemplateNudgeProposal:
		return header + fmt.Sprintf(
			"Habari %s,\n"+
				"Following up on our conversation. We would love to hear your thoughts on the proposal.\n"+
				"Let us know if you have any questions.",
			rec.FirstName)

	case TemplateChecklistReminder:
		return header + fmt.Sprintf(
			"Habari %s,\n\n"+
				"We are reviewing your compliance documents for the Curafa franchise.\n"+
				"We have received some items, but we are still waiting for the following to proceed to the Financial Assessment:\n\n"+
				"%s\n\n"+
				"Please upload these at your earliest convenience so we can move to the next step.",
			rec.FirstName, missingDocs(rec))

	default:
		return header + fmt.Sprintf("[Drafting Template: %s]", templateKey)
	}
}

func missingDocs(rec *models.CandidateRecord) string {
	missing := make([]string, 0, len(rec.ChecklistStatus))
	for doc, done := range rec.ChecklistStatus {
		if !done {
			missing = append(missing, "- "+doc)
		}
	}
	if len(missing) == 0 {
		return "(All documents received! No nudge needed.)"
	}
	sort.Strings(missing)
	return strings.Join(missing, "\n")
}
