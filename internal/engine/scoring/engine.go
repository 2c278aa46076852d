// internal/engine/scoring/engine.go
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/models"
)

// Hard-gate failure reasons. Persisted verbatim on rejected records.
const (
	ReasonNoBusinessExp  = "No Business Experience"
	ReasonLackOfCapital  = "Lack of Capital (Hard No)"
	ReasonNotLLC         = "Clinic Not Registered as LLC"
	ReasonNotRegistered  = "Clinic Not Registered with Regulator"
	locationReasonFormat = "Location '%s' is outside operational areas"
)

// SoftReason names which nurture signal matched first.
type SoftReason string

const (
	SoftExperience SoftReason = "experience"
	SoftFinancial  SoftReason = "financial"
	SoftLocation   SoftReason = "location"
	SoftNone       SoftReason = "hard"
)

// GateResult is the outcome of the hard-gate check.
type GateResult struct {
	Passed bool
	Reason string
}

// SoftCheck is the outcome of the soft-rejection classification.
type SoftCheck struct {
	IsSoft bool
	Reason SoftReason
}

// CriterionScore is one line of the scoring breakdown.
type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Input     string  `json:"input"`
	Points    float64 `json:"points"`
	Weighted  float64 `json:"weighted"`
}

// fieldAccessor resolves a configured input-field name to a record
// field. The mapping is built once at engine construction, not looked
// up reflectively per scoring run.
type fieldAccessor func(*models.CandidateRecord) string

// Engine evaluates hard gates, weighted scores, classification,
// soft-rejection and priority over a candidate record and the rule
// tables. Pure and stateless; safe for concurrent use.
type Engine struct {
	rules       *config.Rules
	territories config.Territories
	fields      map[string]fieldAccessor
	logger      logger.Logger
}

func NewEngine(rules *config.Rules, territories config.Territories, log logger.Logger) *Engine {
	return &Engine{
		rules:       rules,
		territories: territories,
		fields:      buildFieldAccessors(),
		logger:      log.WithFields(map[string]interface{}{"component": "scoring-engine"}),
	}
}

func buildFieldAccessors() map[string]fieldAccessor {
	return map[string]fieldAccessor{
		"current_profession":        func(c *models.CandidateRecord) string { return c.CurrentProfession },
		"experience_years":          func(c *models.CandidateRecord) string { return c.ExperienceYears },
		"has_business_exp":          func(c *models.CandidateRecord) string { return c.HasBusinessExp },
		"certifications":            func(c *models.CandidateRecord) string { return c.Certifications },
		"financial_readiness_input": func(c *models.CandidateRecord) string { return c.FinancialReadinessInput },
		"location_county_input":     func(c *models.CandidateRecord) string { return c.LocationCountyInput },
		"location_status_input":     func(c *models.CandidateRecord) string { return c.LocationStatusInput },
		"source":                    func(c *models.CandidateRecord) string { return c.Source },
	}
}

// CheckHardGates evaluates the disqualifying gates in fixed order;
// the first failure wins and no further engine steps should run.
func (e *Engine) CheckHardGates(rec *models.CandidateRecord) GateResult {
	gates := e.rules.HardGates

	if rec.HasBusinessExp == gates.BusinessExpFailValue {
		return GateResult{Passed: false, Reason: ReasonNoBusinessExp}
	}

	if rec.FinancialReadinessInput == gates.FinancialFailValue {
		return GateResult{Passed: false, Reason: ReasonLackOfCapital}
	}

	county := TitleCase(strings.TrimSpace(rec.LocationCountyInput))
	if !e.territories.Contains(county) {
		return GateResult{Passed: false, Reason: fmt.Sprintf(locationReasonFormat, county)}
	}

	if rec.OwnsClinic() {
		conv := gates.Conversion
		if conv.LLCField != "" && rec.FacilityMeta[conv.LLCField] == conv.LLCFailValue {
			return GateResult{Passed: false, Reason: ReasonNotLLC}
		}
		if conv.RegistrationField != "" && rec.FacilityMeta[conv.RegistrationField] == conv.RegistrationFailValue {
			return GateResult{Passed: false, Reason: ReasonNotRegistered}
		}
	}

	return GateResult{Passed: true}
}

// CalculateScore computes the linear weighted sum over the configured
// criteria. Criterion order does not affect the result. Unknown fields
// and unmapped values fall back to the criterion defaults; a single bad
// criterion never blocks the rest of the run.
func (e *Engine) CalculateScore(rec *models.CandidateRecord) (float64, []CriterionScore) {
	total := 0.0
	breakdown := make([]CriterionScore, 0, len(e.rules.ScoringModel))

	for _, criterion := range e.rules.ScoringModel {
		input := ""
		if accessor, ok := e.fields[criterion.InputField]; ok {
			input = accessor(rec)
		} else {
			e.logger.Warn("scoring criterion bound to unknown field", map[string]interface{}{
				"criterion": criterion.ID,
				"field":     criterion.InputField,
			})
		}

		points := e.resolvePoints(criterion, input)
		weighted := points * criterion.Weight
		total += weighted

		breakdown = append(breakdown, CriterionScore{
			Criterion: criterion.ID,
			Input:     input,
			Points:    points,
			Weighted:  weighted,
		})
	}

	return math.Round(total*10000) / 10000, breakdown
}

func (e *Engine) resolvePoints(criterion config.Criterion, input string) float64 {
	switch {
	case len(criterion.Mapping) > 0:
		if pts, ok := criterion.Mapping[input]; ok {
			return pts
		}
		return criterion.Mapping["_default"]
	case criterion.LogicType == "territory_match":
		if e.territories.Contains(TitleCase(strings.TrimSpace(input))) {
			return 1.0
		}
		return 0.0
	case criterion.LogicType == "pass_through":
		return criterion.DefaultValue
	default:
		return 0.0
	}
}

// Classify resolves a score to its classification label. Thresholds are
// checked from highest minimum down; below every threshold is Not A Fit.
func (e *Engine) Classify(score float64) string {
	thresholds := make([]config.Threshold, len(e.rules.Thresholds))
	copy(thresholds, e.rules.Thresholds)
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i].MinScore > thresholds[j].MinScore
	})

	for _, t := range thresholds {
		if score >= t.MinScore {
			return t.Label
		}
	}
	return models.ClassificationNotAFit
}

// ClassifySoftRejection decides whether a Not A Fit candidate is worth
// nurturing. Checks run in configured order: experience, financial,
// location; the first match wins even when several conditions hold.
func (e *Engine) ClassifySoftRejection(rec *models.CandidateRecord) SoftCheck {
	soft := e.rules.SoftRejection

	for _, v := range soft.ExperienceValues {
		if rec.ExperienceYears == v {
			return SoftCheck{IsSoft: true, Reason: SoftExperience}
		}
	}

	financial := strings.ToLower(rec.FinancialReadinessInput)
	for _, kw := range soft.FinancialKeywords {
		if strings.Contains(financial, strings.ToLower(kw)) {
			return SoftCheck{IsSoft: true, Reason: SoftFinancial}
		}
	}

	location := strings.ToLower(rec.LocationStatusInput)
	for _, kw := range soft.LocationKeywords {
		if strings.Contains(location, strings.ToLower(kw)) {
			return SoftCheck{IsSoft: true, Reason: SoftLocation}
		}
	}

	return SoftCheck{IsSoft: false, Reason: SoftNone}
}

// DeterminePriority ranks the call list: 1 for site-ready candidates,
// 2 for cash-ready, 3 standard. Lower rank is higher priority and only
// meaningful once both gate checks passed.
func (e *Engine) DeterminePriority(rec *models.CandidateRecord) int {
	rules := e.rules.Prioritization

	if rec.LocationStatusInput == rules.SiteReadyValue {
		return 1
	}
	if rules.CashReadyKeyword != "" &&
		strings.Contains(strings.ToLower(rec.FinancialReadinessInput), strings.ToLower(rules.CashReadyKeyword)) {
		return 2
	}
	return 3
}

// ReadinessLabel maps free-text answers to a display label via the
// configured keyword lists for the category (financial or location).
func (e *Engine) ReadinessLabel(text, category string) string {
	maps, ok := e.rules.ReadinessMaps[category]
	if !ok {
		return "Unknown"
	}

	lower := strings.ToLower(text)
	for _, kw := range maps.Ready {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return "Ready"
		}
	}
	for _, kw := range maps.Nurture {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return "Nurture"
		}
	}
	return "Not Ready"
}

// TitleCase normalizes a county name: first letter of each word upper,
// rest lower, single spaces.
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
