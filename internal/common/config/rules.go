// internal/common/config/rules.go
package config

// Rule tables are pure data, loaded once at startup and read-only
// during processing. They are versionable independently of code.

// Criterion is one scoring rule: resolve the bound input field, compute
// points by mapping / territory match / pass-through, weight and sum.
type Criterion struct {
	ID           string             `json:"id"`
	InputField   string             `json:"input_field"`
	Weight       float64            `json:"weight"`
	LogicType    string             `json:"logic_type,omitempty"` // "mapping" (default), "territory_match", "pass_through"
	Mapping      map[string]float64 `json:"mapping,omitempty"`
	DefaultValue float64            `json:"default_value,omitempty"`
}

// Threshold maps a minimum score to a classification label.
type Threshold struct {
	MinScore float64 `json:"min_score"`
	Label    string  `json:"label"`
}

// HardGates holds the disqualifying input values, checked in fixed
// order: business experience, then capital, then location, then the
// clinic-owner conversion sub-gates.
type HardGates struct {
	BusinessExpFailValue string          `json:"business_exp_fail_value"`
	FinancialFailValue   string          `json:"financial_fail_value"`
	Conversion           ConversionGates `json:"conversion"`
}

// ConversionGates are the extra hard gates applied to candidates who
// already own a clinic.
type ConversionGates struct {
	LLCField              string `json:"llc_field"`
	LLCFailValue          string `json:"llc_fail_value"`
	RegistrationField     string `json:"registration_field"`
	RegistrationFailValue string `json:"registration_fail_value"`
}

// SoftRejection lists the nurture-not-reject signals, checked in
// configured order: experience, then financial, then location.
type SoftRejection struct {
	ExperienceValues  []string `json:"experience_values"`
	FinancialKeywords []string `json:"financial_keywords"`
	LocationKeywords  []string `json:"location_keywords"`
}

// Prioritization ranks call-list priority and sets wake-up windows.
type Prioritization struct {
	SiteReadyValue       string `json:"site_ready_value"`
	CashReadyKeyword     string `json:"cash_ready_keyword"`
	WakeUpDaysExperience int    `json:"wake_up_days_experience"`
	WakeUpDaysDefault    int    `json:"wake_up_days_default"`
}

// FinancialRules holds the capacity thresholds and derivation ratios.
// Monetary amounts are KES.
type FinancialRules struct {
	RevenueThreshold     float64 `json:"revenue_threshold"`
	InstallmentThreshold float64 `json:"installment_threshold"`
	NetIncomeRatio       float64 `json:"net_income_ratio"`
	InstallmentRatio     float64 `json:"installment_ratio"`
}

// CompetitionThresholds gates nearby clinic counts per setting type.
// Below Green is Green, equal to Amber is Amber, otherwise Red.
type CompetitionThresholds struct {
	Green int `json:"green"`
	Amber int `json:"amber"`
}

// SiteVetting is the site-viability decision matrix.
type SiteVetting struct {
	Competition      map[string]CompetitionThresholds `json:"competition"`
	FootTrafficMin   map[string]int                   `json:"foot_traffic_min"`
	MinBuildingSqft  float64                          `json:"min_building_sqft"`
	ArchetypeWeights map[string]float64               `json:"archetype_weights"`
	PassThreshold    float64                          `json:"pass_threshold"`
}

// ReadinessMap holds the keyword lists behind a readiness display label.
type ReadinessMap struct {
	Ready   []string `json:"ready"`
	Nurture []string `json:"nurture"`
}

// Rules is the full rule configuration supplied to the engines.
type Rules struct {
	ScoringModel   []Criterion             `json:"scoring_model"`
	Thresholds     []Threshold             `json:"thresholds"`
	HardGates      HardGates               `json:"hard_gates"`
	SoftRejection  SoftRejection           `json:"soft_rejection"`
	Prioritization Prioritization          `json:"prioritization"`
	Financial      FinancialRules          `json:"financial"`
	Checklists     map[string][]string     `json:"checklists"`
	SiteVetting    SiteVetting             `json:"site_vetting"`
	ReadinessMaps  map[string]ReadinessMap `json:"readiness_maps"`
}

// Territories maps valid operational counties to their known areas.
// County keys are title case; membership checks normalize first.
type Territories map[string][]string

// Contains reports whether county is a valid operational territory.
func (t Territories) Contains(county string) bool {
	_, ok := t[county]
	return ok
}
