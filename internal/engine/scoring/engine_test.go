// internal/engine/scoring/engine_test.go
package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/models"
)

func createTestRules() *config.Rules {
	return &config.Rules{
		ScoringModel: []config.Criterion{
			{
				ID:         "clinical_profession",
				InputField: "current_profession",
				Weight:     0.4,
				Mapping: map[string]float64{
					"Nurse":            1.0,
					"Clinical Officer": 1.0,
					"Pharmacist":       0.8,
					"_default":         0.0,
				},
			},
			{
				ID:         "clinical_experience",
				InputField: "experience_years",
				Weight:     0.3,
				Mapping: map[string]float64{
					"5+ Years":  1.0,
					"3-5 Years": 0.8,
					"1-2 Years": 0.3,
					"_default":  0.0,
				},
			},
			{
				ID:         "territory_fit",
				InputField: "location_county_input",
				Weight:     0.2,
				LogicType:  "territory_match",
			},
			{
				ID:           "baseline",
				InputField:   "source",
				Weight:       0.1,
				LogicType:    "pass_through",
				DefaultValue: 0.5,
			},
		},
		Thresholds: []config.Threshold{
			{MinScore: 0.4, Label: "Marginal Fit"},
			{MinScore: 0.75, Label: "Strong Fit"},
			{MinScore: 0.55, Label: "Good Fit"},
		},
		HardGates: config.HardGates{
			BusinessExpFailValue: "No",
			FinancialFailValue:   "I cannot raise the capital",
			Conversion: config.ConversionGates{
				LLCField:              "is_llc",
				LLCFailValue:          "No",
				RegistrationField:     "is_registered",
				RegistrationFailValue: "No",
			},
		},
		SoftRejection: config.SoftRejection{
			ExperienceValues:  []string{"1-2 Years", "None"},
			FinancialKeywords: []string{"loan", "partial resources"},
			LocationKeywords:  []string{"still looking"},
		},
		Prioritization: config.Prioritization{
			SiteReadyValue:       "Yes, I own or lease a location",
			CashReadyKeyword:     "adequate resources",
			WakeUpDaysExperience: 365,
			WakeUpDaysDefault:    90,
		},
		ReadinessMaps: map[string]config.ReadinessMap{
			"financial": {
				Ready:   []string{"adequate resources"},
				Nurture: []string{"loan"},
			},
			"location": {
				Ready:   []string{"own or lease"},
				Nurture: []string{"still looking"},
			},
		},
	}
}

func createTestTerritories() config.Territories {
	return config.Territories{
		"Nairobi": {"Kasarani", "Embakasi"},
		"Kiambu":  {"Thika", "Ruiru"},
	}
}

func createTestEngine(t *testing.T) *Engine {
	return NewEngine(createTestRules(), createTestTerritories(), logger.NewTestLogger(t))
}

func createQualifiedRecord() *models.CandidateRecord {
	return &models.CandidateRecord{
		ID:                      "jane@example.com",
		FirstName:               "Jane",
		CurrentProfession:       "Nurse",
		ExperienceYears:         "5+ Years",
		HasBusinessExp:          "Yes, another business",
		FinancialReadinessInput: "I have adequate resources",
		LocationCountyInput:     "Nairobi",
		LocationStatusInput:     "Yes, I own or lease a location",
	}
}

func TestCheckHardGates(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*models.CandidateRecord)
		wantPassed bool
		wantReason string
	}{
		{
			name:       "all gates pass",
			mutate:     func(r *models.CandidateRecord) {},
			wantPassed: true,
		},
		{
			name:       "no business experience",
			mutate:     func(r *models.CandidateRecord) { r.HasBusinessExp = "No" },
			wantPassed: false,
			wantReason: ReasonNoBusinessExp,
		},
		{
			name:       "cannot raise capital",
			mutate:     func(r *models.CandidateRecord) { r.FinancialReadinessInput = "I cannot raise the capital" },
			wantPassed: false,
			wantReason: ReasonLackOfCapital,
		},
		{
			name:       "county outside territories",
			mutate:     func(r *models.CandidateRecord) { r.LocationCountyInput = "Marsabit" },
			wantPassed: false,
			wantReason: "Location 'Marsabit' is outside operational areas",
		},
		{
			name: "county matched case-insensitively",
			mutate: func(r *models.CandidateRecord) {
				r.LocationCountyInput = "  nairobi  "
			},
			wantPassed: true,
		},
		{
			name: "business gate checked before capital gate",
			mutate: func(r *models.CandidateRecord) {
				r.HasBusinessExp = "No"
				r.FinancialReadinessInput = "I cannot raise the capital"
			},
			wantPassed: false,
			wantReason: ReasonNoBusinessExp,
		},
		{
			name: "clinic owner not an llc",
			mutate: func(r *models.CandidateRecord) {
				r.FacilityMeta = map[string]string{
					"owns_clinic":   "Yes",
					"is_llc":        "No",
					"is_registered": "Yes",
				}
			},
			wantPassed: false,
			wantReason: ReasonNotLLC,
		},
		{
			name: "clinic owner not registered",
			mutate: func(r *models.CandidateRecord) {
				r.FacilityMeta = map[string]string{
					"owns_clinic":   "Yes",
					"is_llc":        "Yes",
					"is_registered": "No",
				}
			},
			wantPassed: false,
			wantReason: ReasonNotRegistered,
		},
		{
			name: "conversion gates skipped for non-owners",
			mutate: func(r *models.CandidateRecord) {
				r.FacilityMeta = map[string]string{
					"owns_clinic": "No",
					"is_llc":      "No",
				}
			},
			wantPassed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := createTestEngine(t)
			rec := createQualifiedRecord()
			tt.mutate(rec)

			result := engine.CheckHardGates(rec)

			assert.Equal(t, tt.wantPassed, result.Passed)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, result.Reason)
			}
		})
	}
}

func TestCalculateScore(t *testing.T) {
	engine := createTestEngine(t)

	t.Run("full marks", func(t *testing.T) {
		// 1.0*0.4 + 1.0*0.3 + 1.0*0.2 + 0.5*0.1 = 0.95
		score, breakdown := engine.CalculateScore(createQualifiedRecord())
		assert.Equal(t, 0.95, score)
		assert.Len(t, breakdown, 4)
	})

	t.Run("unmapped value takes default", func(t *testing.T) {
		rec := createQualifiedRecord()
		rec.CurrentProfession = "Accountant"

		// 0.0*0.4 + 1.0*0.3 + 1.0*0.2 + 0.5*0.1 = 0.55
		score, _ := engine.CalculateScore(rec)
		assert.Equal(t, 0.55, score)
	})

	t.Run("territory mismatch scores zero", func(t *testing.T) {
		rec := createQualifiedRecord()
		rec.LocationCountyInput = "Marsabit"

		// 0.4 + 0.3 + 0.0 + 0.05 = 0.75
		score, _ := engine.CalculateScore(rec)
		assert.Equal(t, 0.75, score)
	})

	t.Run("rounded to four decimals", func(t *testing.T) {
		rules := createTestRules()
		rules.ScoringModel = []config.Criterion{
			{
				ID:         "odd_weight",
				InputField: "current_profession",
				Weight:     1.0 / 3.0,
				Mapping:    map[string]float64{"Nurse": 1.0},
			},
		}
		engine := NewEngine(rules, createTestTerritories(), logger.NewTestLogger(t))

		score, _ := engine.CalculateScore(createQualifiedRecord())
		assert.Equal(t, 0.3333, score)
	})

	t.Run("unknown field logs and scores default", func(t *testing.T) {
		rules := createTestRules()
		rules.ScoringModel = append(rules.ScoringModel, config.Criterion{
			ID:         "bad_binding",
			InputField: "no_such_field",
			Weight:     0.5,
			Mapping:    map[string]float64{"x": 1.0, "_default": 0.0},
		})
		engine := NewEngine(rules, createTestTerritories(), logger.NewTestLogger(t))

		score, breakdown := engine.CalculateScore(createQualifiedRecord())
		assert.Equal(t, 0.95, score)
		assert.Len(t, breakdown, 5)
	})
}

func TestClassify(t *testing.T) {
	engine := createTestEngine(t)

	tests := []struct {
		score float64
		want  string
	}{
		{score: 0.95, want: "Strong Fit"},
		{score: 0.75, want: "Strong Fit"},
		{score: 0.74, want: "Good Fit"},
		{score: 0.55, want: "Good Fit"},
		{score: 0.4, want: "Marginal Fit"},
		{score: 0.39, want: models.ClassificationNotAFit},
		{score: 0.0, want: models.ClassificationNotAFit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.Classify(tt.score), "score %.2f", tt.score)
	}
}

func TestClassifySoftRejection(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.CandidateRecord)
		wantSoft bool
		wantWhy  SoftReason
	}{
		{
			name:     "experience gap",
			mutate:   func(r *models.CandidateRecord) { r.ExperienceYears = "1-2 Years" },
			wantSoft: true,
			wantWhy:  SoftExperience,
		},
		{
			name:     "needs a loan",
			mutate:   func(r *models.CandidateRecord) { r.FinancialReadinessInput = "I need a LOAN from the bank" },
			wantSoft: true,
			wantWhy:  SoftFinancial,
		},
		{
			name:     "still scouting location",
			mutate:   func(r *models.CandidateRecord) { r.LocationStatusInput = "Still looking for a spot" },
			wantSoft: true,
			wantWhy:  SoftLocation,
		},
		{
			name: "experience wins over financial when both match",
			mutate: func(r *models.CandidateRecord) {
				r.ExperienceYears = "None"
				r.FinancialReadinessInput = "I need a loan"
			},
			wantSoft: true,
			wantWhy:  SoftExperience,
		},
		{
			name:     "nothing nurturable",
			mutate:   func(r *models.CandidateRecord) {},
			wantSoft: false,
			wantWhy:  SoftNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := createTestEngine(t)
			rec := createQualifiedRecord()
			tt.mutate(rec)

			check := engine.ClassifySoftRejection(rec)

			assert.Equal(t, tt.wantSoft, check.IsSoft)
			assert.Equal(t, tt.wantWhy, check.Reason)
		})
	}
}

func TestDeterminePriority(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CandidateRecord)
		want   int
	}{
		{
			name:   "site ready outranks everything",
			mutate: func(r *models.CandidateRecord) {},
			want:   1,
		},
		{
			name: "cash ready without site",
			mutate: func(r *models.CandidateRecord) {
				r.LocationStatusInput = "Still looking"
			},
			want: 2,
		},
		{
			name: "standard",
			mutate: func(r *models.CandidateRecord) {
				r.LocationStatusInput = "Still looking"
				r.FinancialReadinessInput = "I need a loan"
			},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := createTestEngine(t)
			rec := createQualifiedRecord()
			tt.mutate(rec)

			assert.Equal(t, tt.want, engine.DeterminePriority(rec))
		})
	}
}

func TestReadinessLabel(t *testing.T) {
	engine := createTestEngine(t)

	assert.Equal(t, "Ready", engine.ReadinessLabel("I have ADEQUATE resources", "financial"))
	assert.Equal(t, "Nurture", engine.ReadinessLabel("I need a loan", "financial"))
	assert.Equal(t, "Not Ready", engine.ReadinessLabel("undecided", "financial"))
	assert.Equal(t, "Unknown", engine.ReadinessLabel("anything", "no_such_category"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Nairobi", TitleCase("  NAIROBI "))
	assert.Equal(t, "Uasin Gishu", TitleCase("uasin   gishu"))
	assert.Equal(t, "Élan Ñandu", TitleCase("élan ñandu"))
	assert.Equal(t, "", TitleCase(""))
}
