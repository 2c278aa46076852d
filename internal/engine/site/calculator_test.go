// internal/engine/site/calculator_test.go
package site

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/models"
)

func createTestCalculator() *Calculator {
	return NewCalculator(config.SiteVetting{
		Competition: map[string]config.CompetitionThresholds{
			"Market Centre": {Green: 2, Amber: 3},
			"_default":      {Green: 1, Amber: 2},
		},
		FootTrafficMin: map[string]int{
			"Market Centre": 150,
			"_default":      80,
		},
		MinBuildingSqft: 400,
		ArchetypeWeights: map[string]float64{
			"1":        1.0,
			"2":        0.7,
			"_default": 0.5,
		},
		PassThreshold: 0.7,
	})
}

func createStrongScorecard() *models.SiteScorecard {
	return &models.SiteScorecard{
		SettingType:       "Market Centre",
		CompetitorClinics: 1,
		FootTraffic:       300,
		BuildingSqft:      600,
		HasTwoRooms:       true,
		Ventilated:        true,
		MobileAccessible:  true,
		Electricity:       true,
		Water:             true,
		Internet:          true,
		PrivateToilets:    true,
		ArchetypeTier:     1,
	}
}

func TestEvaluate_PerfectSite(t *testing.T) {
	calc := createTestCalculator()

	results := calc.Evaluate(createStrongScorecard())

	assert.Equal(t, models.TierGreen, results.CompetitionTier)
	assert.True(t, results.CompetitionPass)
	assert.True(t, results.TrafficPass)
	assert.True(t, results.PhysicalPass)
	assert.True(t, results.UtilitiesPass)
	assert.Equal(t, 1.0, results.CompositeScore)
	assert.True(t, results.OverallPass)
}

func TestEvaluate_CompetitionTiers(t *testing.T) {
	calc := createTestCalculator()

	tests := []struct {
		name    string
		setting string
		clinics int
		want    models.CompetitionTier
	}{
		{name: "below green threshold", setting: "Market Centre", clinics: 1, want: models.TierGreen},
		{name: "at amber threshold", setting: "Market Centre", clinics: 3, want: models.TierAmber},
		{name: "between green and amber", setting: "Market Centre", clinics: 2, want: models.TierRed},
		{name: "saturated", setting: "Market Centre", clinics: 5, want: models.TierRed},
		{name: "unknown setting uses default", setting: "Industrial", clinics: 0, want: models.TierGreen},
		{name: "default amber", setting: "Industrial", clinics: 2, want: models.TierAmber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := createStrongScorecard()
			card.SettingType = tt.setting
			card.CompetitorClinics = tt.clinics

			assert.Equal(t, tt.want, calc.Evaluate(card).CompetitionTier)
		})
	}
}

func TestEvaluate_RedSiteFailsRegardlessOfBuilding(t *testing.T) {
	calc := createTestCalculator()

	card := createStrongScorecard()
	card.CompetitorClinics = 5

	results := calc.Evaluate(card)

	assert.Equal(t, models.TierRed, results.CompetitionTier)
	assert.False(t, results.CompetitionPass)
	// Composite is still decent: 0 + 1 + 1 + 1 + 1 over 5.
	assert.Equal(t, 0.8, results.CompositeScore)
	assert.False(t, results.OverallPass)
}

func TestEvaluate_DeadStreetFails(t *testing.T) {
	calc := createTestCalculator()

	card := createStrongScorecard()
	card.FootTraffic = 150 // threshold is strict

	results := calc.Evaluate(card)

	assert.False(t, results.TrafficPass)
	assert.False(t, results.OverallPass)
}

func TestEvaluate_PartialCredit(t *testing.T) {
	calc := createTestCalculator()

	card := createStrongScorecard()
	card.BuildingSqft = 300 // below minimum
	card.Internet = false

	results := calc.Evaluate(card)

	assert.False(t, results.PhysicalPass)
	assert.False(t, results.UtilitiesPass)
	// competition 1.0, traffic 1.0, physical 0.75, utilities 0.75, archetype 1.0
	assert.Equal(t, 0.9, results.CompositeScore)
	assert.True(t, results.OverallPass)
}

func TestEvaluate_CompositeBelowThresholdFails(t *testing.T) {
	calc := createTestCalculator()

	card := createStrongScorecard()
	card.CompetitorClinics = 3 // amber halves the competition score
	card.BuildingSqft = 300
	card.HasTwoRooms = false
	card.Ventilated = false
	card.Electricity = false
	card.Water = false
	card.Internet = false
	card.ArchetypeTier = 9 // unknown tier falls back to default weight

	results := calc.Evaluate(card)

	// competition 0.5, traffic 1.0, physical 0.25, utilities 0.25, archetype 0.5
	assert.Equal(t, 0.5, results.CompositeScore)
	assert.True(t, results.TrafficPass)
	assert.True(t, results.CompetitionPass)
	assert.False(t, results.OverallPass)
}
