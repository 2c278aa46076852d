// internal/engine/site/calculator.go
package site

import (
	"strconv"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/models"
)

// Calculator scores post-visit site scorecards against the configured
// vetting matrix. Pure and stateless.
//
// Physical and utility criteria earn partial credit toward the
// composite, but the overall gate is hard on competition and traffic:
// a Red site or a dead street fails regardless of how good the
// building is.
type Calculator struct {
	rules config.SiteVetting
}

func NewCalculator(rules config.SiteVetting) *Calculator {
	return &Calculator{rules: rules}
}

// Evaluate computes the competition tier, the four sub-pass flags, the
// composite percentage score and the overall decision.
func (c *Calculator) Evaluate(card *models.SiteScorecard) *models.SiteResults {
	tier := c.competitionTier(card.SettingType, card.CompetitorClinics)
	competitionScore := 0.0
	switch tier {
	case models.TierGreen:
		competitionScore = 1.0
	case models.TierAmber:
		competitionScore = 0.5
	}

	trafficPass := card.FootTraffic > c.footTrafficMin(card.SettingType)
	trafficScore := 0.0
	if trafficPass {
		trafficScore = 1.0
	}

	physicalChecks := []bool{
		card.BuildingSqft >= c.rules.MinBuildingSqft,
		card.HasTwoRooms,
		card.Ventilated,
		card.MobileAccessible,
	}
	physicalScore, physicalPass := fractionTrue(physicalChecks)

	utilityChecks := []bool{
		card.Electricity,
		card.Water,
		card.Internet,
		card.PrivateToilets,
	}
	utilityScore, utilityPass := fractionTrue(utilityChecks)

	archetypeScore := c.archetypeWeight(card.ArchetypeTier)

	composite := (competitionScore + trafficScore + physicalScore + utilityScore + archetypeScore) / 5.0

	overall := tier != models.TierRed && trafficPass && composite >= c.rules.PassThreshold

	return &models.SiteResults{
		CompetitionTier: tier,
		CompetitionPass: tier != models.TierRed,
		TrafficPass:     trafficPass,
		PhysicalPass:    physicalPass,
		UtilitiesPass:   utilityPass,
		CompositeScore:  composite,
		OverallPass:     overall,
	}
}

func (c *Calculator) competitionTier(settingType string, clinics int) models.CompetitionTier {
	thresholds, ok := c.rules.Competition[settingType]
	if !ok {
		thresholds = c.rules.Competition["_default"]
	}
	switch {
	case clinics < thresholds.Green:
		return models.TierGreen
	case clinics == thresholds.Amber:
		return models.TierAmber
	default:
		return models.TierRed
	}
}

func (c *Calculator) footTrafficMin(settingType string) int {
	if min, ok := c.rules.FootTrafficMin[settingType]; ok {
		return min
	}
	return c.rules.FootTrafficMin["_default"]
}

func (c *Calculator) archetypeWeight(tier int) float64 {
	if w, ok := c.rules.ArchetypeWeights[strconv.Itoa(tier)]; ok {
		return w
	}
	return c.rules.ArchetypeWeights["_default"]
}

// fractionTrue returns the share of checks that hold and whether all do.
func fractionTrue(checks []bool) (float64, bool) {
	n := 0
	for _, ok := range checks {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(checks)), n == len(checks)
}
