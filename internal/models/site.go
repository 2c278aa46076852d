// internal/models/site.go
package models

// CompetitionTier classifies nearby clinic density for a site.
type CompetitionTier string

const (
	TierGreen CompetitionTier = "Green"
	TierAmber CompetitionTier = "Amber"
	TierRed   CompetitionTier = "Red"
)

// SiteScorecard is the post-visit numeric/boolean assessment of a
// candidate's proposed site.
type SiteScorecard struct {
	SettingType       string  `json:"settingType"`
	CompetitorClinics int     `json:"competitorClinics"`
	FootTraffic       int     `json:"footTraffic"`
	BuildingSqft      float64 `json:"buildingSqft"`
	HasTwoRooms       bool    `json:"hasTwoRooms"`
	Ventilated        bool    `json:"ventilated"`
	MobileAccessible  bool    `json:"mobileAccessible"`
	Electricity       bool    `json:"electricity"`
	Water             bool    `json:"water"`
	Internet          bool    `json:"internet"`
	PrivateToilets    bool    `json:"privateToilets"`
	ArchetypeTier     int     `json:"archetypeTier"`
}

// SiteData is the full site-vetting input: the pre-visit checklist and,
// once the visit happened, the scorecard.
type SiteData struct {
	PreVisit  map[string]bool `json:"preVisit,omitempty"`
	Scorecard *SiteScorecard  `json:"scorecard,omitempty"`
}

// SiteResults holds the computed site-viability decision. Physical and
// utility dimensions earn partial credit in the composite score, but
// the overall gate additionally requires the binary competition and
// traffic checks.
type SiteResults struct {
	CompetitionTier CompetitionTier `json:"competitionTier"`
	CompetitionPass bool            `json:"competitionPass"`
	TrafficPass     bool            `json:"trafficPass"`
	PhysicalPass    bool            `json:"physicalPass"`
	UtilitiesPass   bool            `json:"utilitiesPass"`
	CompositeScore  float64         `json:"compositeScore"`
	OverallPass     bool            `json:"overallPass"`
}
