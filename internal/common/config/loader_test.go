// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRulesJSON = `{
	"scoring_model": [
		{"id": "clinical_profession", "input_field": "current_profession", "weight": 0.5,
		 "mapping": {"Nurse": 1.0, "_default": 0.0}}
	],
	"thresholds": [
		{"min_score": 0.75, "label": "Strong Fit"}
	],
	"hard_gates": {
		"business_exp_fail_value": "No",
		"financial_fail_value": "I cannot raise the capital"
	},
	"soft_rejection": {
		"experience_values": ["None"],
		"financial_keywords": ["loan"],
		"location_keywords": ["still looking"]
	},
	"prioritization": {
		"site_ready_value": "Yes, I own or lease a location",
		"cash_ready_keyword": "adequate resources"
	},
	"financial": {
		"revenue_threshold": 240000,
		"installment_threshold": 60000
	},
	"checklists": {
		"KYC": ["National ID"]
	},
	"site_vetting": {
		"competition": {"_default": {"green": 1, "amber": 2}},
		"foot_traffic_min": {"_default": 80},
		"min_building_sqft": 400,
		"archetype_weights": {"1": 1.0, "_default": 0.5}
	}
}`

const territoriesJSON = `{
	"Nairobi": ["Kasarani", "Embakasi"],
	"Kiambu": ["Thika"]
}`

func writeRuleFiles(t *testing.T, rules, territories string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules_engine.json"), []byte(rules), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "territories.json"), []byte(territories), 0o644))
	return dir
}

func TestLoadRules(t *testing.T) {
	dir := writeRuleFiles(t, minimalRulesJSON, territoriesJSON)

	rules, territories, err := LoadRules(dir)
	require.NoError(t, err)

	require.Len(t, rules.ScoringModel, 1)
	assert.Equal(t, "clinical_profession", rules.ScoringModel[0].ID)
	assert.Equal(t, 0.5, rules.ScoringModel[0].Weight)
	assert.Equal(t, "No", rules.HardGates.BusinessExpFailValue)
	assert.Equal(t, 240000.0, rules.Financial.RevenueThreshold)

	assert.True(t, territories.Contains("Nairobi"))
	assert.False(t, territories.Contains("Marsabit"))
}

func TestLoadRules_DefaultsApplied(t *testing.T) {
	dir := writeRuleFiles(t, minimalRulesJSON, territoriesJSON)

	rules, _, err := LoadRules(dir)
	require.NoError(t, err)

	// Omitted ratios and windows get the standard values.
	assert.Equal(t, 0.5, rules.Financial.NetIncomeRatio)
	assert.Equal(t, 0.5, rules.Financial.InstallmentRatio)
	assert.Equal(t, 365, rules.Prioritization.WakeUpDaysExperience)
	assert.Equal(t, 90, rules.Prioritization.WakeUpDaysDefault)
	assert.Equal(t, 0.7, rules.SiteVetting.PassThreshold)
}

func TestLoadRules_SchemaViolation(t *testing.T) {
	tests := []struct {
		name  string
		rules string
	}{
		{name: "missing tables", rules: `{"scoring_model": []}`},
		{
			name:  "criterion missing weight",
			rules: `{"scoring_model": [{"id": "x", "input_field": "source"}], "thresholds": [], "hard_gates": {"business_exp_fail_value": "No", "financial_fail_value": "x"}, "soft_rejection": {}, "prioritization": {}, "financial": {"revenue_threshold": 1, "installment_threshold": 1}, "checklists": {}, "site_vetting": {"competition": {}, "foot_traffic_min": {}, "archetype_weights": {}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeRuleFiles(t, tt.rules, territoriesJSON)

			_, _, err := LoadRules(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema violations")
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, _, err := LoadRules(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules_engine.json")
}

func TestLoadRules_BadTerritories(t *testing.T) {
	dir := writeRuleFiles(t, minimalRulesJSON, `{"Nairobi": "not-an-array"}`)

	_, _, err := LoadRules(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "territories.json")
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "db", Port: 5432, Database: "growth", User: "svc", Password: "pw", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=svc password=pw dbname=growth sslmode=disable", cfg.GetDSN())
}
