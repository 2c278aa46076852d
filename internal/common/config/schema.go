// internal/common/config/schema.go
package config

// JSON schemas for the rule tables. Kept deliberately structural: they
// catch shape mistakes (missing tables, wrong types) at startup while
// leaving value-level defaults to the engines.

const rulesEngineSchema = `{
	"type": "object",
	"required": ["scoring_model", "thresholds", "hard_gates", "soft_rejection", "prioritization", "financial", "checklists", "site_vetting"],
	"properties": {
		"scoring_model": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "input_field", "weight"],
				"properties": {
					"id": {"type": "string"},
					"input_field": {"type": "string"},
					"weight": {"type": "number"},
					"logic_type": {"type": "string", "enum": ["mapping", "territory_match", "pass_through"]},
					"mapping": {"type": "object"},
					"default_value": {"type": "number"}
				}
			}
		},
		"thresholds": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["min_score", "label"],
				"properties": {
					"min_score": {"type": "number"},
					"label": {"type": "string"}
				}
			}
		},
		"hard_gates": {
			"type": "object",
			"required": ["business_exp_fail_value", "financial_fail_value"],
			"properties": {
				"business_exp_fail_value": {"type": "string"},
				"financial_fail_value": {"type": "string"},
				"conversion": {"type": "object"}
			}
		},
		"soft_rejection": {
			"type": "object",
			"properties": {
				"experience_values": {"type": "array", "items": {"type": "string"}},
				"financial_keywords": {"type": "array", "items": {"type": "string"}},
				"location_keywords": {"type": "array", "items": {"type": "string"}}
			}
		},
		"prioritization": {
			"type": "object",
			"properties": {
				"site_ready_value": {"type": "string"},
				"cash_ready_keyword": {"type": "string"},
				"wake_up_days_experience": {"type": "integer"},
				"wake_up_days_default": {"type": "integer"}
			}
		},
		"financial": {
			"type": "object",
			"required": ["revenue_threshold", "installment_threshold"],
			"properties": {
				"revenue_threshold": {"type": "number"},
				"installment_threshold": {"type": "number"},
				"net_income_ratio": {"type": "number"},
				"installment_ratio": {"type": "number"}
			}
		},
		"checklists": {
			"type": "object",
			"patternProperties": {
				".*": {"type": "array", "items": {"type": "string"}}
			}
		},
		"site_vetting": {
			"type": "object",
			"required": ["competition", "foot_traffic_min", "archetype_weights"],
			"properties": {
				"competition": {"type": "object"},
				"foot_traffic_min": {"type": "object"},
				"min_building_sqft": {"type": "number"},
				"archetype_weights": {"type": "object"},
				"pass_threshold": {"type": "number"}
			}
		},
		"readiness_maps": {"type": "object"}
	}
}`

const territoriesSchema = `{
	"type": "object",
	"patternProperties": {
		".*": {"type": "array", "items": {"type": "string"}}
	}
}`
