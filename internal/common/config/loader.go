// internal/common/config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like STORE_DRIVER
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, e.g. config.production.yaml
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "growth-engine")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.driver", "jsonfile")
	v.SetDefault("store.path", "data/candidates.json")
	v.SetDefault("search.index", "candidates")
	v.SetDefault("rules.dir", "configs")
	v.SetDefault("sweep.nudge_after_days", 3)
	v.SetDefault("sweep.proposal_after_days", 7)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func loadEnvFile() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// LoadRules reads and validates the JSON rule tables from dir. The
// tables are checked against an embedded JSON schema before decoding so
// a malformed table fails startup, not a scoring run.
func LoadRules(dir string) (*Rules, Territories, error) {
	rulesRaw, err := os.ReadFile(filepath.Join(dir, "rules_engine.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("read rules_engine.json: %w", err)
	}
	if err := validateAgainstSchema(rulesEngineSchema, rulesRaw); err != nil {
		return nil, nil, fmt.Errorf("rules_engine.json: %w", err)
	}

	var rules Rules
	if err := json.Unmarshal(rulesRaw, &rules); err != nil {
		return nil, nil, fmt.Errorf("decode rules_engine.json: %w", err)
	}

	terrRaw, err := os.ReadFile(filepath.Join(dir, "territories.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("read territories.json: %w", err)
	}
	if err := validateAgainstSchema(territoriesSchema, terrRaw); err != nil {
		return nil, nil, fmt.Errorf("territories.json: %w", err)
	}

	var territories Territories
	if err := json.Unmarshal(terrRaw, &territories); err != nil {
		return nil, nil, fmt.Errorf("decode territories.json: %w", err)
	}

	applyRuleDefaults(&rules)
	return &rules, territories, nil
}

// applyRuleDefaults fills derivation ratios and wake-up windows when a
// table omits them, keeping older rule files loadable.
func applyRuleDefaults(r *Rules) {
	if r.Financial.NetIncomeRatio == 0 {
		r.Financial.NetIncomeRatio = 0.5
	}
	if r.Financial.InstallmentRatio == 0 {
		r.Financial.InstallmentRatio = 0.5
	}
	if r.Prioritization.WakeUpDaysExperience == 0 {
		r.Prioritization.WakeUpDaysExperience = 365
	}
	if r.Prioritization.WakeUpDaysDefault == 0 {
		r.Prioritization.WakeUpDaysDefault = 90
	}
	if r.SiteVetting.PassThreshold == 0 {
		r.SiteVetting.PassThreshold = 0.70
	}
}

func validateAgainstSchema(schema string, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
	}
	return nil
}
