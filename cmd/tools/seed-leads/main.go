// cmd/tools/seed-leads/main.go
//
// Seeds a local store with a batch of representative intake
// submissions, running each through the full ingest path so scored,
// gated and warm-listed records all appear. Development aid only.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/drafting"
	"github.com/QuadKenya/growth-engine/internal/engine/finance"
	"github.com/QuadKenya/growth-engine/internal/engine/scoring"
	"github.com/QuadKenya/growth-engine/internal/engine/site"
	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/store"
	"github.com/QuadKenya/growth-engine/internal/workflow"
)

var sampleLeads = []models.Submission{
	{
		Email:                   "wanjiku.kamau@example.com",
		FirstName:               "Wanjiku",
		LastName:                "Kamau",
		Phone:                   "0722123456",
		Source:                  "Referral",
		CurrentProfession:       "Nurse",
		ExperienceYears:         "5+ Years",
		HasBusinessExp:          "Yes, another business",
		FinancialReadinessInput: "I have adequate resources",
		LocationCountyInput:     "Nairobi",
		LocationStatusInput:     "Yes, I own or lease a location",
	},
	{
		Email:                   "otieno.odhiambo@example.com",
		FirstName:               "Otieno",
		LastName:                "Odhiambo",
		Phone:                   "0733987654",
		Source:                  "Facebook",
		CurrentProfession:       "Clinical Officer",
		ExperienceYears:         "3-5 Years",
		HasBusinessExp:          "Yes, I run a clinic",
		FinancialReadinessInput: "I have adequate resources",
		LocationCountyInput:     "Kisumu",
		LocationStatusInput:     "Still looking for a suitable location",
		FacilityMeta: map[string]string{
			"owns_clinic":   "Yes",
			"is_llc":        "Yes",
			"is_registered": "Yes",
		},
	},
	{
		Email:                   "amina.hassan@example.com",
		FirstName:               "Amina",
		LastName:                "Hassan",
		Phone:                   "0711456789",
		Source:                  "WhatsApp",
		CurrentProfession:       "Nurse",
		ExperienceYears:         "1-2 Years",
		HasBusinessExp:          "Yes, another business",
		FinancialReadinessInput: "I need a loan",
		LocationCountyInput:     "Mombasa",
		LocationStatusInput:     "Still looking for a suitable location",
	},
	{
		Email:                   "peter.mwangi@example.com",
		FirstName:               "Peter",
		LastName:                "Mwangi",
		Phone:                   "0700111222",
		Source:                  "Field Visit",
		CurrentProfession:       "Accountant",
		ExperienceYears:         "None",
		HasBusinessExp:          "No",
		FinancialReadinessInput: "I have adequate resources",
		LocationCountyInput:     "Nakuru",
		LocationStatusInput:     "Still looking for a suitable location",
	},
	{
		Email:                   "grace.njeri@example.com",
		FirstName:               "Grace",
		LastName:                "Njeri",
		Phone:                   "0799333444",
		Source:                  "Referral",
		CurrentProfession:       "Pharmacist",
		ExperienceYears:         "3-5 Years",
		HasBusinessExp:          "Yes, another business",
		FinancialReadinessInput: "I cannot raise the capital",
		LocationCountyInput:     "Kiambu",
		LocationStatusInput:     "Still looking for a suitable location",
	},
}

func main() {
	storePath := flag.String("store", "data/candidates.json", "path to the json file store")
	rulesDir := flag.String("rules", "configs", "directory holding the rule tables")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	rules, territories, err := config.LoadRules(*rulesDir)
	if err != nil {
		zapLog.Fatal("rule tables load failed", zap.Error(err))
	}

	candidateStore, err := store.NewJSONFileStore(*storePath)
	if err != nil {
		zapLog.Fatal("store init failed", zap.Error(err))
	}

	orch := workflow.New(workflow.Deps{
		Store:   candidateStore,
		Drafter: drafting.NewTemplateDrafter(),
		Scorer:  scoring.NewEngine(rules, territories, log),
		Finance: finance.NewCalculator(rules.Financial),
		Site:    site.NewCalculator(rules.SiteVetting),
		Rules:   rules,
		Logger:  log,
	})

	ctx := context.Background()
	seeded := 0
	for i, sub := range sampleLeads {
		// Space the applications out so reports have distinct timestamps.
		sub.Timestamp = time.Now().AddDate(0, 0, -(len(sampleLeads) - i)).Format(time.RFC3339)
		rec, err := orch.Ingest(ctx, sub)
		if err != nil {
			zapLog.Error("seed lead failed", zap.String("email", sub.Email), zap.Error(err))
			continue
		}
		fmt.Fprintf(os.Stdout, "seeded %-40s stage=%s score=%.4f\n", rec.Email, rec.Stage, rec.FitScore)
		seeded++
	}

	zapLog.Info("seeding complete", zap.Int("seeded", seeded), zap.String("store", *storePath))
}
