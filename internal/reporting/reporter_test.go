// internal/reporting/reporter_test.go
package reporting

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/models"
	"github.com/QuadKenya/growth-engine/internal/store"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func createTestReporter(t *testing.T) (*Reporter, store.Store) {
	s, err := store.NewJSONFileStore(filepath.Join(t.TempDir(), "candidates.json"))
	require.NoError(t, err)
	r := New(s, logger.NewTestLogger(t), func() time.Time { return testNow })
	return r, s
}

// seedRecord builds a record that walked through the given stages on
// consecutive days, ending on the last one.
func seedRecord(t *testing.T, s store.Store, id string, stages ...models.PipelineStage) *models.CandidateRecord {
	rec := &models.CandidateRecord{
		ID:           id,
		Email:        id,
		FirstName:    "Test",
		LastName:     "Candidate",
		Timestamp:    testNow.AddDate(0, 0, -len(stages)),
		StageHistory: map[string]time.Time{},
	}
	for i, stage := range stages {
		rec.EnterStage(stage, rec.Timestamp.AddDate(0, 0, i))
	}
	require.NoError(t, s.Upsert(context.Background(), rec))
	return rec
}

func TestFunnel(t *testing.T) {
	r, s := createTestReporter(t)

	seedRecord(t, s, "a@example.com", models.StageExpressedInterest, models.StagePotentialFit)
	seedRecord(t, s, "b@example.com", models.StageExpressedInterest, models.StagePotentialFit, models.StageInterestCheckSent)
	seedRecord(t, s, "c@example.com", models.StageExpressedInterest, models.StageNoFit)
	seedRecord(t, s, "d@example.com", models.StageExpressedInterest, models.StageWarmLead)

	report, err := r.Funnel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.NoFit)
	assert.Equal(t, 1, report.WarmLeads)

	byStage := map[models.PipelineStage]FunnelRow{}
	for _, row := range report.Rows {
		byStage[row.Stage] = row
	}
	assert.Equal(t, 4, byStage[models.StageExpressedInterest].Reached)
	assert.Equal(t, 0, byStage[models.StageExpressedInterest].Current)
	assert.Equal(t, 2, byStage[models.StagePotentialFit].Reached)
	assert.Equal(t, 1, byStage[models.StagePotentialFit].Current)
	assert.Equal(t, 1, byStage[models.StageInterestCheckSent].Current)
}

func TestStats(t *testing.T) {
	r, s := createTestReporter(t)

	// Two hot (past interest check), one early active, two warm, one
	// closed, one rejected.
	seedRecord(t, s, "hot1@example.com", models.StageExpressedInterest, models.StageKYCScreening)
	seedRecord(t, s, "hot2@example.com", models.StageExpressedInterest, models.StageSiteSearch)
	seedRecord(t, s, "early@example.com", models.StageExpressedInterest, models.StagePotentialFit)
	seedRecord(t, s, "warm1@example.com", models.StageExpressedInterest, models.StageWarmLead)
	seedRecord(t, s, "warm2@example.com", models.StageExpressedInterest, models.StageWarmLead)
	seedRecord(t, s, "closed@example.com", models.StageExpressedInterest, models.StageContractClosed)
	seedRecord(t, s, "out@example.com", models.StageExpressedInterest, models.StageNoFit)

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 3, stats.Active)
	assert.Equal(t, 2, stats.Hot)
	assert.Equal(t, 2, stats.Warm)
	assert.Equal(t, 1.0, stats.HotWarmRatio)
	assert.Equal(t, 1, stats.Closed)
	assert.Equal(t, 1, stats.Rejected)
}

func TestStats_NoWarmLeavesRatioZero(t *testing.T) {
	r, s := createTestReporter(t)
	seedRecord(t, s, "hot@example.com", models.StageExpressedInterest, models.StageKYCScreening)

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.HotWarmRatio)
}

func TestCycleTimes(t *testing.T) {
	r, s := createTestReporter(t)

	// a: EXPRESSED_INTEREST -> POTENTIAL_FIT in 1 day.
	seedRecord(t, s, "a@example.com", models.StageExpressedInterest, models.StagePotentialFit)
	// b: same hop in 3 days.
	b := seedRecord(t, s, "b@example.com", models.StageExpressedInterest)
	b.EnterStage(models.StagePotentialFit, b.StageHistory[string(models.StageExpressedInterest)].AddDate(0, 0, 3))
	require.NoError(t, s.Upsert(context.Background(), b))

	rows, err := r.CycleTimes(context.Background())
	require.NoError(t, err)

	var hop CycleTimeRow
	for _, row := range rows {
		if row.From == models.StageExpressedInterest && row.To == models.StagePotentialFit {
			hop = row
		}
	}
	assert.Equal(t, 2, hop.Count)
	assert.Equal(t, 2.0, hop.AvgDays)
}

func TestProjectCloses(t *testing.T) {
	r, s := createTestReporter(t)

	// Two candidates reached KYC historically; one closed. Close rate
	// from KYC is 0.5, so the one in flight projects half a close.
	seedRecord(t, s, "closed@example.com",
		models.StageExpressedInterest, models.StageKYCScreening, models.StageContractClosed)
	seedRecord(t, s, "inflight@example.com",
		models.StageExpressedInterest, models.StageKYCScreening)

	forecast, err := r.ProjectCloses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0.5, forecast.StageRates[models.StageKYCScreening])
	assert.Equal(t, 0.5, forecast.ProjectedCloses)
}
