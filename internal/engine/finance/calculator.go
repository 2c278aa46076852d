// internal/engine/finance/calculator.go
package finance

import (
	"time"

	"github.com/QuadKenya/growth-engine/internal/common/config"
	apperrors "github.com/QuadKenya/growth-engine/internal/common/errors"
	"github.com/QuadKenya/growth-engine/internal/models"
)

// Date layouts accepted on bank-statement credit rows.
var dateLayouts = []string{"2006-01-02", "1/2/2006", "02/01/2006"}

// Calculator computes deposit and balance averages from structured
// bank-statement data the way the underwriting spreadsheet does, then
// applies the configured capacity thresholds. Pure and stateless.
type Calculator struct {
	rules config.FinancialRules
}

func NewCalculator(rules config.FinancialRules) *Calculator {
	return &Calculator{rules: rules}
}

// Assess runs the capacity calculation. Rows with unparseable dates
// invalidate the whole submission: the statement span drives the month
// count, so a bad date cannot be skipped silently.
func (c *Calculator) Assess(data *models.FinancialData) (*models.FinancialResults, error) {
	if data == nil || len(data.CreditRows) == 0 {
		return nil, apperrors.NewFinancialDataInvalidError("no credit rows supplied")
	}

	var start, end time.Time
	for i, row := range data.CreditRows {
		d, err := parseDate(row.Date)
		if err != nil {
			return nil, apperrors.NewFinancialDataInvalidError("unparseable date on credit row: " + row.Date)
		}
		if i == 0 || d.Before(start) {
			start = d
		}
		if i == 0 || d.After(end) {
			end = d
		}
	}

	months := MonthCount(start, end)

	totalDeposits := 0.0
	for _, row := range data.CreditRows {
		if row.IncludeInRevenue {
			totalDeposits += row.Amount
		}
	}

	avgMonthly := 0.0
	if months > 0 {
		avgMonthly = totalDeposits / float64(months)
	}

	var checkpointAverages [models.NumBalanceCheckpoints]float64
	sumOfAverages := 0.0
	for cp := 0; cp < models.NumBalanceCheckpoints; cp++ {
		sum, n := 0.0, 0
		for m := 0; m < models.NumBalanceMonths; m++ {
			if v := data.Balances[m][cp]; v != nil {
				sum += *v
				n++
			}
		}
		if n > 0 {
			checkpointAverages[cp] = sum / float64(n)
		}
		sumOfAverages += checkpointAverages[cp]
	}
	avgBalance := sumOfAverages / float64(models.NumBalanceCheckpoints)

	totalRevenue := avgMonthly
	netIncome := c.rules.NetIncomeRatio * totalRevenue
	installment := c.rules.InstallmentRatio * netIncome

	revenuePass := totalRevenue > c.rules.RevenueThreshold
	installmentPass := installment > c.rules.InstallmentThreshold

	return &models.FinancialResults{
		StartDate:           start.Format("2006-01-02"),
		EndDate:             end.Format("2006-01-02"),
		MonthCount:          months,
		TotalDeposits:       totalDeposits,
		AvgMonthlyDeposit:   avgMonthly,
		CheckpointAverages:  checkpointAverages,
		AvgBalance:          avgBalance,
		TotalRevenue:        totalRevenue,
		NetIncome:           netIncome,
		InstallmentCapacity: installment,
		RevenuePass:         revenuePass,
		InstallmentPass:     installmentPass,
		OverallPass:         revenuePass && installmentPass,
	}, nil
}

// MonthCount reproduces the spreadsheet's inclusive whole-months-spanned
// convention: calendar month difference, minus one when the end day has
// not yet reached the start day, plus one overall.
func MonthCount(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months + 1
}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
