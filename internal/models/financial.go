// internal/models/financial.go
package models

// NumBalanceMonths and NumBalanceCheckpoints fix the shape of the
// bank-statement balance grid: six months sampled on the 5th, 10th,
// 15th, 20th, 25th and 30th.
const (
	NumBalanceMonths      = 6
	NumBalanceCheckpoints = 6
)

// BalanceCheckpointDays labels the grid columns.
var BalanceCheckpointDays = [NumBalanceCheckpoints]int{5, 10, 15, 20, 25, 30}

// CreditRow is one dated deposit from the candidate's bank statement.
// Dates stay as submitted strings; the calculator parses them.
type CreditRow struct {
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"`
	IncludeInRevenue bool    `json:"includeInRevenue"`
}

// FinancialData is the structured bank-statement input for the
// financial capacity assessment. A nil grid cell means the statement
// had no balance for that checkpoint.
type FinancialData struct {
	CreditRows []CreditRow                                     `json:"creditRows"`
	Balances   [NumBalanceMonths][NumBalanceCheckpoints]*float64 `json:"balances"`
}

// FinancialResults holds the computed capacity metrics and decisions.
type FinancialResults struct {
	StartDate           string                        `json:"startDate"`
	EndDate             string                        `json:"endDate"`
	MonthCount          int                           `json:"monthCount"`
	TotalDeposits       float64                       `json:"totalDeposits"`
	AvgMonthlyDeposit   float64                       `json:"avgMonthlyDeposit"`
	CheckpointAverages  [NumBalanceCheckpoints]float64 `json:"checkpointAverages"`
	AvgBalance          float64                       `json:"avgBalance"`
	TotalRevenue        float64                       `json:"totalRevenue"`
	NetIncome           float64                       `json:"netIncome"`
	InstallmentCapacity float64                       `json:"installmentCapacity"`
	RevenuePass         bool                          `json:"revenuePass"`
	InstallmentPass     bool                          `json:"installmentPass"`
	OverallPass         bool                          `json:"overallPass"`
}
