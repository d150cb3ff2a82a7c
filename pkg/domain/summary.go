package domain

// Typed one-row summaries returned by each stage's external call.
// The column counts below are part of the contract with the SQL
// service; a row that does not match the expected arity is reported
// as uninterpretable rather than partially parsed.

// PayrollSummary is the 4-column calculation result:
// (employee_count, total_gross, total_deductions, error_count).
type PayrollSummary struct {
	EmployeeCount   int     `json:"employee_count"`
	TotalGross      float64 `json:"total_gross"`
	TotalDeductions float64 `json:"total_deductions"`
	ErrorCount      int     `json:"error_count"`
}

// TaxSummary is the 6-column deduction verification result:
// (employee_count, gross, deductions, net, avg_rate, zero_deduction_count).
type TaxSummary struct {
	EmployeeCount    int     `json:"employee_count"`
	TotalGross       float64 `json:"total_gross"`
	TotalDeductions  float64 `json:"total_deductions"`
	TotalNet         float64 `json:"total_net"`
	AvgDeductionRate float64 `json:"avg_deduction_rate"`
	ZeroDeduction    int     `json:"zero_deduction_count"`
}

// PaymentSummary is the 3-column payment execution result:
// (success_count, error_count, total_paid).
type PaymentSummary struct {
	SuccessCount int     `json:"success_count"`
	ErrorCount   int     `json:"error_count"`
	TotalPaid    float64 `json:"total_paid"`
}

// JournalSummary is the 3-column journal posting result:
// (debit_total, credit_total, balanced).
type JournalSummary struct {
	DebitTotal  float64 `json:"debit_total"`
	CreditTotal float64 `json:"credit_total"`
	Balanced    bool    `json:"balanced"`
}

// Arity of the summary row each stage expects.
const (
	PayrollSummaryCols = 4
	TaxSummaryCols     = 6
	PaymentSummaryCols = 3
	JournalSummaryCols = 3
)
