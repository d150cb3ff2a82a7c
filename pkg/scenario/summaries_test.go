package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payflowkr/payflow/pkg/domain"
)

func TestParsePayrollSummary(t *testing.T) {
	s, ok := parsePayrollSummary([]any{int64(26), int64(92082741), int64(7611337), int64(0)})
	require.True(t, ok)
	assert.Equal(t, 26, s.EmployeeCount)
	assert.Equal(t, 92082741.0, s.TotalGross)
	assert.Equal(t, 7611337.0, s.TotalDeductions)
	assert.Equal(t, 0, s.ErrorCount)

	_, ok = parsePayrollSummary([]any{int64(26), int64(92082741)})
	assert.False(t, ok)

	_, ok = parsePayrollSummary([]any{"abc", "def", "ghi", "jkl"})
	assert.False(t, ok)

	_, ok = parsePayrollSummary(nil)
	assert.False(t, ok)
}

func TestParseTaxSummary(t *testing.T) {
	s, ok := parseTaxSummary([]any{26, 92082741.0, 7611337.0, 84471404.0, 0.0826, 0})
	require.True(t, ok)
	assert.Equal(t, 26, s.EmployeeCount)
	assert.Equal(t, 84471404.0, s.TotalNet)
	assert.InDelta(t, 0.0826, s.AvgDeductionRate, 1e-9)
	assert.Equal(t, 0, s.ZeroDeduction)

	_, ok = parseTaxSummary([]any{26, 92082741.0, 7611337.0})
	assert.False(t, ok)
}

func TestParseJournalSummary(t *testing.T) {
	s, ok := parseJournalSummary([]any{92082741.0, 92082741.0, true})
	require.True(t, ok)
	assert.True(t, s.Balanced)

	// A non-bool third column falls back to comparing the totals.
	s, ok = parseJournalSummary([]any{100.0, 100.0, "?"})
	require.True(t, ok)
	assert.True(t, s.Balanced)

	s, ok = parseJournalSummary([]any{100.0, 99.0, "?"})
	require.True(t, ok)
	assert.False(t, s.Balanced)
}

func TestReplies(t *testing.T) {
	pr := payrollReply(&domain.PayrollSummary{
		EmployeeCount: 26, TotalGross: 92082741, TotalDeductions: 7611337, ErrorCount: 0,
	})
	assert.Contains(t, pr, "26명")
	assert.Contains(t, pr, "92,082,741원")
	assert.Contains(t, pr, "공제 검증")

	tx := taxReply(&domain.TaxSummary{
		EmployeeCount: 26, TotalGross: 92082741, TotalDeductions: 7611337,
		TotalNet: 84471404, AvgDeductionRate: 0.0826, ZeroDeduction: 1,
	})
	assert.Contains(t, tx, "8.26%")
	assert.Contains(t, tx, "84,471,404원")

	deg := degradedReply("급여 산정", domain.PayrollSummaryCols)
	assert.Contains(t, deg, "4개 컬럼")
}

func TestMakeRunID(t *testing.T) {
	id := makeRunID("PR", "2026-01")
	assert.True(t, strings.HasPrefix(id, "PR_202601_"), id)
	assert.Len(t, id, len("PR_202601_")+6)

	// Unique per invocation.
	assert.NotEqual(t, id, makeRunID("PR", "2026-01"))
}

func TestStageInstructionsCarryParameters(t *testing.T) {
	assert.Contains(t, payrollCalcInstruction("2026-01", "ALL"), "2026-01")
	assert.Contains(t, taxCalcInstruction("2026-01", "PR_X"), "PR_X")
	assert.Contains(t, paymentRunInstruction("2026-01", "2026-01-25", "bank_transfer", "TX_X"), "2026-01-25")
	assert.Contains(t, journalPostInstruction("2026-01", "2026-01-31", "v1", "PM_X"), "2026-01-31")
}
