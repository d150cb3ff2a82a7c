package scenario

import (
	"fmt"

	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/slots"
)

// Summary-row parsers. The SQL service is expected to return a single
// row with a fixed arity per stage; anything else yields (nil, false)
// and the handler degrades the reply instead of fabricating numbers.

func parsePayrollSummary(row []any) (*domain.PayrollSummary, bool) {
	if len(row) < domain.PayrollSummaryCols {
		return nil, false
	}
	count, ok1 := slots.AsInt(row[0])
	gross, ok2 := slots.AsFloat(row[1])
	deductions, ok3 := slots.AsFloat(row[2])
	errs, ok4 := slots.AsInt(row[3])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, false
	}
	return &domain.PayrollSummary{
		EmployeeCount:   count,
		TotalGross:      gross,
		TotalDeductions: deductions,
		ErrorCount:      errs,
	}, true
}

func parseTaxSummary(row []any) (*domain.TaxSummary, bool) {
	if len(row) < domain.TaxSummaryCols {
		return nil, false
	}
	count, ok1 := slots.AsInt(row[0])
	gross, ok2 := slots.AsFloat(row[1])
	deductions, ok3 := slots.AsFloat(row[2])
	net, ok4 := slots.AsFloat(row[3])
	rate, ok5 := slots.AsFloat(row[4])
	zero, ok6 := slots.AsInt(row[5])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return nil, false
	}
	return &domain.TaxSummary{
		EmployeeCount:    count,
		TotalGross:       gross,
		TotalDeductions:  deductions,
		TotalNet:         net,
		AvgDeductionRate: rate,
		ZeroDeduction:    zero,
	}, true
}

func parsePaymentSummary(row []any) (*domain.PaymentSummary, bool) {
	if len(row) < domain.PaymentSummaryCols {
		return nil, false
	}
	success, ok1 := slots.AsInt(row[0])
	errs, ok2 := slots.AsInt(row[1])
	total, ok3 := slots.AsFloat(row[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	return &domain.PaymentSummary{
		SuccessCount: success,
		ErrorCount:   errs,
		TotalPaid:    total,
	}, true
}

func parseJournalSummary(row []any) (*domain.JournalSummary, bool) {
	if len(row) < domain.JournalSummaryCols {
		return nil, false
	}
	debit, ok1 := slots.AsFloat(row[0])
	credit, ok2 := slots.AsFloat(row[1])
	balanced, ok3 := slots.AsBool(row[2])
	if !ok1 || !ok2 {
		return nil, false
	}
	if !ok3 {
		balanced = debit == credit
	}
	return &domain.JournalSummary{
		DebitTotal:  debit,
		CreditTotal: credit,
		Balanced:    balanced,
	}, true
}

func won(v any) string {
	return slots.FormatWon(v)
}

func payrollReply(s *domain.PayrollSummary) string {
	return fmt.Sprintf(
		"✅ 급여 산정(미리보기) 완료\n"+
			"- 대상 인원: %d명\n"+
			"- 총급여(기본+수당): %s\n"+
			"- 총공제: %s\n"+
			"- 누락/오류: %d건\n\n"+
			"다음 단계로 **공제 검증**을 진행할까요?",
		s.EmployeeCount, won(s.TotalGross), won(s.TotalDeductions), s.ErrorCount,
	)
}

func taxReply(s *domain.TaxSummary) string {
	return fmt.Sprintf(
		"✅ 공제 검증 완료\n"+
			"- 대상 인원: %d명\n"+
			"- 총급여(기본+수당): %s\n"+
			"- 총공제: %s\n"+
			"- 총실지급: %s\n"+
			"- 평균 공제율: %.2f%%\n"+
			"- 공제 0원 인원: %d명\n\n"+
			"다음 단계로 **지급 처리**를 진행할까요?",
		s.EmployeeCount, won(s.TotalGross), won(s.TotalDeductions), won(s.TotalNet),
		s.AvgDeductionRate*100, s.ZeroDeduction,
	)
}

func paymentReply(s *domain.PaymentSummary, runID string) string {
	return fmt.Sprintf(
		"✅ 지급 처리 완료\n"+
			"- 성공: %d건\n"+
			"- 오류: %d건\n"+
			"- 지급 총액: %s\n"+
			"- payment_run_id=%s\n\n"+
			"다음 단계는 **전표 생성**입니다. 전표일을 입력해줘. 예: '2026-01-31 전표' 또는 '1/31 전표'",
		s.SuccessCount, s.ErrorCount, won(s.TotalPaid), runID,
	)
}

func journalReply(s *domain.JournalSummary, runID string) string {
	balance := "일치"
	if !s.Balanced {
		balance = "불일치"
	}
	return fmt.Sprintf(
		"✅ 전표 생성 완료\n"+
			"- 차변 합계: %s\n"+
			"- 대변 합계: %s\n"+
			"- 대차: %s\n"+
			"- journal_run_id=%s\n\n"+
			"전체 프로세스가 완료되었습니다. 요약을 보여드릴까요? (예/아니오)",
		won(s.DebitTotal), won(s.CreditTotal), balance, runID,
	)
}

func degradedReply(stageName string, cols int) string {
	return fmt.Sprintf(
		"%s 결과를 해석할 수 없습니다.\n"+
			"- 원인: SQL 결과가 %d개 컬럼 1행 형태가 아닐 수 있습니다.\n"+
			"- 조치: 실행된 SQL 결과 포맷을 확인해 주세요.",
		stageName, cols,
	)
}
