package scenario

import "fmt"

// Instruction builders for the SQL service. Each instruction is
// self-contained: period, scope and prior run ids are interpolated so
// the service needs no conversational context, and the expected
// one-row summary shape is stated explicitly.

func payrollCalcInstruction(period, scope string) string {
	return fmt.Sprintf(
		"%s 급여 산정(집계) 미리보기를 해줘. 대상은 %s야. "+
			"결과는 (대상 인원수, 총급여(기본+수당), 총공제액, 누락/오류 건수) 1행으로 요약해줘.",
		period, scope,
	)
}

func taxCalcInstruction(period, payrollRunID string) string {
	return fmt.Sprintf(
		"%s payroll 기준으로 공제 검증/요약을 1행으로 조회해줘. 기준 payroll_run_id는 %s야. "+
			"컬럼 alias는 반드시 아래와 같아야 해:\n"+
			"- employee_count\n"+
			"- total_gross_pay (base_salary + bonus)\n"+
			"- total_deductions\n"+
			"- total_net_pay\n"+
			"- avg_deduction_rate (total_deductions / total_gross_pay)\n"+
			"- zero_deduction_count (deductions=0)\n"+
			"pay_month는 해당 월의 1일로 필터링하고 SQL만 출력해줘.",
		period, payrollRunID,
	)
}

func paymentRunInstruction(period, payDate, method, taxRunID string) string {
	return fmt.Sprintf(
		"%s 급여 지급 실행을 위한 대상/금액/계좌 오류를 점검하고 "+
			"%s 지급(%s) 기준으로 (성공 대상 수, 오류 수, 지급 총액) 1행 요약이 나오도록 조회해줘. "+
			"기준 tax_run_id는 %s야.",
		period, payDate, method, taxRunID,
	)
}

func journalPostInstruction(period, journalDate, mappingVersion, paymentRunID string) string {
	return fmt.Sprintf(
		"%s 급여 지급(%s) 기준으로 전표 초안을 생성하고, %s 일자 계정과목 매핑(%s) 결과를 "+
			"(차변 합계, 대변 합계, 대차일치 여부) 1행으로 검증/요약해줘.",
		period, paymentRunID, journalDate, mappingVersion,
	)
}
