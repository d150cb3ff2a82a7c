package scenario

import (
	"fmt"
	"regexp"

	"github.com/payflowkr/payflow/pkg/domain"
)

// Read-only side channel: questions about completed stages are
// answered from the summaries stored in refs, without advancing the
// state machine or calling the SQL service.

var (
	reAskHeadcount = regexp.MustCompile(`인원|몇\s*명|대상`)
	reAskGross     = regexp.MustCompile(`총\s*급여|gross`)
	reAskNet       = regexp.MustCompile(`실지급|net`)
	reAskDeduction = regexp.MustCompile(`총\s*공제|공제\s*총액|deduction`)
	reAskPayment   = regexp.MustCompile(`지급\s*내역|지급\s*건수|이체\s*건수|지급\s*결과`)
	reAskJournal   = regexp.MustCompile(`전표\s*내역|분개\s*내역|전표\s*건수|전표\s*결과|대차`)
)

func sideChannelSuggestions() []string {
	return []string{"전체 프로세스 요약", "시나리오 종료"}
}

// answerFromRefs resolves a result question against stored stage
// summaries. It returns nil when nothing stored can answer, in which
// case the turn falls through to normal stage handling.
func answerFromRefs(sc *domain.ScenarioContext, text string) *domain.Outcome {
	refs := &sc.Refs

	reply := ""
	switch {
	case reAskPayment.MatchString(text) && refs.Payment != nil:
		reply = fmt.Sprintf("📌 지급 결과: 성공 **%d건**, 오류 %d건, 총 %s (%s)",
			refs.Payment.SuccessCount, refs.Payment.ErrorCount,
			won(refs.Payment.TotalPaid), refs.PaymentRunID)

	case reAskJournal.MatchString(text) && refs.Journal != nil:
		balance := "일치"
		if !refs.Journal.Balanced {
			balance = "불일치"
		}
		reply = fmt.Sprintf("📌 전표 결과: 차변 %s / 대변 %s, 대차 **%s** (%s)",
			won(refs.Journal.DebitTotal), won(refs.Journal.CreditTotal),
			balance, refs.JournalRunID)

	case reAskHeadcount.MatchString(text):
		switch {
		case refs.Tax != nil:
			reply = fmt.Sprintf("📌 급여 산정 대상 인원: **%d명**", refs.Tax.EmployeeCount)
		case refs.Payroll != nil:
			reply = fmt.Sprintf("📌 급여 산정 대상 인원: **%d명**", refs.Payroll.EmployeeCount)
		}

	case reAskGross.MatchString(text):
		switch {
		case refs.Tax != nil:
			reply = fmt.Sprintf("📌 총급여: **%s**", won(refs.Tax.TotalGross))
		case refs.Payroll != nil:
			reply = fmt.Sprintf("📌 총급여: **%s**", won(refs.Payroll.TotalGross))
		}

	case reAskNet.MatchString(text) && refs.Tax != nil:
		reply = fmt.Sprintf("📌 총실지급: **%s**", won(refs.Tax.TotalNet))

	case reAskDeduction.MatchString(text):
		switch {
		case refs.Tax != nil:
			reply = fmt.Sprintf("📌 총공제: **%s**", won(refs.Tax.TotalDeductions))
		case refs.Payroll != nil:
			reply = fmt.Sprintf("📌 총공제: **%s**", won(refs.Payroll.TotalDeductions))
		}
	}

	if reply == "" {
		return nil
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       reply,
		Stage:       sc.Stage,
		Suggestions: sideChannelSuggestions(),
	}
}
