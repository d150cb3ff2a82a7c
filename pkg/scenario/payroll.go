package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/payflowkr/payflow/internal/logging"
	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
	"github.com/payflowkr/payflow/pkg/slots"
)

// defaults applied when the user does not specify them.
const (
	defaultPaymentMethod  = "bank_transfer"
	defaultMappingVersion = "v1"
)

// PayrollScenario implements the stage handlers of the payroll
// workflow: calculation, deduction verification, payment and journal
// posting, each producing a run id and a one-row summary.
type PayrollScenario struct {
	query    ports.QueryService
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	newRunID func(prefix, period string) string
}

func newPayrollScenario(query ports.QueryService) *PayrollScenario {
	return &PayrollScenario{
		query:    query,
		logger:   logging.NewNop(),
		now:      time.Now,
		newRunID: makeRunID,
	}
}

// makeRunID generates an opaque run token, unique per invocation
// within a session, e.g. "PR_202601_A3F9B1".
func makeRunID(prefix, period string) string {
	tail := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s_%s_%s", prefix, strings.ReplaceAll(period, "-", ""), tail)
}

// handle dispatches to the handler for the current stage. The second
// return value reports that the scenario finished and the session
// context must be cleared.
func (s *PayrollScenario) handle(ctx context.Context, sessionID string, sc *domain.ScenarioContext, confirm slots.Confirm) (*domain.Outcome, bool, error) {
	s.emitStageEnter(ctx, sessionID, sc.Stage)

	switch sc.Stage {
	case domain.StagePayrollCalc:
		out, err := s.stagePayrollCalc(ctx, sessionID, sc)
		return out, false, err
	case domain.StageTaxCalc:
		out, err := s.stageTaxCalc(ctx, sessionID, sc)
		return out, false, err
	case domain.StagePaymentRun:
		out, err := s.stagePaymentRun(ctx, sessionID, sc, confirm)
		return out, false, err
	case domain.StageJournalPost:
		out, err := s.stageJournalPost(ctx, sessionID, sc, confirm)
		return out, false, err
	case domain.StageDone:
		return s.stageDone(sc, confirm)
	}

	// Unreachable once the orchestrator has validated the stage.
	sc.Stage = domain.StagePayrollCalc
	out, err := s.stagePayrollCalc(ctx, sessionID, sc)
	return out, false, err
}

func (s *PayrollScenario) stagePayrollCalc(ctx context.Context, sessionID string, sc *domain.ScenarioContext) (*domain.Outcome, error) {
	missing := missingSlots(sc, "period", "employee_scope")
	if len(missing) > 0 {
		return &domain.Outcome{
			Handled: true,
			Reply: fmt.Sprintf(
				"급여 산정을 위해 정보가 필요합니다: %s\n"+
					"- 예: '2026년 1월 전직원 급여 산정'\n"+
					"- 예: '1월 영업부 급여 계산'",
				strings.Join(missing, ", ")),
			Stage:       sc.Stage,
			Suggestions: []string{"2026-01 전직원 급여 산정", "이번달 전직원 급여 산정"},
		}, nil
	}

	period := sc.Slots.Period
	res, err := s.runQuery(ctx, sessionID, sc.Stage, payrollCalcInstruction(period, sc.Slots.EmployeeScope))
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return s.failureOutcome(sc, res), nil
	}

	runID := s.newRunID("PR", period)
	sc.Refs.PayrollRunID = runID
	sc.Refs.Artifacts = res
	if summary, ok := parsePayrollSummary(res.FirstRow()); ok {
		sc.Refs.Payroll = summary
	}
	s.complete(ctx, sessionID, sc, domain.StageTaxCalc, "급여 산정 조회 실행", runID)

	reply := degradedReply("급여 산정", domain.PayrollSummaryCols)
	if sc.Refs.Payroll != nil {
		reply = payrollReply(sc.Refs.Payroll)
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       reply,
		Stage:       sc.Stage,
		Suggestions: []string{"공제 검증 진행", "대상/기간 변경", "취소(시나리오 종료)"},
		Artifacts:   res,
	}, nil
}

func (s *PayrollScenario) stageTaxCalc(ctx context.Context, sessionID string, sc *domain.ScenarioContext) (*domain.Outcome, error) {
	if missing := missingSlots(sc, "period"); len(missing) > 0 {
		return &domain.Outcome{
			Handled:     true,
			Reply:       "먼저 급여 기간(period)이 필요합니다. 예: '2026-01 공제 검증 진행'",
			Stage:       sc.Stage,
			Suggestions: []string{"이번달 공제 검증", "2026-01 공제 검증"},
		}, nil
	}

	// No ref, no advance: deduction verification needs a completed
	// payroll calculation.
	if sc.Refs.PayrollRunID == "" {
		sc.Stage = domain.StagePayrollCalc
		return &domain.Outcome{
			Handled:     true,
			Reply:       "공제 검증 전에 급여 산정이 필요합니다. '2026-01 전직원 급여 산정'처럼 요청해줘.",
			Stage:       sc.Stage,
			Suggestions: []string{"2026-01 전직원 급여 산정", "이번달 전직원 급여 산정"},
		}, nil
	}

	period := sc.Slots.Period
	res, err := s.runQuery(ctx, sessionID, sc.Stage, taxCalcInstruction(period, sc.Refs.PayrollRunID))
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return s.failureOutcome(sc, res), nil
	}

	runID := s.newRunID("TX", period)
	sc.Refs.TaxRunID = runID
	sc.Refs.Artifacts = res
	if summary, ok := parseTaxSummary(res.FirstRow()); ok {
		sc.Refs.Tax = summary
	}
	s.complete(ctx, sessionID, sc, domain.StagePaymentRun, "공제 검증 조회 실행", runID)

	reply := degradedReply("공제 검증", domain.TaxSummaryCols)
	if sc.Refs.Tax != nil {
		reply = taxReply(sc.Refs.Tax)
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       reply,
		Stage:       sc.Stage,
		Suggestions: []string{"지급 진행", "25일 지급", "지급일 미정"},
		Artifacts:   res,
	}, nil
}

func (s *PayrollScenario) stagePaymentRun(ctx context.Context, sessionID string, sc *domain.ScenarioContext, confirm slots.Confirm) (*domain.Outcome, error) {
	if missing := missingSlots(sc, "period"); len(missing) > 0 {
		return &domain.Outcome{
			Handled:     true,
			Reply:       "지급 처리를 위해 period가 필요합니다.",
			Stage:       sc.Stage,
			Suggestions: []string{"이번달 지급", "2026-01 지급"},
		}, nil
	}
	if sc.Refs.TaxRunID == "" {
		sc.Stage = domain.StageTaxCalc
		return &domain.Outcome{
			Handled:     true,
			Reply:       "지급 처리 전에 공제 검증이 필요합니다. '공제 검증 진행'이라고 말해줘.",
			Stage:       sc.Stage,
			Suggestions: []string{"공제 검증 진행"},
		}, nil
	}
	if sc.Slots.PayDate == "" {
		return &domain.Outcome{
			Handled:     true,
			Reply:       "지급일(pay_date)이 필요합니다. 예: '25일 지급' 또는 '2026-01-25 지급'",
			Stage:       sc.Stage,
			Suggestions: []string{"25일 지급", "2026-01-25 지급"},
		}, nil
	}

	if sc.Slots.PaymentMethod == "" {
		sc.Slots.PaymentMethod = defaultPaymentMethod
	}

	// Irreversible action: only an explicit yes releases the payment.
	switch confirm {
	case slots.ConfirmAbsent:
		return &domain.Outcome{
			Handled: true,
			Reply: fmt.Sprintf(
				"지급 실행은 되돌리기 어려울 수 있어요.\n"+
					"- period=%s\n- tax_run_id=%s\n- pay_date=%s\n- method=%s\n\n"+
					"**지급 실행할까요?** (예/아니오)",
				sc.Slots.Period, sc.Refs.TaxRunID, sc.Slots.PayDate, sc.Slots.PaymentMethod),
			Stage:       sc.Stage,
			Suggestions: []string{"예", "아니오"},
		}, nil
	case slots.ConfirmNo:
		return &domain.Outcome{
			Handled:     true,
			Reply:       "지급 실행을 취소했습니다. (계속하려면 '예'라고 말해줘)",
			Stage:       sc.Stage,
			Suggestions: []string{"예", "지급일 수정", "취소(시나리오 종료)"},
		}, nil
	}

	period := sc.Slots.Period
	res, err := s.runQuery(ctx, sessionID, sc.Stage,
		paymentRunInstruction(period, sc.Slots.PayDate, sc.Slots.PaymentMethod, sc.Refs.TaxRunID))
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return s.failureOutcome(sc, res), nil
	}

	runID := s.newRunID("PM", period)
	sc.Refs.PaymentRunID = runID
	sc.Refs.Artifacts = res
	if summary, ok := parsePaymentSummary(res.FirstRow()); ok {
		sc.Refs.Payment = summary
	}
	s.complete(ctx, sessionID, sc, domain.StageJournalPost, "지급 실행 조회 실행", runID)

	reply := degradedReply("지급 처리", domain.PaymentSummaryCols)
	if sc.Refs.Payment != nil {
		reply = paymentReply(sc.Refs.Payment, runID)
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       reply,
		Stage:       sc.Stage,
		Suggestions: []string{"2026-01-31 전표", "1/31 전표"},
		Artifacts:   res,
	}, nil
}

func (s *PayrollScenario) stageJournalPost(ctx context.Context, sessionID string, sc *domain.ScenarioContext, confirm slots.Confirm) (*domain.Outcome, error) {
	if missing := missingSlots(sc, "period"); len(missing) > 0 {
		return &domain.Outcome{
			Handled:     true,
			Reply:       "전표 생성을 위해 period가 필요합니다.",
			Stage:       sc.Stage,
			Suggestions: []string{"이번달 전표", "2026-01 전표"},
		}, nil
	}
	if sc.Refs.PaymentRunID == "" {
		sc.Stage = domain.StagePaymentRun
		return &domain.Outcome{
			Handled:     true,
			Reply:       "전표 생성 전에 지급 단계가 필요합니다. '지급 실행'부터 진행해줘.",
			Stage:       sc.Stage,
			Suggestions: []string{"지급 실행"},
		}, nil
	}
	if sc.Slots.JournalDate == "" {
		return &domain.Outcome{
			Handled:     true,
			Reply:       "전표일(journal_date)이 필요합니다. 예: '2026-01-31 전표' 또는 '1/31 전표'",
			Stage:       sc.Stage,
			Suggestions: []string{"2026-01-31 전표", "1/31 전표"},
		}, nil
	}

	if sc.Slots.MappingVersion == "" {
		sc.Slots.MappingVersion = defaultMappingVersion
	}

	switch confirm {
	case slots.ConfirmAbsent:
		return &domain.Outcome{
			Handled: true,
			Reply: fmt.Sprintf(
				"전표 생성은 회계에 영향을 줄 수 있어요.\n"+
					"- period=%s\n- payment_run_id=%s\n- journal_date=%s\n- coa_mapping_version=%s\n\n"+
					"**전표 생성을 진행할까요?** (예/아니오)",
				sc.Slots.Period, sc.Refs.PaymentRunID, sc.Slots.JournalDate, sc.Slots.MappingVersion),
			Stage:       sc.Stage,
			Suggestions: []string{"예", "아니오"},
		}, nil
	case slots.ConfirmNo:
		return &domain.Outcome{
			Handled:     true,
			Reply:       "전표 생성을 취소했습니다. (계속하려면 '예'라고 말해줘)",
			Stage:       sc.Stage,
			Suggestions: []string{"예", "전표일 수정", "취소(시나리오 종료)"},
		}, nil
	}

	period := sc.Slots.Period
	res, err := s.runQuery(ctx, sessionID, sc.Stage,
		journalPostInstruction(period, sc.Slots.JournalDate, sc.Slots.MappingVersion, sc.Refs.PaymentRunID))
	if err != nil {
		return nil, err
	}
	if res.Failed() {
		return s.failureOutcome(sc, res), nil
	}

	runID := s.newRunID("JV", period)
	sc.Refs.JournalRunID = runID
	sc.Refs.Artifacts = res
	if summary, ok := parseJournalSummary(res.FirstRow()); ok {
		sc.Refs.Journal = summary
	}
	s.complete(ctx, sessionID, sc, domain.StageDone, "전표 생성 조회 실행", runID)

	reply := degradedReply("전표 생성", domain.JournalSummaryCols)
	if sc.Refs.Journal != nil {
		reply = journalReply(sc.Refs.Journal, runID)
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       reply,
		Stage:       sc.Stage,
		Suggestions: []string{"예", "아니오", "요약 보여줘"},
		Artifacts:   res,
	}, nil
}

// stageDone closes the scenario. A yes delivers the cross-stage
// summary, anything decisive clears the session.
func (s *PayrollScenario) stageDone(sc *domain.ScenarioContext, confirm slots.Confirm) (*domain.Outcome, bool, error) {
	switch confirm {
	case slots.ConfirmNo:
		return &domain.Outcome{
			Handled: true,
			Reply:   "급여 시나리오를 종료했습니다. 다른 질문을 해주세요.",
			Stage:   domain.StageNone,
		}, true, nil
	case slots.ConfirmAbsent:
		return &domain.Outcome{
			Handled:     true,
			Reply:       "전체 프로세스가 완료되었습니다. 요약을 보여드릴까요? (예/아니오)",
			Stage:       sc.Stage,
			Suggestions: []string{"예", "아니오"},
		}, false, nil
	}

	lines := []string{
		"✅ 급여 E2E 시나리오 완료 요약:",
		"- period: " + sc.Slots.Period,
		"- scope: " + sc.Slots.EmployeeScope,
		"- payroll_run_id: " + sc.Refs.PayrollRunID,
		"- tax_run_id: " + sc.Refs.TaxRunID,
		"- payment_run_id: " + sc.Refs.PaymentRunID,
		"- journal_run_id: " + sc.Refs.JournalRunID,
	}
	for _, h := range sc.History {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", h.Stage.Label(), h.Summary, h.Ref))
	}
	return &domain.Outcome{
		Handled:     true,
		Reply:       strings.Join(lines, "\n"),
		Stage:       domain.StageNone,
		Suggestions: []string{"처음부터 다시"},
	}, true, nil
}

// complete records a successful stage transition: history entry, next
// stage, completion hook.
func (s *PayrollScenario) complete(ctx context.Context, sessionID string, sc *domain.ScenarioContext, next domain.Stage, summary, runID string) {
	from := sc.Stage
	sc.History = append(sc.History, domain.HistoryEntry{
		Stage:   from,
		Summary: summary,
		Ref:     runID,
		At:      s.now(),
	})
	sc.Stage = next

	if s.hooks.OnStageComplete != nil {
		s.hooks.OnStageComplete(ctx, &domain.StageEvent{
			Timestamp: s.now(),
			Type:      domain.EventStageComplete,
			SessionID: sessionID,
			Stage:     from,
			NextStage: next,
			Ref:       runID,
		})
	}
}

func (s *PayrollScenario) emitStageEnter(ctx context.Context, sessionID string, stage domain.Stage) {
	if s.hooks.OnStageEnter != nil {
		s.hooks.OnStageEnter(ctx, &domain.StageEvent{
			Timestamp: s.now(),
			Type:      domain.EventStageEnter,
			SessionID: sessionID,
			Stage:     stage,
		})
	}
}

// runQuery calls the SQL service, normalizing stringly results and
// wrapping plumbing failures. Domain-level failures stay inside the
// returned QueryResult.
func (s *PayrollScenario) runQuery(ctx context.Context, sessionID string, stage domain.Stage, instruction string) (*domain.QueryResult, error) {
	start := s.now()
	res, err := s.query.Run(ctx, instruction)
	duration := s.now().Sub(start)

	if s.hooks.OnQuery != nil {
		s.hooks.OnQuery(ctx, &domain.QueryEvent{
			Timestamp:   start,
			Type:        domain.EventQuery,
			SessionID:   sessionID,
			Stage:       stage,
			Instruction: instruction,
			Duration:    duration,
			IsError:     err != nil || res.Failed(),
		})
	}

	if err != nil {
		s.logger.Error("query service call failed", "session_id", sessionID, "stage", stage, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryService, err)
	}
	if res == nil {
		res = &domain.QueryResult{Err: "query service returned no result"}
	}
	if len(res.Rows) == 0 && res.Raw != "" {
		res.Rows = slots.NormalizeRows(res.Raw)
	}
	return res, nil
}

// failureOutcome surfaces a domain-level service failure without
// advancing the stage or writing refs, so the user can retry.
func (s *PayrollScenario) failureOutcome(sc *domain.ScenarioContext, res *domain.QueryResult) *domain.Outcome {
	return &domain.Outcome{
		Handled:     true,
		Reply:       fmt.Sprintf("요청을 처리하지 못했습니다: %s\n같은 단계에서 다시 시도할 수 있어요.", res.Err),
		Stage:       sc.Stage,
		Suggestions: []string{"다시 시도", "취소(시나리오 종료)"},
		Artifacts:   res,
	}
}

// missingSlots returns the names of required slots that are absent.
func missingSlots(sc *domain.ScenarioContext, names ...string) []string {
	var missing []string
	for _, name := range names {
		switch name {
		case "period":
			if sc.Slots.Period == "" {
				missing = append(missing, "period(예: 2026년 1월)")
			}
		case "employee_scope":
			if sc.Slots.EmployeeScope == "" {
				missing = append(missing, "scope(예: 전직원/영업부)")
			}
		}
	}
	return missing
}
