// Package scenario implements the conversational payroll workflow:
// the per-stage handlers and the router that decides, for every
// incoming message, whether it belongs to an active or newly-triggered
// scenario, merges extracted slots, and dispatches to the current
// stage under the session lock.
package scenario

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/payflowkr/payflow/internal/logging"
	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
	"github.com/payflowkr/payflow/pkg/session"
	"github.com/payflowkr/payflow/pkg/slots"
)

// Orchestrator routes user messages into the payroll scenario. One
// Route call is one turn: load context, mutate, persist, all under the
// session manager's lock.
type Orchestrator struct {
	sessions *session.Manager
	payroll  *PayrollScenario
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
		o.payroll.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.payroll.hooks = hooks
	}
}

// WithClock overrides the time source; relative period terms ("this
// month") resolve against it.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.payroll.now = now
	}
}

// WithRunIDFunc overrides run-id generation, mainly for tests.
func WithRunIDFunc(fn func(prefix, period string) string) Option {
	return func(o *Orchestrator) {
		o.payroll.newRunID = fn
	}
}

// NewOrchestrator creates an orchestrator over the given session
// manager and SQL service.
func NewOrchestrator(sessions *session.Manager, query ports.QueryService, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions: sessions,
		payroll:  newPayrollScenario(query),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Route processes one user message for the session. An unhandled
// outcome means the caller should fall back to ad-hoc query handling.
// Only unrecoverable plumbing failures return an error; everything
// domain-level is absorbed into the outcome.
func (o *Orchestrator) Route(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	var out *domain.Outcome
	err := o.sessions.Turn(ctx, sessionID, func(ctx context.Context, sc *domain.ScenarioContext) (*domain.ScenarioContext, error) {
		var next *domain.ScenarioContext
		var err error
		out, next, err = o.routeTurn(ctx, sessionID, sc, text)
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel clears the session context unconditionally.
func (o *Orchestrator) Cancel(ctx context.Context, sessionID string) error {
	return o.sessions.Delete(ctx, sessionID)
}

// Context returns a snapshot of the stored context, or nil when the
// session has no active scenario.
func (o *Orchestrator) Context(ctx context.Context, sessionID string) (*domain.ScenarioContext, error) {
	return o.sessions.Load(ctx, sessionID)
}

// routeTurn implements the routing algorithm. The returned context is
// what gets persisted; nil clears the session.
func (o *Orchestrator) routeTurn(ctx context.Context, sessionID string, sc *domain.ScenarioContext, text string) (*domain.Outcome, *domain.ScenarioContext, error) {
	ex := slots.Extract(text, o.now())

	// Trigger eligibility: once active every message routes to the
	// scenario; otherwise only a domain keyword activates it, and a
	// pure result question falls through to ad-hoc query handling.
	if !sc.Active() {
		trigger := slots.HasTrigger(text) &&
			(slots.IsExecuteIntent(text) || !slots.IsQueryIntent(text))
		if !trigger {
			return domain.Unhandled(), sc, nil
		}
		sc = domain.NewContext()
		o.logger.Info("scenario activated", "session_id", sessionID)
	}

	// Explicit cancel short-circuits everything, at any stage.
	if ex.Intent == slots.IntentExit {
		o.logger.Info("scenario cancelled", "session_id", sessionID, "stage", sc.Stage)
		return &domain.Outcome{
			Handled: true,
			Reply:   "급여 시나리오를 종료하고 초기 상태로 돌아왔습니다. 다른 질문을 해주세요.",
			Stage:   domain.StageNone,
		}, nil, nil
	}

	// A corrupted stage value resets to the first stage with a notice
	// instead of crashing.
	notice := ""
	if !sc.Stage.Valid() {
		o.logger.Warn("unknown stage in stored context, resetting", "session_id", sessionID, "stage", sc.Stage)
		sc.Stage = domain.StagePayrollCalc
		notice = "⚠️ 진행 상태를 확인할 수 없어 처음 단계부터 다시 시작합니다.\n\n"
	}

	// Read-only side channel: result questions answered from stored
	// refs without mutating the stage.
	if ex.Confirm == slots.ConfirmAbsent && !sc.Refs.Empty() &&
		slots.IsQueryIntent(text) && !slots.IsExecuteIntent(text) {
		if out := answerFromRefs(sc, text); out != nil {
			return out, sc, nil
		}
	}

	o.mergeSlots(sc, ex, text)

	// Intent stage jumps; the target's own prerequisite checks still
	// apply and can bounce back.
	if target := stageForIntent(ex.Intent); target != domain.StageNone {
		o.jump(sc, target)
	}

	out, clear, err := o.payroll.handle(ctx, sessionID, sc, ex.Confirm)
	if err != nil {
		return nil, nil, err
	}
	if notice != "" {
		out.Reply = notice + out.Reply
	}
	if clear {
		return out, nil, nil
	}
	return out, sc, nil
}

// mergeSlots folds newly extracted values into the persistent slot
// map. Confirm and intent are single-turn signals and never merged.
func (o *Orchestrator) mergeSlots(sc *domain.ScenarioContext, ex slots.Extraction, text string) {
	sc.Slots.LastUserText = text

	if ex.Period != "" {
		sc.Slots.Period = ex.Period
	}
	if ex.Scope != "" {
		sc.Slots.EmployeeScope = ex.Scope
	}

	if !ex.Date.IsZero() {
		target := ex.Target
		// A bare date while the journal stage is waiting for one fills
		// the journal date unless payment keywords say otherwise.
		if target == slots.TargetPayment && sc.Stage == domain.StageJournalPost && ex.Intent != slots.IntentPayment {
			target = slots.TargetJournal
		}
		if resolved, ok := ex.Date.Resolve(sc.Slots.Period); ok {
			setDate(sc, target, resolved)
		} else {
			setPendingDate(sc, target, encodePending(ex.Date))
		}
	}

	resolvePending(sc)
}

func setDate(sc *domain.ScenarioContext, target slots.DateTarget, date string) {
	if target == slots.TargetJournal {
		sc.Slots.JournalDate = date
		sc.Slots.PendingJournalDate = ""
		return
	}
	sc.Slots.PayDate = date
	sc.Slots.PendingPayDate = ""
}

func setPendingDate(sc *domain.ScenarioContext, target slots.DateTarget, pending string) {
	if target == slots.TargetJournal {
		sc.Slots.PendingJournalDate = pending
		return
	}
	sc.Slots.PendingPayDate = pending
}

// resolvePending completes partial dates once a period is available.
func resolvePending(sc *domain.ScenarioContext) {
	if sc.Slots.Period == "" {
		return
	}
	if sc.Slots.PendingPayDate != "" {
		if resolved, ok := decodePending(sc.Slots.PendingPayDate).Resolve(sc.Slots.Period); ok {
			sc.Slots.PayDate = resolved
			sc.Slots.PendingPayDate = ""
		}
	}
	if sc.Slots.PendingJournalDate != "" {
		if resolved, ok := decodePending(sc.Slots.PendingJournalDate).Resolve(sc.Slots.Period); ok {
			sc.Slots.JournalDate = resolved
			sc.Slots.PendingJournalDate = ""
		}
	}
}

// encodePending serializes a partial date as "M/D" or "D".
func encodePending(d slots.DateRef) string {
	if d.Month > 0 {
		return fmt.Sprintf("%d/%d", d.Month, d.Day)
	}
	return strconv.Itoa(d.Day)
}

func decodePending(s string) slots.DateRef {
	if m, d, ok := strings.Cut(s, "/"); ok {
		return slots.DateRef{Month: atoi(m), Day: atoi(d)}
	}
	return slots.DateRef{Day: atoi(s)}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var stageOrder = []domain.Stage{
	domain.StagePayrollCalc,
	domain.StageTaxCalc,
	domain.StagePaymentRun,
	domain.StageJournalPost,
	domain.StageDone,
}

func stageIndex(s domain.Stage) int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

func stageForIntent(intent slots.Intent) domain.Stage {
	switch intent {
	case slots.IntentPayroll:
		return domain.StagePayrollCalc
	case slots.IntentTax:
		return domain.StageTaxCalc
	case slots.IntentPayment:
		return domain.StagePaymentRun
	case slots.IntentJournal:
		return domain.StageJournalPost
	}
	return domain.StageNone
}

// jump redirects the stage. Backward jumps invalidate the refs of the
// target stage and everything after it, so a stale run id can never
// satisfy a later prerequisite.
func (o *Orchestrator) jump(sc *domain.ScenarioContext, target domain.Stage) {
	idx := stageIndex(target)
	if idx < 0 || target == sc.Stage {
		return
	}
	if idx < stageIndex(sc.Stage) {
		clearRefsFrom(&sc.Refs, idx)
	}
	sc.Stage = target
}

func clearRefsFrom(refs *domain.Refs, idx int) {
	if idx <= stageIndex(domain.StagePayrollCalc) {
		refs.PayrollRunID = ""
		refs.Payroll = nil
	}
	if idx <= stageIndex(domain.StageTaxCalc) {
		refs.TaxRunID = ""
		refs.Tax = nil
	}
	if idx <= stageIndex(domain.StagePaymentRun) {
		refs.PaymentRunID = ""
		refs.Payment = nil
	}
	if idx <= stageIndex(domain.StageJournalPost) {
		refs.JournalRunID = ""
		refs.Journal = nil
	}
}
