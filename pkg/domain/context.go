package domain

import "time"

// Stage identifies one step of the payroll workflow.
type Stage string

const (
	StagePayrollCalc Stage = "PAYROLL_CALC"
	StageTaxCalc     Stage = "TAX_CALC"
	StagePaymentRun  Stage = "PAYMENT_RUN"
	StageJournalPost Stage = "JOURNAL_POST"
	StageDone        Stage = "DONE"

	// StageNone means no scenario is active for the session.
	StageNone Stage = ""
)

// ScenarioPayrollE2E is the identifier of the end-to-end payroll scenario.
const ScenarioPayrollE2E = "PAYROLL_E2E"

// Valid reports whether the stage is one of the defined workflow stages.
func (s Stage) Valid() bool {
	switch s {
	case StagePayrollCalc, StageTaxCalc, StagePaymentRun, StageJournalPost, StageDone:
		return true
	}
	return false
}

// Label returns a short Korean label for UI display.
func (s Stage) Label() string {
	switch s {
	case StagePayrollCalc:
		return "급여 산정"
	case StageTaxCalc:
		return "공제 검증"
	case StagePaymentRun:
		return "지급 처리"
	case StageJournalPost:
		return "전표 생성"
	case StageDone:
		return "완료"
	}
	return string(s)
}

// Slots holds the parameters collected from user text across turns.
// Values persist until overwritten; the zero value of a field means
// the slot has not been provided yet.
type Slots struct {
	// Period is the target pay month, normalized to "YYYY-MM".
	Period string `json:"period,omitempty"`

	// EmployeeScope is "ALL", "dept:<name>" or "emp:<name>".
	EmployeeScope string `json:"employee_scope,omitempty"`

	// PayDate and JournalDate are normalized to "YYYY-MM-DD".
	PayDate     string `json:"pay_date,omitempty"`
	JournalDate string `json:"journal_date,omitempty"`

	// Partial dates ("M/D" or "D") mentioned before a period is known;
	// resolved against the period on a later turn.
	PendingPayDate     string `json:"pending_pay_date,omitempty"`
	PendingJournalDate string `json:"pending_journal_date,omitempty"`

	// PaymentMethod defaults to "bank_transfer" when the payment stage runs.
	PaymentMethod string `json:"payment_method,omitempty"`

	// MappingVersion is the chart-of-accounts mapping used for journal posting.
	MappingVersion string `json:"mapping_version,omitempty"`

	// LastUserText keeps the most recent raw message for late slot
	// resolution (e.g. journal dates mentioned before the stage asks).
	LastUserText string `json:"last_user_text,omitempty"`
}

// Refs holds the opaque identifiers and result snapshots produced by
// completed stages. A later stage cannot execute without the run id of
// its predecessor.
type Refs struct {
	PayrollRunID string `json:"payroll_run_id,omitempty"`
	TaxRunID     string `json:"tax_run_id,omitempty"`
	PaymentRunID string `json:"payment_run_id,omitempty"`
	JournalRunID string `json:"journal_run_id,omitempty"`

	// Parsed summaries of each completed stage, kept so read-only
	// questions can be answered without re-querying.
	Payroll *PayrollSummary `json:"payroll,omitempty"`
	Tax     *TaxSummary     `json:"tax,omitempty"`
	Payment *PaymentSummary `json:"payment,omitempty"`
	Journal *JournalSummary `json:"journal,omitempty"`

	// Artifacts is the raw result of the most recent external call.
	Artifacts *QueryResult `json:"artifacts,omitempty"`
}

// Empty reports whether no stage has produced a ref yet.
func (r *Refs) Empty() bool {
	return r.PayrollRunID == "" && r.TaxRunID == "" && r.PaymentRunID == "" && r.JournalRunID == ""
}

// HistoryEntry records one completed stage transition. Entries are
// append-only and never mutated afterwards.
type HistoryEntry struct {
	Stage   Stage     `json:"stage"`
	Summary string    `json:"summary"`
	Ref     string    `json:"ref"`
	At      time.Time `json:"at"`
}

// ScenarioContext is the per-session state record. It is owned
// exclusively by the orchestrator for the duration of a turn; the
// session manager serializes turns per session id.
type ScenarioContext struct {
	ActiveScenario string         `json:"active_scenario,omitempty"`
	Stage          Stage          `json:"stage,omitempty"`
	Slots          Slots          `json:"slots"`
	Refs           Refs           `json:"refs"`
	History        []HistoryEntry `json:"history,omitempty"`
}

// NewContext creates a fresh context with the scenario activated at
// the first stage.
func NewContext() *ScenarioContext {
	return &ScenarioContext{
		ActiveScenario: ScenarioPayrollE2E,
		Stage:          StagePayrollCalc,
	}
}

// Active reports whether the payroll scenario is running.
func (c *ScenarioContext) Active() bool {
	return c != nil && c.ActiveScenario == ScenarioPayrollE2E
}

// Clone returns a deep copy so stores can hand out isolated snapshots.
func (c *ScenarioContext) Clone() *ScenarioContext {
	if c == nil {
		return nil
	}
	cp := *c
	cp.History = make([]HistoryEntry, len(c.History))
	copy(cp.History, c.History)
	if c.Refs.Payroll != nil {
		v := *c.Refs.Payroll
		cp.Refs.Payroll = &v
	}
	if c.Refs.Tax != nil {
		v := *c.Refs.Tax
		cp.Refs.Tax = &v
	}
	if c.Refs.Payment != nil {
		v := *c.Refs.Payment
		cp.Refs.Payment = &v
	}
	if c.Refs.Journal != nil {
		v := *c.Refs.Journal
		cp.Refs.Journal = &v
	}
	if c.Refs.Artifacts != nil {
		cp.Refs.Artifacts = c.Refs.Artifacts.Clone()
	}
	return &cp
}
