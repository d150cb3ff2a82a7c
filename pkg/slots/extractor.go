// Package slots implements the rule-based slot extractor for the
// payroll scenario: deterministic pattern matching that pulls period,
// scope, date, confirmation and intent signals out of free-form text.
//
// Extraction never fails; unmatched categories are simply absent from
// the result. When several patterns could match the same category, the
// earliest-declared pattern wins (explicit > relative > implicit).
package slots

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Confirm is the single-turn confirmation signal. It is derived fresh
// from each message and never persisted.
type Confirm int

const (
	// ConfirmAbsent means no confirmation signal this turn.
	ConfirmAbsent Confirm = iota
	ConfirmYes
	ConfirmNo
)

// Intent is a keyword-triggered stage tag, used only to permit
// explicit stage jumps or cancellation.
type Intent string

const (
	IntentNone    Intent = ""
	IntentPayroll Intent = "PAYROLL"
	IntentTax     Intent = "TAX"
	IntentPayment Intent = "PAYMENT"
	IntentJournal Intent = "JOURNAL"
	IntentExit    Intent = "EXIT"
)

// DateTarget says which date slot a date match belongs to, decided by
// nearby keywords (journal context words win over the payment default).
type DateTarget int

const (
	TargetPayment DateTarget = iota
	TargetJournal
)

// DateRef is a possibly partial calendar date. Zero fields are
// unknown and resolved later against the active period.
type DateRef struct {
	Year  int
	Month int
	Day   int
}

// IsZero reports whether no date was matched at all.
func (d DateRef) IsZero() bool { return d.Day == 0 }

// Resolve completes the date against a "YYYY-MM" period. It reports
// false when the date is partial and the period is missing.
func (d DateRef) Resolve(period string) (string, bool) {
	if d.IsZero() {
		return "", false
	}
	y, m := d.Year, d.Month
	if y == 0 || m == 0 {
		py, pm, ok := splitPeriod(period)
		if !ok {
			return "", false
		}
		if y == 0 {
			y = py
		}
		if m == 0 {
			m = pm
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d.Day), true
}

func splitPeriod(period string) (int, int, bool) {
	parts := strings.SplitN(period, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

// Extraction is the result of scanning one message.
type Extraction struct {
	// Period is "YYYY-MM", or empty when no period was mentioned.
	Period string

	// Scope is "ALL", "dept:<name>" or "emp:<name>", or empty.
	Scope string

	// Date is the matched (possibly partial) date; Target says which
	// slot it fills.
	Date   DateRef
	Target DateTarget

	Confirm Confirm
	Intent  Intent
}

// NOTE: RE2 treats \b as an ASCII word boundary, so the Hangul
// patterns below anchor on explicit character classes instead.
var (
	rePeriodYM   = regexp.MustCompile(`(20\d{2})[-./]\s?(1[0-2]|0?[1-9])`)
	rePeriodKoYM = regexp.MustCompile(`(20\d{2})\s*년\s*(1[0-2]|0?[1-9])\s*월`)
	rePeriodKoM  = regexp.MustCompile(`(?:^|[^0-9-])(1[0-2]|0?[1-9])\s*월`)
	reThisMonth  = regexp.MustCompile(`이번\s*달|당월`)
	reLastMonth  = regexp.MustCompile(`지난\s*달|전월`)

	reScopeAll  = regexp.MustCompile(`전\s*직원|전체\s*직원|전체|전사|모두|전\s*부서`)
	reScopeDept = regexp.MustCompile(`([가-힣A-Za-z0-9_]+)(부|팀)`)
	reHangulRun = regexp.MustCompile(`[가-힣]+`)

	reDateFull = regexp.MustCompile(`(20\d{2})[-./](1[0-2]|0?[1-9])[-./](3[01]|[12]\d|0?[1-9])`)
	reDateMD   = regexp.MustCompile(`(?:^|[^0-9])(1[0-2]|0?[1-9])\s*/\s*(3[01]|[12]\d|0?[1-9])`)
	reDateDay  = regexp.MustCompile(`(?:^|[^0-9])(3[01]|[12]\d|0?[1-9])\s*일`)

	reConfirmYes = regexp.MustCompile(`^\s*(?:예|네|응|진행|실행|확정|(?i:ok)|ㅇㅋ)\s*$`)
	reConfirmNo  = regexp.MustCompile(`^\s*(?:아니오|아니|취소|중단|(?i:no)|ㄴㄴ)\s*$`)

	reIntentPayroll = regexp.MustCompile(`급여`)
	reIntentTax     = regexp.MustCompile(`세금|원천세|4대보험|보험료|공제`)
	reIntentPayment = regexp.MustCompile(`지급|이체|송금`)
	reIntentJournal = regexp.MustCompile(`전표|분개|전기|회계`)
	reIntentExit    = regexp.MustCompile(`취소|종료|그만|중단|처음부터|리셋|초기화`)

	reTrigger = regexp.MustCompile(`급여|세금|원천세|4대보험|공제|지급|이체|송금|전표|분개`)

	reExecuteIntent = regexp.MustCompile(`처리|실행|진행|계산|산정|돌려|생성|등록|전기해`)
	reQueryIntent   = regexp.MustCompile(`몇\s*명|인원|대상|총액|합계|금액|건수|결과|내역|리스트|상세|조회|보여줘`)
)

// scopeDenylist rejects domain keywords that would otherwise be
// captured as employee names by the bare-name fallback.
var scopeDenylist = []string{
	"급여", "세금", "지급", "전표", "이번", "지난", "공제",
	"검증", "진행", "처리", "실행", "산정", "계산", "월", "년",
}

// Extract scans the text and returns every recognized signal. The
// today argument anchors relative period terms ("this month").
//
// A message that is purely a confirmation token ("예", "아니오")
// carries no other slots; short-circuiting keeps the bare-name scope
// fallback from eating it.
func Extract(text string, today time.Time) Extraction {
	ex := Extraction{
		Confirm: ExtractConfirm(text),
		Intent:  extractIntent(text),
	}
	if ex.Confirm != ConfirmAbsent {
		return ex
	}

	ex.Period = extractPeriod(text, today)
	ex.Scope = extractScope(text)
	ex.Date, ex.Target = extractDate(text)
	return ex
}

func extractPeriod(text string, today time.Time) string {
	t := strings.TrimSpace(text)

	if m := rePeriodYM.FindStringSubmatch(t); m != nil {
		return formatPeriod(atoi(m[1]), atoi(m[2]))
	}
	if m := rePeriodKoYM.FindStringSubmatch(t); m != nil {
		return formatPeriod(atoi(m[1]), atoi(m[2]))
	}
	if m := rePeriodKoM.FindStringSubmatch(t); m != nil {
		return formatPeriod(today.Year(), atoi(m[1]))
	}
	if reThisMonth.MatchString(t) {
		return formatPeriod(today.Year(), int(today.Month()))
	}
	if reLastMonth.MatchString(t) {
		y, m := today.Year(), int(today.Month())-1
		if m == 0 {
			y, m = y-1, 12
		}
		return formatPeriod(y, m)
	}
	return ""
}

func extractScope(text string) string {
	t := strings.TrimSpace(text)

	if reScopeAll.MatchString(t) {
		return "ALL"
	}
	if m := reScopeDept.FindStringSubmatch(t); m != nil {
		return "dept:" + m[1] + m[2]
	}

	// Bare-name fallback: first 2-4 syllable Hangul run that is not a
	// domain keyword. A denied first match means no scope, not "keep
	// looking"; this keeps extraction order-independent of phrasing.
	if run := reHangulRun.FindString(t); run != "" {
		n := len([]rune(run))
		if n >= 2 && n <= 4 && !denied(run) {
			return "emp:" + run
		}
	}
	return ""
}

func denied(run string) bool {
	for _, kw := range scopeDenylist {
		if strings.Contains(run, kw) {
			return true
		}
	}
	return false
}

func extractDate(text string) (DateRef, DateTarget) {
	t := strings.TrimSpace(text)

	target := TargetPayment
	if reIntentJournal.MatchString(t) {
		target = TargetJournal
	}

	if m := reDateFull.FindStringSubmatch(t); m != nil {
		return DateRef{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}, target
	}
	if m := reDateMD.FindStringSubmatch(t); m != nil {
		return DateRef{Month: atoi(m[1]), Day: atoi(m[2])}, target
	}
	if m := reDateDay.FindStringSubmatch(t); m != nil {
		return DateRef{Day: atoi(m[1])}, target
	}
	return DateRef{}, target
}

// ExtractConfirm matches exact affirmative/negative tokens. Anything
// else is ConfirmAbsent, never a parse failure.
func ExtractConfirm(text string) Confirm {
	if reConfirmYes.MatchString(text) {
		return ConfirmYes
	}
	if reConfirmNo.MatchString(text) {
		return ConfirmNo
	}
	return ConfirmAbsent
}

func extractIntent(text string) Intent {
	// Later categories override earlier ones, so a message like
	// "급여 전표 생성" lands on the journal stage.
	intent := IntentNone
	if reIntentPayroll.MatchString(text) {
		intent = IntentPayroll
	}
	if reIntentTax.MatchString(text) {
		intent = IntentTax
	}
	if reIntentPayment.MatchString(text) {
		intent = IntentPayment
	}
	if reIntentJournal.MatchString(text) {
		intent = IntentJournal
	}
	if reIntentExit.MatchString(text) {
		intent = IntentExit
	}
	return intent
}

// HasTrigger reports whether the text contains a payroll domain
// keyword that may activate the scenario.
func HasTrigger(text string) bool {
	return reTrigger.MatchString(text)
}

// IsExecuteIntent reports whether the text asks to run something.
func IsExecuteIntent(text string) bool {
	return reExecuteIntent.MatchString(strings.TrimSpace(text))
}

// IsQueryIntent reports whether the text asks about results rather
// than requesting execution.
func IsQueryIntent(text string) bool {
	return reQueryIntent.MatchString(strings.TrimSpace(text))
}

func formatPeriod(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
