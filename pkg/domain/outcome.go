package domain

// QueryResult is the normalized response of the external SQL service.
// Domain-level failures (bad query, empty result) arrive in Err; the
// service only returns a Go error for unrecoverable plumbing failures.
type QueryResult struct {
	// SQL is the generated statement, kept for audit display.
	SQL string `json:"sql,omitempty"`

	// Raw is the service's unparsed result rendering.
	Raw string `json:"raw,omitempty"`

	// Rows holds the normalized result tuples.
	Rows [][]any `json:"rows,omitempty"`

	// Err carries a domain-level failure message, empty on success.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the call failed at the domain level.
func (r *QueryResult) Failed() bool {
	return r != nil && r.Err != ""
}

// FirstRow returns the first result row, or nil when there is none.
func (r *QueryResult) FirstRow() []any {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Clone returns a deep copy of the result.
func (r *QueryResult) Clone() *QueryResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Rows = make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		cp.Rows[i] = append([]any(nil), row...)
	}
	return &cp
}

// Outcome is the structured result of one conversational turn.
type Outcome struct {
	// Handled is false when the message did not belong to the scenario
	// and the host should fall back to ad-hoc query handling.
	Handled bool `json:"handled"`

	// Reply is the natural-language-ready answer (markdown).
	Reply string `json:"reply,omitempty"`

	// Stage is the stage the session is in after this turn; StageNone
	// when the scenario ended or never started.
	Stage Stage `json:"stage,omitempty"`

	// Suggestions are short example utterances for UI affordance.
	Suggestions []string `json:"suggestions,omitempty"`

	// Artifacts exposes the query text and raw result of any external
	// call made this turn, for transparency and audit display.
	Artifacts *QueryResult `json:"artifacts,omitempty"`
}

// Unhandled is the outcome for messages outside the scenario.
func Unhandled() *Outcome {
	return &Outcome{Handled: false}
}
