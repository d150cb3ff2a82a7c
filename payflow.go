package payflow

import (
	"context"
	"time"

	"log/slog"

	"github.com/payflowkr/payflow/internal/logging"
	"github.com/payflowkr/payflow/pkg/adapters/memory"
	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
	"github.com/payflowkr/payflow/pkg/scenario"
	"github.com/payflowkr/payflow/pkg/session"
	"github.com/payflowkr/payflow/pkg/slots"
)

// Version is the library version, surfaced by the CLI and the MCP server.
const Version = "0.3.0"

// Engine is the high-level entry point for the payflow library.
// It wires the scenario orchestrator, the session manager and the SQL
// service behind a simplified API for hosts.
type Engine struct {
	orch     *scenario.Orchestrator
	sessions *session.Manager
	query    ports.QueryService

	store  ports.ContextStore
	locker ports.DistributedLocker
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a session store; defaults to the in-memory adapter.
func WithStore(store ports.ContextStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed per-session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source used to resolve relative
// periods such as "this month". Mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// New creates an Engine over the given SQL generation/execution service.
func New(query ports.QueryService, opts ...Option) *Engine {
	e := &Engine{
		query:  query,
		logger: logging.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	e.orch = scenario.NewOrchestrator(e.sessions, query,
		scenario.WithLogger(e.logger),
		scenario.WithLifecycleHooks(e.hooks),
		scenario.WithClock(e.clock),
	)
	return e
}

// Handle processes one user message for the session and returns the
// structured outcome. Outcome.Handled is false when the message does
// not belong to the payroll scenario; the host decides what to do with
// it (see HandleWithFallback).
func (e *Engine) Handle(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	return e.orch.Route(ctx, sessionID, text)
}

// HandleWithFallback routes the message through the scenario and, when
// unhandled, forwards it to the SQL service as an ad-hoc query.
func (e *Engine) HandleWithFallback(ctx context.Context, sessionID, text string) (*domain.Outcome, error) {
	out, err := e.Handle(ctx, sessionID, text)
	if err != nil || out.Handled {
		return out, err
	}

	res, err := e.query.Run(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 && res.Raw != "" {
		res.Rows = slots.NormalizeRows(res.Raw)
	}
	reply := "요청을 실행했습니다."
	if res.Failed() {
		reply = "요청을 처리하지 못했습니다: " + res.Err
	}
	return &domain.Outcome{
		Handled:   true,
		Reply:     reply,
		Artifacts: res,
	}, nil
}

// Context returns a snapshot of the session's scenario context, or nil
// when no scenario is active.
func (e *Engine) Context(ctx context.Context, sessionID string) (*domain.ScenarioContext, error) {
	return e.orch.Context(ctx, sessionID)
}

// Reset clears the session's scenario context.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.orch.Cancel(ctx, sessionID)
}

// Sessions exposes the session manager for host-level operations
// (listing, administrative cleanup).
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}
