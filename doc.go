/*
Package payflow is a conversational payroll workflow engine.

It tracks a multi-stage payroll process per user session (calculation,
deduction verification, payment, journal posting), extracts structured
parameters from free-form Korean text, enforces stage prerequisites,
gates irreversible actions behind explicit confirmation, and produces
both a structured result and a natural-language-ready reply on every
turn. Natural-language-to-SQL generation and execution are delegated to
an injected QueryService; session state lives behind a pluggable
ContextStore (in-memory or Redis).

Basic usage:

	engine := payflow.New(sqlService,
		payflow.WithStore(memory.NewStore()),
		payflow.WithLogger(logger),
	)

	out, err := engine.HandleWithFallback(ctx, sessionID, userText)
	if err != nil {
		// plumbing failure; domain failures arrive inside out.Reply
	}
	fmt.Println(out.Reply)

See the pkg/adapters packages for HTTP and MCP hosts, and cmd/payflow
for the reference CLI.
*/
package payflow
