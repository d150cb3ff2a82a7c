package payflow_test

import (
	"context"
	"fmt"
	"log"

	"github.com/payflowkr/payflow"
	"github.com/payflowkr/payflow/pkg/domain"
	"github.com/payflowkr/payflow/pkg/ports"
)

// ExampleNew demonstrates driving the payroll workflow with an
// in-process fake SQL service. Production hosts inject the sqlsvc
// HTTP client instead.
func ExampleNew() {
	// The service answers every instruction with a payroll summary row:
	// headcount, total gross, total deductions, error count.
	fake := ports.QueryFunc(func(ctx context.Context, instruction string) (*domain.QueryResult, error) {
		return &domain.QueryResult{
			Rows: [][]any{{26, 92082741.0, 7611337.0, 0}},
		}, nil
	})

	engine := payflow.New(fake)

	out, err := engine.Handle(context.Background(), "demo", "2026년 1월 전직원 급여 처리")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(out.Handled)
	fmt.Println(out.Stage)
	// Output:
	// true
	// TAX_CALC
}
