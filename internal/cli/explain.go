package cli

import (
	"fmt"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/querysql"
)

type explainJSON struct {
	Scope     string      `json:"scope"`
	Context   contextJSON `json:"context"`
	Predicate string      `json:"predicate"`
	Order     string      `json:"order"`
	Clear     clearJSON   `json:"clear_date_routing"`
	SQL       string      `json:"sql"`
	Params    []any       `json:"params"`
}

// Execute implements the go-flags Commander interface for ExplainCommand.
func (c *ExplainCommand) Execute(args []string) error {
	rt, err := newRuntime(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithRuntime(rt)
}

// executeWithRuntime runs explain; no database is opened.
func (c *ExplainCommand) executeWithRuntime(rt *runtime) error {
	components, err := resolveDateFlags(rt, c.DateFlags)
	if err != nil {
		return err
	}

	result, err := rt.service(nil).Explain(components)
	if err != nil {
		return err
	}
	plan := result.Plan

	compiler := querysql.NewCompiler()
	sql, params, err := compiler.Select("events", nil, plan)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	order, err := compiler.OrderBy(plan.Order)
	if err != nil {
		return fmt.Errorf("compile order: %w", err)
	}

	if c.globals.JSON {
		if params == nil {
			params = []any{}
		}
		return printJSON(explainJSON{
			Scope:     fmt.Sprint(result.Resolution.Scope),
			Context:   toContextJSON(result.Resolution.Context),
			Predicate: predicate.Format(plan.Predicate),
			Order:     order,
			Clear:     toClearJSON(plan.Clear),
			SQL:       sql,
			Params:    params,
		})
	}

	ctx := result.Resolution.Context
	fmt.Printf("Mode:       %s\n", ctx.Mode)
	fmt.Printf("Scope:      %s\n", result.Resolution.Scope)
	fmt.Printf("Context:    %04d-%02d-%02d\n", ctx.Year, int(ctx.Month), ctx.Day)
	fmt.Printf("Predicate:  %s\n", predicate.Format(plan.Predicate))
	fmt.Printf("Order:      %s (%s)\n", order, plan.Order.Field)
	fmt.Printf("Clear:      year=%t month=%t day=%t\n", plan.Clear.Year, plan.Clear.Month, plan.Clear.Day)
	fmt.Printf("SQL:        %s\n", sql)
	fmt.Printf("Params:     %v\n", params)
	return nil
}
