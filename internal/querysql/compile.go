package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
)

// Compiler turns predicate trees into parameterized SQLite fragments.
//
// Values are never interpolated: every date becomes a ? placeholder bound
// to its YYYY-MM-DD text. Every ORDER BY ends with the primary key so
// rows with equal sort keys come back in a stable order.
type Compiler struct {
	// TieBreaker is the column appended to every ORDER BY.
	TieBreaker string
}

// NewCompiler creates a Compiler that breaks ties on id.
func NewCompiler() *Compiler {
	return &Compiler{TieBreaker: "id"}
}

// Where compiles p into a WHERE fragment (without the keyword) and its
// parameters. A nil predicate compiles to "1 = 1".
func (c *Compiler) Where(p predicate.Predicate) (string, []any, error) {
	return c.compilePredicate(p, false)
}

// OrderBy compiles an order spec into an ORDER BY fragment (without the
// keyword).
func (c *Compiler) OrderBy(o predicate.OrderSpec) (string, error) {
	var col predicate.Field
	switch o.Field {
	case predicate.OrderStartDateMeta, predicate.OrderRawStartDate:
		col = o.Field.Column()
	default:
		return "", fmt.Errorf("unsupported order field: %q", o.Field)
	}

	dir := o.Direction
	switch dir {
	case "":
		dir = predicate.Asc
	case predicate.Asc, predicate.Desc:
	default:
		return "", fmt.Errorf("unsupported order direction: %q", o.Direction)
	}

	return fmt.Sprintf("%s %s, %s ASC", col, dir, c.TieBreaker), nil
}

// Select compiles a full SELECT of columns from table, filtered and
// ordered by plan.
func (c *Compiler) Select(table string, columns []string, plan predicate.Plan) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("select: empty table name")
	}
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}

	where, params, err := c.Where(plan.Predicate)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}

	order, err := c.OrderBy(plan.Order)
	if err != nil {
		return "", nil, fmt.Errorf("compile order: %w", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s", cols, table, where, order)
	return sql, params, nil
}

// Delete compiles a DELETE from table filtered by p.
func (c *Compiler) Delete(table string, p predicate.Predicate) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("delete: empty table name")
	}
	where, params, err := c.Where(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where), params, nil
}

// Count compiles a SELECT COUNT(*) from table filtered by p.
func (c *Compiler) Count(table string, p predicate.Predicate) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("count: empty table name")
	}
	where, params, err := c.Where(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where), params, nil
}

// compilePredicate compiles one node. nested is true when the node sits
// inside an AND/OR and must be parenthesized if it is itself a group.
func (c *Compiler) compilePredicate(p predicate.Predicate, nested bool) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case predicate.Compare:
		return c.compileCompare(pred)
	case *predicate.Compare:
		return c.compileCompare(*pred)
	case predicate.Between:
		return c.compileBetween(pred)
	case *predicate.Between:
		return c.compileBetween(*pred)
	case predicate.And:
		return c.compileGroup("AND", "1 = 1", pred.Predicates, nested)
	case *predicate.And:
		return c.compileGroup("AND", "1 = 1", pred.Predicates, nested)
	case predicate.Or:
		return c.compileGroup("OR", "1 = 0", pred.Predicates, nested)
	case *predicate.Or:
		return c.compileGroup("OR", "1 = 0", pred.Predicates, nested)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileCompare(cmp predicate.Compare) (string, []any, error) {
	col, err := column(cmp.Field)
	if err != nil {
		return "", nil, err
	}
	switch cmp.Op {
	case predicate.OpLT, predicate.OpLTE, predicate.OpGT, predicate.OpGTE:
	default:
		return "", nil, fmt.Errorf("unsupported operator: %q", cmp.Op)
	}
	return fmt.Sprintf("%s %s ?", col, cmp.Op), []any{dateParam(cmp.Value)}, nil
}

func (c *Compiler) compileBetween(b predicate.Between) (string, []any, error) {
	col, err := column(b.Field)
	if err != nil {
		return "", nil, err
	}
	return col + " BETWEEN ? AND ?", []any{dateParam(b.Low), dateParam(b.High)}, nil
}

func (c *Compiler) compileGroup(op, empty string, children []predicate.Predicate, nested bool) (string, []any, error) {
	if len(children) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(children))
	var params []any
	for _, child := range children {
		sql, childParams, err := c.compilePredicate(child, true)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, childParams...)
	}

	sql := strings.Join(parts, " "+op+" ")
	if nested && len(children) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, params, nil
}

// column maps a predicate field onto its column, rejecting anything else
// so no caller-supplied text reaches the SQL.
func column(f predicate.Field) (string, error) {
	switch f {
	case predicate.StartDate, predicate.EndDate:
		return string(f), nil
	default:
		return "", fmt.Errorf("unsupported field: %q", f)
	}
}

func dateParam(t time.Time) string {
	return t.Format(scope.DateLayout)
}
