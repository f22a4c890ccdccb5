// Package querybuilder renders the small set of postgres statements the
// repositories need, numbering $n placeholders in the order values are bound.
package querybuilder

import (
	"errors"
	"strconv"
	"strings"
)

// binder accumulates bind values for one statement.
type binder struct {
	values []any
}

func (b *binder) bind(value any) string {
	b.values = append(b.values, value)
	return "$" + strconv.Itoa(len(b.values))
}

// expand replaces each ? in expr with the next value. Extra ? marks are kept.
func (b *binder) expand(expr string, values []any) string {
	if len(values) == 0 {
		return expr
	}

	var out strings.Builder
	next := 0
	for _, r := range expr {
		if r == '?' && next < len(values) {
			out.WriteString(b.bind(values[next]))
			next++
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func (b *binder) where(sql *strings.Builder, conds []Condition) {
	for i, cond := range conds {
		if i == 0 {
			sql.WriteString(" WHERE ")
		} else {
			sql.WriteString(" AND ")
		}
		sql.WriteString(cond.render(b))
	}
}

// Condition is one AND-ed predicate of a WHERE clause.
type Condition interface {
	render(b *binder) string
}

type conditionFunc func(b *binder) string

func (f conditionFunc) render(b *binder) string { return f(b) }

func Eq(column string, value any) Condition {
	return conditionFunc(func(b *binder) string {
		return column + " = " + b.bind(value)
	})
}

func NotNull(column string) Condition {
	return conditionFunc(func(*binder) string {
		return column + " IS NOT NULL"
	})
}

// Expr is a raw predicate with ? placeholders.
func Expr(expr string, values ...any) Condition {
	return conditionFunc(func(b *binder) string {
		return b.expand(expr, values)
	})
}

type SelectBuilder struct {
	columns []string
	table   string
	conds   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	s.conds = append(s.conds, conds...)
	return s
}

func (s *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

func (s *SelectBuilder) Limit(n int) *SelectBuilder {
	s.limit = n
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 || strings.TrimSpace(s.table) == "" {
		return "", nil, errors.New("select needs columns and a table")
	}

	var (
		sql strings.Builder
		b   binder
	)
	sql.WriteString("SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table)
	b.where(&sql, s.conds)
	if len(s.orderBy) > 0 {
		sql.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		sql.WriteString(" LIMIT " + strconv.Itoa(s.limit))
	}
	return sql.String(), b.values, nil
}

type assignment struct {
	column string
	expr   string
	values []any
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	conds []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set assigns a bound value.
func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: "?", values: []any{value}})
	return u
}

// SetExpr assigns a raw expression such as "points + ?".
func (u *UpdateBuilder) SetExpr(column, expr string, values ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr, values: values})
	return u
}

func (u *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	u.conds = append(u.conds, conds...)
	return u
}

// ToSQL refuses an update without a WHERE clause.
func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" || len(u.sets) == 0 {
		return "", nil, errors.New("update needs a table and at least one column")
	}
	if len(u.conds) == 0 {
		return "", nil, errors.New("update needs a condition")
	}

	var (
		sql strings.Builder
		b   binder
	)
	sql.WriteString("UPDATE " + u.table + " SET ")
	for i, set := range u.sets {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(set.column + " = " + b.expand(set.expr, set.values))
	}
	b.where(&sql, u.conds)
	return sql.String(), b.values, nil
}

type DeleteBuilder struct {
	table string
	conds []Condition
}

func DeleteFrom(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (d *DeleteBuilder) Where(conds ...Condition) *DeleteBuilder {
	d.conds = append(d.conds, conds...)
	return d
}

// ToSQL refuses an unconditional delete.
func (d *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(d.table) == "" || len(d.conds) == 0 {
		return "", nil, errors.New("delete needs a table and a condition")
	}

	var (
		sql strings.Builder
		b   binder
	)
	sql.WriteString("DELETE FROM " + d.table)
	b.where(&sql, d.conds)
	return sql.String(), b.values, nil
}
