// Package ast defines the algebraic AST produced by package parser:
// Statement, Query, SelectItem, FromItem and Expr, each a closed sum
// type implemented as a marker-method interface over one struct per
// variant.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is the root node of one parsed SQL statement.
type Statement interface {
	statement()
	String() string
}

// Select wraps a long-running query registration.
type Select struct {
	Query *Query
}

func (*Select) statement() {}
func (s *Select) String() string {
	return s.Query.String() + ";"
}

// CreateKinesisStream registers streamName/consumerName under
// relationIdent in the catalog.
type CreateKinesisStream struct {
	RelationIdent string
	StreamName    string
	ConsumerName  string
}

func (*CreateKinesisStream) statement() {}
func (c *CreateKinesisStream) String() string {
	return fmt.Sprintf("CREATE KINESIS STREAM %s '%s' '%s';", c.RelationIdent, c.StreamName, c.ConsumerName)
}

// Explain prints a Query's plan instead of executing it.
type Explain struct {
	Query *Query
}

func (*Explain) statement() {}
func (e *Explain) String() string {
	return "EXPLAIN " + e.Query.String() + ";"
}

// Query is a SELECT's body: projection items, source items, and an
// optional filter.
type Query struct {
	SelectItems []SelectItem
	FromItems   []FromItem
	Where       Expr // nil if absent
}

func (q *Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, item := range q.SelectItems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(item.String())
	}
	if len(q.FromItems) > 0 {
		b.WriteString(" FROM ")
		for i, item := range q.FromItems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
	}
	if q.Where != nil {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where.String())
	}
	return b.String()
}

// SelectItem is one entry of a SELECT's projection list.
type SelectItem interface {
	selectItem()
	String() string
}

// ExprItem is a select item with no alias.
type ExprItem struct {
	Expr Expr
}

func (*ExprItem) selectItem()    {}
func (e *ExprItem) String() string { return e.Expr.String() }

// NamedExprItem is a select item aliased with AS.
type NamedExprItem struct {
	Expr  Expr
	Alias string
}

func (*NamedExprItem) selectItem() {}
func (n *NamedExprItem) String() string {
	return fmt.Sprintf("%s AS %s", n.Expr.String(), n.Alias)
}

// FromItem is one entry of a query's FROM clause.
type FromItem interface {
	fromItem()
	String() string
}

// IdentFrom names a catalog relation.
type IdentFrom struct {
	Name string
}

func (*IdentFrom) fromItem()      {}
func (i *IdentFrom) String() string { return i.Name }

// SubQueryFrom wraps a parenthesized nested query.
type SubQueryFrom struct {
	Query *Query
}

func (*SubQueryFrom) fromItem() {}
func (s *SubQueryFrom) String() string {
	return "(" + s.Query.String() + ")"
}

// ValuesFrom is a literal row set: (VALUES (e1, e2), (e3, e4)).
type ValuesFrom struct {
	Rows [][]Expr
}

func (*ValuesFrom) fromItem() {}
func (v *ValuesFrom) String() string {
	var b strings.Builder
	b.WriteString("(VALUES ")
	for i, row := range v.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, e := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteString(")")
	}
	b.WriteString(")")
	return b.String()
}

// BinOp is a comparison or arithmetic infix operator.
type BinOp string

const (
	OpAdd BinOp = "+"
	OpSub BinOp = "-"
	OpMul BinOp = "*"
	OpDiv BinOp = "/"
	OpEq  BinOp = "="
	OpGt  BinOp = ">"
	OpLt  BinOp = "<"
	OpGte BinOp = ">="
	OpLte BinOp = "<="
)

// Expr is a scalar expression.
type Expr interface {
	expr()
	String() string
}

// Ident references a record key at evaluation time.
type Ident struct {
	Name string
}

func (*Ident) expr()          {}
func (i *Ident) String() string { return i.Name }

// FunctionCall invokes a catalog-registered native function.
type FunctionCall struct {
	Name string
	Args []Expr
}

func (*FunctionCall) expr() {}
func (f *FunctionCall) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString(")")
	return b.String()
}

// StringLit is a single-quoted string literal.
type StringLit struct {
	Value string
}

func (*StringLit) expr() {}
func (s *StringLit) String() string {
	return "'" + s.Value + "'"
}

// NumberLit is a decimal-digit-run numeric literal.
type NumberLit struct {
	Value float64
}

func (*NumberLit) expr() {}
func (n *NumberLit) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// BinaryOp is a left-recursive infix expression.
type BinaryOp struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

func (*BinaryOp) expr() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("%s%s%s", b.Left.String(), string(b.Op), b.Right.String())
}
