// Package parser turns a UTF-8 SQL text buffer into an ordered sequence
// of ast.Statement values. It is hand-rolled and lexer-free: token
// classes (identifier, quoted string, digit run, punctuation) are
// simple enough that scanning happens inline against a byte cursor
// rather than through a separate lexing pass — this dialect's small,
// fixed grammar (spec.md §4.1) is the grounding for that choice, not
// any one pack example (the retrieved parser examples, freeeve-machparse
// and ha1tch-tsqlparser, both tokenize through a separate lexer/token
// package first).
//
// Operator precedence is not specified by the source dialect. This
// implementation resolves that Open Question by adopting the
// conventional table — '*','/' bind tighter than '+','-', which bind
// tighter than the comparison operators — all left-associative, with no
// expression-level parenthesization (parentheses only group VALUES rows
// and sub-queries in from_item, never a bare expression). Binary
// expressions are parsed by precedence climbing, the same
// precedence-table-driven technique ha1tch-tsqlparser's parser uses
// (its `precedences` map keyed by token type): parse a seed operand via
// the non-recursive alternatives (function call, string, number,
// ident), then iteratively grow the expression by consuming trailing
// "op expr" pairs whose operator binds at least as tightly as the
// current minimum. This directly implements the left-recursive
// binary_op production without looping forever on left recursion.
package parser

import (
	"strconv"
	"strings"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/errs"
)

// Parse consumes input in its entirety and returns the ordered sequence
// of statements it contains. Trailing non-whitespace input after the
// last terminator is an error.
func Parse(input string) ([]ast.Statement, error) {
	p := &parser{input: input}
	var statements []ast.Statement
	for {
		p.skipWS()
		if p.atEOF() {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	if len(statements) == 0 {
		return nil, p.failure("statement", "")
	}
	return statements, nil
}

type parser struct {
	input string
	pos   int

	farOffset   int
	farExpected string
	farActual   string
}

func (p *parser) atEOF() bool { return p.pos >= len(p.input) }

func (p *parser) rest() string {
	if p.pos >= len(p.input) {
		return ""
	}
	return p.input[p.pos:]
}

func (p *parser) skipWS() {
	for p.pos < len(p.input) {
		r := rune(p.input[p.pos])
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			p.pos++
			continue
		}
		break
	}
}

// note records the farthest point of failure for diagnostics, keeping
// the single farthest offset/expected/actual triple spec.md requires.
func (p *parser) note(expected string) {
	if p.pos > p.farOffset {
		p.farOffset = p.pos
		p.farExpected = expected
		p.farActual = previewAt(p.input, p.pos)
	} else if p.pos == p.farOffset {
		// keep the first recorded expectation at this offset; multiple
		// alternatives failing at the same point do not overwrite it.
	}
}

func previewAt(input string, pos int) string {
	const maxPreview = 16
	end := pos + maxPreview
	if end > len(input) {
		end = len(input)
	}
	if pos >= len(input) {
		return ""
	}
	return input[pos:end]
}

func (p *parser) failure(expected, actual string) error {
	if actual == "" {
		actual = previewAt(p.input, p.farOffset)
	}
	exp := expected
	if p.farExpected != "" {
		exp = p.farExpected
	}
	return errs.NewParseError(p.farOffset, exp, actual)
}

func isIdentByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// keyword consumes kw (case-insensitive) if it appears at the current
// position followed by a non-identifier byte (or EOF). It does not skip
// leading whitespace; callers call skipWS first.
func (p *parser) keyword(kw string) bool {
	rest := p.rest()
	if len(rest) < len(kw) {
		return false
	}
	if !strings.EqualFold(rest[:len(kw)], kw) {
		return false
	}
	after := p.pos + len(kw)
	if after < len(p.input) && isIdentByte(p.input[after]) {
		return false
	}
	p.pos = after
	return true
}

func (p *parser) expectKeyword(kw string) bool {
	p.skipWS()
	if p.keyword(kw) {
		return true
	}
	p.note(strings.ToUpper(kw))
	return false
}

func (p *parser) parseIdent() (string, bool) {
	p.skipWS()
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		p.note("identifier")
		return "", false
	}
	return p.input[start:p.pos], true
}

func (p *parser) parseString() (string, bool) {
	p.skipWS()
	if p.atEOF() || p.input[p.pos] != '\'' {
		p.note("string literal")
		return "", false
	}
	start := p.pos + 1
	i := start
	for i < len(p.input) && p.input[i] != '\'' {
		i++
	}
	if i >= len(p.input) {
		p.pos = i
		p.note("closing '")
		return "", false
	}
	p.pos = i + 1
	return p.input[start:i], true
}

func (p *parser) parseNumber() (float64, bool) {
	p.skipWS()
	start := p.pos
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		p.note("number")
		return 0, false
	}
	n, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		p.pos = start
		p.note("number")
		return 0, false
	}
	return n, true
}

func (p *parser) peekByte(b byte) bool {
	p.skipWS()
	return !p.atEOF() && p.input[p.pos] == b
}

func (p *parser) consumeByte(b byte) bool {
	if p.peekByte(b) {
		p.pos++
		return true
	}
	p.note(string(b))
	return false
}

// parseStatement dispatches on the statement's leading keyword.
func (p *parser) parseStatement() (ast.Statement, error) {
	save := p.pos
	if p.keyword("CREATE") {
		if stmt, ok := p.parseCreateKinesisStream(); ok {
			if !p.expectTerminator() {
				return nil, p.failure(";", "")
			}
			return stmt, nil
		}
		return nil, p.failure("KINESIS STREAM", "")
	}
	p.pos = save

	if p.keyword("EXPLAIN") {
		q, ok := p.parseQuery()
		if !ok {
			return nil, p.failure("query", "")
		}
		if !p.expectTerminator() {
			return nil, p.failure(";", "")
		}
		return &ast.Explain{Query: q}, nil
	}
	p.pos = save

	q, ok := p.parseQuery()
	if !ok {
		return nil, p.failure("statement", "")
	}
	if !p.expectTerminator() {
		return nil, p.failure(";", "")
	}
	return &ast.Select{Query: q}, nil
}

func (p *parser) expectTerminator() bool {
	p.skipWS()
	if !p.consumeByte(';') {
		return false
	}
	return true
}

func (p *parser) parseCreateKinesisStream() (ast.Statement, bool) {
	if !p.expectKeyword("KINESIS") {
		return nil, false
	}
	if !p.expectKeyword("STREAM") {
		return nil, false
	}
	ident, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	streamName, ok := p.parseString()
	if !ok {
		return nil, false
	}
	consumerName, ok := p.parseString()
	if !ok {
		return nil, false
	}
	return &ast.CreateKinesisStream{
		RelationIdent: ident,
		StreamName:    streamName,
		ConsumerName:  consumerName,
	}, true
}

func (p *parser) parseQuery() (*ast.Query, bool) {
	if !p.expectKeyword("SELECT") {
		return nil, false
	}
	items, ok := p.parseSelectItems()
	if !ok {
		return nil, false
	}
	q := &ast.Query{SelectItems: items}

	save := p.pos
	if p.expectKeyword("FROM") {
		fromItems, ok := p.parseFromItems()
		if !ok {
			return nil, false
		}
		q.FromItems = fromItems
	} else {
		p.pos = save
	}

	save = p.pos
	if p.expectKeyword("WHERE") {
		expr, ok := p.parseExpr(0)
		if !ok {
			return nil, false
		}
		q.Where = expr
	} else {
		p.pos = save
	}

	return q, true
}

func (p *parser) parseSelectItems() ([]ast.SelectItem, bool) {
	var items []ast.SelectItem
	for {
		item, ok := p.parseSelectItem()
		if !ok {
			return nil, false
		}
		items = append(items, item)
		p.skipWS()
		if p.peekByte(',') {
			p.pos++
			continue
		}
		break
	}
	return items, true
}

func (p *parser) parseSelectItem() (ast.SelectItem, bool) {
	expr, ok := p.parseExpr(0)
	if !ok {
		return nil, false
	}
	save := p.pos
	if p.expectKeyword("AS") {
		alias, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		return &ast.NamedExprItem{Expr: expr, Alias: alias}, true
	}
	p.pos = save
	return &ast.ExprItem{Expr: expr}, true
}

func (p *parser) parseFromItems() ([]ast.FromItem, bool) {
	var items []ast.FromItem
	for {
		item, ok := p.parseFromItem()
		if !ok {
			return nil, false
		}
		items = append(items, item)
		p.skipWS()
		if p.peekByte(',') {
			p.pos++
			continue
		}
		break
	}
	return items, true
}

func (p *parser) parseFromItem() (ast.FromItem, bool) {
	p.skipWS()
	if p.peekByte('(') {
		save := p.pos
		p.pos++ // consume '('
		if p.expectKeyword("VALUES") {
			rows, ok := p.parseValuesRows()
			if !ok {
				return nil, false
			}
			if !p.consumeByte(')') {
				return nil, false
			}
			return &ast.ValuesFrom{Rows: rows}, true
		}
		p.pos = save
		p.pos++ // consume '('
		q, ok := p.parseQuery()
		if !ok {
			return nil, false
		}
		if !p.consumeByte(')') {
			return nil, false
		}
		return &ast.SubQueryFrom{Query: q}, true
	}
	ident, ok := p.parseIdent()
	if !ok {
		return nil, false
	}
	return &ast.IdentFrom{Name: ident}, true
}

func (p *parser) parseValuesRows() ([][]ast.Expr, bool) {
	var rows [][]ast.Expr
	for {
		row, ok := p.parseRow()
		if !ok {
			return nil, false
		}
		rows = append(rows, row)
		p.skipWS()
		if p.peekByte(',') {
			p.pos++
			continue
		}
		break
	}
	return rows, true
}

func (p *parser) parseRow() ([]ast.Expr, bool) {
	if !p.consumeByte('(') {
		return nil, false
	}
	var exprs []ast.Expr
	for {
		e, ok := p.parseExpr(0)
		if !ok {
			return nil, false
		}
		exprs = append(exprs, e)
		p.skipWS()
		if p.peekByte(',') {
			p.pos++
			continue
		}
		break
	}
	if !p.consumeByte(')') {
		return nil, false
	}
	return exprs, true
}

// precedence table resolving the Open Question in spec.md §4.1 and §9:
// '*'/'/' bind tightest, then '+'/'-', then the comparisons. All
// operators are left-associative.
func precedenceOf(op ast.BinOp) int {
	switch op {
	case ast.OpMul, ast.OpDiv:
		return 3
	case ast.OpAdd, ast.OpSub:
		return 2
	case ast.OpEq, ast.OpGt, ast.OpLt, ast.OpGte, ast.OpLte:
		return 1
	default:
		return 0
	}
}

// peekOp looks for one of the binary operator tokens at the current
// position (after skipping whitespace), longest-match first so ">="
// and "<=" are not mistaken for ">"/"<".
func (p *parser) peekOp() (ast.BinOp, int, bool) {
	p.skipWS()
	rest := p.rest()
	two := map[string]ast.BinOp{">=": ast.OpGte, "<=": ast.OpLte}
	if len(rest) >= 2 {
		if op, ok := two[rest[:2]]; ok {
			return op, 2, true
		}
	}
	one := map[byte]ast.BinOp{
		'+': ast.OpAdd, '-': ast.OpSub, '*': ast.OpMul, '/': ast.OpDiv,
		'=': ast.OpEq, '>': ast.OpGt, '<': ast.OpLt,
	}
	if len(rest) >= 1 {
		if op, ok := one[rest[0]]; ok {
			return op, 1, true
		}
	}
	return "", 0, false
}

// parseExpr implements the seed-and-grow precedence climb: parse a
// non-recursive seed operand, then while a pending operator binds at
// least as tightly as minPrec, consume it and grow the expression to
// the left, recursing only for the right-hand operand at the next
// precedence level (left-associativity).
func (p *parser) parseExpr(minPrec int) (ast.Expr, bool) {
	left, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		save := p.pos
		op, width, found := p.peekOp()
		if !found {
			p.pos = save
			break
		}
		prec := precedenceOf(op)
		if prec < minPrec {
			p.pos = save
			break
		}
		p.pos += width
		right, ok := p.parseExpr(prec + 1)
		if !ok {
			return nil, false
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, true
}

// parsePrimary parses the non-recursive expr alternatives: function
// call, string literal, number literal, or bare identifier.
func (p *parser) parsePrimary() (ast.Expr, bool) {
	p.skipWS()
	if p.peekByte('\'') {
		s, ok := p.parseString()
		if !ok {
			return nil, false
		}
		return &ast.StringLit{Value: s}, true
	}
	if !p.atEOF() && isDigit(p.input[p.pos]) {
		n, ok := p.parseNumber()
		if !ok {
			return nil, false
		}
		return &ast.NumberLit{Value: n}, true
	}
	if !p.atEOF() && isIdentByte(p.input[p.pos]) {
		save := p.pos
		ident, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if p.peekByte('(') {
			p.pos++
			args, ok := p.parseCallArgs()
			if !ok {
				return nil, false
			}
			return &ast.FunctionCall{Name: ident, Args: args}, true
		}
		_ = save
		return &ast.Ident{Name: ident}, true
	}
	p.note("expression")
	return nil, false
}

func (p *parser) parseCallArgs() ([]ast.Expr, bool) {
	p.skipWS()
	if p.peekByte(')') {
		p.pos++
		return nil, true
	}
	var args []ast.Expr
	for {
		e, ok := p.parseExpr(0)
		if !ok {
			return nil, false
		}
		args = append(args, e)
		p.skipWS()
		if p.peekByte(',') {
			p.pos++
			continue
		}
		break
	}
	if !p.consumeByte(')') {
		return nil, false
	}
	return args, true
}
