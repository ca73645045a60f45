package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/parser"
)

func TestParseSimpleSelect(t *testing.T) {
	stmts, err := parser.Parse(`SELECT 'hi' AS greeting FROM (VALUES (1));`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	sel, ok := stmts[0].(*ast.Select)
	require.True(t, ok)
	require.Len(t, sel.Query.SelectItems, 1)

	item, ok := sel.Query.SelectItems[0].(*ast.NamedExprItem)
	require.True(t, ok)
	require.Equal(t, "greeting", item.Alias)

	lit, ok := item.Expr.(*ast.StringLit)
	require.True(t, ok)
	require.Equal(t, "hi", lit.Value)

	require.Len(t, sel.Query.FromItems, 1)
	values, ok := sel.Query.FromItems[0].(*ast.ValuesFrom)
	require.True(t, ok)
	require.Len(t, values.Rows, 1)
}

func TestParseCreateKinesisStream(t *testing.T) {
	stmts, err := parser.Parse(`CREATE KINESIS STREAM pageviews 'pv-prod' 'analytics-consumer';`)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	create, ok := stmts[0].(*ast.CreateKinesisStream)
	require.True(t, ok)
	require.Equal(t, "pageviews", create.RelationIdent)
	require.Equal(t, "pv-prod", create.StreamName)
	require.Equal(t, "analytics-consumer", create.ConsumerName)
}

func TestParseMultipleStatements(t *testing.T) {
	stmts, err := parser.Parse(`
		CREATE KINESIS STREAM pageviews 'pv-prod' 'analytics-consumer';
		SELECT lower(userId) AS u, country FROM pageviews WHERE country = 'NL';
		EXPLAIN SELECT a + b AS s FROM (VALUES (1,2),(3,4));
	`)
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	_, ok := stmts[0].(*ast.CreateKinesisStream)
	require.True(t, ok)
	_, ok = stmts[1].(*ast.Select)
	require.True(t, ok)
	_, ok = stmts[2].(*ast.Explain)
	require.True(t, ok)
}

func TestParsePrecedence(t *testing.T) {
	// a + b * c should parse as a + (b * c): left-assoc, '*' binds
	// tighter than '+', matching the documented precedence policy.
	stmts, err := parser.Parse(`SELECT a + b * c FROM t;`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.Select)
	item := sel.Query.SelectItems[0].(*ast.ExprItem)
	top, ok := item.Expr.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpAdd, top.Op)

	right, ok := top.Right.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpMul, right.Op)

	_, ok = top.Left.(*ast.Ident)
	require.True(t, ok)
}

func TestParseLeftAssociativity(t *testing.T) {
	// a - b - c should parse as (a - b) - c.
	stmts, err := parser.Parse(`SELECT a - b - c FROM t;`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.Select)
	item := sel.Query.SelectItems[0].(*ast.ExprItem)
	top, ok := item.Expr.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpSub, top.Op)

	left, ok := top.Left.(*ast.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ast.OpSub, left.Op)

	_, ok = top.Right.(*ast.Ident)
	require.True(t, ok)
}

func TestParseErrorReportsFarthestOffset(t *testing.T) {
	// FROM is read as a bare identifier select item, so the farthest
	// point reached is the 't' at byte 12, where AS, FROM, WHERE or ';'
	// was expected.
	_, err := parser.Parse(`SELECT FROM t;`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "offset 12")
}

func TestParseCommaSeparatedFromItems(t *testing.T) {
	stmts, err := parser.Parse(`SELECT x FROM (VALUES (1)), (VALUES (2));`)
	require.NoError(t, err)
	sel := stmts[0].(*ast.Select)
	require.Len(t, sel.Query.FromItems, 2)
}

func TestRoundTripPrettyPrint(t *testing.T) {
	src := `SELECT lower(userId) AS u, country FROM pageviews WHERE country = 'NL';`
	stmts, err := parser.Parse(src)
	require.NoError(t, err)

	printed := stmts[0].String()
	reparsed, err := parser.Parse(printed)
	require.NoError(t, err)
	require.Equal(t, printed, reparsed[0].String())
}

func TestTrailingInputAfterLastStatementIsError(t *testing.T) {
	_, err := parser.Parse(`SELECT a FROM t; garbage`)
	require.Error(t, err)
}
