package planner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/parser"
	"github.com/streamql-io/streamql/plan"
	"github.com/streamql-io/streamql/planner"
)

func parseQuery(t *testing.T, src string) *ast.Query {
	t.Helper()
	stmts, err := parser.Parse(src)
	require.NoError(t, err)
	sel, ok := stmts[0].(*ast.Select)
	require.True(t, ok)
	return sel.Query
}

func TestPlanValuesScan(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT a, b FROM (VALUES (1,2),(3,4));`)

	p, err := planner.Plan(cat, q)
	require.NoError(t, err)

	proj, ok := p.(*plan.Projection)
	require.True(t, ok)
	require.Len(t, proj.Items, 2)
	require.Equal(t, "a", proj.Items[0].Key)
	require.Equal(t, "b", proj.Items[1].Key)

	values, ok := proj.Child.(*plan.ValuesScan)
	require.True(t, ok)
	require.Len(t, values.Rows, 2)
}

func TestPlanUnresolvedRelationIsError(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT x FROM nope;`)

	_, err := planner.Plan(cat, q)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unrecognized relation nope")
}

func TestPlanDuplicateProjectionKeyIsError(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT a, a FROM (VALUES (1,2));`)

	_, err := planner.Plan(cat, q)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already defined in select items")
}

func TestPlanJoinFoldsLeft(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT x FROM (VALUES (1)), (VALUES (2)), (VALUES (3));`)

	p, err := planner.Plan(cat, q)
	require.NoError(t, err)

	proj := p.(*plan.Projection)
	outerJoin, ok := proj.Child.(*plan.FullJoin)
	require.True(t, ok)

	innerJoin, ok := outerJoin.Left.(*plan.FullJoin)
	require.True(t, ok)
	_, ok = innerJoin.Left.(*plan.ValuesScan)
	require.True(t, ok)
}

func TestPlanResolvesStreamRelation(t *testing.T) {
	cat := catalog.New()
	cat.RegisterRelation("pageviews", catalog.StreamRelation{
		StreamName:  "pv-prod",
		StreamARN:   "arn:aws:kinesis:eu-west-1:1:stream/pv-prod",
		ConsumerARN: "arn:aws:kinesis:eu-west-1:1:stream/pv-prod/consumer/analytics-consumer",
	})
	q := parseQuery(t, `SELECT userId FROM pageviews WHERE country = 'NL';`)

	p, err := planner.Plan(cat, q)
	require.NoError(t, err)

	proj := p.(*plan.Projection)
	sel, ok := proj.Child.(*plan.Selection)
	require.True(t, ok)

	scan, ok := sel.Child.(*plan.StreamScan)
	require.True(t, ok)
	require.Equal(t, "pv-prod", scan.StreamName)
}

func TestPlanEmptyFromItemsIsEmpty(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT 1 AS one;`)

	p, err := planner.Plan(cat, q)
	require.NoError(t, err)

	proj := p.(*plan.Projection)
	_, ok := proj.Child.(*plan.Empty)
	require.True(t, ok)
}

func TestPlanColumnNDefaultKey(t *testing.T) {
	cat := catalog.New()
	q := parseQuery(t, `SELECT a + b FROM (VALUES (1,2));`)

	p, err := planner.Plan(cat, q)
	require.NoError(t, err)

	proj := p.(*plan.Projection)
	require.Equal(t, "column0", proj.Items[0].Key)
}
