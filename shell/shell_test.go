package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamql-io/streamql/shell"
	"github.com/streamql-io/streamql/value"
)

// noopDriver never produces records; the end-to-end scenarios below
// only exercise VALUES-backed relations, so StreamScan is never
// reached.
type noopDriver struct{}

func (noopDriver) Run(ctx context.Context, streamName, consumerARN string, out chan<- value.Record) error {
	<-ctx.Done()
	return nil
}

func run(t *testing.T, src string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	sh := shell.New(noopDriver{}, nil, &stdout, &stderr)
	err := sh.Run(context.Background(), src)
	require.NoError(t, err)
	require.Empty(t, stderr.String(), "stderr: %s", stderr.String())
	return stdout.String()
}

func TestEndToEndLiteralProjection(t *testing.T) {
	out := run(t, `SELECT 'hi' AS greeting FROM (VALUES (1));`)
	require.Equal(t, "{\"greeting\":\"hi\"}\n", out)
}

func TestEndToEndFunctionCall(t *testing.T) {
	out := run(t, `SELECT lower('AbC') AS x FROM (VALUES (0));`)
	require.Equal(t, "{\"x\":\"abc\"}\n", out)
}

func TestEndToEndMultiRowValues(t *testing.T) {
	// ValuesScan names its columns column0, column1, ... (spec.md §4.3
	// rule 6 / §3 Plan.ValuesScan); a select item that is a bare Ident
	// only resolves if it names one of those keys.
	out := run(t, `SELECT column0, column1 FROM (VALUES (1,2),(3,4));`)
	require.Equal(t, "{\"column0\":1,\"column1\":2}\n{\"column0\":3,\"column1\":4}\n", out)
}

func TestEndToEndArithmeticProjection(t *testing.T) {
	out := run(t, `SELECT column0+column1 AS s FROM (VALUES (1,2),(10,20));`)
	require.Equal(t, "{\"s\":3}\n{\"s\":30}\n", out)
}

func TestEndToEndJoinMergesRightOverLeft(t *testing.T) {
	// Both sides of the join name their sole column column0; §4.5 has
	// the right side's keys overwrite the left's on merge, so the
	// projected column0 carries the right row's value.
	out := run(t, `SELECT column0 FROM (VALUES (1)), (VALUES (2));`)
	require.Equal(t, "{\"column0\":2}\n", out)
}

func TestEndToEndWhereFiltersRows(t *testing.T) {
	out := run(t, `SELECT column0 AS a FROM (VALUES (1),(2),(3)) WHERE column0 > 1;`)
	require.Equal(t, "{\"a\":2}\n{\"a\":3}\n", out)
}

func TestParseErrorIsReportedOnStderrAndStopsExecution(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sh := shell.New(noopDriver{}, nil, &stdout, &stderr)
	err := sh.Run(context.Background(), `SELECT FROM t;`)
	require.Error(t, err)
	require.NotEmpty(t, stderr.String())
}

func TestPlanErrorForOneStatementDoesNotStopLaterStatementsButIsReported(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sh := shell.New(noopDriver{}, nil, &stdout, &stderr)
	err := sh.Run(context.Background(), `
		SELECT x FROM nope;
		SELECT 1 AS one FROM (VALUES (1));
	`)
	require.Error(t, err)
	require.NotEmpty(t, stderr.String())
	require.Equal(t, "{\"one\":1}\n", stdout.String())
}
