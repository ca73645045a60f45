package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// configPathFor points -config at a file guaranteed not to exist, so
// config.Load takes its "missing file is not an error" branch
// regardless of the working directory tests run from.
func configPathFor(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func TestRunExitsZeroOnCleanCompletion(t *testing.T) {
	code := run([]string{"-config", configPathFor(t), `SELECT 1 AS one FROM (VALUES (1));`})
	require.Equal(t, 0, code)
}

func TestRunExitsNonZeroOnParseFailure(t *testing.T) {
	code := run([]string{"-config", configPathFor(t), `SELECT FROM t;`})
	require.Equal(t, 1, code)
}

func TestRunExitsNonZeroWhenAnyStatementFailsToPlan(t *testing.T) {
	code := run([]string{"-config", configPathFor(t), `
		SELECT x FROM nope;
		SELECT 1 AS one FROM (VALUES (1));
	`})
	require.Equal(t, 1, code)
}

func TestRunExitsTwoOnUsageError(t *testing.T) {
	code := run([]string{"-config", configPathFor(t)})
	require.Equal(t, 2, code)
}
