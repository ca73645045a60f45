// Package shell implements the thin CLI collaborator of spec.md §6: it
// parses one or more statements from a single positional argument and
// dispatches each in turn, printing SELECT results and EXPLAIN plans to
// stdout and diagnostics to stderr. It plays the role the teacher's
// driver package plays (parse -> validate against catalog -> execute
// -> stream results), narrowed from a database/sql driver down to a
// one-shot CLI.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/exec"
	"github.com/streamql-io/streamql/parser"
	"github.com/streamql-io/streamql/plan"
	"github.com/streamql-io/streamql/planner"
	"github.com/streamql-io/streamql/source"
	"github.com/streamql-io/streamql/source/kinesis"
	"github.com/streamql-io/streamql/value"
)

// Shell owns the process-wide catalog and the source driver used to
// resolve CREATE statements and execute StreamScan nodes.
type Shell struct {
	Catalog *catalog.Catalog
	Driver  source.Driver
	Kinesis *kinesis.Driver // used for CREATE KINESIS STREAM ARN resolution

	Stdout io.Writer
	Stderr io.Writer
}

// New constructs a Shell with a fresh catalog.
func New(drv source.Driver, kin *kinesis.Driver, stdout, stderr io.Writer) *Shell {
	return &Shell{
		Catalog: catalog.New(),
		Driver:  drv,
		Kinesis: kin,
		Stdout:  stdout,
		Stderr:  stderr,
	}
}

// Run parses input as one or more terminated statements and executes
// them in order. A parse failure anywhere in input is returned
// immediately and no statement runs. Otherwise every statement
// runs regardless of earlier failures (spec.md §7: a plan/exec error
// does not stop later statements), but Run still reports failure to
// the caller if any statement failed, so the process exit code
// reflects it (spec.md: "Exit 0 on clean completion; nonzero on parse
// or plan failure").
func (s *Shell) Run(ctx context.Context, input string) error {
	statements, err := parser.Parse(input)
	if err != nil {
		fmt.Fprintln(s.Stderr, err)
		return err
	}

	var failed bool
	for _, stmt := range statements {
		if err := s.execute(ctx, stmt); err != nil {
			fmt.Fprintln(s.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("shell: one or more statements failed")
	}
	return nil
}

func (s *Shell) execute(ctx context.Context, stmt ast.Statement) error {
	switch st := stmt.(type) {
	case *ast.CreateKinesisStream:
		return s.executeCreate(ctx, st)
	case *ast.Explain:
		return s.executeExplain(st)
	case *ast.Select:
		return s.executeSelect(ctx, st)
	default:
		return fmt.Errorf("shell: unsupported statement %T", stmt)
	}
}

// executeCreate resolves the stream's ARNs synchronously via the
// source driver and registers the relation, per spec.md §2: "CREATE
// statements synchronously mutate the catalog (resolving the external
// stream's metadata via the source driver)."
func (s *Shell) executeCreate(ctx context.Context, st *ast.CreateKinesisStream) error {
	streamARN, consumerARN, err := s.Kinesis.Resolve(ctx, st.StreamName, st.ConsumerName)
	if err != nil {
		return err
	}

	inserted := s.Catalog.RegisterRelation(st.RelationIdent, catalog.StreamRelation{
		StreamName:  st.StreamName,
		StreamARN:   streamARN,
		ConsumerARN: consumerARN,
	})
	if !inserted {
		return fmt.Errorf("relation %s already registered", st.RelationIdent)
	}

	logrus.WithFields(logrus.Fields{
		"relation": st.RelationIdent,
		"stream":   st.StreamName,
	}).Info("shell: registered stream relation")
	return nil
}

func (s *Shell) executeExplain(st *ast.Explain) error {
	p, err := planner.Plan(s.Catalog, st.Query)
	if err != nil {
		return err
	}
	fmt.Fprint(s.Stdout, plan.Format(p))
	return nil
}

func (s *Shell) executeSelect(ctx context.Context, st *ast.Select) error {
	p, err := planner.Plan(s.Catalog, st.Query)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := exec.Spawn(runCtx, s.Catalog, s.Driver, p)

	w := bufio.NewWriter(s.Stdout)
	defer w.Flush()

	for rec := range sink {
		data, err := value.ToJSON(rec)
		if err != nil {
			logrus.WithError(err).Error("shell: failed to render record as JSON")
			continue
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}
