// Package plan defines the immutable relational operator tree produced
// by package planner and consumed by package exec. Node naming follows
// the teacher's sql/plan package (NewProject, NewFilter, NewCrossJoin,
// NewValues), narrowed to the six node variants spec.md §3 names.
package plan

import (
	"fmt"
	"strings"

	"github.com/streamql-io/streamql/ast"
)

// Node is one node of a logical plan tree. Plans are safe to inspect,
// clone, and print (EXPLAIN) because they carry no runtime state.
type Node interface {
	node()
	// Children returns this node's direct plan children, for Format
	// and for the executor's top-down walk.
	Children() []Node
}

// Empty produces exactly one empty record and closes.
type Empty struct{}

func (*Empty) node()            {}
func (*Empty) Children() []Node { return nil }

// ValuesRow is one row of a ValuesScan: a list of expressions evaluated
// once against an empty context.
type ValuesRow = []ast.Expr

// ValuesScan emits one record per row with keys column0, column1, ….
type ValuesScan struct {
	Rows []ValuesRow
}

func (*ValuesScan) node()            {}
func (*ValuesScan) Children() []Node { return nil }

// StreamScan produces records indefinitely from the external source
// driver against a resolved stream name and consumer ARN.
type StreamScan struct {
	StreamName  string
	ConsumerARN string
}

func (*StreamScan) node()            {}
func (*StreamScan) Children() []Node { return nil }

// Selection forwards records from Child whose Condition evaluates to a
// truthy Bool.
type Selection struct {
	Condition ast.Expr
	Child     Node
}

func (*Selection) node()            {}
func (s *Selection) Children() []Node { return []Node{s.Child} }

// ProjectItem pairs an output key with the expression that computes it.
type ProjectItem struct {
	Key  string
	Expr ast.Expr
}

// Projection rebuilds each input record with exactly Items' keys.
type Projection struct {
	Items []ProjectItem
	Child Node
}

func (*Projection) node()            {}
func (p *Projection) Children() []Node { return []Node{p.Child} }

// FullJoin streams the Cartesian product of Left and Right
// incrementally (spec.md §4.5).
type FullJoin struct {
	Left  Node
	Right Node
}

func (*FullJoin) node()            {}
func (j *FullJoin) Children() []Node { return []Node{j.Left, j.Right} }

// Format renders plan in a deterministic indented tree, used by
// EXPLAIN.
func Format(n Node) string {
	var b strings.Builder
	format(&b, n, 0)
	return b.String()
}

func format(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(describe(n))
	b.WriteString("\n")
	for _, child := range n.Children() {
		format(b, child, depth+1)
	}
}

func describe(n Node) string {
	switch v := n.(type) {
	case *Empty:
		return "Empty"
	case *ValuesScan:
		return fmt.Sprintf("ValuesScan(rows=%d)", len(v.Rows))
	case *StreamScan:
		return fmt.Sprintf("StreamScan(stream=%s)", v.StreamName)
	case *Selection:
		return fmt.Sprintf("Selection(%s)", v.Condition.String())
	case *Projection:
		keys := make([]string, len(v.Items))
		for i, it := range v.Items {
			keys[i] = it.Key
		}
		return fmt.Sprintf("Projection(%s)", strings.Join(keys, ", "))
	case *FullJoin:
		return "FullJoin"
	default:
		return "Unknown"
	}
}
