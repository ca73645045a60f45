// Package exec instantiates a plan.Node tree as a graph of cooperative
// goroutines connected by bounded channels (spec.md §4.5). Each
// operator is one goroutine reading zero or more input channels and
// writing to exactly one output channel; channel capacity is fixed at
// 256 records, matching the teacher's sql/rowexec iterator discipline
// (RowIter.Close on exhaustion) translated from pull (Next) to push
// (channel send) because this engine's concurrency model is streaming
// and channel-driven, not request-driven.
//
// Cancellation runs through ctx: every operator's sends and receives
// also select on ctx.Done(), so cancelling ctx (as the shell does once
// it stops draining the root sink) stops every task in the graph. Each
// task closes its output channel when it returns, so downstream tasks
// see end of input. A reader that stops draining the root sink without
// cancelling ctx leaves upstream senders blocked once buffers fill.
package exec

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	uuid "github.com/satori/go.uuid"

	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/eval"
	"github.com/streamql-io/streamql/plan"
	"github.com/streamql-io/streamql/source"
	"github.com/streamql-io/streamql/value"
)

// ChannelCapacity is the bounded capacity of every operator channel,
// per spec.md §5.
const ChannelCapacity = 256

// Spawn walks node top-down, allocating one output channel per node and
// recursively spawning child tasks whose sinks feed that node's inputs.
// It returns the root node's output channel, drained by the caller
// (the shell's sink, per spec.md §4.5 "Wiring").
func Spawn(ctx context.Context, cat *catalog.Catalog, drv source.Driver, node plan.Node) <-chan value.Record {
	out := make(chan value.Record, ChannelCapacity)
	go runNode(ctx, cat, drv, node, out)
	return out
}

func runNode(ctx context.Context, cat *catalog.Catalog, drv source.Driver, node plan.Node, out chan<- value.Record) {
	defer close(out)

	switch n := node.(type) {
	case *plan.Empty:
		runEmpty(ctx, out)

	case *plan.ValuesScan:
		runValuesScan(ctx, cat, n, out)

	case *plan.StreamScan:
		runStreamScan(ctx, drv, n, out)

	case *plan.Selection:
		in := Spawn(ctx, cat, drv, n.Child)
		runSelection(ctx, cat, n, in, out)

	case *plan.Projection:
		in := Spawn(ctx, cat, drv, n.Child)
		runProjection(ctx, cat, n, in, out)

	case *plan.FullJoin:
		left := Spawn(ctx, cat, drv, n.Left)
		right := Spawn(ctx, cat, drv, n.Right)
		runFullJoin(ctx, left, right, out)

	default:
		logrus.WithField("node", node).Error("exec: unknown plan node")
	}
}

func send(ctx context.Context, out chan<- value.Record, rec value.Record) bool {
	select {
	case out <- rec:
		return true
	case <-ctx.Done():
		return false
	}
}

func runEmpty(ctx context.Context, out chan<- value.Record) {
	send(ctx, out, value.FromObject(value.NewObject()))
}

func runValuesScan(ctx context.Context, cat *catalog.Catalog, n *plan.ValuesScan, out chan<- value.Record) {
	empty := value.FromObject(value.NewObject())
	for _, row := range n.Rows {
		obj := value.NewObject()
		for i, expr := range row {
			key := columnName(i)
			v, diags := eval.Eval(cat, empty, expr)
			eval.Log("ValuesScan", diags)
			obj.Set(key, v)
		}
		if !send(ctx, out, value.FromObject(obj)) {
			return
		}
	}
}

func columnName(i int) string {
	return "column" + strconv.Itoa(i)
}

func runStreamScan(ctx context.Context, drv source.Driver, n *plan.StreamScan, out chan<- value.Record) {
	taskID := uuid.NewV4().String()
	logrus.WithFields(logrus.Fields{
		"task":   taskID,
		"stream": n.StreamName,
	}).Info("exec: starting StreamScan")

	raw := make(chan value.Record, ChannelCapacity)
	done := make(chan error, 1)
	go func() {
		done <- drv.Run(ctx, n.StreamName, n.ConsumerARN, raw)
	}()

	for {
		select {
		case rec, ok := <-raw:
			if !ok {
				return
			}
			if !send(ctx, out, deepCopy(rec)) {
				return
			}
		case err := <-done:
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"task":   taskID,
					"stream": n.StreamName,
				}).WithError(err).Error("exec: source driver terminated")
			}
			// Drain any remaining buffered records before closing.
			for {
				select {
				case rec, ok := <-raw:
					if !ok {
						return
					}
					if !send(ctx, out, deepCopy(rec)) {
						return
					}
				case <-ctx.Done():
					return
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// deepCopy clones rec so StreamScan never hands out aliased state the
// driver might mutate after sending, per spec.md §4.5.
func deepCopy(rec value.Record) value.Record {
	data, err := value.ToJSON(rec)
	if err != nil {
		return rec
	}
	cp, err := value.FromJSON(data)
	if err != nil {
		return rec
	}
	return cp
}

func runSelection(ctx context.Context, cat *catalog.Catalog, n *plan.Selection, in <-chan value.Record, out chan<- value.Record) {
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return
			}
			v, diags := eval.Eval(cat, rec, n.Condition)
			eval.Log("Selection", diags)
			b, isBool := v.AsBool()
			if isBool && b {
				if !send(ctx, out, rec) {
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func runProjection(ctx context.Context, cat *catalog.Catalog, n *plan.Projection, in <-chan value.Record, out chan<- value.Record) {
	for {
		select {
		case rec, ok := <-in:
			if !ok {
				return
			}
			obj := value.NewObject()
			for _, item := range n.Items {
				v, diags := eval.Eval(cat, rec, item.Expr)
				eval.Log("Projection", diags)
				obj.Set(item.Key, v)
			}
			if !send(ctx, out, value.FromObject(obj)) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// runFullJoin streams the Cartesian product of left and right
// incrementally using a biased select, per the redesign spec.md §4.5
// and §9 call for: strict left-then-right alternation deadlocks when
// one side is momentarily silent, so this selects whichever side is
// ready and only drains the other once its sibling channel is closed.
func runFullJoin(ctx context.Context, left, right <-chan value.Record, out chan<- value.Record) {
	var leftBuf, rightBuf []value.Record
	leftOpen, rightOpen := true, true

	for leftOpen || rightOpen {
		select {
		case rec, ok := <-left:
			if !ok {
				leftOpen = false
				left = nil
				continue
			}
			leftBuf = append(leftBuf, rec)
			for _, r := range rightBuf {
				if !send(ctx, out, value.Merge(rec, r)) {
					return
				}
			}
		case rec, ok := <-right:
			if !ok {
				rightOpen = false
				right = nil
				continue
			}
			rightBuf = append(rightBuf, rec)
			for _, l := range leftBuf {
				if !send(ctx, out, value.Merge(l, rec)) {
					return
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
