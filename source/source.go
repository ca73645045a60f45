// Package source defines the adapter contract to the external stream
// service (spec.md §4.6). The concrete AWS Kinesis implementation
// lives in the sibling package source/kinesis; this package only
// states the interface so the executor never depends on the AWS SDK
// directly.
package source

import (
	"context"

	"github.com/streamql-io/streamql/value"
)

// Driver produces a lazy sequence of records from an external
// shard-partitioned stream into out, until ctx is cancelled or out's
// reader goes away. Run must close neither its input nor attempt to
// close out (the caller owns out's lifecycle); it signals completion
// by returning, with a non-nil error for a genuine service failure.
type Driver interface {
	Run(ctx context.Context, streamName, consumerARN string, out chan<- value.Record) error
}
