package port

import (
	"context"
	"io"
)

type Snapshotable interface {
	// GenerateSnapshot streams a snapshot of the stored data
	GenerateSnapshot(ctx context.Context) (io.ReadCloser, error)
	// RestoreSnapshot loads a snapshot previously produced by GenerateSnapshot,
	// replacing records sharing the same ids
	RestoreSnapshot(ctx context.Context, r io.Reader) error
}
