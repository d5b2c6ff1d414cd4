package source

import (
	"context"

	"salesdash/internal/core"
)

// Ports for dataset adapters.
type (
	// DatasetReader loads the four record families of one branch. Readers
	// return an error wrapping core.ErrUnknownBranch when the branch has no data.
	DatasetReader interface {
		ReadDataset(ctx context.Context, branch core.BranchID) (core.Dataset, error)
	}

	// DatasetWriter replaces the stored dataset of a branch. Only the import
	// tooling writes; the dashboard itself is read-only.
	DatasetWriter interface {
		WriteDataset(ctx context.Context, d core.Dataset) error
	}
)
