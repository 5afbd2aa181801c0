// Package controller provides output adapters for displaying run results.
package controller

import (
	"context"

	m "reclass.dev/pkg/reclass/internal/model"
)

// UI defines the interface for presenting a transformation run.
// Implementations can use different output methods (simple text, logs).
type UI interface {
	DisplayRunInfo(ctx context.Context, source, target string, threads int)
	DisplaySummary(ctx context.Context, results []m.PipelineResult) error
	DisplayFailure(ctx context.Context, err error)
}
