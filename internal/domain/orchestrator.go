package domain

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"reclass.dev/pkg/reclass/internal/adapter"
	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/metadata"
	"reclass.dev/pkg/reclass/internal/model"
	"reclass.dev/pkg/reclass/internal/transform"
)

// Orchestrator runs one transformation pass over a source tree and writes
// the outcome into a target tree.
type Orchestrator interface {
	// Apply walks the source tree, transforms or copies every admitted
	// file, and returns all per-file results. A non-nil error is either a
	// fatal pre-pass failure or an *AggregateError naming every file that
	// failed; successfully written files stay written either way.
	Apply(ctx context.Context) ([]model.PipelineResult, error)
}

type orchestrator struct {
	source       adapter.Tree
	target       adapter.Tree
	transformers []transform.Transformer
	opts         model.RunOptions
}

// NewOrchestrator constructs an Orchestrator over the given trees with an
// ordered transformer list.
func NewOrchestrator(source, target adapter.Tree, transformers []transform.Transformer, opts model.RunOptions) Orchestrator {
	return &orchestrator{
		source:       source,
		target:       target,
		transformers: transformers,
		opts:         opts.Normalize(),
	}
}

func (o *orchestrator) Apply(ctx context.Context) ([]model.PipelineResult, error) {
	tctx, err := o.buildContext(ctx)
	if err != nil {
		return nil, err
	}

	paths, err := o.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source tree: %w", err)
	}

	results := make([]model.PipelineResult, len(paths))

	// Workers record failures in their result slot instead of returning
	// them: one failing file must not cancel the rest of the walk.
	var group errgroup.Group
	group.SetLimit(o.opts.Threads)

	for i, p := range paths {
		i, p := i, p
		group.Go(func() error {
			results[i] = o.processFile(ctx, tctx, p)
			return nil
		})
	}

	_ = group.Wait()

	return results, aggregate(results)
}

// buildContext runs the metadata pass when any configured transformer needs
// it. Metadata failures are fatal: a partial index would silently corrupt
// access correction.
func (o *orchestrator) buildContext(ctx context.Context) (*transform.Context, error) {
	if !transform.UsesMetadata(o.transformers) {
		return transform.NewContextWithoutMetadata(), nil
	}

	index, err := metadata.Build(ctx, o.source)
	if err != nil {
		return nil, fmt.Errorf("metadata pass: %w", err)
	}

	return transform.NewContext(index), nil
}

func (o *orchestrator) processFile(ctx context.Context, tctx *transform.Context, p model.Path) model.PipelineResult {
	var result model.PipelineResult

	var err error
	if p.IsClass() {
		result, err = o.processClass(ctx, tctx, p)
	} else {
		result, err = o.processResource(ctx, p)
	}

	if err != nil {
		slog.Error("Failed to process file", "path", p, "error", err)
		return model.PipelineResult{Source: p, Outcome: model.Failed, Err: err}
	}

	return result
}

func (o *orchestrator) processClass(ctx context.Context, tctx *transform.Context, p model.Path) (model.PipelineResult, error) {
	if !o.opts.ClassInclusionVoter(p) {
		slog.Debug("Skipped excluded class", "path", p)
		return model.PipelineResult{Source: p, Outcome: model.Skipped}, nil
	}

	if !o.opts.TransformationVoter(p) {
		return o.copyFile(ctx, p)
	}

	pipeline, err := transform.Assemble(tctx, o.transformers, p)
	if err != nil {
		return model.PipelineResult{}, err
	}

	if pipeline.Empty() {
		return o.copyFile(ctx, p)
	}

	data, err := o.source.Download(ctx, p)
	if err != nil {
		return model.PipelineResult{}, err
	}

	class, err := classfile.Parse(data)
	if err != nil {
		return model.PipelineResult{}, fmt.Errorf("parse %s: %w", p, err)
	}

	finalName, err := pipeline.Run(class)
	if err != nil {
		return model.PipelineResult{}, fmt.Errorf("transform %s: %w", p, err)
	}

	out, err := classfile.Encode(class)
	if err != nil {
		return model.PipelineResult{}, fmt.Errorf("encode %s: %w", p, err)
	}

	target := p
	if o.opts.SourceRelocation && finalName != "" {
		target = model.Path(finalName + ".class")
	}

	if err := o.target.Upload(ctx, target, out); err != nil {
		return model.PipelineResult{}, err
	}

	return model.PipelineResult{Source: p, Target: target, Outcome: model.Transformed}, nil
}

func (o *orchestrator) processResource(ctx context.Context, p model.Path) (model.PipelineResult, error) {
	if !o.opts.ResourceVoter(p) {
		slog.Debug("Skipped excluded resource", "path", p)
		return model.PipelineResult{Source: p, Outcome: model.Skipped}, nil
	}

	return o.copyFile(ctx, p)
}

func (o *orchestrator) copyFile(ctx context.Context, p model.Path) (model.PipelineResult, error) {
	data, err := o.source.Download(ctx, p)
	if err != nil {
		return model.PipelineResult{}, err
	}

	if err := o.target.Upload(ctx, p, data); err != nil {
		return model.PipelineResult{}, err
	}

	return model.PipelineResult{Source: p, Target: p, Outcome: model.Copied}, nil
}

func aggregate(results []model.PipelineResult) error {
	var failures []FileFailure

	for _, r := range results {
		if r.Outcome == model.Failed {
			failures = append(failures, FileFailure{Path: r.Source, Err: r.Err})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return &AggregateError{Failures: failures}
}
