package transform

import (
	"fmt"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/model"
)

// Pipeline is the ordered list of visitor stages contributed for one class.
// Stages run one after another, each as a complete pass, so a later stage
// always observes the earlier stages' edits. The terminal stage is a tap
// that records the class's final binary name for output relocation.
type Pipeline struct {
	stages []ClassVisitor
	tap    nameTap
}

// Assemble asks each configured transformer, in order, for a visitor stage
// covering the given class. Transformers that decline contribute nothing
// and cost nothing.
func Assemble(ctx *Context, transformers []Transformer, source model.Path) (*Pipeline, error) {
	p := &Pipeline{}

	for _, t := range transformers {
		v, err := t.CreateVisitor(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("assemble pipeline for %s: %w", source, err)
		}

		if v != nil {
			p.stages = append(p.stages, v)
		}
	}

	return p, nil
}

// Empty reports whether no transformer contributed a stage, in which case
// the caller should copy the file instead of decoding it.
func (p *Pipeline) Empty() bool { return len(p.stages) == 0 }

// Run drives every stage over the class and returns the final binary name
// recorded after the last stage finished.
func (p *Pipeline) Run(c *classfile.Class) (string, error) {
	for _, stage := range p.stages {
		if err := runStage(stage, c); err != nil {
			return "", err
		}
	}

	if err := runStage(&p.tap, c); err != nil {
		return "", err
	}

	return p.tap.name, nil
}

func runStage(v ClassVisitor, c *classfile.Class) error {
	if err := v.VisitHeader(c); err != nil {
		return err
	}

	for _, f := range c.Fields {
		if err := v.VisitField(c, f); err != nil {
			return err
		}
	}

	for _, m := range c.Methods {
		if err := v.VisitMethod(c, m); err != nil {
			return err
		}
	}

	if err := v.VisitAttributes(c); err != nil {
		return err
	}

	return v.VisitEnd(c)
}

// nameTap records the class's binary name as of the end of the run.
type nameTap struct {
	NopVisitor
	name string
}

func (t *nameTap) VisitEnd(c *classfile.Class) error {
	t.name = c.Name()
	return nil
}
