// Package transform defines the per-class transformation passes and the
// pipeline that composes them into one run over a decoded class.
package transform

import (
	"errors"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/metadata"
	"reclass.dev/pkg/reclass/internal/model"
)

// ErrNoMetadata reports an access to the inheritance index by a run in
// which no transformer declared a metadata dependency. It is a contract
// violation in the transformer, not a recoverable condition.
var ErrNoMetadata = errors.New("inheritance metadata accessed without a declared dependency")

// Context carries the per-run shared state handed to transformers. All of
// it is immutable once the run starts, so concurrent per-file passes can
// share one Context.
type Context struct {
	index *metadata.Index
}

// NewContext builds a context carrying the inheritance index.
func NewContext(index *metadata.Index) *Context {
	return &Context{index: index}
}

// NewContextWithoutMetadata builds a context for runs that skipped the
// metadata pass. Metadata queries against it fail with ErrNoMetadata.
func NewContextWithoutMetadata() *Context {
	return &Context{}
}

// Metadata returns the inheritance index built before the run.
func (c *Context) Metadata() (*metadata.Index, error) {
	if c.index == nil {
		return nil, ErrNoMetadata
	}

	return c.index, nil
}

// Transformer is one configurable transformation pass. Instances are shared
// across concurrent per-file invocations and must keep all per-class state
// inside the visitors they create.
type Transformer interface {
	// UsesMetadata reports whether the pass queries the inheritance
	// index. The metadata build runs only when at least one configured
	// transformer reports true.
	UsesMetadata() bool

	// CreateVisitor returns the pass's visitor for one class, or nil to
	// sit this class out.
	CreateVisitor(ctx *Context, source model.Path) (ClassVisitor, error)
}

// ClassVisitor is one full pass over a decoded class. The pipeline invokes
// the callbacks in a fixed order: header, each field, each method, the
// class-level attributes, then end.
type ClassVisitor interface {
	VisitHeader(c *classfile.Class) error
	VisitField(c *classfile.Class, f *classfile.Member) error
	VisitMethod(c *classfile.Class, m *classfile.Member) error
	VisitAttributes(c *classfile.Class) error
	VisitEnd(c *classfile.Class) error
}

// NopVisitor implements every callback as a no-op. Embed it to implement
// only the callbacks a pass cares about.
type NopVisitor struct{}

func (NopVisitor) VisitHeader(*classfile.Class) error                     { return nil }
func (NopVisitor) VisitField(*classfile.Class, *classfile.Member) error   { return nil }
func (NopVisitor) VisitMethod(*classfile.Class, *classfile.Member) error  { return nil }
func (NopVisitor) VisitAttributes(*classfile.Class) error                 { return nil }
func (NopVisitor) VisitEnd(*classfile.Class) error                        { return nil }

// UsesMetadata reports whether any configured transformer needs the
// inheritance index.
func UsesMetadata(transformers []Transformer) bool {
	for _, t := range transformers {
		if t.UsesMetadata() {
			return true
		}
	}

	return false
}
