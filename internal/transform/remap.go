package transform

import (
	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/mapping"
	"reclass.dev/pkg/reclass/internal/model"
)

// Remap renames classes, members and descriptors through a name mapping.
// Every class is passed through uniformly; whether a class references any
// remapped type cannot be predicted without visiting it.
type Remap struct {
	Mapping mapping.NameMapping

	// OverrideParameters extends parameter renaming to MethodParameters
	// entries in addition to local variable tables.
	OverrideParameters bool
}

func (Remap) UsesMetadata() bool { return false }

func (r *Remap) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	return &remapVisitor{
		remapper: &classfile.Remapper{
			Mapper:             nameMapper{m: r.Mapping},
			Param:              r.Mapping.ParameterName,
			OverrideParameters: r.OverrideParameters,
		},
	}, nil
}

// remapVisitor applies the whole rewrite at end-of-class: the rename
// operates on the constant pool, which the per-member callbacks cannot
// partition meaningfully.
type remapVisitor struct {
	NopVisitor
	remapper *classfile.Remapper
}

func (v *remapVisitor) VisitEnd(c *classfile.Class) error {
	return v.remapper.Apply(c)
}

// nameMapper adapts the optional-return mapping contract to the
// total-function Mapper contract of the codec.
type nameMapper struct {
	m mapping.NameMapping
}

func (a nameMapper) MapClass(name string) string {
	if mapped, ok := a.m.ClassName(name); ok {
		return mapped
	}

	return name
}

func (a nameMapper) MapField(owner, name, desc string) string {
	if mapped, ok := a.m.FieldName(owner, name, desc); ok {
		return mapped
	}

	return name
}

func (a nameMapper) MapMethod(owner, name, desc string) string {
	if mapped, ok := a.m.MethodName(owner, name, desc); ok {
		return mapped
	}

	return name
}
