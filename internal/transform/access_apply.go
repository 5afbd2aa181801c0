package transform

import (
	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/mapping"
	"reclass.dev/pkg/reclass/internal/model"
)

// AccessApply rewrites class and member access flags through an access
// mapping. Unlike correction, which derives flags from the hierarchy, this
// pass applies externally supplied ones.
type AccessApply struct {
	Mapping mapping.AccessMapping
}

func (AccessApply) UsesMetadata() bool { return false }

func (a *AccessApply) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	return &accessApplier{mapping: a.Mapping}, nil
}

type accessApplier struct {
	NopVisitor
	mapping mapping.AccessMapping
}

func (v *accessApplier) VisitHeader(c *classfile.Class) error {
	if flags, ok := v.mapping.ClassAccess(c.Name(), flagsFromRaw(c.Access)); ok {
		c.Access = rawFromFlags(flags, c.Access)
	}

	return nil
}

func (v *accessApplier) VisitField(c *classfile.Class, f *classfile.Member) error {
	if flags, ok := v.mapping.FieldAccess(c.Name(), c.MemberName(f), c.MemberDesc(f), flagsFromRaw(f.Access)); ok {
		f.Access = rawFromFlags(flags, f.Access)
	}

	return nil
}

func (v *accessApplier) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	if flags, ok := v.mapping.MethodAccess(c.Name(), c.MemberName(m), c.MemberDesc(m), flagsFromRaw(m.Access)); ok {
		m.Access = rawFromFlags(flags, m.Access)
	}

	return nil
}

// flagsFromRaw projects class file access bits onto the format-independent
// flag set.
func flagsFromRaw(access uint16) mapping.AccessFlag {
	var flags mapping.AccessFlag

	switch {
	case access&classfile.AccPublic != 0:
		flags = mapping.Public
	case access&classfile.AccProtected != 0:
		flags = mapping.Protected
	case access&classfile.AccPrivate != 0:
		flags = mapping.Private
	default:
		flags = mapping.PackagePrivate
	}

	if access&classfile.AccFinal != 0 {
		flags |= mapping.Final
	}

	return flags
}

// rawFromFlags folds a flag set back into raw access bits, preserving every
// bit outside the visibility level and final.
func rawFromFlags(flags mapping.AccessFlag, current uint16) uint16 {
	access := current &^ (classfile.AccLevelMask | classfile.AccFinal)

	switch flags.Level() {
	case mapping.Public:
		access |= classfile.AccPublic
	case mapping.Protected:
		access |= classfile.AccProtected
	case mapping.Private:
		access |= classfile.AccPrivate
	}

	if flags&mapping.Final != 0 {
		access |= classfile.AccFinal
	}

	return access
}
