package transform

import (
	"sort"
	"strings"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/mapping/nested"
	"reclass.dev/pkg/reclass/internal/model"
)

// InnerClasses guarantees inner-class bookkeeping for every nested type a
// class touches, re-emitting entries a prior tool stripped. Declarations
// come from an external structural map when available; referenced nested
// names with no record get a synthesized public entry.
type InnerClasses struct {
	Structure nested.Map
}

func (InnerClasses) UsesMetadata() bool { return false }

func (t *InnerClasses) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	return &innerClassVisitor{
		structure:  t.Structure,
		referenced: map[string]bool{},
	}, nil
}

type innerClassVisitor struct {
	NopVisitor

	structure  nested.Map
	self       string
	referenced map[string]bool
}

func (v *innerClassVisitor) VisitHeader(c *classfile.Class) error {
	v.self = c.Name()

	// Constant pool type literals cover references the member scans
	// cannot see, such as casts and instanceof operands.
	p := c.Pool
	for i := 1; i < p.Count(); i++ {
		if p.Tag(uint16(i)) == classfile.TagClass {
			v.referenceType(p.ClassName(uint16(i)))
		}
	}

	return nil
}

func (v *innerClassVisitor) VisitField(c *classfile.Class, f *classfile.Member) error {
	v.referenceDescriptor(c.MemberDesc(f))
	return nil
}

func (v *innerClassVisitor) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	v.referenceDescriptor(c.MemberDesc(m))

	if a := m.Attribute(c.Pool, classfile.AttrExceptions); a != nil {
		thrown, err := classfile.DecodeExceptions(a)
		if err != nil {
			return err
		}

		for _, t := range thrown {
			v.referenceType(c.Pool.ClassName(t))
		}
	}

	return nil
}

func (v *innerClassVisitor) VisitEnd(c *classfile.Class) error {
	attr := c.Attribute(classfile.AttrInnerClasses)

	var entries []classfile.InnerClassEntry

	if attr != nil {
		var err error
		if entries, err = classfile.DecodeInnerClasses(attr); err != nil {
			return err
		}
	}

	declared := map[string]bool{}
	for _, e := range entries {
		declared[c.Pool.ClassName(e.Inner)] = true
	}

	entries = v.emitSelf(c, entries, declared)

	if record, ok := v.structure.Class(v.self); ok {
		for _, e := range record.InnerClasses {
			if !declared[e.Inner] {
				entries = append(entries, encodeEntry(c.Pool, e))
				declared[e.Inner] = true
			}
		}
	}

	for _, name := range v.sortedReferences() {
		if declared[name] {
			continue
		}

		if e, ok := v.structure.Inner(name); ok {
			entries = append(entries, encodeEntry(c.Pool, e))
		} else {
			entries = append(entries, synthesizeEntry(c.Pool, name))
		}

		declared[name] = true
	}

	if len(entries) == 0 {
		return nil
	}

	if attr == nil {
		attr = &classfile.Attr{Name: c.Pool.AddUtf8(classfile.AttrInnerClasses)}
		c.Attrs = append(c.Attrs, attr)
	}

	classfile.EncodeInnerClasses(attr, entries)

	return nil
}

// emitSelf restores the class's own nesting declaration: the enclosing
// method record and the self-referencing inner-class entry, both sourced
// from the structural map.
func (v *innerClassVisitor) emitSelf(c *classfile.Class, entries []classfile.InnerClassEntry, declared map[string]bool) []classfile.InnerClassEntry {
	record, ok := v.structure.Class(v.self)
	if ok && record.EnclosingMethod != nil && c.Attribute(classfile.AttrEnclosingMethod) == nil {
		enc := classfile.EnclosingMethod{Class: c.Pool.AddClass(record.EnclosingMethod.Owner)}
		if record.EnclosingMethod.Name != "" {
			enc.Method = c.Pool.AddNameAndType(record.EnclosingMethod.Name, record.EnclosingMethod.Desc)
		}

		a := &classfile.Attr{Name: c.Pool.AddUtf8(classfile.AttrEnclosingMethod)}
		classfile.EncodeEnclosingMethod(a, enc)
		c.Attrs = append(c.Attrs, a)
	}

	if declared[v.self] {
		return entries
	}

	if e, ok := v.structure.Inner(v.self); ok {
		entries = append(entries, encodeEntry(c.Pool, e))
		declared[v.self] = true
	}

	return entries
}

// referenceDescriptor records every nested type named by a field or method
// descriptor.
func (v *innerClassVisitor) referenceDescriptor(desc string) {
	for _, name := range classfile.ReferencedTypes(desc) {
		v.reference(name)
	}
}

// referenceType records a constant pool class literal, unwrapping array
// descriptors to their element types.
func (v *innerClassVisitor) referenceType(name string) {
	if strings.HasPrefix(name, "[") {
		v.referenceDescriptor(name)
		return
	}

	v.reference(name)
}

func (v *innerClassVisitor) reference(name string) {
	// The class's own entry is handled through the enclosing-method path,
	// not the reference scan.
	if name == v.self || !classfile.IsNested(name) {
		return
	}

	v.referenced[name] = true
}

func (v *innerClassVisitor) sortedReferences() []string {
	names := make([]string, 0, len(v.referenced))
	for name := range v.referenced {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func encodeEntry(p *classfile.Pool, e nested.Entry) classfile.InnerClassEntry {
	entry := classfile.InnerClassEntry{
		Inner:  p.AddClass(e.Inner),
		Access: e.Access,
	}

	if e.Outer != "" {
		entry.Outer = p.AddClass(e.Outer)
	}

	if e.Name != "" {
		entry.Name = p.AddUtf8(e.Name)
	}

	return entry
}

// synthesizeEntry builds a best-effort declaration for a nested name with
// no structural record, splitting at the last separator and defaulting the
// access to public.
func synthesizeEntry(p *classfile.Pool, name string) classfile.InnerClassEntry {
	outer, simple, _ := classfile.SplitNested(name)

	return classfile.InnerClassEntry{
		Inner:  p.AddClass(name),
		Outer:  p.AddClass(outer),
		Name:   p.AddUtf8(simple),
		Access: classfile.AccPublic,
	}
}
