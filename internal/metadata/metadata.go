// Package metadata builds and queries the whole-program inheritance index
// consumed by transformations that need to see beyond a single class.
package metadata

import (
	"reclass.dev/pkg/reclass/internal/classfile"
)

type methodKey struct {
	name string
	desc string
}

// ClassDescriptor is the structural summary of one class: its name, access
// flags, direct supertypes in declaration order, and the access flags of its
// declared methods. Descriptors are immutable once built.
type ClassDescriptor struct {
	Name       string
	Access     uint16
	Super      string
	Interfaces []string

	methods map[methodKey]uint16
}

// NewClassDescriptor builds a descriptor from a structurally decoded class.
func NewClassDescriptor(info *classfile.Info) *ClassDescriptor {
	d := &ClassDescriptor{
		Name:       info.Name,
		Access:     info.Access,
		Super:      info.Super,
		Interfaces: info.Interfaces,
		methods:    make(map[methodKey]uint16, len(info.Methods)),
	}

	for _, m := range info.Methods {
		d.methods[methodKey{name: m.Name, desc: m.Desc}] = m.Access
	}

	return d
}

// MethodAccess returns the access flags of the declared method with the
// given name and descriptor.
func (d *ClassDescriptor) MethodAccess(name, desc string) (uint16, bool) {
	access, ok := d.methods[methodKey{name: name, desc: desc}]
	return access, ok
}

// Index maps binary class names to their descriptors. Reads are safe for
// concurrent use once construction has finished.
type Index struct {
	classes map[string]*ClassDescriptor
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{classes: map[string]*ClassDescriptor{}}
}

// Put inserts a descriptor keyed by its binary name.
func (x *Index) Put(d *ClassDescriptor) {
	x.classes[d.Name] = d
}

// Len returns the number of indexed classes.
func (x *Index) Len() int { return len(x.classes) }

// Class resolves a binary name. Names outside the indexed set resolve to a
// default descriptor (public, extending Object, no interfaces, no methods)
// rather than failing, so walks can cross into library types.
func (x *Index) Class(name string) *ClassDescriptor {
	if d, ok := x.classes[name]; ok {
		return d
	}

	return &ClassDescriptor{
		Name:   name,
		Access: classfile.AccPublic,
		Super:  classfile.Object,
	}
}

// Walk produces the inheritance sequence of a class: the class itself, the
// transitive closure of its interfaces in declaration order, then each
// superclass with its own interface closure, ending at Object. Types
// reachable along several paths appear once per path; consumers take the
// first or minimal match, so the duplicates are harmless. A counting
// consumer layered on top of this walk would not be.
func (x *Index) Walk(name string) []string {
	var out []string

	seen := map[string]bool{}

	for current := name; !seen[current]; {
		seen[current] = true
		out = append(out, current)

		d := x.Class(current)
		for _, i := range d.Interfaces {
			out = x.interfaceClosure(out, i, 0)
		}

		if current == classfile.Object {
			break
		}

		current = d.Super
	}

	return out
}

// interfaceClosure appends an interface and, recursively, its own declared
// interfaces. The depth guard only trips on cyclic interface declarations,
// which a well-formed class set cannot contain.
func (x *Index) interfaceClosure(out []string, name string, depth int) []string {
	if depth > maxInterfaceDepth {
		return out
	}

	out = append(out, name)

	for _, i := range x.Class(name).Interfaces {
		out = x.interfaceClosure(out, i, depth+1)
	}

	return out
}

const maxInterfaceDepth = 64
