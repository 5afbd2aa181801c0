// Package classfile decodes, edits and re-encodes JVM class files.
//
// The codec keeps the constant pool append-only: transformation passes
// repoint index fields or add new entries, never renumber existing ones.
// Method bytecode and attributes the codec does not understand therefore
// survive any edit byte for byte.
package classfile

// Access flag bits shared by classes, fields and methods.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccProtected = 0x0004
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccInterface = 0x0200
	AccSynthetic = 0x1000

	// AccLevelMask covers the three mutually exclusive visibility bits.
	AccLevelMask = AccPublic | AccPrivate | AccProtected
)

// Names of the special methods that are never remapped.
const (
	ConstructorName       = "<init>"
	StaticInitializerName = "<clinit>"
)

// Class is a decoded class file. This/Super/Interfaces hold constant pool
// indices of CONSTANT_Class entries.
type Class struct {
	Minor, Major uint16
	Pool         *Pool
	Access       uint16
	This         uint16
	Super        uint16
	Interfaces   []uint16
	Fields       []*Member
	Methods      []*Member
	Attrs        []*Attr
}

// Member is a field or method. Name and Desc are constant pool indices of
// CONSTANT_Utf8 entries.
type Member struct {
	Access uint16
	Name   uint16
	Desc   uint16
	Attrs  []*Attr
}

// Attr is a raw attribute: a name index plus its undecoded payload. Parsed
// views (Code, InnerClasses, ...) decode from and re-encode into Data.
type Attr struct {
	Name uint16
	Data []byte
}

// Name returns the binary name of the class.
func (c *Class) Name() string { return c.Pool.ClassName(c.This) }

// SuperName returns the binary name of the direct super class, or the empty
// string for java/lang/Object itself.
func (c *Class) SuperName() string {
	if c.Super == 0 {
		return ""
	}

	return c.Pool.ClassName(c.Super)
}

// InterfaceNames returns the directly implemented interfaces in declaration
// order.
func (c *Class) InterfaceNames() []string {
	names := make([]string, 0, len(c.Interfaces))
	for _, i := range c.Interfaces {
		names = append(names, c.Pool.ClassName(i))
	}

	return names
}

// MemberName resolves a member's name.
func (c *Class) MemberName(m *Member) string { return c.Pool.Utf8(m.Name) }

// MemberDesc resolves a member's descriptor.
func (c *Class) MemberDesc(m *Member) string { return c.Pool.Utf8(m.Desc) }

// Attribute returns the first attribute with the given name, or nil.
func (c *Class) Attribute(name string) *Attr { return findAttr(c.Pool, c.Attrs, name) }

// RemoveAttribute drops every class-level attribute with the given name.
func (c *Class) RemoveAttribute(name string) { c.Attrs = removeAttr(c.Pool, c.Attrs, name) }

// Attribute returns the member's first attribute with the given name, or nil.
func (m *Member) Attribute(p *Pool, name string) *Attr { return findAttr(p, m.Attrs, name) }

// RemoveAttribute drops every member attribute with the given name.
func (m *Member) RemoveAttribute(p *Pool, name string) { m.Attrs = removeAttr(p, m.Attrs, name) }

func findAttr(p *Pool, attrs []*Attr, name string) *Attr {
	for _, a := range attrs {
		if p.Utf8(a.Name) == name {
			return a
		}
	}

	return nil
}

func removeAttr(p *Pool, attrs []*Attr, name string) []*Attr {
	kept := attrs[:0]

	for _, a := range attrs {
		if p.Utf8(a.Name) != name {
			kept = append(kept, a)
		}
	}

	return kept
}
