package classfile

// Builder assembles a class in memory. It backs the synthesizing
// transformers and the test fixtures; generated classes carry a Java 8
// version header.
type Builder struct {
	c    *Class
	last *Member
}

// NewBuilder starts a public class extending java/lang/Object.
func NewBuilder(name string) *Builder {
	p := newPool(16)
	c := &Class{
		Major:  52,
		Pool:   p,
		Access: AccPublic,
	}
	c.This = p.AddClass(name)
	c.Super = p.AddClass(Object)

	return &Builder{c: c}
}

// Access replaces the class access flags.
func (b *Builder) Access(flags uint16) *Builder {
	b.c.Access = flags
	return b
}

// Super replaces the super class.
func (b *Builder) Super(name string) *Builder {
	b.c.Super = b.c.Pool.AddClass(name)
	return b
}

// Interface appends a directly implemented interface.
func (b *Builder) Interface(name string) *Builder {
	b.c.Interfaces = append(b.c.Interfaces, b.c.Pool.AddClass(name))
	return b
}

// Field appends a field.
func (b *Builder) Field(access uint16, name, desc string) *Builder {
	b.last = &Member{
		Access: access,
		Name:   b.c.Pool.AddUtf8(name),
		Desc:   b.c.Pool.AddUtf8(desc),
	}
	b.c.Fields = append(b.c.Fields, b.last)

	return b
}

// Method appends a method without a body.
func (b *Builder) Method(access uint16, name, desc string) *Builder {
	b.last = &Member{
		Access: access,
		Name:   b.c.Pool.AddUtf8(name),
		Desc:   b.c.Pool.AddUtf8(desc),
	}
	b.c.Methods = append(b.c.Methods, b.last)

	return b
}

// Code attaches a Code attribute to the last added method.
func (b *Builder) Code(maxStack, maxLocals uint16, bytecode []byte) *Builder {
	a := &Attr{Name: b.c.Pool.AddUtf8(AttrCode)}
	EncodeCode(a, &Code{MaxStack: maxStack, MaxLocals: maxLocals, Bytecode: bytecode})
	b.last.Attrs = append(b.last.Attrs, a)

	return b
}

// LocalVariable appends a local variable table row to the last method's
// Code attribute, creating the table when necessary.
func (b *Builder) LocalVariable(name, desc string, slot uint16) *Builder {
	codeAttr := b.last.Attribute(b.c.Pool, AttrCode)
	if codeAttr == nil {
		b.Code(0, slot+1, []byte{0xb1}) // return
		codeAttr = b.last.Attribute(b.c.Pool, AttrCode)
	}

	code, err := DecodeCode(codeAttr)
	if err != nil {
		return b
	}

	table := findAttr(b.c.Pool, code.Attrs, AttrLocalVariableTable)
	if table == nil {
		table = &Attr{Name: b.c.Pool.AddUtf8(AttrLocalVariableTable), Data: []byte{0, 0}}
		code.Attrs = append(code.Attrs, table)
	}

	vars, err := DecodeLocalVariables(table)
	if err != nil {
		return b
	}

	vars = append(vars, LocalVariable{
		Length: uint16(len(code.Bytecode)),
		Name:   b.c.Pool.AddUtf8(name),
		Desc:   b.c.Pool.AddUtf8(desc),
		Slot:   slot,
	})
	EncodeLocalVariables(table, vars)
	EncodeCode(codeAttr, code)

	return b
}

// LineNumbers attaches a line number table with the given lines to the last
// method's Code attribute, creating an empty body when necessary.
func (b *Builder) LineNumbers(lines ...uint16) *Builder {
	codeAttr := b.last.Attribute(b.c.Pool, AttrCode)
	if codeAttr == nil {
		b.Code(0, 1, []byte{0xb1})
		codeAttr = b.last.Attribute(b.c.Pool, AttrCode)
	}

	code, err := DecodeCode(codeAttr)
	if err != nil {
		return b
	}

	table := &Attr{Name: b.c.Pool.AddUtf8(AttrLineNumberTable)}

	rows := make([]LineNumber, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, LineNumber{Line: l})
	}

	EncodeLineNumbers(table, rows)
	code.Attrs = append(code.Attrs, table)
	EncodeCode(codeAttr, code)

	return b
}

// InnerClass appends a row to the class's InnerClasses attribute.
func (b *Builder) InnerClass(inner, outer, simple string, access uint16) *Builder {
	a := b.c.Attribute(AttrInnerClasses)
	if a == nil {
		a = &Attr{Name: b.c.Pool.AddUtf8(AttrInnerClasses), Data: []byte{0, 0}}
		b.c.Attrs = append(b.c.Attrs, a)
	}

	entries, err := DecodeInnerClasses(a)
	if err != nil {
		return b
	}

	entry := InnerClassEntry{Inner: b.c.Pool.AddClass(inner), Access: access}
	if outer != "" {
		entry.Outer = b.c.Pool.AddClass(outer)
	}

	if simple != "" {
		entry.Name = b.c.Pool.AddUtf8(simple)
	}

	EncodeInnerClasses(a, append(entries, entry))

	return b
}

// SourceFile attaches a SourceFile attribute.
func (b *Builder) SourceFile(name string) *Builder {
	a := &Attr{Name: b.c.Pool.AddUtf8(AttrSourceFile)}
	SetU2Payload(a, b.c.Pool.AddUtf8(name))
	b.c.Attrs = append(b.c.Attrs, a)

	return b
}

// Signature attaches a Signature attribute to the last added member, or to
// the class when no member was added yet.
func (b *Builder) Signature(sig string) *Builder {
	a := &Attr{Name: b.c.Pool.AddUtf8(AttrSignature)}
	SetU2Payload(a, b.c.Pool.AddUtf8(sig))

	if b.last != nil {
		b.last.Attrs = append(b.last.Attrs, a)
	} else {
		b.c.Attrs = append(b.c.Attrs, a)
	}

	return b
}

// Class returns the assembled class.
func (b *Builder) Class() *Class { return b.c }

// Bytes serializes the assembled class.
func (b *Builder) Bytes() ([]byte, error) { return Encode(b.c) }
