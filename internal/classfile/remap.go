package classfile

// Mapper resolves replacement names for classes and members. Implementations
// return the input unchanged when no mapping applies.
type Mapper interface {
	MapClass(name string) string
	MapField(owner, name, desc string) string
	MapMethod(owner, name, desc string) string
}

// ParamFunc resolves a replacement local variable name for a method
// parameter. index is zero-based and already adjusted for the receiver slot
// of instance methods.
type ParamFunc func(owner, method, desc, name string, index int) (string, bool)

// Remapper rewrites every symbolic reference of a class through a Mapper.
//
// The rewrite operates at the constant pool level: CONSTANT_Class entries
// are repointed at remapped names, member references receive fresh
// name-and-type entries when their name or descriptor changes, and the
// class's own fields, methods, signatures and structural attributes are
// updated in place. Existing pool indices never move, so undecoded
// attributes and bytecode stay valid.
type Remapper struct {
	Mapper Mapper

	// Param, when set, renames local variables occupying parameter slots.
	Param ParamFunc

	// OverrideParameters additionally rewrites MethodParameters entries,
	// querying Param with the declared name (or none) for every index.
	OverrideParameters bool
}

// Apply rewrites the class in place and returns the first error encountered
// while decoding an attribute it needs to touch.
func (r *Remapper) Apply(c *Class) error {
	p := c.Pool

	// Snapshot the entry table first: every lookup of an "original" name
	// resolves against this copy, so edits cannot feed back into queries.
	orig := make([]Const, len(p.consts))
	copy(orig, p.consts)

	origUtf8 := func(i uint16) string {
		if int(i) < len(orig) && orig[i].Tag == TagUtf8 {
			return orig[i].Utf8
		}

		return ""
	}
	origClassName := func(i uint16) string {
		if int(i) < len(orig) && orig[i].Tag == TagClass {
			return origUtf8(orig[i].Ref1)
		}

		return ""
	}
	origNAT := func(i uint16) (string, string) {
		if int(i) < len(orig) && orig[i].Tag == TagNameAndType {
			return origUtf8(orig[i].Ref1), origUtf8(orig[i].Ref2)
		}

		return "", ""
	}

	mapClass := r.Mapper.MapClass
	mapMethodName := func(owner, name, desc string) string {
		// Constructor and static initializer names are structural and are
		// never remapped, whatever the mapping claims.
		if name == ConstructorName || name == StaticInitializerName {
			return name
		}

		return r.Mapper.MapMethod(owner, name, desc)
	}

	thisName := origClassName(c.This)

	for i := 1; i < len(orig); i++ {
		e := orig[i]
		idx := uint16(i)

		switch e.Tag {
		case TagClass:
			name := origUtf8(e.Ref1)
			if mapped := MapTypeName(name, mapClass); mapped != name {
				p.repointClassName(idx, mapped)
			}
		case TagFieldref:
			owner := origClassName(e.Ref1)
			name, desc := origNAT(e.Ref2)
			newName := r.Mapper.MapField(owner, name, desc)
			newDesc := MapDescriptor(desc, mapClass)

			if newName != name || newDesc != desc {
				p.at(idx).Ref2 = p.AddNameAndType(newName, newDesc)
			}
		case TagMethodref, TagInterfaceMethodref:
			owner := origClassName(e.Ref1)
			name, desc := origNAT(e.Ref2)
			newName := mapMethodName(owner, name, desc)
			newDesc := MapDescriptor(desc, mapClass)

			if newName != name || newDesc != desc {
				p.at(idx).Ref2 = p.AddNameAndType(newName, newDesc)
			}
		case TagDynamic, TagInvokeDynamic:
			// The name is resolved through the bootstrap method, not an
			// owner; only the descriptor carries remappable types.
			name, desc := origNAT(e.Ref2)
			if newDesc := MapDescriptor(desc, mapClass); newDesc != desc {
				p.at(idx).Ref2 = p.AddNameAndType(name, newDesc)
			}
		case TagMethodType:
			desc := origUtf8(e.Ref1)
			if newDesc := MapDescriptor(desc, mapClass); newDesc != desc {
				p.at(idx).Ref1 = p.AddUtf8(newDesc)
			}
		}
	}

	for _, f := range c.Fields {
		name := origUtf8(f.Name)
		desc := origUtf8(f.Desc)

		if newName := r.Mapper.MapField(thisName, name, desc); newName != name {
			f.Name = p.AddUtf8(newName)
		}

		if newDesc := MapDescriptor(desc, mapClass); newDesc != desc {
			f.Desc = p.AddUtf8(newDesc)
		}

		if err := r.remapSignature(p, f.Attrs); err != nil {
			return err
		}
	}

	for _, m := range c.Methods {
		name := origUtf8(m.Name)
		desc := origUtf8(m.Desc)

		if newName := mapMethodName(thisName, name, desc); newName != name {
			m.Name = p.AddUtf8(newName)
		}

		if newDesc := MapDescriptor(desc, mapClass); newDesc != desc {
			m.Desc = p.AddUtf8(newDesc)
		}

		if err := r.remapSignature(p, m.Attrs); err != nil {
			return err
		}

		if err := r.remapMethodBody(c, m, thisName, name, desc); err != nil {
			return err
		}

		if r.OverrideParameters {
			if err := r.remapMethodParameters(c, m, thisName, name, desc); err != nil {
				return err
			}
		}
	}

	if err := r.remapSignature(p, c.Attrs); err != nil {
		return err
	}

	if err := r.remapInnerClasses(c); err != nil {
		return err
	}

	return r.remapEnclosingMethod(c, origClassName, origNAT)
}

func (r *Remapper) remapSignature(p *Pool, attrs []*Attr) error {
	a := findAttr(p, attrs, AttrSignature)
	if a == nil {
		return nil
	}

	idx, err := U2Payload(a)
	if err != nil {
		return err
	}

	sig := p.Utf8(idx)
	if mapped := MapSignature(sig, r.Mapper.MapClass); mapped != sig {
		SetU2Payload(a, p.AddUtf8(mapped))
	}

	return nil
}

func (r *Remapper) remapMethodBody(c *Class, m *Member, owner, name, desc string) error {
	codeAttr := m.Attribute(c.Pool, AttrCode)
	if codeAttr == nil {
		return nil
	}

	code, err := DecodeCode(codeAttr)
	if err != nil {
		return err
	}

	changed := false

	for _, a := range code.Attrs {
		switch c.Pool.Utf8(a.Name) {
		case AttrLocalVariableTable:
			if err := r.remapLocalVariables(c, m, a, owner, name, desc); err != nil {
				return err
			}

			changed = true
		case AttrLocalVariableTypeTable:
			vars, err := DecodeLocalVariables(a)
			if err != nil {
				return err
			}

			for i := range vars {
				sig := c.Pool.Utf8(vars[i].Desc)
				if mapped := MapSignature(sig, r.Mapper.MapClass); mapped != sig {
					vars[i].Desc = c.Pool.AddUtf8(mapped)
				}
			}

			EncodeLocalVariables(a, vars)

			changed = true
		}
	}

	if changed {
		EncodeCode(codeAttr, code)
	}

	return nil
}

func (r *Remapper) remapLocalVariables(c *Class, m *Member, a *Attr, owner, name, desc string) error {
	vars, err := DecodeLocalVariables(a)
	if err != nil {
		return err
	}

	params := ParameterCount(desc)
	static := m.Access&AccStatic != 0

	for i := range vars {
		d := c.Pool.Utf8(vars[i].Desc)
		if mapped := MapDescriptor(d, r.Mapper.MapClass); mapped != d {
			vars[i].Desc = c.Pool.AddUtf8(mapped)
		}

		if r.Param == nil {
			continue
		}

		index, ok := parameterIndex(int(vars[i].Slot), static, params)
		if !ok {
			continue
		}

		original := c.Pool.Utf8(vars[i].Name)
		if replacement, ok := r.Param(owner, name, desc, original, index); ok {
			vars[i].Name = c.Pool.AddUtf8(replacement)
		}
	}

	EncodeLocalVariables(a, vars)

	return nil
}

// parameterIndex converts a local variable slot into a zero-based parameter
// index, accounting for the implicit receiver slot of instance methods.
// Slots beyond the declared parameter count carry plain locals and report
// no index.
func parameterIndex(slot int, static bool, params int) (int, bool) {
	index := slot

	if !static {
		if slot == 0 {
			return 0, false
		}

		index = slot - 1
	}

	if index >= params {
		return 0, false
	}

	return index, true
}

func (r *Remapper) remapMethodParameters(c *Class, m *Member, owner, name, desc string) error {
	a := m.Attribute(c.Pool, AttrMethodParameters)
	if a == nil || r.Param == nil {
		return nil
	}

	params, err := DecodeMethodParameters(a)
	if err != nil {
		return err
	}

	for i := range params {
		original := ""
		if params[i].Name != 0 {
			original = c.Pool.Utf8(params[i].Name)
		}

		if replacement, ok := r.Param(owner, name, desc, original, i); ok {
			params[i].Name = c.Pool.AddUtf8(replacement)
		}
	}

	EncodeMethodParameters(a, params)

	return nil
}

// remapInnerClasses recomputes the simple-name column of the inner class
// table. The pool-level pass already renamed the CONSTANT_Class entries;
// here the recorded simple name is re-derived from the final binary name so
// the table stays consistent with the renaming.
func (r *Remapper) remapInnerClasses(c *Class) error {
	a := c.Attribute(AttrInnerClasses)
	if a == nil {
		return nil
	}

	entries, err := DecodeInnerClasses(a)
	if err != nil {
		return err
	}

	changed := false

	for i := range entries {
		if entries[i].Name == 0 {
			continue
		}

		full := c.Pool.ClassName(entries[i].Inner)

		if _, simple, ok := SplitNested(full); ok {
			if c.Pool.Utf8(entries[i].Name) != simple {
				entries[i].Name = c.Pool.AddUtf8(simple)
				changed = true
			}
		}
	}

	if changed {
		EncodeInnerClasses(a, entries)
	}

	return nil
}

func (r *Remapper) remapEnclosingMethod(c *Class, origClassName func(uint16) string, origNAT func(uint16) (string, string)) error {
	a := c.Attribute(AttrEnclosingMethod)
	if a == nil {
		return nil
	}

	enc, err := DecodeEnclosingMethod(a)
	if err != nil {
		return err
	}

	if enc.Method == 0 {
		return nil
	}

	owner := origClassName(enc.Class)
	name, desc := origNAT(enc.Method)

	newName := name
	if name != ConstructorName && name != StaticInitializerName {
		newName = r.Mapper.MapMethod(owner, name, desc)
	}

	newDesc := MapDescriptor(desc, r.Mapper.MapClass)

	if newName != name || newDesc != desc {
		enc.Method = c.Pool.AddNameAndType(newName, newDesc)
		EncodeEnclosingMethod(a, enc)
	}

	return nil
}
