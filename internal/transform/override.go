package transform

import (
	"errors"
	"fmt"
	"strings"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/model"
)

// SourceOverride forces the recorded source file name and collapses every
// line number onto one fixed value, hiding the original compilation unit
// from stack traces without dropping the attributes entirely.
type SourceOverride struct {
	file string
	line int
}

// NewSourceOverride configures a source override. file replaces the
// SourceFile payload when non-empty; line replaces every line number when
// non-negative. Configuring neither is an error.
func NewSourceOverride(file string, line int) (*SourceOverride, error) {
	if file == "" && line < 0 {
		return nil, errors.New("source override needs a file name or a line number")
	}

	return &SourceOverride{file: file, line: line}, nil
}

func (*SourceOverride) UsesMetadata() bool { return false }

func (o *SourceOverride) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	return &sourceOverrideVisitor{file: o.file, line: o.line}, nil
}

type sourceOverrideVisitor struct {
	NopVisitor
	file string
	line int
}

func (v *sourceOverrideVisitor) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	if v.line < 0 {
		return nil
	}

	codeAttr := m.Attribute(c.Pool, classfile.AttrCode)
	if codeAttr == nil {
		return nil
	}

	code, err := classfile.DecodeCode(codeAttr)
	if err != nil {
		return err
	}

	changed := false

	for _, a := range code.Attrs {
		if c.Pool.Utf8(a.Name) != classfile.AttrLineNumberTable {
			continue
		}

		lines, err := classfile.DecodeLineNumbers(a)
		if err != nil {
			return err
		}

		for i := range lines {
			lines[i].Line = uint16(v.line)
		}

		classfile.EncodeLineNumbers(a, lines)

		changed = true
	}

	if changed {
		classfile.EncodeCode(codeAttr, code)
	}

	return nil
}

// VisitAttributes replaces the SourceFile payload. A class without the
// attribute keeps none; the override hides information, it does not add
// attributes that would enlarge the class.
func (v *sourceOverrideVisitor) VisitAttributes(c *classfile.Class) error {
	if v.file == "" {
		return nil
	}

	if a := c.Attribute(classfile.AttrSourceFile); a != nil {
		classfile.SetU2Payload(a, c.Pool.AddUtf8(v.file))
	}

	return nil
}

// LocalVariableNumbering replaces placeholder local variable names with
// positional ones ("var" plus the variable's slot). Mapping exporters mark
// slots whose original name is unknown with a placeholder prefix; numbering
// turns those markers into stable names and leaves real names alone.
type LocalVariableNumbering struct {
	Placeholder string
}

func (LocalVariableNumbering) UsesMetadata() bool { return false }

func (o *LocalVariableNumbering) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	if o.Placeholder == "" {
		return nil, nil
	}

	return &localVariableNumberingVisitor{placeholder: o.Placeholder}, nil
}

type localVariableNumberingVisitor struct {
	NopVisitor
	placeholder string
}

func (v *localVariableNumberingVisitor) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	codeAttr := m.Attribute(c.Pool, classfile.AttrCode)
	if codeAttr == nil {
		return nil
	}

	code, err := classfile.DecodeCode(codeAttr)
	if err != nil {
		return err
	}

	changed := false

	for _, a := range code.Attrs {
		name := c.Pool.Utf8(a.Name)
		if name != classfile.AttrLocalVariableTable && name != classfile.AttrLocalVariableTypeTable {
			continue
		}

		vars, err := classfile.DecodeLocalVariables(a)
		if err != nil {
			return err
		}

		renamed := false

		for i := range vars {
			if !strings.HasPrefix(c.Pool.Utf8(vars[i].Name), v.placeholder) {
				continue
			}

			vars[i].Name = c.Pool.AddUtf8(fmt.Sprintf("var%d", vars[i].Slot))
			renamed = true
		}

		if renamed {
			classfile.EncodeLocalVariables(a, vars)
			changed = true
		}
	}

	if changed {
		classfile.EncodeCode(codeAttr, code)
	}

	return nil
}

// LocalVariableOverride renames every local variable to one fixed name,
// stripping whatever meaning the original names carried.
type LocalVariableOverride struct {
	Name string
}

func (LocalVariableOverride) UsesMetadata() bool { return false }

func (o *LocalVariableOverride) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	if o.Name == "" {
		return nil, nil
	}

	return &localVariableVisitor{name: o.Name}, nil
}

type localVariableVisitor struct {
	NopVisitor
	name string
}

func (v *localVariableVisitor) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	codeAttr := m.Attribute(c.Pool, classfile.AttrCode)
	if codeAttr == nil {
		return nil
	}

	code, err := classfile.DecodeCode(codeAttr)
	if err != nil {
		return err
	}

	changed := false

	for _, a := range code.Attrs {
		name := c.Pool.Utf8(a.Name)
		if name != classfile.AttrLocalVariableTable && name != classfile.AttrLocalVariableTypeTable {
			continue
		}

		vars, err := classfile.DecodeLocalVariables(a)
		if err != nil {
			return err
		}

		idx := c.Pool.AddUtf8(v.name)
		for i := range vars {
			vars[i].Name = idx
		}

		classfile.EncodeLocalVariables(a, vars)

		changed = true
	}

	if changed {
		classfile.EncodeCode(codeAttr, code)
	}

	return nil
}
