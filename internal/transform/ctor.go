package transform

import (
	"strings"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/model"
)

// InnerConstructor synthesizes a missing instance inner-class constructor
// that captures the outer instance. Some obfuscators drop the compiler's
// synthetic constructor; without it the outer-reference field can never be
// assigned and the class fails to instantiate.
type InnerConstructor struct{}

func (InnerConstructor) UsesMetadata() bool { return false }

func (InnerConstructor) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	return &innerCtorVisitor{}, nil
}

type innerCtorVisitor struct {
	NopVisitor
}

func (v *innerCtorVisitor) VisitEnd(c *classfile.Class) error {
	if c.Access&classfile.AccInterface != 0 {
		return nil
	}

	for _, m := range c.Methods {
		if c.MemberName(m) == classfile.ConstructorName {
			return nil
		}
	}

	outerField := captureField(c)
	if outerField == nil {
		return nil
	}

	outerDesc := c.MemberDesc(outerField)

	p := c.Pool
	fieldRef := p.AddFieldref(c.Name(), c.MemberName(outerField), outerDesc)
	superCtor := p.AddMethodref(c.SuperName(), classfile.ConstructorName, "()V")

	// Assign the capture before the super call, the way the compiler
	// emits inner-class constructors.
	body := []byte{
		0x2a,       // aload_0
		0x2b,       // aload_1
		0xb5, 0, 0, // putfield
		0x2a,       // aload_0
		0xb7, 0, 0, // invokespecial
		0xb1, // return
	}
	body[3], body[4] = byte(fieldRef>>8), byte(fieldRef)
	body[7], body[8] = byte(superCtor>>8), byte(superCtor)

	ctor := &classfile.Member{
		Access: classfile.AccPrivate | classfile.AccSynthetic,
		Name:   p.AddUtf8(classfile.ConstructorName),
		Desc:   p.AddUtf8("(" + outerDesc + ")V"),
	}

	codeAttr := &classfile.Attr{Name: p.AddUtf8(classfile.AttrCode)}
	classfile.EncodeCode(codeAttr, &classfile.Code{MaxStack: 2, MaxLocals: 2, Bytecode: body})
	ctor.Attrs = append(ctor.Attrs, codeAttr)

	c.Methods = append(c.Methods, ctor)

	return nil
}

// captureField finds the synthetic instance field holding the captured
// outer reference. Static nested classes carry none, which doubles as the
// static/instance distinction.
func captureField(c *classfile.Class) *classfile.Member {
	for _, f := range c.Fields {
		if f.Access&classfile.AccSynthetic == 0 || f.Access&classfile.AccStatic != 0 {
			continue
		}

		desc := c.MemberDesc(f)
		if strings.HasPrefix(desc, "L") && strings.HasSuffix(desc, ";") {
			return f
		}
	}

	return nil
}
