package transform

import (
	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/model"
)

// Strip removes debug attributes. Each flag controls one attribute family;
// a Strip with no flag set contributes no visitor.
type Strip struct {
	SourceFile     bool
	LineNumbers    bool
	LocalVariables bool
	Signatures     bool
}

func (Strip) UsesMetadata() bool { return false }

func (s *Strip) CreateVisitor(_ *Context, _ model.Path) (ClassVisitor, error) {
	if !s.SourceFile && !s.LineNumbers && !s.LocalVariables && !s.Signatures {
		return nil, nil
	}

	return &stripVisitor{opts: *s}, nil
}

type stripVisitor struct {
	NopVisitor
	opts Strip
}

func (v *stripVisitor) VisitField(c *classfile.Class, f *classfile.Member) error {
	if v.opts.Signatures {
		f.RemoveAttribute(c.Pool, classfile.AttrSignature)
	}

	return nil
}

func (v *stripVisitor) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	if v.opts.Signatures {
		m.RemoveAttribute(c.Pool, classfile.AttrSignature)
	}

	if !v.opts.LineNumbers && !v.opts.LocalVariables {
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

	kept := code.Attrs[:0]

	for _, a := range code.Attrs {
		switch c.Pool.Utf8(a.Name) {
		case classfile.AttrLineNumberTable:
			if v.opts.LineNumbers {
				continue
			}
		case classfile.AttrLocalVariableTable, classfile.AttrLocalVariableTypeTable:
			if v.opts.LocalVariables {
				continue
			}
		}

		kept = append(kept, a)
	}

	code.Attrs = kept
	classfile.EncodeCode(codeAttr, code)

	return nil
}

func (v *stripVisitor) VisitAttributes(c *classfile.Class) error {
	if v.opts.SourceFile {
		c.RemoveAttribute(classfile.AttrSourceFile)
	}

	if v.opts.Signatures {
		c.RemoveAttribute(classfile.AttrSignature)
	}

	return nil
}
