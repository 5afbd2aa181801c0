package classfile

import "fmt"

// Attribute names the codec understands beyond raw pass-through.
const (
	AttrCode                   = "Code"
	AttrInnerClasses           = "InnerClasses"
	AttrEnclosingMethod        = "EnclosingMethod"
	AttrExceptions             = "Exceptions"
	AttrSignature              = "Signature"
	AttrSourceFile             = "SourceFile"
	AttrLineNumberTable        = "LineNumberTable"
	AttrLocalVariableTable     = "LocalVariableTable"
	AttrLocalVariableTypeTable = "LocalVariableTypeTable"
	AttrMethodParameters       = "MethodParameters"
)

// InnerClassEntry is one row of the InnerClasses attribute. Inner and Outer
// are CONSTANT_Class indices (Outer may be zero), Name is a CONSTANT_Utf8
// index holding the simple name (zero for anonymous classes).
type InnerClassEntry struct {
	Inner  uint16
	Outer  uint16
	Name   uint16
	Access uint16
}

// DecodeInnerClasses parses an InnerClasses attribute payload.
func DecodeInnerClasses(a *Attr) ([]InnerClassEntry, error) {
	r := &reader{data: a.Data}
	count := int(r.u2())
	entries := make([]InnerClassEntry, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		entries = append(entries, InnerClassEntry{
			Inner:  r.u2(),
			Outer:  r.u2(),
			Name:   r.u2(),
			Access: r.u2(),
		})
	}

	return entries, r.err
}

// EncodeInnerClasses replaces an InnerClasses attribute payload.
func EncodeInnerClasses(a *Attr, entries []InnerClassEntry) {
	w := &writer{}
	w.u2(uint16(len(entries)))

	for _, e := range entries {
		w.u2(e.Inner)
		w.u2(e.Outer)
		w.u2(e.Name)
		w.u2(e.Access)
	}

	a.Data = w.buf.Bytes()
}

// EnclosingMethod is the decoded EnclosingMethod attribute. Method is a
// CONSTANT_NameAndType index and may be zero when the class is not enclosed
// by a method.
type EnclosingMethod struct {
	Class  uint16
	Method uint16
}

// DecodeEnclosingMethod parses an EnclosingMethod attribute payload.
func DecodeEnclosingMethod(a *Attr) (EnclosingMethod, error) {
	if len(a.Data) != 4 {
		return EnclosingMethod{}, fmt.Errorf("malformed EnclosingMethod attribute: %d bytes", len(a.Data))
	}

	r := &reader{data: a.Data}

	return EnclosingMethod{Class: r.u2(), Method: r.u2()}, nil
}

// EncodeEnclosingMethod replaces an EnclosingMethod attribute payload.
func EncodeEnclosingMethod(a *Attr, e EnclosingMethod) {
	w := &writer{}
	w.u2(e.Class)
	w.u2(e.Method)
	a.Data = w.buf.Bytes()
}

// DecodeExceptions parses an Exceptions attribute into CONSTANT_Class
// indices of the thrown types.
func DecodeExceptions(a *Attr) ([]uint16, error) {
	r := &reader{data: a.Data}
	count := int(r.u2())
	indices := make([]uint16, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		indices = append(indices, r.u2())
	}

	return indices, r.err
}

// ExceptionHandler is one row of a Code attribute's exception table.
type ExceptionHandler struct {
	Start, End, Handler, Catch uint16
}

// Code is a decoded Code attribute. Bytecode is kept raw; only the nested
// attributes are decoded further on demand.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16
	Bytecode  []byte
	Handlers  []ExceptionHandler
	Attrs     []*Attr
}

// DecodeCode parses a Code attribute payload.
func DecodeCode(a *Attr) (*Code, error) {
	r := &reader{data: a.Data}

	c := &Code{
		MaxStack:  r.u2(),
		MaxLocals: r.u2(),
	}
	c.Bytecode = r.bytes(int(r.u4()))

	handlerCount := int(r.u2())
	for i := 0; i < handlerCount && r.err == nil; i++ {
		c.Handlers = append(c.Handlers, ExceptionHandler{
			Start:   r.u2(),
			End:     r.u2(),
			Handler: r.u2(),
			Catch:   r.u2(),
		})
	}

	c.Attrs = parseAttrs(r)

	return c, r.err
}

// EncodeCode replaces a Code attribute payload.
func EncodeCode(a *Attr, c *Code) {
	w := &writer{}
	w.u2(c.MaxStack)
	w.u2(c.MaxLocals)
	w.u4(uint32(len(c.Bytecode)))
	w.bytes(c.Bytecode)

	w.u2(uint16(len(c.Handlers)))
	for _, h := range c.Handlers {
		w.u2(h.Start)
		w.u2(h.End)
		w.u2(h.Handler)
		w.u2(h.Catch)
	}

	encodeAttrs(w, c.Attrs)

	a.Data = w.buf.Bytes()
}

// LocalVariable is one row of a LocalVariableTable or
// LocalVariableTypeTable attribute. Desc holds the descriptor index for the
// former and the signature index for the latter.
type LocalVariable struct {
	StartPC uint16
	Length  uint16
	Name    uint16
	Desc    uint16
	Slot    uint16
}

// DecodeLocalVariables parses a local variable (type) table payload.
func DecodeLocalVariables(a *Attr) ([]LocalVariable, error) {
	r := &reader{data: a.Data}
	count := int(r.u2())
	vars := make([]LocalVariable, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		vars = append(vars, LocalVariable{
			StartPC: r.u2(),
			Length:  r.u2(),
			Name:    r.u2(),
			Desc:    r.u2(),
			Slot:    r.u2(),
		})
	}

	return vars, r.err
}

// EncodeLocalVariables replaces a local variable (type) table payload.
func EncodeLocalVariables(a *Attr, vars []LocalVariable) {
	w := &writer{}
	w.u2(uint16(len(vars)))

	for _, v := range vars {
		w.u2(v.StartPC)
		w.u2(v.Length)
		w.u2(v.Name)
		w.u2(v.Desc)
		w.u2(v.Slot)
	}

	a.Data = w.buf.Bytes()
}

// LineNumber is one row of a LineNumberTable attribute.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// DecodeLineNumbers parses a LineNumberTable payload.
func DecodeLineNumbers(a *Attr) ([]LineNumber, error) {
	r := &reader{data: a.Data}
	count := int(r.u2())
	lines := make([]LineNumber, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		lines = append(lines, LineNumber{StartPC: r.u2(), Line: r.u2()})
	}

	return lines, r.err
}

// EncodeLineNumbers replaces a LineNumberTable payload.
func EncodeLineNumbers(a *Attr, lines []LineNumber) {
	w := &writer{}
	w.u2(uint16(len(lines)))

	for _, l := range lines {
		w.u2(l.StartPC)
		w.u2(l.Line)
	}

	a.Data = w.buf.Bytes()
}

// MethodParameter is one row of a MethodParameters attribute. Name may be
// zero for an unnamed parameter.
type MethodParameter struct {
	Name   uint16
	Access uint16
}

// DecodeMethodParameters parses a MethodParameters payload.
func DecodeMethodParameters(a *Attr) ([]MethodParameter, error) {
	r := &reader{data: a.Data}
	count := int(r.u1())
	params := make([]MethodParameter, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		params = append(params, MethodParameter{Name: r.u2(), Access: r.u2()})
	}

	return params, r.err
}

// EncodeMethodParameters replaces a MethodParameters payload.
func EncodeMethodParameters(a *Attr, params []MethodParameter) {
	w := &writer{}
	w.u1(byte(len(params)))

	for _, p := range params {
		w.u2(p.Name)
		w.u2(p.Access)
	}

	a.Data = w.buf.Bytes()
}

// U2Payload decodes a single-index attribute payload (SourceFile, Signature).
func U2Payload(a *Attr) (uint16, error) {
	if len(a.Data) != 2 {
		return 0, fmt.Errorf("malformed attribute payload: %d bytes", len(a.Data))
	}

	r := &reader{data: a.Data}

	return r.u2(), nil
}

// SetU2Payload replaces a single-index attribute payload.
func SetU2Payload(a *Attr, v uint16) {
	w := &writer{}
	w.u2(v)
	a.Data = w.buf.Bytes()
}
