package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u1(v byte)   { w.buf.WriteByte(v) }
func (w *writer) u2(v uint16) { _ = binary.Write(&w.buf, binary.BigEndian, v) }
func (w *writer) u4(v uint32) { _ = binary.Write(&w.buf, binary.BigEndian, v) }

func (w *writer) bytes(b []byte) { w.buf.Write(b) }

// Encode serializes a class back into the class file format.
func Encode(c *Class) ([]byte, error) {
	if err := c.Pool.err(); err != nil {
		return nil, err
	}

	w := &writer{}
	w.u4(magic)
	w.u2(c.Minor)
	w.u2(c.Major)

	if err := encodePool(w, c.Pool); err != nil {
		return nil, err
	}

	w.u2(c.Access)
	w.u2(c.This)
	w.u2(c.Super)

	w.u2(uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		w.u2(i)
	}

	encodeMembers(w, c.Fields)
	encodeMembers(w, c.Methods)
	encodeAttrs(w, c.Attrs)

	return w.buf.Bytes(), nil
}

func encodePool(w *writer, p *Pool) error {
	w.u2(uint16(len(p.consts)))

	for i := 1; i < len(p.consts); i++ {
		e := p.consts[i]

		switch e.Tag {
		case TagUtf8:
			if len(e.Utf8) > 0xFFFF {
				return fmt.Errorf("utf8 constant too long: %d bytes", len(e.Utf8))
			}

			w.u1(e.Tag)
			w.u2(uint16(len(e.Utf8)))
			w.bytes([]byte(e.Utf8))
		case TagInteger, TagFloat, TagLong, TagDouble:
			w.u1(e.Tag)
			w.bytes(e.Raw)

			if e.Tag == TagLong || e.Tag == TagDouble {
				i++ // skip the placeholder slot
			}
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w.u1(e.Tag)
			w.u2(e.Ref1)
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			w.u1(e.Tag)
			w.u2(e.Ref1)
			w.u2(e.Ref2)
		case TagMethodHandle:
			w.u1(e.Tag)
			w.u1(e.Kind)
			w.u2(e.Ref1)
		default:
			return fmt.Errorf("cannot encode constant pool entry %d with tag %d", i, e.Tag)
		}
	}

	return nil
}

func encodeMembers(w *writer, members []*Member) {
	w.u2(uint16(len(members)))

	for _, m := range members {
		w.u2(m.Access)
		w.u2(m.Name)
		w.u2(m.Desc)
		encodeAttrs(w, m.Attrs)
	}
}

func encodeAttrs(w *writer, attrs []*Attr) {
	w.u2(uint16(len(attrs)))

	for _, a := range attrs {
		w.u2(a.Name)
		w.u4(uint32(len(a.Data)))
		w.bytes(a.Data)
	}
}
