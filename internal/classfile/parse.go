package classfile

import (
	"encoding/binary"
	"fmt"
)

const magic = 0xCAFEBABE

type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *reader) u1() byte {
	if r.err != nil {
		return 0
	}

	if r.off+1 > len(r.data) {
		r.fail("truncated class file at offset %d", r.off)
		return 0
	}

	v := r.data[r.off]
	r.off++

	return v
}

func (r *reader) u2() uint16 {
	if r.err != nil {
		return 0
	}

	if r.off+2 > len(r.data) {
		r.fail("truncated class file at offset %d", r.off)
		return 0
	}

	v := binary.BigEndian.Uint16(r.data[r.off:])
	r.off += 2

	return v
}

func (r *reader) u4() uint32 {
	if r.err != nil {
		return 0
	}

	if r.off+4 > len(r.data) {
		r.fail("truncated class file at offset %d", r.off)
		return 0
	}

	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4

	return v
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || r.off+n > len(r.data) {
		r.fail("truncated class file at offset %d", r.off)
		return nil
	}

	v := r.data[r.off : r.off+n]
	r.off += n

	return v
}

func (r *reader) skip(n int) { r.bytes(n) }

// Parse decodes a complete class file.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}

	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}

		return nil, fmt.Errorf("not a class file: bad magic")
	}

	c := &Class{}
	c.Minor = r.u2()
	c.Major = r.u2()

	c.Pool = parsePool(r)
	if r.err != nil {
		return nil, r.err
	}

	c.Access = r.u2()
	c.This = r.u2()
	c.Super = r.u2()

	ifaceCount := int(r.u2())
	for i := 0; i < ifaceCount && r.err == nil; i++ {
		c.Interfaces = append(c.Interfaces, r.u2())
	}

	c.Fields = parseMembers(r)
	c.Methods = parseMembers(r)
	c.Attrs = parseAttrs(r)

	if r.err != nil {
		return nil, r.err
	}

	if r.off != len(data) {
		return nil, fmt.Errorf("trailing garbage: %d bytes after class structure", len(data)-r.off)
	}

	return c, nil
}

func parsePool(r *reader) *Pool {
	count := int(r.u2())
	p := newPool(count)

	for i := 1; i < count && r.err == nil; i++ {
		tag := r.u1()

		switch tag {
		case TagUtf8:
			length := int(r.u2())
			p.append(Const{Tag: tag, Utf8: string(r.bytes(length))})
		case TagInteger, TagFloat:
			p.append(Const{Tag: tag, Raw: r.bytes(4)})
		case TagLong, TagDouble:
			p.append(Const{Tag: tag, Raw: r.bytes(8)})
			// Longs and doubles occupy two pool slots; the second is unusable.
			p.append(Const{})
			i++
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			p.append(Const{Tag: tag, Ref1: r.u2()})
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
			TagDynamic, TagInvokeDynamic:
			p.append(Const{Tag: tag, Ref1: r.u2(), Ref2: r.u2()})
		case TagMethodHandle:
			p.append(Const{Tag: tag, Kind: r.u1(), Ref1: r.u2()})
		default:
			r.fail("unknown constant pool tag %d at entry %d", tag, i)
		}
	}

	return p
}

func parseMembers(r *reader) []*Member {
	count := int(r.u2())
	members := make([]*Member, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		m := &Member{
			Access: r.u2(),
			Name:   r.u2(),
			Desc:   r.u2(),
			Attrs:  parseAttrs(r),
		}
		members = append(members, m)
	}

	return members
}

func parseAttrs(r *reader) []*Attr {
	count := int(r.u2())
	attrs := make([]*Attr, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		name := r.u2()
		length := int(r.u4())
		attrs = append(attrs, &Attr{Name: name, Data: r.bytes(length)})
	}

	return attrs
}

// Info is the structural header of a class file: everything the metadata
// pass needs and nothing more. Method headers are included for access-level
// queries; attribute payloads and method bodies are skipped outright.
type Info struct {
	Access     uint16
	Name       string
	Super      string
	Interfaces []string
	Methods    []MemberInfo
}

// MemberInfo is a method header as recorded by the metadata pass.
type MemberInfo struct {
	Access uint16
	Name   string
	Desc   string
}

// ParseInfo decodes only the structural header of a class file.
func ParseInfo(data []byte) (*Info, error) {
	r := &reader{data: data}

	if r.u4() != magic {
		if r.err != nil {
			return nil, r.err
		}

		return nil, fmt.Errorf("not a class file: bad magic")
	}

	r.skip(4) // version

	p := parsePool(r)
	if r.err != nil {
		return nil, r.err
	}

	info := &Info{}
	info.Access = r.u2()
	info.Name = p.ClassName(r.u2())

	superIdx := r.u2()
	if superIdx != 0 {
		info.Super = p.ClassName(superIdx)
	} else {
		info.Super = Object
	}

	ifaceCount := int(r.u2())
	for i := 0; i < ifaceCount && r.err == nil; i++ {
		info.Interfaces = append(info.Interfaces, p.ClassName(r.u2()))
	}

	skipMemberHeaders(r, nil, p) // fields

	skipMemberHeaders(r, &info.Methods, p)

	return info, r.err
}

// skipMemberHeaders walks a field or method table reading only the fixed
// header of each entry. When collect is non-nil the headers are recorded.
func skipMemberHeaders(r *reader, collect *[]MemberInfo, p *Pool) {
	count := int(r.u2())

	for i := 0; i < count && r.err == nil; i++ {
		access := r.u2()
		name := r.u2()
		desc := r.u2()

		if collect != nil {
			*collect = append(*collect, MemberInfo{
				Access: access,
				Name:   p.Utf8(name),
				Desc:   p.Utf8(desc),
			})
		}

		attrCount := int(r.u2())
		for j := 0; j < attrCount && r.err == nil; j++ {
			r.skip(2)
			r.skip(int(r.u4()))
		}
	}
}
