package classfile

import "fmt"

// Constant pool tags defined by the class file format.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Const is a single constant pool entry. The meaning of Ref1/Ref2 depends on
// the tag: Class/String/MethodType/Module/Package use Ref1 only, member
// references pair a class index with a name-and-type index, NameAndType pairs
// a name index with a descriptor index, and Dynamic/InvokeDynamic pair a
// bootstrap method index with a name-and-type index. Numeric constants keep
// their raw big-endian bytes.
type Const struct {
	Tag  byte
	Utf8 string
	Raw  []byte
	Ref1 uint16
	Ref2 uint16
	Kind byte
}

// Pool holds the constant pool of a class. Entries are never removed or
// renumbered after parsing; edits either repoint an index field of an
// existing entry or append new entries at the end. That keeps every index
// embedded in undecoded attributes and method bytecode valid.
type Pool struct {
	consts []Const

	utf8Lookup  map[string]uint16
	classLookup map[string]uint16
	natLookup   map[string]uint16

	overflow bool
}

// Object is the binary name of java/lang/Object, the terminal element of
// every inheritance walk.
const Object = "java/lang/Object"

// NestedSeparator separates the outer and inner segments of a nested class
// binary name.
const NestedSeparator = '$'

func newPool(size int) *Pool {
	return &Pool{consts: make([]Const, 1, size)}
}

// Count returns the constant_pool_count value (number of slots plus one).
func (p *Pool) Count() int { return len(p.consts) }

// Tag returns the tag of entry i, or zero when the index is out of range or
// points at the unusable second slot of a long/double entry.
func (p *Pool) Tag(i uint16) byte {
	if int(i) >= len(p.consts) {
		return 0
	}

	return p.consts[i].Tag
}

// Utf8 resolves a CONSTANT_Utf8 entry.
func (p *Pool) Utf8(i uint16) string {
	if p.Tag(i) != TagUtf8 {
		return ""
	}

	return p.consts[i].Utf8
}

// ClassName resolves the binary name referenced by a CONSTANT_Class entry.
func (p *Pool) ClassName(i uint16) string {
	if p.Tag(i) != TagClass {
		return ""
	}

	return p.Utf8(p.consts[i].Ref1)
}

// NameAndType resolves a CONSTANT_NameAndType entry into its name and
// descriptor strings.
func (p *Pool) NameAndType(i uint16) (name, desc string) {
	if p.Tag(i) != TagNameAndType {
		return "", ""
	}

	return p.Utf8(p.consts[i].Ref1), p.Utf8(p.consts[i].Ref2)
}

func (p *Pool) at(i uint16) *Const { return &p.consts[i] }

func (p *Pool) append(c Const) uint16 {
	if len(p.consts) >= 0xFFFF {
		p.overflow = true
		return 0
	}

	p.consts = append(p.consts, c)

	return uint16(len(p.consts) - 1)
}

func (p *Pool) buildLookups() {
	if p.utf8Lookup != nil {
		return
	}

	p.utf8Lookup = make(map[string]uint16)
	p.classLookup = make(map[string]uint16)
	p.natLookup = make(map[string]uint16)

	for i := 1; i < len(p.consts); i++ {
		idx := uint16(i)

		switch p.consts[i].Tag {
		case TagUtf8:
			if _, ok := p.utf8Lookup[p.consts[i].Utf8]; !ok {
				p.utf8Lookup[p.consts[i].Utf8] = idx
			}
		case TagClass:
			name := p.ClassName(idx)
			if _, ok := p.classLookup[name]; !ok {
				p.classLookup[name] = idx
			}
		case TagNameAndType:
			name, desc := p.NameAndType(idx)
			if _, ok := p.natLookup[natKey(name, desc)]; !ok {
				p.natLookup[natKey(name, desc)] = idx
			}
		}
	}
}

func natKey(name, desc string) string { return name + "\x00" + desc }

// AddUtf8 returns the index of a CONSTANT_Utf8 entry with the given value,
// appending one when no such entry exists yet.
func (p *Pool) AddUtf8(value string) uint16 {
	p.buildLookups()

	if i, ok := p.utf8Lookup[value]; ok {
		return i
	}

	i := p.append(Const{Tag: TagUtf8, Utf8: value})
	p.utf8Lookup[value] = i

	return i
}

// AddClass returns the index of a CONSTANT_Class entry naming the given
// class, appending one when necessary.
func (p *Pool) AddClass(name string) uint16 {
	p.buildLookups()

	if i, ok := p.classLookup[name]; ok {
		return i
	}

	nameIdx := p.AddUtf8(name)
	i := p.append(Const{Tag: TagClass, Ref1: nameIdx})
	p.classLookup[name] = i

	return i
}

// AddNameAndType returns the index of a CONSTANT_NameAndType entry with the
// given name and descriptor, appending one when necessary.
func (p *Pool) AddNameAndType(name, desc string) uint16 {
	p.buildLookups()

	if i, ok := p.natLookup[natKey(name, desc)]; ok {
		return i
	}

	nameIdx := p.AddUtf8(name)
	descIdx := p.AddUtf8(desc)
	i := p.append(Const{Tag: TagNameAndType, Ref1: nameIdx, Ref2: descIdx})
	p.natLookup[natKey(name, desc)] = i

	return i
}

// AddFieldref returns the index of a CONSTANT_Fieldref entry for the given
// member, appending the entry and its dependencies when necessary.
func (p *Pool) AddFieldref(owner, name, desc string) uint16 {
	return p.addMemberRef(TagFieldref, owner, name, desc)
}

// AddMethodref returns the index of a CONSTANT_Methodref entry for the given
// member, appending the entry and its dependencies when necessary.
func (p *Pool) AddMethodref(owner, name, desc string) uint16 {
	return p.addMemberRef(TagMethodref, owner, name, desc)
}

func (p *Pool) addMemberRef(tag byte, owner, name, desc string) uint16 {
	ownerIdx := p.AddClass(owner)
	natIdx := p.AddNameAndType(name, desc)

	for i := 1; i < len(p.consts); i++ {
		c := p.consts[i]
		if c.Tag == tag && c.Ref1 == ownerIdx && c.Ref2 == natIdx {
			return uint16(i)
		}
	}

	return p.append(Const{Tag: tag, Ref1: ownerIdx, Ref2: natIdx})
}

// repointClassName changes the name a CONSTANT_Class entry refers to without
// renumbering the entry itself.
func (p *Pool) repointClassName(i uint16, name string) {
	p.buildLookups()
	delete(p.classLookup, p.ClassName(i))
	p.consts[i].Ref1 = p.AddUtf8(name)
	p.classLookup[name] = i
}

func (p *Pool) err() error {
	if p.overflow {
		return fmt.Errorf("constant pool overflow: more than 65534 entries")
	}

	return nil
}
