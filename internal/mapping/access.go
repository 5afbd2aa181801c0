package mapping

import (
	"fmt"
	"strings"
)

// AccessFlag is a format-independent access flag set. Exactly one visibility
// level bit is meaningful at a time; Add replaces the level when the added
// set carries one.
type AccessFlag uint8

const (
	Public AccessFlag = 1 << iota
	PackagePrivate
	Protected
	Private
	Final
)

const levelMask = Public | PackagePrivate | Protected | Private

// Level returns the visibility level bits only.
func (f AccessFlag) Level() AccessFlag { return f & levelMask }

// Add merges another flag set into f. When o carries a visibility level,
// that level replaces f's; modifier bits accumulate.
func (f AccessFlag) Add(o AccessFlag) AccessFlag {
	if o&levelMask != 0 {
		f &^= levelMask
	}

	return f | o
}

// ParseAccessFlag parses a space-separated symbolic flag set such as
// "protected final" or "package-private".
func ParseAccessFlag(s string) (AccessFlag, error) {
	var flags AccessFlag

	for _, word := range strings.Fields(s) {
		switch strings.ToLower(word) {
		case "public":
			flags = flags.Add(Public)
		case "package-private", "default":
			flags = flags.Add(PackagePrivate)
		case "protected":
			flags = flags.Add(Protected)
		case "private":
			flags = flags.Add(Private)
		case "final":
			flags |= Final
		default:
			return 0, fmt.Errorf("unknown access flag %q", word)
		}
	}

	if flags == 0 {
		return 0, fmt.Errorf("empty access flag set %q", s)
	}

	return flags, nil
}

// AccessMapping resolves replacement access flags for classes and members.
// current carries the flags produced by the previous stage so chained stages
// can refine rather than overwrite each other. A false second return means
// "keep the current flags".
type AccessMapping interface {
	ClassAccess(name string, current AccessFlag) (AccessFlag, bool)
	FieldAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool)
	MethodAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool)
}

// NoAccess is an AccessMapping that changes nothing.
type NoAccess struct{}

func (NoAccess) ClassAccess(string, AccessFlag) (AccessFlag, bool) { return 0, false }
func (NoAccess) FieldAccess(string, string, string, AccessFlag) (AccessFlag, bool) {
	return 0, false
}
func (NoAccess) MethodAccess(string, string, string, AccessFlag) (AccessFlag, bool) {
	return 0, false
}

// AccessTable is a literal AccessMapping with the same key fallback rules as
// Table. The stored flags are merged into the current ones via Add.
type AccessTable struct {
	Classes map[string]AccessFlag
	Fields  map[Member]AccessFlag
	Methods map[Member]AccessFlag
}

// NewAccessTable returns an empty access table with all maps allocated.
func NewAccessTable() *AccessTable {
	return &AccessTable{
		Classes: map[string]AccessFlag{},
		Fields:  map[Member]AccessFlag{},
		Methods: map[Member]AccessFlag{},
	}
}

func (t *AccessTable) ClassAccess(name string, current AccessFlag) (AccessFlag, bool) {
	flags, ok := t.Classes[name]
	if !ok {
		return 0, false
	}

	return current.Add(flags), true
}

func (t *AccessTable) FieldAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool) {
	return lookupAccess(t.Fields, owner, name, desc, current)
}

func (t *AccessTable) MethodAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool) {
	return lookupAccess(t.Methods, owner, name, desc, current)
}

func lookupAccess(m map[Member]AccessFlag, owner, name, desc string, current AccessFlag) (AccessFlag, bool) {
	for _, key := range []Member{
		{Owner: owner, Name: name, Desc: desc},
		{Owner: owner, Name: name},
		{Name: name},
	} {
		if flags, ok := m[key]; ok {
			return current.Add(flags), true
		}
	}

	return 0, false
}

// AccessChain composes access mappings; each stage sees the flags produced
// by the previous one, and a change is reported only when the final flags
// differ from the original input.
type AccessChain []AccessMapping

func (c AccessChain) ClassAccess(name string, current AccessFlag) (AccessFlag, bool) {
	out := current
	for _, m := range c {
		if mapped, ok := m.ClassAccess(name, out); ok {
			out = mapped
		}
	}

	return out, out != current
}

func (c AccessChain) FieldAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool) {
	out := current
	for _, m := range c {
		if mapped, ok := m.FieldAccess(owner, name, desc, out); ok {
			out = mapped
		}
	}

	return out, out != current
}

func (c AccessChain) MethodAccess(owner, name, desc string, current AccessFlag) (AccessFlag, bool) {
	out := current
	for _, m := range c {
		if mapped, ok := m.MethodAccess(owner, name, desc, out); ok {
			out = mapped
		}
	}

	return out, out != current
}
