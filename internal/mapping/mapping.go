// Package mapping defines the name and access lookup contracts that drive
// renaming, together with literal table-backed implementations and ordered
// delegation chains.
package mapping

// NameMapping resolves replacement names for classes, members and method
// parameters. A false second return means "keep the original name"; it is
// never an error.
type NameMapping interface {
	// ClassName maps a binary class name.
	ClassName(name string) (string, bool)

	// FieldName maps a field of the given owner. desc is the field
	// descriptor and may be ignored by formats that do not record it.
	FieldName(owner, name, desc string) (string, bool)

	// MethodName maps a method of the given owner keyed by name and
	// method descriptor.
	MethodName(owner, name, desc string) (string, bool)

	// ParameterName maps a method parameter. original is the declared
	// local variable name, empty when the class carries none. index is
	// zero-based over the declared parameters.
	ParameterName(owner, method, desc, original string, index int) (string, bool)
}

// None is a NameMapping that maps nothing. Embed it to implement only a
// subset of the contract.
type None struct{}

func (None) ClassName(string) (string, bool)                       { return "", false }
func (None) FieldName(string, string, string) (string, bool)       { return "", false }
func (None) MethodName(string, string, string) (string, bool)      { return "", false }
func (None) ParameterName(string, string, string, string, int) (string, bool) {
	return "", false
}

// Member keys a field or method lookup. An empty Desc matches any
// descriptor; an empty Owner matches any owner.
type Member struct {
	Owner string
	Name  string
	Desc  string
}

// Param keys a parameter lookup by position.
type Param struct {
	Owner  string
	Method string
	Desc   string
	Index  int
}

// Table is a literal NameMapping backed by lookup maps. Member lookups fall
// back from the exact key to descriptor-free and owner-free keys, so formats
// of different precision can share the representation. Nil maps are valid
// and empty.
type Table struct {
	Classes      map[string]string
	Fields       map[Member]string
	Methods      map[Member]string
	Params       map[Param]string
	ParamsByName map[string]string
}

// NewTable returns an empty table with all maps allocated.
func NewTable() *Table {
	return &Table{
		Classes:      map[string]string{},
		Fields:       map[Member]string{},
		Methods:      map[Member]string{},
		Params:       map[Param]string{},
		ParamsByName: map[string]string{},
	}
}

func (t *Table) ClassName(name string) (string, bool) {
	mapped, ok := t.Classes[name]
	return mapped, ok
}

func (t *Table) FieldName(owner, name, desc string) (string, bool) {
	return lookupMember(t.Fields, owner, name, desc)
}

func (t *Table) MethodName(owner, name, desc string) (string, bool) {
	return lookupMember(t.Methods, owner, name, desc)
}

func (t *Table) ParameterName(owner, method, desc, original string, index int) (string, bool) {
	for _, key := range []Param{
		{Owner: owner, Method: method, Desc: desc, Index: index},
		{Owner: owner, Method: method, Index: index},
		{Index: index},
	} {
		if mapped, ok := t.Params[key]; ok {
			return mapped, true
		}
	}

	if original != "" {
		if mapped, ok := t.ParamsByName[original]; ok {
			return mapped, true
		}
	}

	return "", false
}

func lookupMember(m map[Member]string, owner, name, desc string) (string, bool) {
	for _, key := range []Member{
		{Owner: owner, Name: name, Desc: desc},
		{Owner: owner, Name: name},
		{Name: name},
	} {
		if mapped, ok := m[key]; ok {
			return mapped, true
		}
	}

	return "", false
}

// Chain composes name mappings into an ordered delegation chain: each
// stage receives the previous stage's output, and a change is reported only
// when the final result differs from the original input. Two stages that
// cancel each other out therefore report no change.
type Chain []NameMapping

func (c Chain) ClassName(name string) (string, bool) {
	out := name
	for _, m := range c {
		if mapped, ok := m.ClassName(out); ok {
			out = mapped
		}
	}

	return out, out != name
}

func (c Chain) FieldName(owner, name, desc string) (string, bool) {
	out := name
	for _, m := range c {
		if mapped, ok := m.FieldName(owner, out, desc); ok {
			out = mapped
		}
	}

	return out, out != name
}

func (c Chain) MethodName(owner, name, desc string) (string, bool) {
	out := name
	for _, m := range c {
		if mapped, ok := m.MethodName(owner, out, desc); ok {
			out = mapped
		}
	}

	return out, out != name
}

func (c Chain) ParameterName(owner, method, desc, original string, index int) (string, bool) {
	out := original
	for _, m := range c {
		if mapped, ok := m.ParameterName(owner, method, desc, out, index); ok {
			out = mapped
		}
	}

	return out, out != original
}
