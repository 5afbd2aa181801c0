package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableMapper struct {
	classes map[string]string
	fields  map[string]string
	methods map[string]string
}

func (m tableMapper) MapClass(name string) string {
	if mapped, ok := m.classes[name]; ok {
		return mapped
	}

	return name
}

func (m tableMapper) MapField(_, name, _ string) string {
	if mapped, ok := m.fields[name]; ok {
		return mapped
	}

	return name
}

func (m tableMapper) MapMethod(_, name, _ string) string {
	if mapped, ok := m.methods[name]; ok {
		return mapped
	}

	return name
}

func TestRemapperRenamesClassAndMembers(t *testing.T) {
	data, err := NewBuilder("a/b/C").
		Field(AccPrivate, "secret", "La/b/C;").
		Method(AccPublic, "frob", "(La/b/C;)La/b/C;").
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{
		classes: map[string]string{"a/b/C": "x/y/Z"},
		fields:  map[string]string{"secret": "value"},
		methods: map[string]string{"frob": "apply"},
	}}
	require.NoError(t, r.Apply(c))

	assert.Equal(t, "x/y/Z", c.Name())
	assert.Equal(t, "value", c.MemberName(c.Fields[0]))
	assert.Equal(t, "Lx/y/Z;", c.MemberDesc(c.Fields[0]))
	assert.Equal(t, "apply", c.MemberName(c.Methods[0]))
	assert.Equal(t, "(Lx/y/Z;)Lx/y/Z;", c.MemberDesc(c.Methods[0]))

	// The rewritten class must still encode and re-parse.
	out, err := Encode(c)
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "x/y/Z", again.Name())
}

func TestRemapperNeverRenamesInitializers(t *testing.T) {
	data, err := NewBuilder("a/b/C").
		Method(AccPublic, ConstructorName, "()V").
		Method(AccStatic, StaticInitializerName, "()V").
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{
		methods: map[string]string{
			ConstructorName:       "renamedCtor",
			StaticInitializerName: "renamedClinit",
		},
	}}
	require.NoError(t, r.Apply(c))

	assert.Equal(t, ConstructorName, c.MemberName(c.Methods[0]))
	assert.Equal(t, StaticInitializerName, c.MemberName(c.Methods[1]))
}

func TestRemapperRecomputesInnerSimpleName(t *testing.T) {
	data, err := NewBuilder("a/b/C$Inner").
		InnerClass("a/b/C$Inner", "a/b/C", "Inner", AccPublic).
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{classes: map[string]string{
		"a/b/C$Inner": "x/y/Z$Fresh",
		"a/b/C":       "x/y/Z",
	}}}
	require.NoError(t, r.Apply(c))

	entries, err := DecodeInnerClasses(c.Attribute(AttrInnerClasses))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "x/y/Z$Fresh", c.Pool.ClassName(entries[0].Inner))
	assert.Equal(t, "x/y/Z", c.Pool.ClassName(entries[0].Outer))
	assert.Equal(t, "Fresh", c.Pool.Utf8(entries[0].Name))
}

func TestRemapperRewritesSignatures(t *testing.T) {
	data, err := NewBuilder("a/b/C").
		Field(AccPrivate, "items", "Ljava/util/List;").
		Signature("Ljava/util/List<La/b/C;>;").
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{classes: map[string]string{"a/b/C": "x/y/Z"}}}
	require.NoError(t, r.Apply(c))

	sigAttr := c.Fields[0].Attribute(c.Pool, AttrSignature)
	require.NotNil(t, sigAttr)

	idx, err := U2Payload(sigAttr)
	require.NoError(t, err)
	assert.Equal(t, "Ljava/util/List<Lx/y/Z;>;", c.Pool.Utf8(idx))
}

func recordingParam(queried *[]int) ParamFunc {
	return func(_, _, _, _ string, index int) (string, bool) {
		*queried = append(*queried, index)
		return "", false
	}
}

func TestParameterSlotMappingStatic(t *testing.T) {
	var queried []int

	data, err := NewBuilder("a/b/C").
		Method(AccPublic|AccStatic, "m", "(II)V").
		LocalVariable("a", "I", 0).
		LocalVariable("b", "I", 1).
		LocalVariable("tmp", "I", 2).
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{}, Param: recordingParam(&queried)}
	require.NoError(t, r.Apply(c))

	// Static methods map slot N to parameter N; slot 2 is a plain local
	// beyond the two declared parameters and must not be queried.
	assert.Equal(t, []int{0, 1}, queried)
}

func TestParameterSlotMappingInstance(t *testing.T) {
	var queried []int

	data, err := NewBuilder("a/b/C").
		Method(AccPublic, "m", "(II)V").
		LocalVariable("this", "La/b/C;", 0).
		LocalVariable("a", "I", 1).
		LocalVariable("b", "I", 2).
		LocalVariable("tmp", "I", 3).
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{Mapper: tableMapper{}, Param: recordingParam(&queried)}
	require.NoError(t, r.Apply(c))

	// Instance methods skip the receiver slot and offset the rest by one.
	assert.Equal(t, []int{0, 1}, queried)
}

func TestParameterRenameRewritesLocalVariable(t *testing.T) {
	data, err := NewBuilder("a/b/C").
		Method(AccPublic|AccStatic, "m", "(I)V").
		LocalVariable("p0", "I", 0).
		Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{
		Mapper: tableMapper{},
		Param: func(owner, method, desc, name string, index int) (string, bool) {
			if owner == "a/b/C" && method == "m" && desc == "(I)V" && name == "p0" && index == 0 {
				return "count", true
			}

			return "", false
		},
	}
	require.NoError(t, r.Apply(c))

	codeAttr := c.Methods[0].Attribute(c.Pool, AttrCode)
	require.NotNil(t, codeAttr)

	code, err := DecodeCode(codeAttr)
	require.NoError(t, err)

	table := findAttr(c.Pool, code.Attrs, AttrLocalVariableTable)
	require.NotNil(t, table)

	vars, err := DecodeLocalVariables(table)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "count", c.Pool.Utf8(vars[0].Name))
}

func TestRemapperRewritesMethodParameters(t *testing.T) {
	b := NewBuilder("a/b/C").Method(AccPublic|AccStatic, "m", "(I)V")

	mp := &Attr{Name: b.Class().Pool.AddUtf8(AttrMethodParameters)}
	EncodeMethodParameters(mp, []MethodParameter{{Name: b.Class().Pool.AddUtf8("p0")}})
	b.Class().Methods[0].Attrs = append(b.Class().Methods[0].Attrs, mp)

	data, err := b.Bytes()
	require.NoError(t, err)

	c, err := Parse(data)
	require.NoError(t, err)

	r := &Remapper{
		Mapper:             tableMapper{},
		OverrideParameters: true,
		Param: func(_, _, _, _ string, index int) (string, bool) {
			if index == 0 {
				return "count", true
			}

			return "", false
		},
	}
	require.NoError(t, r.Apply(c))

	params, err := DecodeMethodParameters(c.Methods[0].Attribute(c.Pool, AttrMethodParameters))
	require.NoError(t, err)
	require.Len(t, params, 1)
	assert.Equal(t, "count", c.Pool.Utf8(params[0].Name))
}
