package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclass.dev/pkg/reclass/internal/classfile"
)

func TestInnerConstructorSynthesis(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Inner").
		Super("a/Base").
		Field(classfile.AccSynthetic, "this$0", "La/Outer;").
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, InnerConstructor{}, data)

	require.Len(t, c.Methods, 1)
	ctor := c.Methods[0]

	assert.Equal(t, classfile.ConstructorName, c.MemberName(ctor))
	assert.Equal(t, "(La/Outer;)V", c.MemberDesc(ctor))
	assert.Equal(t, uint16(classfile.AccPrivate|classfile.AccSynthetic), ctor.Access)

	codeAttr := ctor.Attribute(c.Pool, classfile.AttrCode)
	require.NotNil(t, codeAttr)

	code, err := classfile.DecodeCode(codeAttr)
	require.NoError(t, err)

	assert.Equal(t, uint16(2), code.MaxStack)
	assert.Equal(t, uint16(2), code.MaxLocals)

	// aload_0 aload_1 putfield aload_0 invokespecial return
	require.Len(t, code.Bytecode, 10)
	assert.Equal(t, byte(0x2a), code.Bytecode[0])
	assert.Equal(t, byte(0x2b), code.Bytecode[1])
	assert.Equal(t, byte(0xb5), code.Bytecode[2])
	assert.Equal(t, byte(0x2a), code.Bytecode[5])
	assert.Equal(t, byte(0xb7), code.Bytecode[6])
	assert.Equal(t, byte(0xb1), code.Bytecode[9])

	// The synthesized class must survive a round trip.
	out, err := classfile.Encode(c)
	require.NoError(t, err)

	_, err = classfile.Parse(out)
	require.NoError(t, err)
}

func TestInnerConstructorSkipsExistingConstructor(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Inner").
		Field(classfile.AccSynthetic, "this$0", "La/Outer;").
		Method(classfile.AccPublic, classfile.ConstructorName, "(La/Outer;)V").
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, InnerConstructor{}, data)
	assert.Len(t, c.Methods, 1)
}

func TestInnerConstructorSkipsStaticNested(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Nested").
		Field(classfile.AccSynthetic|classfile.AccStatic, "ref", "La/Outer;").
		Bytes()
	require.NoError(t, err)

	// A static synthetic field is not an outer capture.
	c := applyVisitor(t, InnerConstructor{}, data)
	assert.Empty(t, c.Methods)
}

func TestInnerConstructorSkipsInterface(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Iface").
		Access(classfile.AccPublic|classfile.AccInterface).
		Field(classfile.AccSynthetic, "this$0", "La/Outer;").
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, InnerConstructor{}, data)
	assert.Empty(t, c.Methods)
}

func TestInnerConstructorSkipsWithoutCaptureField(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Inner").
		Field(classfile.AccPrivate, "value", "I").
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, InnerConstructor{}, data)
	assert.Empty(t, c.Methods)
}
