package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclass.dev/pkg/reclass/internal/classfile"
)

func applyVisitor(t *testing.T, tr Transformer, data []byte) *classfile.Class {
	t.Helper()

	c, err := classfile.Parse(data)
	require.NoError(t, err)

	v, err := tr.CreateVisitor(NewContextWithoutMetadata(), "in.class")
	require.NoError(t, err)
	require.NotNil(t, v)

	require.NoError(t, runStage(v, c))

	return c
}

func TestNewSourceOverrideValidation(t *testing.T) {
	_, err := NewSourceOverride("", -1)
	require.Error(t, err)

	_, err = NewSourceOverride("Hidden.java", -1)
	require.NoError(t, err)

	_, err = NewSourceOverride("", 0)
	require.NoError(t, err)
}

func TestSourceOverrideReplacesSourceFile(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").SourceFile("C.java").Bytes()
	require.NoError(t, err)

	o, err := NewSourceOverride("Hidden.java", -1)
	require.NoError(t, err)

	c := applyVisitor(t, o, data)

	a := c.Attribute(classfile.AttrSourceFile)
	require.NotNil(t, a)

	idx, err := classfile.U2Payload(a)
	require.NoError(t, err)
	assert.Equal(t, "Hidden.java", c.Pool.Utf8(idx))
}

func TestSourceOverrideNeverAddsSourceFile(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").Bytes()
	require.NoError(t, err)

	o, err := NewSourceOverride("Hidden.java", -1)
	require.NoError(t, err)

	c := applyVisitor(t, o, data)
	assert.Nil(t, c.Attribute(classfile.AttrSourceFile))
}

func TestSourceOverrideCollapsesLineNumbers(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		Method(classfile.AccPublic, "m", "()V").
		LineNumbers(10, 11, 42).
		Bytes()
	require.NoError(t, err)

	o, err := NewSourceOverride("", 1)
	require.NoError(t, err)

	c := applyVisitor(t, o, data)

	table := codeTable(t, c, classfile.AttrLineNumberTable)
	require.NotNil(t, table)

	lines, err := classfile.DecodeLineNumbers(table)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	for _, l := range lines {
		assert.Equal(t, uint16(1), l.Line)
	}
}

func TestLocalVariableNumberingDeclinesWithoutPlaceholder(t *testing.T) {
	o := &LocalVariableNumbering{}

	v, err := o.CreateVisitor(NewContextWithoutMetadata(), "in.class")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLocalVariableNumberingRenamesPlaceholders(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		Method(classfile.AccPublic|classfile.AccStatic, "m", "(III)V").
		LocalVariable("☃", "I", 0).
		LocalVariable("count", "I", 1).
		LocalVariable("☃2", "I", 2).
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, &LocalVariableNumbering{Placeholder: "☃"}, data)

	table := codeTable(t, c, classfile.AttrLocalVariableTable)
	require.NotNil(t, table)

	vars, err := classfile.DecodeLocalVariables(table)
	require.NoError(t, err)
	require.Len(t, vars, 3)

	// Placeholder names become positional; real names stay.
	assert.Equal(t, "var0", c.Pool.Utf8(vars[0].Name))
	assert.Equal(t, "count", c.Pool.Utf8(vars[1].Name))
	assert.Equal(t, "var2", c.Pool.Utf8(vars[2].Name))
}

func TestLocalVariableOverrideDeclinesWithoutName(t *testing.T) {
	o := &LocalVariableOverride{}

	v, err := o.CreateVisitor(NewContextWithoutMetadata(), "in.class")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLocalVariableOverrideRenamesEveryVariable(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		Method(classfile.AccPublic|classfile.AccStatic, "m", "(I)V").
		LocalVariable("count", "I", 0).
		LocalVariable("total", "I", 1).
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, &LocalVariableOverride{Name: "var"}, data)

	table := codeTable(t, c, classfile.AttrLocalVariableTable)
	require.NotNil(t, table)

	vars, err := classfile.DecodeLocalVariables(table)
	require.NoError(t, err)
	require.Len(t, vars, 2)

	for _, lv := range vars {
		assert.Equal(t, "var", c.Pool.Utf8(lv.Name))
	}
}
