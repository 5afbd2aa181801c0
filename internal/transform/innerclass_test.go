package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/mapping/nested"
)

func reconstruct(t *testing.T, structure nested.Map, data []byte) *classfile.Class {
	t.Helper()

	c, err := classfile.Parse(data)
	require.NoError(t, err)

	tr := &InnerClasses{Structure: structure}

	v, err := tr.CreateVisitor(NewContextWithoutMetadata(), "in.class")
	require.NoError(t, err)

	require.NoError(t, runStage(v, c))

	return c
}

func innerEntries(t *testing.T, c *classfile.Class) []classfile.InnerClassEntry {
	t.Helper()

	a := c.Attribute(classfile.AttrInnerClasses)
	require.NotNil(t, a)

	entries, err := classfile.DecodeInnerClasses(a)
	require.NoError(t, err)

	return entries
}

func TestInnerClassesSynthesizesMissingEntry(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		Field(classfile.AccPrivate, "h", "La/Outer$Handle;").
		Bytes()
	require.NoError(t, err)

	c := reconstruct(t, nested.Map{}, data)

	entries := innerEntries(t, c)
	require.Len(t, entries, 1)

	assert.Equal(t, "a/Outer$Handle", c.Pool.ClassName(entries[0].Inner))
	assert.Equal(t, "a/Outer", c.Pool.ClassName(entries[0].Outer))
	assert.Equal(t, "Handle", c.Pool.Utf8(entries[0].Name))
	assert.Equal(t, uint16(classfile.AccPublic), entries[0].Access)
}

func TestInnerClassesUsesStructuralRecord(t *testing.T) {
	structure := nested.Map{
		"a/Outer": {InnerClasses: []nested.Entry{
			{Inner: "a/Outer$Handle", Outer: "a/Outer", Name: "Handle", Access: classfile.AccPrivate},
		}},
	}

	data, err := classfile.NewBuilder("a/C").
		Field(classfile.AccPrivate, "h", "La/Outer$Handle;").
		Bytes()
	require.NoError(t, err)

	c := reconstruct(t, structure, data)

	entries := innerEntries(t, c)
	require.Len(t, entries, 1)

	// The recorded declaration wins over synthesis.
	assert.Equal(t, uint16(classfile.AccPrivate), entries[0].Access)
}

func TestInnerClassesScansPoolLiterals(t *testing.T) {
	b := classfile.NewBuilder("a/C")

	// A cast target appears only as a pool literal, as does an array whose
	// element type is nested.
	b.Class().Pool.AddClass("a/Outer$Cast")
	b.Class().Pool.AddClass("[La/Outer$Elem;")

	data, err := b.Bytes()
	require.NoError(t, err)

	c := reconstruct(t, nested.Map{}, data)

	entries := innerEntries(t, c)
	require.Len(t, entries, 2)
	assert.Equal(t, "a/Outer$Cast", c.Pool.ClassName(entries[0].Inner))
	assert.Equal(t, "a/Outer$Elem", c.Pool.ClassName(entries[1].Inner))
}

func TestInnerClassesKeepsExistingEntries(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		InnerClass("a/Outer$Handle", "a/Outer", "Handle", classfile.AccProtected).
		Field(classfile.AccPrivate, "h", "La/Outer$Handle;").
		Bytes()
	require.NoError(t, err)

	c := reconstruct(t, nested.Map{}, data)

	// The declaration already present is kept, not duplicated or rewritten.
	entries := innerEntries(t, c)
	require.Len(t, entries, 1)
	assert.Equal(t, uint16(classfile.AccProtected), entries[0].Access)
}

func TestInnerClassesEmitsSelfDeclaration(t *testing.T) {
	structure := nested.Map{
		"a/Outer": {InnerClasses: []nested.Entry{
			{Inner: "a/Outer$Handle", Outer: "a/Outer", Name: "Handle", Access: classfile.AccPublic},
		}},
	}

	data, err := classfile.NewBuilder("a/Outer$Handle").Bytes()
	require.NoError(t, err)

	c := reconstruct(t, structure, data)

	entries := innerEntries(t, c)
	require.Len(t, entries, 1)
	assert.Equal(t, "a/Outer$Handle", c.Pool.ClassName(entries[0].Inner))
}

func TestInnerClassesSelfWithoutRecordStaysBare(t *testing.T) {
	data, err := classfile.NewBuilder("a/Outer$Handle").Bytes()
	require.NoError(t, err)

	c := reconstruct(t, nested.Map{}, data)

	// Synthesis covers referenced classes only; the class's own entry
	// requires a structural record.
	assert.Nil(t, c.Attribute(classfile.AttrInnerClasses))
}

func TestInnerClassesRestoresEnclosingMethod(t *testing.T) {
	structure := nested.Map{
		"a/Outer$1": {EnclosingMethod: &nested.Method{Owner: "a/Outer", Name: "run", Desc: "()V"}},
	}

	data, err := classfile.NewBuilder("a/Outer$1").Bytes()
	require.NoError(t, err)

	c := reconstruct(t, structure, data)

	a := c.Attribute(classfile.AttrEnclosingMethod)
	require.NotNil(t, a)

	enc, err := classfile.DecodeEnclosingMethod(a)
	require.NoError(t, err)
	assert.Equal(t, "a/Outer", c.Pool.ClassName(enc.Class))
}

func TestInnerClassesIgnoresTopLevelReferences(t *testing.T) {
	data, err := classfile.NewBuilder("a/C").
		Field(classfile.AccPrivate, "s", "Ljava/lang/String;").
		Bytes()
	require.NoError(t, err)

	c := reconstruct(t, nested.Map{}, data)
	assert.Nil(t, c.Attribute(classfile.AttrInnerClasses))
}
