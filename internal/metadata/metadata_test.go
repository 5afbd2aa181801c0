package metadata

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"

	"reclass.dev/pkg/reclass/internal/adapter"
	"reclass.dev/pkg/reclass/internal/classfile"
)

func descriptor(name, super string, interfaces ...string) *ClassDescriptor {
	return NewClassDescriptor(&classfile.Info{
		Access:     classfile.AccPublic,
		Name:       name,
		Super:      super,
		Interfaces: interfaces,
	})
}

func TestWalkOrder(t *testing.T) {
	index := NewIndex()
	index.Put(descriptor("a/C", "a/S", "a/I1", "a/I2"))
	index.Put(descriptor("a/I1", classfile.Object, "a/IA"))
	index.Put(descriptor("a/S", classfile.Object, "a/SI"))

	// Self first, then the interface closure in declaration order, then
	// each super with its own closure, ending at Object.
	assert.Equal(t,
		[]string{"a/C", "a/I1", "a/IA", "a/I2", "a/S", "a/SI", "java/lang/Object"},
		index.Walk("a/C"),
	)
}

func TestWalkDiamondKeepsDuplicates(t *testing.T) {
	index := NewIndex()
	index.Put(descriptor("a/C", classfile.Object, "a/I1", "a/I2"))
	index.Put(descriptor("a/I1", classfile.Object, "a/Base"))
	index.Put(descriptor("a/I2", classfile.Object, "a/Base"))

	walk := index.Walk("a/C")
	assert.Equal(t,
		[]string{"a/C", "a/I1", "a/Base", "a/I2", "a/Base", "java/lang/Object"},
		walk,
	)
}

func TestWalkObjectTerminates(t *testing.T) {
	index := NewIndex()

	assert.Equal(t, []string{classfile.Object}, index.Walk(classfile.Object))
}

func TestWalkUnindexedClass(t *testing.T) {
	index := NewIndex()

	// Unknown names resolve to a default descriptor extending Object.
	assert.Equal(t, []string{"lib/Unknown", classfile.Object}, index.Walk("lib/Unknown"))
}

func TestMethodAccess(t *testing.T) {
	d := NewClassDescriptor(&classfile.Info{
		Name:  "a/C",
		Super: classfile.Object,
		Methods: []classfile.MemberInfo{
			{Access: classfile.AccPublic, Name: "m", Desc: "()V"},
			{Access: classfile.AccPrivate, Name: "m", Desc: "(I)V"},
		},
	})

	access, ok := d.MethodAccess("m", "()V")
	require.True(t, ok)
	assert.Equal(t, uint16(classfile.AccPublic), access)

	access, ok = d.MethodAccess("m", "(I)V")
	require.True(t, ok)
	assert.Equal(t, uint16(classfile.AccPrivate), access)

	_, ok = d.MethodAccess("missing", "()V")
	assert.False(t, ok)
}

func uploadClass(ctx context.Context, t *testing.T, root, rel string, data []byte) {
	t.Helper()
	require.NoError(t, afs.New().Upload(ctx, root+"/"+rel, file.DefaultFileOsMode, bytes.NewReader(data)))
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/metadata-build"

	child, err := classfile.NewBuilder("a/Child").Super("a/Parent").Bytes()
	require.NoError(t, err)

	parent, err := classfile.NewBuilder("a/Parent").
		Method(classfile.AccPublic, "m", "()V").
		Bytes()
	require.NoError(t, err)

	uploadClass(ctx, t, root, "a/Child.class", child)
	uploadClass(ctx, t, root, "a/Parent.class", parent)
	uploadClass(ctx, t, root, "notes.txt", []byte("not a class"))

	index, err := Build(ctx, adapter.NewTree(root))
	require.NoError(t, err)

	// Resources are ignored; only the two classes are indexed.
	assert.Equal(t, 2, index.Len())
	assert.Equal(t, "a/Parent", index.Class("a/Child").Super)

	access, ok := index.Class("a/Parent").MethodAccess("m", "()V")
	require.True(t, ok)
	assert.Equal(t, uint16(classfile.AccPublic), access)
}

func TestBuildCorruptClassIsFatal(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/metadata-corrupt"

	uploadClass(ctx, t, root, "a/Bad.class", []byte{0xde, 0xad, 0xbe, 0xef})

	_, err := Build(ctx, adapter.NewTree(root))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a/Bad.class")
}
