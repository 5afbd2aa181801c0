package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLookups(t *testing.T) {
	table := NewTable()
	table.Classes["a/C"] = "x/Z"
	table.Fields[Member{Owner: "a/C", Name: "f"}] = "field"
	table.Methods[Member{Owner: "a/C", Name: "m", Desc: "()V"}] = "method"
	table.ParamsByName["p0"] = "count"
	table.Params[Param{Owner: "a/C", Method: "m", Desc: "(I)V", Index: 0}] = "first"

	name, ok := table.ClassName("a/C")
	require.True(t, ok)
	assert.Equal(t, "x/Z", name)

	_, ok = table.ClassName("a/D")
	assert.False(t, ok)

	// Field keys without a descriptor match any descriptor.
	name, ok = table.FieldName("a/C", "f", "I")
	require.True(t, ok)
	assert.Equal(t, "field", name)

	name, ok = table.MethodName("a/C", "m", "()V")
	require.True(t, ok)
	assert.Equal(t, "method", name)

	_, ok = table.MethodName("a/C", "m", "(I)V")
	assert.False(t, ok)

	name, ok = table.ParameterName("a/C", "m", "(I)V", "", 0)
	require.True(t, ok)
	assert.Equal(t, "first", name)

	name, ok = table.ParameterName("b/D", "other", "()V", "p0", 3)
	require.True(t, ok)
	assert.Equal(t, "count", name)
}

func rename(from, to string) *Table {
	table := NewTable()
	table.Classes[from] = to

	return table
}

func TestChainFeedsStagesForward(t *testing.T) {
	chain := Chain{rename("a/C", "b/D"), rename("b/D", "c/E")}

	name, changed := chain.ClassName("a/C")
	assert.True(t, changed)
	assert.Equal(t, "c/E", name)
}

func TestChainNetChangeAgainstOriginalInput(t *testing.T) {
	// Stage two reverts stage one; the chain as a whole reports no
	// change even though each stage changed the name internally.
	chain := Chain{rename("a/C", "b/D"), rename("b/D", "a/C")}

	name, changed := chain.ClassName("a/C")
	assert.False(t, changed)
	assert.Equal(t, "a/C", name)
}

func TestAccessFlagAdd(t *testing.T) {
	flags := Private | Final

	// A new level replaces the old one and keeps modifiers.
	assert.Equal(t, Public|Final, flags.Add(Public))

	// Adding only a modifier keeps the level.
	assert.Equal(t, Private|Final, (Private).Add(Final))

	// Adding nothing changes nothing.
	assert.Equal(t, Protected|Final, (Protected | Final).Add(0))
}

func TestParseAccessFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    AccessFlag
		wantErr bool
	}{
		{"public", Public, false},
		{"protected final", Protected | Final, false},
		{"package-private", PackagePrivate, false},
		{"default", PackagePrivate, false},
		{"PRIVATE", Private, false},
		{"", 0, true},
		{"sideways", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccessFlag(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type addFinal struct{ NoAccess }

func (addFinal) MethodAccess(_, _, _ string, current AccessFlag) (AccessFlag, bool) {
	return current | Final, true
}

type dropFinal struct{ NoAccess }

func (dropFinal) MethodAccess(_, _, _ string, current AccessFlag) (AccessFlag, bool) {
	return current &^ Final, true
}

func TestAccessChainNetChange(t *testing.T) {
	chain := AccessChain{addFinal{}, dropFinal{}}

	flags, changed := chain.MethodAccess("a/C", "m", "()V", Public)
	assert.False(t, changed)
	assert.Equal(t, Public, flags)

	chain = AccessChain{addFinal{}}

	flags, changed = chain.MethodAccess("a/C", "m", "()V", Public)
	assert.True(t, changed)
	assert.Equal(t, Public|Final, flags)
}
