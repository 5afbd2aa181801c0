package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/mapping"
)

func TestAccessApply(t *testing.T) {
	table := mapping.NewAccessTable()
	table.Classes["a/C"] = mapping.Public
	table.Fields[mapping.Member{Owner: "a/C", Name: "f"}] = mapping.Protected
	table.Methods[mapping.Member{Owner: "a/C", Name: "m", Desc: "()V"}] = mapping.Public | mapping.Final

	data, err := classfile.NewBuilder("a/C").
		Access(0).
		Field(classfile.AccPrivate|classfile.AccStatic, "f", "I").
		Method(classfile.AccPrivate, "m", "()V").
		Method(classfile.AccPrivate, "other", "()V").
		Bytes()
	require.NoError(t, err)

	c := applyVisitor(t, &AccessApply{Mapping: table}, data)

	assert.Equal(t, uint16(classfile.AccPublic), c.Access)

	// Bits outside visibility and final are preserved.
	assert.Equal(t, uint16(classfile.AccProtected|classfile.AccStatic), c.Fields[0].Access)
	assert.Equal(t, uint16(classfile.AccPublic|classfile.AccFinal), c.Methods[0].Access)

	// Members without a mapped entry stay untouched.
	assert.Equal(t, uint16(classfile.AccPrivate), c.Methods[1].Access)
}

func TestFlagConversionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  uint16
	}{
		{"public", classfile.AccPublic},
		{"package private static", classfile.AccStatic},
		{"protected final", classfile.AccProtected | classfile.AccFinal},
		{"private synthetic", classfile.AccPrivate | classfile.AccSynthetic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.raw, rawFromFlags(flagsFromRaw(tt.raw), tt.raw))
		})
	}
}
