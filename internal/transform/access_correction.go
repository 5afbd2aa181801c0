package transform

import (
	"reclass.dev/pkg/reclass/internal/classfile"
	"reclass.dev/pkg/reclass/internal/metadata"
	"reclass.dev/pkg/reclass/internal/model"
)

// AccessCorrection widens method visibility to the least restrictive level
// declared for the same name and descriptor anywhere along the class's
// inheritance walk. Obfuscators routinely tighten override visibility in
// ways the verifier rejects after renaming; this pass restores a legal
// hierarchy.
type AccessCorrection struct{}

func (AccessCorrection) UsesMetadata() bool { return true }

func (AccessCorrection) CreateVisitor(ctx *Context, _ model.Path) (ClassVisitor, error) {
	index, err := ctx.Metadata()
	if err != nil {
		return nil, err
	}

	return &accessCorrector{index: index}, nil
}

type accessCorrector struct {
	NopVisitor
	index *metadata.Index
}

func (v *accessCorrector) VisitMethod(c *classfile.Class, m *classfile.Member) error {
	name := c.MemberName(m)
	if name == classfile.ConstructorName || name == classfile.StaticInitializerName {
		return nil
	}

	desc := c.MemberDesc(m)

	best := accessRank(m.Access)
	found := 0

	for _, ancestor := range v.index.Walk(c.Name()) {
		access, ok := v.index.Class(ancestor).MethodAccess(name, desc)
		if !ok {
			continue
		}

		found++

		if r := accessRank(access); r < best {
			best = r
		}
	}

	// A method declared nowhere else along the walk has nothing to be
	// reconciled against.
	if found <= 1 {
		return nil
	}

	m.Access = m.Access&^classfile.AccLevelMask | rankAccess(best)

	return nil
}

// accessRank orders visibility from loosest to strictest. Package-private
// sits between public and protected: a package-private method is reachable
// from the whole package while a protected one needs a subtype relation.
func accessRank(access uint16) int {
	switch {
	case access&classfile.AccPublic != 0:
		return 0
	case access&classfile.AccProtected != 0:
		return 2
	case access&classfile.AccPrivate != 0:
		return 3
	default:
		return 1
	}
}

func rankAccess(rank int) uint16 {
	switch rank {
	case 0:
		return classfile.AccPublic
	case 2:
		return classfile.AccProtected
	case 3:
		return classfile.AccPrivate
	default:
		return 0
	}
}
