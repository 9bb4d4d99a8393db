package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/jankgo/internal/types"
)

func TestUnifyBindsMetavarToConcreteType(t *testing.T) {
	subst := types.Subst{}
	ok := unify(types.Metavar(0), types.Int(), subst)
	assert.True(t, ok)
	assert.Equal(t, types.Int(), subst.Apply(types.Metavar(0)))
}

func TestUnifyFailsOnMismatchedConcreteTags(t *testing.T) {
	subst := types.Subst{}
	assert.False(t, unify(types.Int(), types.String(), subst))
}

func TestUnifyRecursesIntoFunctionArgsAndResult(t *testing.T) {
	subst := types.Subst{}
	fnA := types.Function([]types.Type{types.Metavar(0)}, types.Metavar(1))
	fnB := types.Function([]types.Type{types.Int()}, types.Bool())
	assert.True(t, unify(fnA, fnB, subst))
	assert.Equal(t, types.Int(), subst.Apply(types.Metavar(0)))
	assert.Equal(t, types.Bool(), subst.Apply(types.Metavar(1)))
}

func TestUnifyFunctionArityMismatchFails(t *testing.T) {
	subst := types.Subst{}
	fnA := types.Function([]types.Type{types.Int()}, types.Bool())
	fnB := types.Function([]types.Type{types.Int(), types.Int()}, types.Bool())
	assert.False(t, unify(fnA, fnB, subst))
}

func TestUnifyRecursesIntoRefInner(t *testing.T) {
	subst := types.Subst{}
	assert.True(t, unify(types.Ref(types.Metavar(0)), types.Ref(types.Float()), subst))
	assert.Equal(t, types.Float(), subst.Apply(types.Metavar(0)))
}

func TestUnifyFollowsExistingChainBeforeBinding(t *testing.T) {
	subst := types.Subst{0: types.Metavar(1)}
	ok := unify(types.Metavar(0), types.Int(), subst)
	assert.True(t, ok)
	assert.Equal(t, types.Int(), subst.Apply(types.Metavar(1)))
}
