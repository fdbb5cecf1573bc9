package nasc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Direct circular: A -> B -> A
type CycleA struct{ B *CycleB }
type CycleB struct{ A *CycleA }

func NewCycleA(b *CycleB) *CycleA { return &CycleA{B: b} }
func NewCycleB(a *CycleA) *CycleB { return &CycleB{A: a} }

// Indirect circular: X -> Y -> Z -> X
type CycleX struct{}
type CycleY struct{}
type CycleZ struct{}

func NewCycleX(*CycleY) *CycleX { return &CycleX{} }
func NewCycleY(*CycleZ) *CycleY { return &CycleY{} }
func NewCycleZ(*CycleX) *CycleZ { return &CycleZ{} }

// Qualified self reference: the default Chain depends on the "tail" Chain,
// which depends on itself.
type Chain struct {
	Name string
	Next *Chain
}

func TestCycle_Direct(t *testing.T) {
	n := New()
	require.NoError(t, Declare[*CycleA](n, WithConstructor(NewCycleA)))
	require.NoError(t, Declare[*CycleB](n, WithConstructor(NewCycleB)))

	_, err := Get[*CycleA](n)
	var cde *CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, TypeOf[*CycleA](), cde.Type)
	assert.Equal(t, []string{"*nasc.CycleA", "*nasc.CycleB", "*nasc.CycleA"}, cde.Path)

	var dre *DependencyResolutionError
	require.True(t, errors.As(err, &dre))
	assert.Equal(t, TypeOf[*CycleA](), dre.Type, "the outermost failure names the requested type")

	// both reservations are released
	assert.Empty(t, n.Qualifiers(TypeOf[*CycleA]()))
	assert.Empty(t, n.Qualifiers(TypeOf[*CycleB]()))
}

func TestCycle_Indirect(t *testing.T) {
	n := New()
	require.NoError(t, Declare[*CycleX](n, WithConstructor(NewCycleX)))
	require.NoError(t, Declare[*CycleY](n, WithConstructor(NewCycleY)))
	require.NoError(t, Declare[*CycleZ](n, WithConstructor(NewCycleZ)))

	_, err := Get[*CycleY](n)
	var cde *CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, []string{"*nasc.CycleY", "*nasc.CycleZ", "*nasc.CycleX", "*nasc.CycleY"}, cde.Path)
	assert.Contains(t, cde.Error(), "*nasc.CycleY -> *nasc.CycleZ")
}

func TestCycle_Qualified(t *testing.T) {
	n := New()
	require.NoError(t, Declare[*Chain](n, WithConstructor(func(name string, next *Chain) *Chain {
		return &Chain{Name: name, Next: next}
	}, Qualify(1, "tail"))))

	_, err := Get[*Chain](n)
	var cde *CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, "tail", cde.Qualifier)
	assert.Equal(t, []string{"*nasc.Chain with qualifier 'tail'", "*nasc.Chain with qualifier 'tail'"}, cde.Path)
}

func TestCycle_BrokenByAdd(t *testing.T) {
	n := New()
	require.NoError(t, Declare[*Chain](n, WithConstructor(func(name string, next *Chain) *Chain {
		return &Chain{Name: name, Next: next}
	}, Qualify(1, "tail"))))

	tail := &Chain{Name: "tail"}
	require.NoError(t, Add(n, tail, "tail"))

	// the default lookup returns the first one, which is "tail"
	head, err := Get[*Chain](n)
	require.NoError(t, err)
	assert.Same(t, tail, head)

	head, err = Get[*Chain](n, "head")
	require.NoError(t, err)
	assert.Equal(t, "head", head.Name)
	assert.Same(t, tail, head.Next)
}

func TestCycle_DefaultLookupHitsHeadInProgress(t *testing.T) {
	n := New()
	require.NoError(t, Declare[*Chain](n, WithConstructor(func(name string, next *Chain) *Chain {
		return &Chain{Name: name, Next: next}
	})))

	// the request without qualifier is matched by the "q1" node being built
	_, err := Get[*Chain](n, "q1")
	var cde *CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, "q1", cde.Qualifier)
}

func TestCycle_ExactLookup(t *testing.T) {
	n := New(WithExactLookup())
	require.NoError(t, Declare[*Chain](n, WithConstructor(func(name string, next *Chain) *Chain {
		return &Chain{Name: name, Next: next}
	})))

	_, err := Get[*Chain](n, "q1")
	var cde *CyclicDependencyError
	require.True(t, errors.As(err, &cde))
	assert.Equal(t, "", cde.Qualifier)
	assert.Equal(t, []string{"*nasc.Chain", "*nasc.Chain"}, cde.Path)
}

func TestGet_Concurrent(t *testing.T) {
	n := New()
	var calls int32
	require.NoError(t, Declare[Logger](n, WithConstructor(NewConsoleLogger)))
	require.NoError(t, Declare[*UserService](n, WithConstructor(func(l Logger) *UserService {
		atomic.AddInt32(&calls, 1)
		return &UserService{Logger: l}
	})))

	const workers = 32
	res := make([]*UserService, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res[i] = MustGet[*UserService](n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, svc := range res {
		assert.Same(t, res[0], svc)
	}
}
