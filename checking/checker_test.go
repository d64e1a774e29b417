package checking

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomck/bitvector"
	"gomck/machine"
	"gomck/property"
	"gomck/space"
)

// Value of x that stands for a state where x is unknown.
const unknownX = -1

func testState(id int, x int) machine.State {
	value := bitvector.NewCombinedFull(4)
	if x != unknownX {
		value = bitvector.NewCombinedConcrete(bitvector.NewConcrete(uint64(x), 4))
	}
	return machine.NewState(machine.NewRecord(
		machine.BitvectorField("id", machine.Unsigned, bitvector.NewCombinedConcrete(bitvector.NewConcrete(uint64(id), 8))),
		machine.BitvectorField("x", machine.Unsigned, value),
	))
}

var noInput = machine.NewRecord()

// A graph over numbered states. Every state has a value of x and successors.
type graph struct {
	values     []int
	successors [][]int
}

func randomGraph(random *rand.Rand, size int, withUnknown bool) graph {
	g := graph{}
	for i := 0; i < size; i++ {
		x := random.Intn(16)
		if withUnknown && random.Intn(5) == 0 {
			x = unknownX
		}
		g.values = append(g.values, x)
		g.successors = append(g.successors, randomSuccessors(random, size))
	}
	return g
}

func randomSuccessors(random *rand.Rand, size int) []int {
	count := 1 + random.Intn(3)
	successors := []int{}
	for i := 0; i < count; i++ {
		successors = append(successors, random.Intn(size))
	}
	return successors
}

// Builds the part of the graph reachable from the initial states.
func (g graph) build(initial ...int) (*space.Space, map[int]space.StateId) {
	sp := space.New()
	ids := map[int]space.StateId{}
	var queue []int
	for _, i := range initial {
		id, _ := sp.AddInitialState(testState(i, g.values[i]), noInput)
		ids[i] = id
		queue = append(queue, i)
	}
	expanded := map[int]bool{}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if expanded[i] {
			continue
		}
		expanded[i] = true
		for _, j := range g.successors[i] {
			id, _ := sp.AddStep(ids[i].Node(), testState(j, g.values[j]), noInput)
			ids[j] = id
			queue = append(queue, j)
		}
	}
	return sp, ids
}

// Direct set semantics of the temporal operators on a graph with known values.
type stateSet []bool

func (g graph) atom(pred func(x int) bool) stateSet {
	result := make(stateSet, len(g.values))
	for i, x := range g.values {
		result[i] = pred(x)
	}
	return result
}

func (g graph) pre(universal bool, z stateSet) stateSet {
	result := make(stateSet, len(g.values))
	for i, successors := range g.successors {
		result[i] = universal
		for _, j := range successors {
			if universal {
				result[i] = result[i] && z[j]
			} else {
				result[i] = result[i] || z[j]
			}
		}
	}
	return result
}

func iterate(start bool, size int, f func(stateSet) stateSet) stateSet {
	z := make(stateSet, size)
	for i := range z {
		z[i] = start
	}
	for {
		next := f(z)
		if cmp.Equal(next, z) {
			return z
		}
		z = next
	}
}

func combine(a, b stateSet, and bool) stateSet {
	result := make(stateSet, len(a))
	for i := range a {
		if and {
			result[i] = a[i] && b[i]
		} else {
			result[i] = a[i] || b[i]
		}
	}
	return result
}

func (g graph) until(universal bool, hold, until stateSet) stateSet {
	return iterate(false, len(g.values), func(z stateSet) stateSet {
		return combine(until, combine(hold, g.pre(universal, z), true), false)
	})
}

func (g graph) release(universal bool, releaser, releasee stateSet) stateSet {
	return iterate(true, len(g.values), func(z stateSet) stateSet {
		return combine(releasee, combine(releaser, g.pre(universal, z), false), true)
	})
}

func (g graph) all(value bool) stateSet {
	return g.atom(func(int) bool { return value })
}

var semanticsTest = []struct {
	property string
	direct   func(g graph) stateSet
}{
	{"EX![x > 2]", func(g graph) stateSet { return g.pre(false, g.atom(func(x int) bool { return x > 2 })) }},
	{"AX![x > 2]", func(g graph) stateSet { return g.pre(true, g.atom(func(x int) bool { return x > 2 })) }},
	{"EF![x == 3]", func(g graph) stateSet { return g.until(false, g.all(true), g.atom(func(x int) bool { return x == 3 })) }},
	{"AF![x == 3]", func(g graph) stateSet { return g.until(true, g.all(true), g.atom(func(x int) bool { return x == 3 })) }},
	{"EG![x != 3]", func(g graph) stateSet { return g.release(false, g.all(false), g.atom(func(x int) bool { return x != 3 })) }},
	{"AG![x <= 12]", func(g graph) stateSet { return g.release(true, g.all(false), g.atom(func(x int) bool { return x <= 12 })) }},
	{"EU![x < 8, x == 9]", func(g graph) stateSet {
		return g.until(false, g.atom(func(x int) bool { return x < 8 }), g.atom(func(x int) bool { return x == 9 }))
	}},
	{"AU![x < 8, x == 9]", func(g graph) stateSet {
		return g.until(true, g.atom(func(x int) bool { return x < 8 }), g.atom(func(x int) bool { return x == 9 }))
	}},
	{"ER![x == 1, x < 10]", func(g graph) stateSet {
		return g.release(false, g.atom(func(x int) bool { return x == 1 }), g.atom(func(x int) bool { return x < 10 }))
	}},
	{"AR![x == 1, x < 10]", func(g graph) stateSet {
		return g.release(true, g.atom(func(x int) bool { return x == 1 }), g.atom(func(x int) bool { return x < 10 }))
	}},
	{"AG![EF![x == 0]]", func(g graph) stateSet {
		ef := g.until(false, g.all(true), g.atom(func(x int) bool { return x == 0 }))
		return g.release(true, g.all(false), ef)
	}},
	{"!(EF![x >= 14])", func(g graph) stateSet {
		ef := g.until(false, g.all(true), g.atom(func(x int) bool { return x >= 14 }))
		return combine(ef, ef, true).complement()
	}},
	{"lfp![Z, x == 5 || EX![Z]]", func(g graph) stateSet { return g.until(false, g.all(true), g.atom(func(x int) bool { return x == 5 })) }},
}

func (s stateSet) complement() stateSet {
	result := make(stateSet, len(s))
	for i := range s {
		result[i] = !s[i]
	}
	return result
}

func TestCanonicalMatchesDirectSemantics(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		g := randomGraph(random, 2+random.Intn(6), false)
		for _, test := range semanticsTest {
			expected := test.direct(g)
			prop := property.MustParse(test.property)
			for i := range g.values {
				sp, _ := g.build(i)
				conclusion, err := New().CheckProperty(sp, prop)
				require.NoError(t, err)
				assert.Equal(t, Known{Value: expected[i]}, conclusion, "%v in state %v of %+v", test.property, i, g)
			}
		}
	}
}

func TestCanonicalMatchesExistentialNormalForm(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	for round := 0; round < 20; round++ {
		g := randomGraph(random, 2+random.Intn(6), false)
		sp, _ := g.build(0)
		for _, test := range semanticsTest {
			prop := property.MustParse(test.property)
			direct, err := New().CheckProperty(sp, prop)
			require.NoError(t, err)
			existential, err := New().CheckProperty(sp, property.ENF(prop))
			require.NoError(t, err)
			assert.Equal(t, direct, existential, "%v and %v should agree", prop, property.ENF(prop))
		}
	}
}

func TestUnknownCulprit(t *testing.T) {
	// root -> 1 (x = 0) -> 2 (x unknown) -> 2
	sp := space.New()
	one, _ := sp.AddInitialState(testState(1, 0), noInput)
	two, _ := sp.AddStep(one.Node(), testState(2, unknownX), noInput)
	sp.AddStep(two.Node(), testState(2, unknownX), noInput)

	conclusion, err := New().CheckProperty(sp, property.MustParse("AG![x <= 12]"))
	require.NoError(t, err)
	unknown, ok := conclusion.(Unknown)
	require.True(t, ok, "Got: %v", conclusion)
	assert.Equal(t, []space.StateId{one, two}, unknown.Culprit.Path)
	assert.Equal(t, "x <= 12", unknown.Culprit.Atomic.String())
	assert.Equal(t, two, unknown.Culprit.State())

	holds, description := conclusion.Response()
	assert.False(t, holds)
	assert.Contains(t, description, "x <= 12")

	conclusion, err = New().CheckProperty(sp, property.MustParse("EF![x == 0]"))
	require.NoError(t, err)
	assert.Equal(t, Known{Value: true}, conclusion)
}

func TestNotCheckable(t *testing.T) {
	sp := space.New()
	conclusion, err := New().CheckProperty(sp, property.Inherent())
	require.NoError(t, err)
	assert.Equal(t, NotCheckable{}, conclusion)

	sp.AddInitialState(testState(0, 0), noInput)
	conclusion, err = New().CheckProperty(sp, property.Inherent())
	require.NoError(t, err)
	assert.Equal(t, NotCheckable{}, conclusion)
}

func TestAtomicErrorsBeforeLabelling(t *testing.T) {
	sp, _ := graph{values: []int{0}, successors: [][]int{{0}}}.build(0)
	var errorTest = []struct {
		property string
		target   interface{}
	}{
		{"AG![y == 0]", new(*machine.FieldNotFoundError)},
		{"EF![x[2] == 0]", new(*machine.IndexInvalidError)},
	}
	for _, test := range errorTest {
		c := New()
		_, err := c.CheckProperty(sp, property.MustParse(test.property))
		require.Error(t, err, test.property)
		assert.True(t, errors.As(err, test.target), "%v: unexpected error %v", test.property, err)
	}
}

func TestInherentHolds(t *testing.T) {
	sp, _ := graph{values: []int{0, 1}, successors: [][]int{{1}, {0}}}.build(0)
	conclusion, err := New().CheckProperty(sp, property.Inherent())
	require.NoError(t, err)
	assert.Equal(t, Known{Value: true}, conclusion)
}

func TestRefinementResolvesUnknown(t *testing.T) {
	c := New()
	prop := property.MustParse("AG![x != 1]")

	// an abstract initial state is replaced by the concrete states it covers
	sp := space.New()
	abstract, _ := sp.AddInitialState(testState(0, unknownX), noInput)
	sp.AddStep(abstract.Node(), testState(0, unknownX), noInput)
	conclusion, err := c.CheckProperty(sp, prop)
	require.NoError(t, err)
	require.IsType(t, Unknown{}, conclusion)

	sp.ClearStep(space.Root)
	var added []space.StateId
	for x := 0; x < 3; x++ {
		id, _ := sp.AddInitialState(testState(x+1, x), noInput)
		sp.AddStep(id.Node(), testState(x+1, x), noInput)
		added = append(added, id)
	}
	c.RemoveStates(sp.MarkAndSweep())
	c.DeclareRegeneration(sp, added, append([]space.NodeId{space.Root}, abstract.Node()))
	conclusion, err = c.CheckProperty(sp, prop)
	require.NoError(t, err)
	assert.Equal(t, Known{Value: false}, conclusion)
	assert.Equal(t, []string{property.Key(prop)}, c.Properties())
}

// Mutates the successors of random states, possibly through new states, and
// declares the changes to the checker.
func mutate(random *rand.Rand, g *graph, sp *space.Space, ids map[int]space.StateId, c *Checker) {
	var added []space.StateId
	var changed []space.NodeId
	addSuccessors := func(i int) {
		node := ids[i].Node()
		sp.ClearStep(node)
		changed = append(changed, node)
		for _, j := range g.successors[i] {
			id, inserted := sp.AddStep(node, testState(j, g.values[j]), noInput)
			ids[j] = id
			if inserted {
				added = append(added, id)
			}
		}
	}

	var reachable []int
	for i := range g.values {
		if id, ok := ids[i]; ok && sp.Contains(id) {
			reachable = append(reachable, i)
		}
	}
	i := reachable[random.Intn(len(reachable))]
	if random.Intn(2) == 0 {
		fresh := len(g.values)
		g.values = append(g.values, random.Intn(16))
		g.successors = append(g.successors, randomSuccessors(random, fresh+1))
		g.successors[i] = append(g.successors[i], fresh)
	} else {
		g.successors[i] = randomSuccessors(random, len(g.values))
	}
	addSuccessors(i)
	// states reached for the first time get their successors
	for k := 0; k < len(added); k++ {
		for j, id := range ids {
			if id == added[k] {
				for _, succ := range g.successors[j] {
					id, inserted := sp.AddStep(ids[j].Node(), testState(succ, g.values[succ]), noInput)
					ids[succ] = id
					if inserted {
						added = append(added, id)
					}
				}
			}
		}
	}
	c.DeclareRegeneration(sp, added, changed)
	removed := sp.MarkAndSweep()
	c.RemoveStates(removed)
	for _, id := range removed {
		for j, other := range ids {
			if other == id {
				delete(ids, j)
			}
		}
	}
}

func TestIncrementalEqualsScratch(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		random := rand.New(rand.NewSource(seed))
		g := randomGraph(random, 3+random.Intn(4), true)
		sp, ids := g.build(0)
		c := New()
		for step := 0; step < 6; step++ {
			for _, test := range semanticsTest {
				prop := property.MustParse(test.property)
				incremental, err := c.CheckProperty(sp, prop)
				require.NoError(t, err)
				scratch, err := New().CheckProperty(sp, prop)
				require.NoError(t, err)
				name := fmt.Sprintf("seed %v step %v property %v", seed, step, prop)
				if known, ok := scratch.(Known); ok {
					assert.Equal(t, known, incremental, name)
				} else {
					require.IsType(t, scratch, incremental, name)
					checkCulprit(t, sp, incremental.(Unknown).Culprit, name)
				}
			}
			mutate(random, &g, sp, ids, c)
		}
	}
}

// A culprit path starts in an initial state, follows edges and ends in a state
// where its atomic property is unknown.
func checkCulprit(t *testing.T, sp *space.Space, culprit Culprit, name string) {
	t.Helper()
	require.NotEmpty(t, culprit.Path, name)
	assert.Contains(t, sp.InitialStates(), culprit.Path[0], name)
	for i := 1; i < len(culprit.Path); i++ {
		assert.Contains(t, sp.DirectSuccessors(culprit.Path[i-1].Node()), culprit.Path[i], name)
	}
	value, err := culprit.Atomic.Evaluate(sp.State(culprit.State()))
	require.NoError(t, err)
	assert.False(t, value.IsKnown(), name)
}
