package array

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

type run[E comparable] struct {
	start uint64
	value E
}

// A total map from the indices [0, last] to elements, stored as runs of equal elements.
//
// Runs are sorted by their start, the first run starts at zero and neighbouring
// runs hold different elements. Operations return a new Light and never modify
// the receiver.
type Light[E comparable] struct {
	runs []run[E]
	last uint64
}

func NewLight[E comparable](last uint64, fill E) Light[E] {
	return Light[E]{runs: []run[E]{{start: 0, value: fill}}, last: last}
}

func (l Light[E]) Last() uint64 {
	return l.last
}

// Position of the run containing the index.
func (l Light[E]) find(index uint64) int {
	after := sort.Search(len(l.runs), func(i int) bool {
		return l.runs[i].start > index
	})
	return after - 1
}

// The last index of the run at the position.
func (l Light[E]) end(pos int) uint64 {
	if pos+1 < len(l.runs) {
		return l.runs[pos+1].start - 1
	}
	return l.last
}

func (l Light[E]) checkIndex(index uint64) {
	if index > l.last {
		panic(fmt.Sprintf("array: index %v out of range [0, %v]", index, l.last))
	}
}

func (l Light[E]) Get(index uint64) E {
	l.checkIndex(index)
	return l.runs[l.find(index)].value
}

func (l Light[E]) Write(index uint64, value E) Light[E] {
	return l.Map(index, index, func(E) E { return value })
}

// Applies f to every element with an index in [from, to].
func (l Light[E]) Map(from, to uint64, f func(E) E) Light[E] {
	l.checkIndex(to)
	if from > to {
		panic(fmt.Sprintf("array: empty index range [%v, %v]", from, to))
	}
	runs := slices.Clone(l.runs)
	runs = withBoundary(runs, from)
	if to < l.last {
		runs = withBoundary(runs, to+1)
	}
	for i := range runs {
		if runs[i].start >= from && runs[i].start <= to {
			runs[i].value = f(runs[i].value)
		}
	}
	return Light[E]{runs: normalize(runs), last: l.last}
}

// Ensures a run starts at the index.
func withBoundary[E comparable](runs []run[E], at uint64) []run[E] {
	l := Light[E]{runs: runs}
	pos := l.find(at)
	if runs[pos].start == at {
		return runs
	}
	return slices.Insert(runs, pos+1, run[E]{start: at, value: runs[pos].value})
}

// Merges neighbouring runs with equal elements.
func normalize[E comparable](runs []run[E]) []run[E] {
	out := runs[:1]
	for _, r := range runs[1:] {
		if r.value != out[len(out)-1].value {
			out = append(out, r)
		}
	}
	return out
}

// Calls f with every run overlapping [from, to], clipped to it.
func (l Light[E]) Runs(from, to uint64, f func(first, last uint64, value E)) {
	l.checkIndex(to)
	for pos := l.find(from); pos < len(l.runs) && l.runs[pos].start <= to; pos++ {
		f(max(l.runs[pos].start, from), min(l.end(pos), to), l.runs[pos].value)
	}
}

// Combines f over the elements with an index in [from, to].
func (l Light[E]) Reduce(from, to uint64, f func(a, b E) E) E {
	var result E
	first := true
	l.Runs(from, to, func(_, _ uint64, value E) {
		if first {
			result = value
			first = false
			return
		}
		result = f(result, value)
	})
	return result
}

// Returns true if pred holds for some element with an index in [from, to].
func (l Light[E]) Any(from, to uint64, pred func(E) bool) bool {
	found := false
	l.Runs(from, to, func(_, _ uint64, value E) {
		found = found || pred(value)
	})
	return found
}

func (l Light[E]) Equal(o Light[E]) bool {
	return l.last == o.last && slices.Equal(l.runs, o.runs)
}

// Combines two arrays of the same size element by element.
func Zip[A, B, C comparable](a Light[A], b Light[B], f func(A, B) C) Light[C] {
	if a.last != b.last {
		panic(fmt.Sprintf("array: zipping arrays with last indices %v and %v", a.last, b.last))
	}
	runs := make([]run[C], 0, len(a.runs)+len(b.runs))
	i, j := 0, 0
	for i < len(a.runs) && j < len(b.runs) {
		start := max(a.runs[i].start, b.runs[j].start)
		runs = append(runs, run[C]{start: start, value: f(a.runs[i].value, b.runs[j].value)})
		// advance whichever run ends first, or both
		aEnd, bEnd := a.end(i), b.end(j)
		if aEnd <= bEnd {
			i++
		}
		if bEnd <= aEnd {
			j++
		}
	}
	return Light[C]{runs: normalize(runs), last: a.last}
}

// Returns true if pred holds for every pair of elements at the same index.
func All[A, B comparable](a Light[A], b Light[B], pred func(A, B) bool) bool {
	return Zip(a, b, pred).Reduce(0, a.last, func(x, y bool) bool { return x && y })
}

func (l Light[E]) String() string {
	out := strings.Builder{}
	for pos, r := range l.runs {
		if pos > 0 {
			out.WriteString(", ")
		}
		if end := l.end(pos); end != r.start {
			fmt.Fprintf(&out, "[%v..%v]: %v", r.start, end, r.value)
		} else {
			fmt.Fprintf(&out, "[%v]: %v", r.start, r.value)
		}
	}
	return out.String()
}

func mapLight[A, B comparable](a Light[A], f func(A) B) Light[B] {
	runs := make([]run[B], len(a.runs))
	for i, r := range a.runs {
		runs[i] = run[B]{start: r.start, value: f(r.value)}
	}
	return Light[B]{runs: normalize(runs), last: a.last}
}
