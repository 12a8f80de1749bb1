// Package match assigns each regulation to at most one blockface: the
// side-compatible candidate with the smallest centerline distance inside
// the buffer radius. Matching is regulation-centric by construction, which
// is what guarantees the one-regulation-to-one-blockface invariant; a
// symmetric buffer-intersect join is exactly the regression this package
// exists to prevent.
package match

import (
	"runtime"
	"sync"

	"github.com/tidwall/rtree"

	"github.com/fikei/curbmatch/internal/geo"
	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/sides"
	"github.com/fikei/curbmatch/internal/source"
)

// Unmatched is the assignment slot value for a regulation with no
// surviving candidate.
const Unmatched = -1

// Matcher joins regulations onto blockfaces.
type Matcher struct {
	BufferDegrees float64
	Resolver      *sides.Resolver
	// Workers caps the parallel matching goroutines. Zero means NumCPU.
	// Each regulation writes only its own assignment slot, so the result
	// is identical for any worker count.
	Workers int
}

// Result carries the assignment and side-resolution bookkeeping.
type Result struct {
	// Assignment[i] is the blockface index for regulation i, or Unmatched.
	Assignment []int
	// Matched and UnmatchedCount summarize the assignment.
	Matched        int
	UnmatchedCount int
	// LowConfidenceSides counts candidate evaluations whose geometric side
	// resolution fell below the confidence threshold.
	LowConfidenceSides int
}

// Match runs the join. Blockface sides must already be resolved on the
// features. The blockface list is read-shared across workers; the
// assignment slice is the only written state and is sliced per regulation.
func (m *Matcher) Match(regs []*source.Regulation, faces []*source.Blockface) Result {
	index := buildIndex(faces)

	assignment := make([]int, len(regs))
	lowConfidence := make([]int, len(regs))

	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	ch := make(chan int, 256)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				assignment[i], lowConfidence[i] = m.matchOne(regs[i], faces, index)
			}
		}()
	}
	for i := range regs {
		ch <- i
	}
	close(ch)
	wg.Wait()

	res := Result{Assignment: assignment}
	for i := range assignment {
		if assignment[i] == Unmatched {
			res.UnmatchedCount++
		} else {
			res.Matched++
		}
		res.LowConfidenceSides += lowConfidence[i]
	}
	return res
}

// matchOne finds the closest side-compatible blockface within the buffer
// for a single regulation. Ties on distance break toward the lower
// blockface index so output never depends on index traversal order.
func (m *Matcher) matchOne(reg *source.Regulation, faces []*source.Blockface, index *rtree.RTree) (int, int) {
	bound := geo.PadBound(reg.Geometry.Bound(), m.BufferDegrees)

	best := Unmatched
	bestDist := 0.0
	lowConfidence := 0

	index.Search(
		[2]float64{bound.Min.Lon(), bound.Min.Lat()},
		[2]float64{bound.Max.Lon(), bound.Max.Lat()},
		func(_, _ [2]float64, value interface{}) bool {
			idx := value.(int)
			bf := faces[idx]

			dist := geo.LineDistance(reg.Geometry, bf.Line)
			if dist > m.BufferDegrees {
				return true
			}

			if bf.Side != models.SideUnknown {
				res := m.Resolver.RegulationSide(bf, reg.Geometry)
				if res.Method == sides.MethodGeometric && res.Side == models.SideUnknown {
					lowConfidence++
				}
				if !sides.Compatible(bf.Side, res.Side) {
					return true
				}
			}

			if best == Unmatched || dist < bestDist || (dist == bestDist && idx < best) {
				best = idx
				bestDist = dist
			}
			return true
		},
	)
	return best, lowConfidence
}

func buildIndex(faces []*source.Blockface) *rtree.RTree {
	index := new(rtree.RTree)
	for i, bf := range faces {
		b := bf.Line.Bound()
		index.Insert(
			[2]float64{b.Min.Lon(), b.Min.Lat()},
			[2]float64{b.Max.Lon(), b.Max.Lat()},
			i,
		)
	}
	return index
}
