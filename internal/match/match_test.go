package match

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fikei/curbmatch/internal/geo"
	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/sides"
	"github.com/fikei/curbmatch/internal/source"
)

var buffer = geo.BufferDegrees(15)

func newMatcher(workers int) *Matcher {
	return &Matcher{
		BufferDegrees: buffer,
		Resolver:      sides.New(sides.DefaultConfidenceThreshold, buffer),
		Workers:       workers,
	}
}

// horizontalFace builds an eastbound centerline of fixed length at the
// given latitude.
func horizontalFace(id string, lat float64, side models.Side) *source.Blockface {
	return &source.Blockface{
		ID:   id,
		Side: side,
		Line: orb.LineString{{-122.42, lat}, {-122.419, lat}},
	}
}

func horizontalReg(id string, lat float64) *source.Regulation {
	return &source.Regulation{
		ID:       id,
		Kind:     source.KindParking,
		Geometry: orb.LineString{{-122.4197, lat}, {-122.4193, lat}},
	}
}

func TestMatchClosestWithinBuffer(t *testing.T) {
	faces := []*source.Blockface{
		horizontalFace("near", 37.76, models.SideUnknown),
		horizontalFace("far", 37.7605, models.SideUnknown),
	}
	regs := []*source.Regulation{horizontalReg("r", 37.76+buffer/3)}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{0}, res.Assignment)
	assert.Equal(t, 1, res.Matched)
	assert.Zero(t, res.UnmatchedCount)
}

func TestMatchOutsideBufferUnmatched(t *testing.T) {
	faces := []*source.Blockface{horizontalFace("a", 37.76, models.SideUnknown)}
	// Just over 15 m away: inside a sloppier tolerance, outside ours.
	regs := []*source.Regulation{horizontalReg("r", 37.76+buffer*1.2)}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{Unmatched}, res.Assignment)
	assert.Equal(t, 1, res.UnmatchedCount)
	assert.Zero(t, res.Matched)
}

func TestMatchSideCompatibilityBeatsDistance(t *testing.T) {
	// Both centerlines run east; the regulation sits north of both, close
	// enough to resolve its side with confidence. The nearer blockface is
	// the south curb, so the farther north-curb blockface must win.
	faces := []*source.Blockface{
		horizontalFace("south-curb", 37.76+0.00002, models.SideSouth),
		horizontalFace("north-curb", 37.76, models.SideNorth),
	}
	regs := []*source.Regulation{horizontalReg("r", 37.76+0.00008)}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{1}, res.Assignment)
}

func TestMatchUnknownSideNeverExcludes(t *testing.T) {
	faces := []*source.Blockface{horizontalFace("a", 37.76, models.SideUnknown)}
	regs := []*source.Regulation{horizontalReg("r", 37.76+0.00008)}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{0}, res.Assignment)
	assert.Zero(t, res.LowConfidenceSides)
}

func TestMatchLowConfidenceSideCounted(t *testing.T) {
	// The regulation hugs the centerline, so the geometric side resolution
	// demotes below threshold: counted, but never excluding.
	faces := []*source.Blockface{horizontalFace("a", 37.76, models.SideNorth)}
	regs := []*source.Regulation{horizontalReg("r", 37.76+0.000001)}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{0}, res.Assignment)
	assert.Equal(t, 1, res.LowConfidenceSides)
}

func TestMatchEachRegulationAtMostOneBlockface(t *testing.T) {
	// A dense cluster where every regulation buffer overlaps several
	// blockfaces. Each regulation still lands on exactly one.
	var faces []*source.Blockface
	for i := 0; i < 5; i++ {
		faces = append(faces, horizontalFace(fmt.Sprintf("bf%d", i), 37.76+float64(i)*buffer/4, models.SideUnknown))
	}
	var regs []*source.Regulation
	for i := 0; i < 12; i++ {
		regs = append(regs, horizontalReg(fmt.Sprintf("r%d", i), 37.76+float64(i)*buffer/10))
	}

	res := newMatcher(4).Match(regs, faces)
	require.Len(t, res.Assignment, len(regs))
	for i, bf := range res.Assignment {
		assert.NotEqual(t, Unmatched, bf, "regulation %d", i)
	}
	assert.Equal(t, len(regs), res.Matched)
}

func TestMatchDeterministicAcrossWorkerCounts(t *testing.T) {
	var faces []*source.Blockface
	for i := 0; i < 8; i++ {
		faces = append(faces, horizontalFace(fmt.Sprintf("bf%d", i), 37.75+float64(i)*0.0005, models.SideUnknown))
	}
	var regs []*source.Regulation
	for i := 0; i < 40; i++ {
		regs = append(regs, horizontalReg(fmt.Sprintf("r%d", i), 37.75+float64(i)*0.0001))
	}

	serial := newMatcher(1).Match(regs, faces)
	parallel := newMatcher(8).Match(regs, faces)
	assert.Equal(t, serial.Assignment, parallel.Assignment)
	assert.Equal(t, serial.Matched, parallel.Matched)
	assert.Equal(t, serial.LowConfidenceSides, parallel.LowConfidenceSides)
}

func TestMatchDistanceTieBreaksOnIndex(t *testing.T) {
	// Anchored at latitude zero so the two offsets are bit-identical and
	// the distances tie exactly.
	face := func(lat float64) *source.Blockface {
		return &source.Blockface{Side: models.SideUnknown, Line: orb.LineString{{0, lat}, {0.001, lat}}}
	}
	faces := []*source.Blockface{face(0.00005), face(-0.00005)}
	regs := []*source.Regulation{{
		Kind:     source.KindParking,
		Geometry: orb.LineString{{0.0003, 0}, {0.0007, 0}},
	}}

	res := newMatcher(1).Match(regs, faces)
	assert.Equal(t, []int{0}, res.Assignment)
}
