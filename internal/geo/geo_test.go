package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestBufferDegrees(t *testing.T) {
	assert.InDelta(t, 0.0001348, BufferDegrees(15), 0.0000005)
	assert.Equal(t, 0.0, BufferDegrees(0))
}

func TestMetersPerDegreeLon(t *testing.T) {
	// At the equator a longitude degree matches a latitude degree; at SF it
	// is roughly 21% shorter.
	assert.InDelta(t, MetersPerDegreeLat, MetersPerDegreeLon(0), 0.001)
	assert.InDelta(t, 88000, MetersPerDegreeLon(DefaultLatitude), 500)
}

func TestVertices(t *testing.T) {
	ls := orb.LineString{{0, 0}, {1, 1}}
	assert.Len(t, Vertices(ls), 2)

	mls := orb.MultiLineString{
		{{0, 0}, {1, 0}},
		{{2, 0}, {3, 0}, {4, 0}},
	}
	assert.Len(t, Vertices(mls), 5)

	assert.Nil(t, Vertices(orb.Point{0, 0}))
}

func TestLineDistanceParallel(t *testing.T) {
	a := orb.LineString{{0, 0}, {0.001, 0}}
	b := orb.LineString{{0, 0.0005}, {0.001, 0.0005}}
	assert.InDelta(t, 0.0005, LineDistance(a, b), 1e-12)
}

func TestLineDistanceOffsetEndpoints(t *testing.T) {
	// b starts past the end of a; the closest approach is endpoint to
	// interior, caught by projecting b's vertex onto a.
	a := orb.LineString{{0, 0}, {0.002, 0}}
	b := orb.LineString{{0.001, 0.0003}, {0.0015, 0.0008}}
	assert.InDelta(t, 0.0003, LineDistance(a, b), 1e-12)
}

func TestStraightness(t *testing.T) {
	straight := orb.LineString{{0, 0}, {0.001, 0}, {0.002, 0}}
	assert.InDelta(t, 1.0, Straightness(straight), 1e-9)

	bent := orb.LineString{{0, 0}, {0.001, 0.001}, {0.002, 0}}
	s := Straightness(bent)
	assert.Less(t, s, 1.0)
	assert.Greater(t, s, 0.0)

	assert.Equal(t, 0.0, Straightness(orb.LineString{{0, 0}}))
}

func TestBearing(t *testing.T) {
	cases := []struct {
		name string
		ls   orb.LineString
		want float64
	}{
		{"north", orb.LineString{{0, 0}, {0, 1}}, 0},
		{"east", orb.LineString{{0, 0}, {1, 0}}, 90},
		{"south", orb.LineString{{0, 1}, {0, 0}}, 180},
		{"west", orb.LineString{{1, 0}, {0, 0}}, 270},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Bearing(tc.ls), 1e-9, tc.name)
	}
}

func TestMidpoint(t *testing.T) {
	ls := orb.LineString{{0, 0}, {0.002, 0}}
	mid := Midpoint(ls)
	assert.InDelta(t, 0.001, mid.Lon(), 1e-12)
	assert.InDelta(t, 0.0, mid.Lat(), 1e-12)

	// Midpoint follows path length, not the vertex list.
	uneven := orb.LineString{{0, 0}, {0.0001, 0}, {0.001, 0}}
	assert.InDelta(t, 0.0005, Midpoint(uneven).Lon(), 1e-12)
}

func TestRepresentativePointMultiLine(t *testing.T) {
	mls := orb.MultiLineString{
		{{0, 0}, {0.0001, 0}},
		{{0, 0.01}, {0.002, 0.01}},
	}
	p := RepresentativePoint(mls)
	assert.InDelta(t, 0.001, p.Lon(), 1e-12)
	assert.InDelta(t, 0.01, p.Lat(), 1e-12)
}

func TestPadBound(t *testing.T) {
	b := orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 4}}
	padded := PadBound(b, 0.5)
	assert.Equal(t, orb.Point{0.5, 1.5}, padded.Min)
	assert.Equal(t, orb.Point{3.5, 4.5}, padded.Max)
}

func TestCrossSign(t *testing.T) {
	east := orb.LineString{{0, 0}, {1, 0}}
	assert.Equal(t, 1, CrossSign(east, orb.Point{0.5, 0.5}, 1e-12))
	assert.Equal(t, -1, CrossSign(east, orb.Point{0.5, -0.5}, 1e-12))
	assert.Equal(t, 0, CrossSign(east, orb.Point{0.5, 0}, 1e-12))
}
