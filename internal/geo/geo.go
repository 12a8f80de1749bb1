// Package geo holds the planar geometry helpers the matching pipeline is
// built on. All computations happen in degree space; distances between
// features are compared against buffer radii converted from meters with an
// explicit, latitude-aware approximation.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MetersPerDegreeLat is the length of one degree of latitude. It varies by
// less than 1% over the globe and is treated as constant.
const MetersPerDegreeLat = 111320.0

// DefaultLatitude is used for the buffer conversion when no bounding box
// pins the working area. San Francisco sits near 37.77 N.
const DefaultLatitude = 37.77

// BufferDegrees converts a buffer radius in meters to degrees using the
// latitude scale. One degree of longitude shrinks with cos(lat), so a
// single degree radius cannot be exact on both axes: at SF's latitude the
// east-west reach of this buffer is ~21% short of the nominal meters. This
// is a deliberate city-scale approximation (15 m maps to ~0.000135 deg);
// MetersPerDegreeLon quantifies the shortfall at a given latitude for
// anyone running the pipeline far from DefaultLatitude.
func BufferDegrees(meters float64) float64 {
	return meters / MetersPerDegreeLat
}

// MetersPerDegreeLon returns the east-west length of one degree of
// longitude at the given latitude.
func MetersPerDegreeLon(latDeg float64) float64 {
	return MetersPerDegreeLat * math.Cos(latDeg*math.Pi/180)
}

// Vertices flattens a LineString or MultiLineString into its coordinate
// sequence. Other geometry types yield nil.
func Vertices(g orb.Geometry) []orb.Point {
	switch t := g.(type) {
	case orb.LineString:
		return t
	case orb.MultiLineString:
		var pts []orb.Point
		for _, part := range t {
			pts = append(pts, part...)
		}
		return pts
	default:
		return nil
	}
}

// LineDistance returns the minimum planar distance between two line
// geometries. When the lines do not cross, the minimum is attained at a
// vertex of one against the other, so checking both directions is exact;
// crossing lines report the small residual of the nearest vertex instead
// of zero, which is below any buffer radius in practice.
func LineDistance(a, b orb.Geometry) float64 {
	min := math.Inf(1)
	for _, p := range Vertices(a) {
		if d := planar.DistanceFrom(b, p); d < min {
			min = d
		}
	}
	for _, p := range Vertices(b) {
		if d := planar.DistanceFrom(a, p); d < min {
			min = d
		}
	}
	return min
}

// Straightness reports how straight a line is: the ratio of the start-end
// chord to the path length. 1.0 is perfectly straight, lower values mean
// more curvature.
func Straightness(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	chord := planar.Distance(ls[0], ls[len(ls)-1])
	length := planar.Length(ls)
	if length == 0 {
		return 0
	}
	return chord / length
}

// Bearing returns the compass bearing of the line's start-to-end chord in
// degrees from north, in [0, 360).
func Bearing(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	dx := ls[len(ls)-1].Lon() - ls[0].Lon()
	dy := ls[len(ls)-1].Lat() - ls[0].Lat()
	deg := math.Atan2(dx, dy) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Midpoint returns the point halfway along the line by path length.
func Midpoint(ls orb.LineString) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 {
		return ls[0]
	}
	half := planar.Length(ls) / 2
	var walked float64
	for i := 1; i < len(ls); i++ {
		seg := planar.Distance(ls[i-1], ls[i])
		if walked+seg >= half && seg > 0 {
			t := (half - walked) / seg
			return orb.Point{
				ls[i-1].Lon() + t*(ls[i].Lon()-ls[i-1].Lon()),
				ls[i-1].Lat() + t*(ls[i].Lat()-ls[i-1].Lat()),
			}
		}
		walked += seg
	}
	return ls[len(ls)-1]
}

// RepresentativePoint picks a single stable point for a line geometry: the
// midpoint of a LineString, or the midpoint of the longest part of a
// MultiLineString. MultiLineStrings are otherwise treated as one unified
// shape throughout the pipeline; the representative point only anchors the
// side-of-street cross product.
func RepresentativePoint(g orb.Geometry) orb.Point {
	switch t := g.(type) {
	case orb.LineString:
		return Midpoint(t)
	case orb.MultiLineString:
		var longest orb.LineString
		var longestLen float64
		for _, part := range t {
			if l := planar.Length(part); l > longestLen {
				longest, longestLen = part, l
			}
		}
		return Midpoint(longest)
	default:
		return orb.Point{}
	}
}

// PadBound grows a bounding box by d degrees on every side.
func PadBound(b orb.Bound, d float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.Lon() - d, b.Min.Lat() - d},
		Max: orb.Point{b.Max.Lon() + d, b.Max.Lat() + d},
	}
}

// CrossSign returns the sign of the 2D cross product of the line's chord
// with the vector from the line start to p: positive means p lies left of
// travel, negative right. Values within eps of zero are ambiguous and
// report zero.
func CrossSign(ls orb.LineString, p orb.Point, eps float64) int {
	if len(ls) < 2 {
		return 0
	}
	start, end := ls[0], ls[len(ls)-1]
	cross := (end.Lon()-start.Lon())*(p.Lat()-start.Lat()) -
		(end.Lat()-start.Lat())*(p.Lon()-start.Lon())
	switch {
	case cross > eps:
		return 1
	case cross < -eps:
		return -1
	default:
		return 0
	}
}
