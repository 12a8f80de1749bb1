// Package sides determines which side of a street a blockface occupies and
// which side of a candidate blockface a regulation geometry lies on. Three
// signals are tried as a cascade, first hit wins: explicit side wording in
// the location description, address-range parity, then a geometric cross
// product whose confidence degrades on curved streets and for geometries
// hugging the centerline.
package sides

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/fikei/curbmatch/internal/geo"
	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/source"
)

// Method names the signal that produced a resolution.
type Method string

const (
	MethodExplicit     Method = "explicit"
	MethodAddressRange Method = "addressRange"
	MethodGeometric    Method = "geometric"
	MethodNone         Method = "none"
)

// Resolution is one side determination with its provenance and confidence.
type Resolution struct {
	Side       models.Side
	Method     Method
	Confidence float64
}

// DefaultConfidenceThreshold demotes resolutions below it to SideUnknown.
const DefaultConfidenceThreshold = 0.7

// crossEps is the cross-product magnitude below which a geometry is too
// close to the centerline axis to call a side.
const crossEps = 1e-12

// Resolver applies the cascade. The zero value is not usable; construct
// with New so the threshold and buffer scale are explicit.
type Resolver struct {
	threshold     float64
	bufferDegrees float64
}

// New builds a Resolver. bufferDegrees scales the geometric method's
// distance term: a geometry a full buffer away from the centerline is
// unambiguous, one touching it is not.
func New(threshold, bufferDegrees float64) *Resolver {
	return &Resolver{threshold: threshold, bufferDegrees: bufferDegrees}
}

// Resolve runs the full cascade for a blockface and a candidate regulation
// geometry. Explicit and address-range signals come from the blockface
// itself; the geometric fallback locates the regulation relative to the
// centerline. Resolutions under the confidence threshold demote to
// SideUnknown, which never excludes a candidate.
func (r *Resolver) Resolve(bf *source.Blockface, regGeom orb.Geometry) Resolution {
	if res, ok := explicitSide(bf.Description); ok {
		return res
	}
	if res, ok := addressRangeSide(bf); ok {
		return r.demote(res)
	}
	if regGeom != nil {
		if res, ok := r.geometricSide(bf.Line, regGeom); ok {
			return r.demote(res)
		}
	}
	return Resolution{Side: models.SideUnknown, Method: MethodNone, Confidence: 0}
}

// BlockfaceSide resolves the blockface's own side from its attributes
// alone, for the output record. The geometric method needs a reference
// geometry and does not apply here.
func (r *Resolver) BlockfaceSide(bf *source.Blockface) Resolution {
	if res, ok := explicitSide(bf.Description); ok {
		return res
	}
	if res, ok := addressRangeSide(bf); ok {
		return r.demote(res)
	}
	return Resolution{Side: models.SideUnknown, Method: MethodNone, Confidence: 0}
}

// RegulationSide locates the regulation geometry relative to the blockface
// centerline using only the geometric method, for side-compatibility
// filtering during candidate matching.
func (r *Resolver) RegulationSide(bf *source.Blockface, regGeom orb.Geometry) Resolution {
	if res, ok := r.geometricSide(bf.Line, regGeom); ok {
		return r.demote(res)
	}
	return Resolution{Side: models.SideUnknown, Method: MethodNone, Confidence: 0}
}

func (r *Resolver) demote(res Resolution) Resolution {
	if res.Confidence < r.threshold {
		res.Side = models.SideUnknown
	}
	return res
}

// explicitSide parses "north side" style wording out of the location
// description. Authoritative when present.
func explicitSide(desc string) (Resolution, bool) {
	lower := strings.ToLower(desc)
	for _, probe := range []struct {
		needle string
		side   models.Side
	}{
		{"north side", models.SideNorth},
		{"south side", models.SideSouth},
		{"east side", models.SideEast},
		{"west side", models.SideWest},
	} {
		if strings.Contains(lower, probe.needle) {
			return Resolution{Side: probe.side, Method: MethodExplicit, Confidence: 1.0}, true
		}
	}
	return Resolution{}, false
}

// addressRangeSide derives EVEN/ODD parity from the left/right address
// range fields. Both sides sharing a parity means the source data is
// inconsistent and the result is low-confidence.
func addressRangeSide(bf *source.Blockface) (Resolution, bool) {
	if bf.LeftFrom == nil || bf.LeftTo == nil || bf.RightFrom == nil || bf.RightTo == nil {
		return Resolution{}, false
	}
	leftEven := *bf.LeftFrom%2 == 0
	rightEven := *bf.RightFrom%2 == 0
	if leftEven == rightEven {
		return Resolution{Side: models.SideUnknown, Method: MethodAddressRange, Confidence: 0.3}, true
	}
	// The blockface record describes the left-hand curb of its centerline
	// in the source data's digitization direction.
	side := models.SideOdd
	if leftEven {
		side = models.SideEven
	}
	return Resolution{Side: side, Method: MethodAddressRange, Confidence: 0.8}, true
}

// geometricSide takes the cross product of the centerline chord with the
// vector to the regulation's representative point, maps LEFT/RIGHT onto a
// cardinal direction via the street bearing, and scores confidence from
// the perpendicular distance and the centerline's straightness.
func (r *Resolver) geometricSide(line orb.LineString, regGeom orb.Geometry) (Resolution, bool) {
	if len(line) < 2 {
		return Resolution{}, false
	}
	pt := geo.RepresentativePoint(regGeom)
	sign := geo.CrossSign(line, pt, crossEps)
	if sign == 0 {
		return Resolution{}, false
	}

	bearing := geo.Bearing(line)
	side := cardinalFor(bearing, sign > 0)

	dist := planar.DistanceFrom(line, pt)
	straightness := geo.Straightness(line)
	distTerm := dist / r.bufferDegrees
	if distTerm > 1 {
		distTerm = 1
	}
	confidence := distTerm*0.5 + straightness*0.5
	if confidence > 1 {
		confidence = 1
	}
	return Resolution{Side: side, Method: MethodGeometric, Confidence: confidence}, true
}

// cardinalFor maps a LEFT/RIGHT verdict to a cardinal side given the
// street's bearing. North-south streets have east/west sides and vice
// versa; the cardinal form is preserved rather than forced to parity,
// since EVEN/ODD requires knowing the street's digitization direction.
func cardinalFor(bearing float64, left bool) models.Side {
	switch {
	case bearing >= 45 && bearing < 135: // heading east
		if left {
			return models.SideNorth
		}
		return models.SideSouth
	case bearing >= 135 && bearing < 225: // heading south
		if left {
			return models.SideEast
		}
		return models.SideWest
	case bearing >= 225 && bearing < 315: // heading west
		if left {
			return models.SideSouth
		}
		return models.SideNorth
	default: // heading north
		if left {
			return models.SideWest
		}
		return models.SideEast
	}
}

// Compatible reports whether a blockface side and a resolved regulation
// side can describe the same curb. SideUnknown never excludes. Parity and
// cardinal forms cannot be cross-checked without the digitization
// direction, so only directly contradictory pairs (EVEN vs ODD, or
// opposite cardinals) are incompatible.
func Compatible(blockface, regulation models.Side) bool {
	if blockface == models.SideUnknown || regulation == models.SideUnknown {
		return true
	}
	if blockface == regulation {
		return true
	}
	return regulation != blockface.Opposite()
}
