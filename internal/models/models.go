package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Side identifies which side of a street a blockface occupies.
type Side string

const (
	SideNorth   Side = "NORTH"
	SideSouth   Side = "SOUTH"
	SideEast    Side = "EAST"
	SideWest    Side = "WEST"
	SideEven    Side = "EVEN"
	SideOdd     Side = "ODD"
	SideUnknown Side = "UNKNOWN"
)

// ParseSide maps a raw side string onto the closed enumeration.
// Anything unrecognized collapses to SideUnknown.
func ParseSide(raw string) Side {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case SideNorth:
		return SideNorth
	case SideSouth:
		return SideSouth
	case SideEast:
		return SideEast
	case SideWest:
		return SideWest
	case SideEven:
		return SideEven
	case SideOdd:
		return SideOdd
	default:
		return SideUnknown
	}
}

// Opposite returns the facing side for cardinal and parity sides.
// SideUnknown has no opposite and returns itself.
func (s Side) Opposite() Side {
	switch s {
	case SideNorth:
		return SideSouth
	case SideSouth:
		return SideNorth
	case SideEast:
		return SideWest
	case SideWest:
		return SideEast
	case SideEven:
		return SideOdd
	case SideOdd:
		return SideEven
	default:
		return SideUnknown
	}
}

// RegulationType is the canonical parking regulation category.
type RegulationType string

const (
	TypeNoParking         RegulationType = "noParking"
	TypeTowAway           RegulationType = "towAway"
	TypeStreetCleaning    RegulationType = "streetCleaning"
	TypeMetered           RegulationType = "metered"
	TypeTimeLimit         RegulationType = "timeLimit"
	TypeResidentialPermit RegulationType = "residentialPermit"
	TypeLoadingZone       RegulationType = "loadingZone"
	TypeOther             RegulationType = "other"
)

// RegulationRecord is the normalized per-blockface regulation entry, the
// shape the mobile app consumes. The timeLimit JSON key carries minutes.
type RegulationRecord struct {
	Type              RegulationType `json:"type"`
	PermitZone        *string        `json:"permitZone"`
	PermitZones       []string       `json:"permitZones"`
	TimeLimitMinutes  *int           `json:"timeLimit"`
	EnforcementDays   []string       `json:"enforcementDays"`
	EnforcementStart  *string        `json:"enforcementStart"`
	EnforcementEnd    *string        `json:"enforcementEnd"`
	SpecialConditions *string        `json:"specialConditions"`

	// SourceStreet carries the street name from the originating dataset
	// (e.g. a sweeping schedule corridor) for backfilling blockfaces that
	// lack one. It never appears in the output document.
	SourceStreet string `json:"-"`
}

// Key builds the deduplication identity from every non-null normalized
// field. Enforcement days compare order-insensitively, so the key sorts a
// copy while the record keeps its display order.
func (r RegulationRecord) Key() string {
	var b strings.Builder
	b.WriteString("type=")
	b.WriteString(string(r.Type))
	if r.PermitZone != nil {
		b.WriteString("|zone=")
		b.WriteString(*r.PermitZone)
	}
	if len(r.PermitZones) > 0 {
		b.WriteString("|zones=")
		b.WriteString(strings.Join(r.PermitZones, ","))
	}
	if r.TimeLimitMinutes != nil {
		b.WriteString("|limit=")
		b.WriteString(strconv.Itoa(*r.TimeLimitMinutes))
	}
	if len(r.EnforcementDays) > 0 {
		days := append([]string(nil), r.EnforcementDays...)
		sort.Strings(days)
		b.WriteString("|days=")
		b.WriteString(strings.Join(days, ","))
	}
	if r.EnforcementStart != nil {
		b.WriteString("|start=")
		b.WriteString(*r.EnforcementStart)
	}
	if r.EnforcementEnd != nil {
		b.WriteString("|end=")
		b.WriteString(*r.EnforcementEnd)
	}
	if r.SpecialConditions != nil {
		b.WriteString("|cond=")
		b.WriteString(*r.SpecialConditions)
	}
	return b.String()
}

// Blockface is one output street-segment record with its resolved
// regulation list.
type Blockface struct {
	ID          string             `json:"id"`
	Street      string             `json:"street"`
	FromStreet  string             `json:"fromStreet"`
	ToStreet    string             `json:"toStreet"`
	Side        Side               `json:"side"`
	Geometry    *geojson.Geometry  `json:"geometry"`
	Regulations []RegulationRecord `json:"regulations"`
}

// BoundingBox is an optional geographic filter applied at load time.
type BoundingBox struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BoundingBox) Contains(p orb.Point) bool {
	return p.Lon() >= b.MinLon && p.Lon() <= b.MaxLon &&
		p.Lat() >= b.MinLat && p.Lat() <= b.MaxLat
}

// CenterLat returns the latitude midline of the box, used for the
// meters-to-degrees buffer conversion.
func (b BoundingBox) CenterLat() float64 {
	return (b.MinLat + b.MaxLat) / 2
}

// ParseBoundingBox parses "minLon,minLat,maxLon,maxLat".
func ParseBoundingBox(raw string) (*BoundingBox, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bounds must be minLon,minLat,maxLon,maxLat, got %q", raw)
	}
	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bounds component %q: %w", part, err)
		}
		vals[i] = v
	}
	box := &BoundingBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}
	if box.MinLon >= box.MaxLon || box.MinLat >= box.MaxLat {
		return nil, fmt.Errorf("bounds %q are empty or inverted", raw)
	}
	return box, nil
}

// RunStatistics aggregates per-run counters for the final summary and the
// output document's statistics block.
type RunStatistics struct {
	BlockfacesTotal              int                    `json:"blockfacesTotal"`
	BlockfacesWithRegulations    int                    `json:"blockfacesWithRegulations"`
	BlockfacesWithoutRegulations int                    `json:"blockfacesWithoutRegulations"`
	RegulationsLoaded            int                    `json:"regulationsLoaded"`
	RegulationsMatched           int                    `json:"regulationsMatched"`
	RegulationsUnmatched         int                    `json:"regulationsUnmatched"`
	DuplicatesCollapsed          int                    `json:"duplicatesCollapsed"`
	SkippedMalformedBlockfaces   int                    `json:"skippedMalformedBlockfaces"`
	SkippedMalformedRegulations  int                    `json:"skippedMalformedRegulations"`
	SkippedOutOfBounds           int                    `json:"skippedOutOfBounds"`
	UnparseableDays              int                    `json:"unparseableDays"`
	UnparseableTypes             int                    `json:"unparseableTypes"`
	SkippedEmptyTypes            int                    `json:"skippedEmptyTypes"`
	LowConfidenceSides           int                    `json:"lowConfidenceSides"`
	RecordsByType                map[RegulationType]int `json:"recordsByType"`
}

// Parameters records the processing knobs a run used, embedded in the
// output document so downstream consumers can audit generation.
type Parameters struct {
	BufferMeters  float64      `json:"bufferMeters"`
	BufferDegrees float64      `json:"bufferDegrees"`
	Bounds        *BoundingBox `json:"bounds"`
}

// DocumentVersion is bumped whenever the output shape changes.
const DocumentVersion = 2

// Document is the single canonical output artifact consumed by the mobile
// app's local data source.
type Document struct {
	Version     int           `json:"version"`
	GeneratedAt string        `json:"generatedAt"`
	Parameters  Parameters    `json:"parameters"`
	Statistics  RunStatistics `json:"statistics"`
	Blockfaces  []Blockface   `json:"blockfaces"`
}
