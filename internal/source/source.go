// Package source loads the blockface and regulation GeoJSON collections
// into typed in-memory features. Individual malformed features are skipped
// and counted; only an unreadable or structurally invalid file is fatal.
package source

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/streets"
)

// MalformedGeometryError marks a single feature whose geometry could not
// be used: wrong type, too few coordinates, or non-numeric values.
type MalformedGeometryError struct {
	Index  int
	Reason string
}

func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("feature %d: malformed geometry: %s", e.Index, e.Reason)
}

// Kind distinguishes the regulation source datasets, which carry different
// attribute schemas but join the same matching pass.
type Kind string

const (
	KindParking  Kind = "parking"
	KindSweeping Kind = "sweeping"
	KindMetered  Kind = "metered"
)

// Blockface is a loaded street-segment centerline with the raw attributes
// the side resolver and output builder need.
type Blockface struct {
	ID          string
	Description string
	Location    streets.Location
	Side        models.Side
	LeftFrom    *int
	LeftTo      *int
	RightFrom   *int
	RightTo     *int
	Line        orb.LineString
}

// Regulation is a loaded regulation line feature prior to matching.
// Geometry is a LineString or MultiLineString; multi-part geometries are
// treated as one unified shape for every distance and intersection test.
type Regulation struct {
	ID       string
	Kind     Kind
	Geometry orb.Geometry

	// Parking-regulation attributes.
	RegulationText string
	Days           string
	HoursBegin     string
	HoursEnd       string
	HourLimit      *float64
	PermitAreas    []string
	Exceptions     string

	// Street-sweeping attributes.
	Weekday  string
	FromHour *int
	ToHour   *int
	Weeks    [5]bool
	Corridor string
}

// LoadStats counts per-file feature outcomes.
type LoadStats struct {
	Loaded      int
	Malformed   int
	OutOfBounds int
}

type featureCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

func readCollection(path string) (*featureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%s: expected a GeoJSON FeatureCollection, got %q", path, fc.Type)
	}
	return &fc, nil
}

// lineGeometry validates and extracts a line geometry from a feature.
func lineGeometry(f *geojson.Feature, idx int) (orb.Geometry, error) {
	switch g := f.Geometry.(type) {
	case orb.LineString:
		if err := checkLine(g, idx); err != nil {
			return nil, err
		}
		return g, nil
	case orb.MultiLineString:
		if len(g) == 0 {
			return nil, &MalformedGeometryError{Index: idx, Reason: "empty MultiLineString"}
		}
		for _, part := range g {
			if err := checkLine(part, idx); err != nil {
				return nil, err
			}
		}
		return g, nil
	default:
		return nil, &MalformedGeometryError{Index: idx, Reason: fmt.Sprintf("unsupported geometry %T", f.Geometry)}
	}
}

func checkLine(ls orb.LineString, idx int) error {
	if len(ls) < 2 {
		return &MalformedGeometryError{Index: idx, Reason: "fewer than 2 coordinate pairs"}
	}
	for _, p := range ls {
		if math.IsNaN(p.Lon()) || math.IsNaN(p.Lat()) || math.IsInf(p.Lon(), 0) || math.IsInf(p.Lat(), 0) {
			return &MalformedGeometryError{Index: idx, Reason: "non-finite coordinate"}
		}
	}
	return nil
}

// LoadBlockfaces reads the blockface collection, applying the optional
// bounding filter to each feature's first vertex. Malformed and filtered
// features are counted in the returned stats, never fatal.
func LoadBlockfaces(path string, bounds *models.BoundingBox) ([]*Blockface, LoadStats, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	faces := make([]*Blockface, 0, len(fc.Features))
	for idx, raw := range fc.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			stats.Malformed++
			continue
		}
		geom, err := lineGeometry(f, idx)
		if err != nil {
			stats.Malformed++
			continue
		}
		line, ok := geom.(orb.LineString)
		if !ok {
			// Blockface centerlines are single LineStrings in the source
			// data. A multi-part centerline keeps its longest part, and
			// that same part is used for every downstream distance and
			// orientation computation.
			line = longestPart(geom.(orb.MultiLineString))
		}

		if bounds != nil && !bounds.Contains(line[0]) {
			stats.OutOfBounds++
			continue
		}

		id := propString(f.Properties, "globalid")
		if id == "" {
			id = fmt.Sprintf("blockface_%d", idx)
		}
		desc := propString(f.Properties, "popupinfo")

		faces = append(faces, &Blockface{
			ID:          id,
			Description: desc,
			Location:    streets.ParseLocation(desc),
			Side:        models.SideUnknown,
			LeftFrom:    propInt(f.Properties, "lf_fadd"),
			LeftTo:      propInt(f.Properties, "lf_toadd"),
			RightFrom:   propInt(f.Properties, "rt_fadd"),
			RightTo:     propInt(f.Properties, "rt_toadd"),
			Line:        line,
		})
		stats.Loaded++
	}
	return faces, stats, nil
}

// LoadRegulations reads one regulation collection of the given kind.
func LoadRegulations(path string, kind Kind) ([]*Regulation, LoadStats, error) {
	fc, err := readCollection(path)
	if err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	regs := make([]*Regulation, 0, len(fc.Features))
	for idx, raw := range fc.Features {
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			stats.Malformed++
			continue
		}
		geom, err := lineGeometry(f, idx)
		if err != nil {
			stats.Malformed++
			continue
		}

		reg := &Regulation{
			ID:       fmt.Sprintf("%s_%d", kind, idx),
			Kind:     kind,
			Geometry: geom,
		}
		if v := propString(f.Properties, "globalid"); v != "" {
			reg.ID = string(kind) + "_" + v
		}

		switch kind {
		case KindSweeping:
			reg.Weekday = propString(f.Properties, "weekday")
			reg.FromHour = propInt(f.Properties, "fromhour")
			reg.ToHour = propInt(f.Properties, "tohour")
			for i := 0; i < 5; i++ {
				field := fmt.Sprintf("week%d", i+1)
				if v := propInt(f.Properties, field); v != nil && *v == 1 {
					reg.Weeks[i] = true
				}
			}
			reg.Corridor = propString(f.Properties, "corridor")
		case KindMetered:
			// Geometry carries all the signal; attributes are ignored.
		default:
			reg.RegulationText = propString(f.Properties, "regulation")
			reg.Days = propString(f.Properties, "days")
			reg.HoursBegin = propString(f.Properties, "hrs_begin")
			reg.HoursEnd = propString(f.Properties, "hrs_end")
			reg.HourLimit = propFloat(f.Properties, "hrlimit")
			for _, field := range []string{"rpparea1", "rpparea2", "rpparea3"} {
				if zone := strings.TrimSpace(propString(f.Properties, field)); zone != "" {
					reg.PermitAreas = append(reg.PermitAreas, zone)
				}
			}
			reg.Exceptions = propString(f.Properties, "exceptions")
		}

		regs = append(regs, reg)
		stats.Loaded++
	}
	return regs, stats, nil
}

func longestPart(mls orb.MultiLineString) orb.LineString {
	longest := mls[0]
	var longestLen float64
	for _, part := range mls {
		var l float64
		for i := 1; i < len(part); i++ {
			dx := part[i].Lon() - part[i-1].Lon()
			dy := part[i].Lat() - part[i-1].Lat()
			l += math.Hypot(dx, dy)
		}
		if l > longestLen {
			longest, longestLen = part, l
		}
	}
	return longest
}

// The source datasets mix string and numeric encodings for the same
// attribute, so the extractors accept both.

func propString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func propInt(p geojson.Properties, key string) *int {
	switch v := p[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func propFloat(p geojson.Properties, key string) *float64 {
	switch v := p[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}
