package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fikei/curbmatch/internal/models"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const blockfaceFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "globalid": "bf-1",
        "popupinfo": "Valencia Street between 17th St and 16th St, west side",
        "lf_fadd": "2", "lf_toadd": "98", "rt_fadd": 1, "rt_toadd": 99
      },
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.76], [-122.42, 37.761]]}
    },
    {
      "type": "Feature",
      "properties": {"globalid": "bf-2"},
      "geometry": {"type": "Point", "coordinates": [-122.42, 37.76]}
    },
    {
      "type": "Feature",
      "properties": {"globalid": "bf-3"},
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.76]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "LineString", "coordinates": [[-122.30, 37.70], [-122.30, 37.701]]}
    }
  ]
}`

func TestLoadBlockfaces(t *testing.T) {
	path := writeFixture(t, "blockfaces.geojson", blockfaceFixture)
	faces, stats, err := LoadBlockfaces(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, 2, stats.Malformed)
	assert.Zero(t, stats.OutOfBounds)
	require.Len(t, faces, 2)

	bf := faces[0]
	assert.Equal(t, "bf-1", bf.ID)
	assert.Equal(t, "Valencia Street", bf.Location.Street)
	assert.Equal(t, "17th St", bf.Location.From)
	assert.Equal(t, models.SideUnknown, bf.Side)
	require.NotNil(t, bf.LeftFrom)
	assert.Equal(t, 2, *bf.LeftFrom)
	require.NotNil(t, bf.RightFrom)
	assert.Equal(t, 1, *bf.RightFrom)
	assert.Len(t, bf.Line, 2)

	// Features without a globalid get a positional fallback ID.
	assert.Equal(t, "blockface_3", faces[1].ID)
	assert.Nil(t, faces[1].LeftFrom)
}

func TestLoadBlockfacesBounds(t *testing.T) {
	path := writeFixture(t, "blockfaces.geojson", blockfaceFixture)
	bounds := &models.BoundingBox{MinLon: -122.5, MinLat: 37.75, MaxLon: -122.4, MaxLat: 37.8}
	faces, stats, err := LoadBlockfaces(path, bounds)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Loaded)
	assert.Equal(t, 1, stats.OutOfBounds)
	require.Len(t, faces, 1)
	assert.Equal(t, "bf-1", faces[0].ID)
}

func TestLoadBlockfacesMissingFile(t *testing.T) {
	_, _, err := LoadBlockfaces(filepath.Join(t.TempDir(), "absent.geojson"), nil)
	assert.Error(t, err)
}

func TestLoadBlockfacesNotACollection(t *testing.T) {
	path := writeFixture(t, "bad.geojson", `{"type": "Feature"}`)
	_, _, err := LoadBlockfaces(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FeatureCollection")
}

func TestLoadRegulationsParking(t *testing.T) {
	fixture := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "regulation": "Time limited", "days": "M-F",
        "hrs_begin": "900", "hrs_end": "1800", "hrlimit": 2,
        "rpparea1": "L", "rpparea2": " BB ", "rpparea3": ""
      },
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.76], [-122.419, 37.76]]}
    },
    {
      "type": "Feature",
      "properties": {"regulation": "No Parking Any Time"},
      "geometry": {"type": "MultiLineString", "coordinates": [
        [[-122.42, 37.76], [-122.419, 37.76]],
        [[-122.418, 37.76], [-122.417, 37.76]]
      ]}
    }
  ]
}`
	path := writeFixture(t, "regs.geojson", fixture)
	regs, stats, err := LoadRegulations(path, KindParking)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)
	require.Len(t, regs, 2)

	reg := regs[0]
	assert.Equal(t, "parking_0", reg.ID)
	assert.Equal(t, KindParking, reg.Kind)
	assert.Equal(t, "Time limited", reg.RegulationText)
	assert.Equal(t, "M-F", reg.Days)
	assert.Equal(t, "900", reg.HoursBegin)
	require.NotNil(t, reg.HourLimit)
	assert.Equal(t, 2.0, *reg.HourLimit)
	assert.Equal(t, []string{"L", "BB"}, reg.PermitAreas)

	_, isMulti := regs[1].Geometry.(orb.MultiLineString)
	assert.True(t, isMulti)
}

func TestLoadRegulationsSweeping(t *testing.T) {
	fixture := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {
        "globalid": "sw-9", "weekday": "Tues", "fromhour": 8, "tohour": "10",
        "week1": 1, "week2": 0, "week3": 1, "week4": 0, "week5": 0,
        "corridor": "Dolores St"
      },
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.76], [-122.419, 37.76]]}
    }
  ]
}`
	path := writeFixture(t, "sweeping.geojson", fixture)
	regs, stats, err := LoadRegulations(path, KindSweeping)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)
	require.Len(t, regs, 1)

	reg := regs[0]
	assert.Equal(t, "sweeping_sw-9", reg.ID)
	assert.Equal(t, "Tues", reg.Weekday)
	require.NotNil(t, reg.FromHour)
	assert.Equal(t, 8, *reg.FromHour)
	require.NotNil(t, reg.ToHour)
	assert.Equal(t, 10, *reg.ToHour)
	assert.Equal(t, [5]bool{true, false, true, false, false}, reg.Weeks)
	assert.Equal(t, "Dolores St", reg.Corridor)
}

func TestLoadRegulationsMalformedCounted(t *testing.T) {
	fixture := `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"regulation": "Metered Parking"},
      "geometry": {"type": "MultiLineString", "coordinates": []}
    },
    {
      "type": "Feature",
      "properties": {"regulation": "Metered Parking"},
      "geometry": {"type": "LineString", "coordinates": [[-122.42, 37.76], [-122.419, 37.76]]}
    }
  ]
}`
	path := writeFixture(t, "regs.geojson", fixture)
	regs, stats, err := LoadRegulations(path, KindParking)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)
	assert.Equal(t, 1, stats.Malformed)
	assert.Len(t, regs, 1)
}
