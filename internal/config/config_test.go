package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fikei/curbmatch/internal/pipeline"
	"github.com/fikei/curbmatch/internal/sides"
)

func TestLoadConvertDefaults(t *testing.T) {
	for _, key := range []string{
		"CURBMATCH_BLOCKFACES", "CURBMATCH_REGULATIONS", "CURBMATCH_SWEEPING",
		"CURBMATCH_METERED", "CURBMATCH_OUTPUT", "CURBMATCH_BUFFER_METERS",
		"CURBMATCH_SIDE_THRESHOLD", "CURBMATCH_BOUNDS", "CURBMATCH_WORKERS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConvert()
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultBufferMeters, cfg.BufferMeters)
	assert.Equal(t, sides.DefaultConfidenceThreshold, cfg.SideConfidenceThreshold)
	assert.Nil(t, cfg.Bounds)
	assert.Zero(t, cfg.Workers)
}

func TestLoadConvertFromEnv(t *testing.T) {
	t.Setenv("CURBMATCH_BLOCKFACES", "/data/blockfaces.geojson")
	t.Setenv("CURBMATCH_BUFFER_METERS", "25")
	t.Setenv("CURBMATCH_SIDE_THRESHOLD", "0.5")
	t.Setenv("CURBMATCH_BOUNDS", "-122.5,37.7,-122.3,37.8")
	t.Setenv("CURBMATCH_WORKERS", "4")

	cfg, err := LoadConvert()
	require.NoError(t, err)
	assert.Equal(t, "/data/blockfaces.geojson", cfg.BlockfacesPath)
	assert.Equal(t, 25.0, cfg.BufferMeters)
	assert.Equal(t, 0.5, cfg.SideConfidenceThreshold)
	require.NotNil(t, cfg.Bounds)
	assert.Equal(t, -122.5, cfg.Bounds.MinLon)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadConvertRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"CURBMATCH_BUFFER_METERS":  "-5",
		"CURBMATCH_SIDE_THRESHOLD": "1.5",
		"CURBMATCH_BOUNDS":         "-122.5,37.7",
		"CURBMATCH_WORKERS":        "many",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConvert()
			assert.Error(t, err)
		})
	}
}

func TestLoadServe(t *testing.T) {
	t.Setenv("CURBMATCH_DATASET", "/data/blockfaces.json")
	t.Setenv("PORT", "9000")
	t.Setenv("CURBMATCH_DEFAULT_LIMIT", "")
	t.Setenv("CURBMATCH_BEARER_TOKEN", "secret")

	cfg, err := LoadServe()
	require.NoError(t, err)
	assert.Equal(t, "/data/blockfaces.json", cfg.DatasetPath)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 100, cfg.DefaultLimit)
	assert.Equal(t, "secret", cfg.BearerToken)
	assert.Equal(t, ":9000", cfg.ListenAddr())
}

func TestLoadServeRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "zero")
	_, err := LoadServe()
	assert.Error(t, err)
}
