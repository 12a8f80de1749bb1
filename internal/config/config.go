// Package config reads environment-driven settings (optionally from .env)
// for the convert and serve commands. Command-line flags override whatever
// the environment provides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/pipeline"
	"github.com/fikei/curbmatch/internal/sides"
)

// Convert holds runtime configuration for the conversion pipeline.
type Convert struct {
	BlockfacesPath  string
	RegulationsPath string
	SweepingPath    string
	MeteredPath     string
	OutputPath      string

	Bounds                  *models.BoundingBox
	BufferMeters            float64
	SideConfidenceThreshold float64
	Workers                 int
}

// LoadConvert reads conversion defaults from environment variables.
func LoadConvert() (Convert, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Convert{
		BlockfacesPath:          strings.TrimSpace(os.Getenv("CURBMATCH_BLOCKFACES")),
		RegulationsPath:         strings.TrimSpace(os.Getenv("CURBMATCH_REGULATIONS")),
		SweepingPath:            strings.TrimSpace(os.Getenv("CURBMATCH_SWEEPING")),
		MeteredPath:             strings.TrimSpace(os.Getenv("CURBMATCH_METERED")),
		OutputPath:              strings.TrimSpace(os.Getenv("CURBMATCH_OUTPUT")),
		BufferMeters:            pipeline.DefaultBufferMeters,
		SideConfidenceThreshold: sides.DefaultConfidenceThreshold,
	}

	if v := strings.TrimSpace(os.Getenv("CURBMATCH_BUFFER_METERS")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return cfg, fmt.Errorf("invalid CURBMATCH_BUFFER_METERS: %s", v)
		}
		cfg.BufferMeters = f
	}
	if v := strings.TrimSpace(os.Getenv("CURBMATCH_SIDE_THRESHOLD")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return cfg, fmt.Errorf("invalid CURBMATCH_SIDE_THRESHOLD: %s", v)
		}
		cfg.SideConfidenceThreshold = f
	}
	if v := strings.TrimSpace(os.Getenv("CURBMATCH_BOUNDS")); v != "" {
		box, err := models.ParseBoundingBox(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid CURBMATCH_BOUNDS: %w", err)
		}
		cfg.Bounds = box
	}
	if v := strings.TrimSpace(os.Getenv("CURBMATCH_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid CURBMATCH_WORKERS: %s", v)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

// Serve holds runtime configuration for the preview API.
type Serve struct {
	DatasetPath    string
	Port           int
	BearerToken    string
	DefaultLimit   int
	RequestTimeout time.Duration
}

// LoadServe reads preview-server settings from environment variables.
func LoadServe() (Serve, error) {
	_ = godotenv.Load()

	cfg := Serve{
		DatasetPath:    strings.TrimSpace(os.Getenv("CURBMATCH_DATASET")),
		Port:           8080,
		DefaultLimit:   100,
		RequestTimeout: 10 * time.Second,
	}

	if portStr := strings.TrimSpace(os.Getenv("PORT")); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
		cfg.Port = port
	}
	if limitStr := strings.TrimSpace(os.Getenv("CURBMATCH_DEFAULT_LIMIT")); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return cfg, fmt.Errorf("invalid CURBMATCH_DEFAULT_LIMIT: %s", limitStr)
		}
		cfg.DefaultLimit = limit
	}
	cfg.BearerToken = os.Getenv("CURBMATCH_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Serve) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
