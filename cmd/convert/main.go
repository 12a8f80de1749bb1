// Command convert runs the blockface/regulation spatial join and writes
// the canonical per-blockface dataset.
//
// Usage:
//
//	convert -blockfaces b.geojson -regulations r.geojson -out out.json \
//	    [-sweeping s.geojson] [-metered m.geojson] \
//	    [-bounds minLon,minLat,maxLon,maxLat] [-buffer 15] [-workers 4]
//
// The exit code is zero even when some regulations stay unmatched; that is
// expected data quality, not failure. Only unreadable inputs or an
// unwritable output exit non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fikei/curbmatch/internal/config"
	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("convert failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConvert()
	if err != nil {
		return err
	}

	blockfaces := flag.String("blockfaces", cfg.BlockfacesPath, "blockface GeoJSON input path")
	regulations := flag.String("regulations", cfg.RegulationsPath, "parking regulation GeoJSON input path")
	sweeping := flag.String("sweeping", cfg.SweepingPath, "street sweeping GeoJSON input path (optional)")
	metered := flag.String("metered", cfg.MeteredPath, "metered blockface GeoJSON input path (optional)")
	out := flag.String("out", cfg.OutputPath, "output JSON path")
	boundsFlag := flag.String("bounds", "", "bounding filter as minLon,minLat,maxLon,maxLat (optional)")
	buffer := flag.Float64("buffer", cfg.BufferMeters, "matching buffer radius in meters")
	threshold := flag.Float64("side-threshold", cfg.SideConfidenceThreshold, "side resolution confidence threshold")
	workers := flag.Int("workers", cfg.Workers, "matching worker count (0 = all CPUs)")
	flag.Parse()

	if *blockfaces == "" || *regulations == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("-blockfaces, -regulations and -out are required")
	}

	bounds := cfg.Bounds
	if *boundsFlag != "" {
		bounds, err = models.ParseBoundingBox(*boundsFlag)
		if err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	doc, err := pipeline.Run(ctx, pipeline.Options{
		BlockfacesPath:          *blockfaces,
		RegulationsPath:         *regulations,
		SweepingPath:            *sweeping,
		MeteredPath:             *metered,
		OutputPath:              *out,
		Bounds:                  bounds,
		BufferMeters:            *buffer,
		SideConfidenceThreshold: *threshold,
		Workers:                 *workers,
	})
	if err != nil {
		return err
	}

	printSummary(doc.Statistics, *out)
	return nil
}

func printSummary(s models.RunStatistics, out string) {
	log.Printf("blockfaces processed: %d (%d with regulations, %d without)",
		s.BlockfacesTotal, s.BlockfacesWithRegulations, s.BlockfacesWithoutRegulations)
	log.Printf("regulations: %d loaded, %d matched, %d unmatched, %d duplicates collapsed",
		s.RegulationsLoaded, s.RegulationsMatched, s.RegulationsUnmatched, s.DuplicatesCollapsed)
	log.Printf("skipped: %d malformed blockfaces, %d malformed regulations, %d out of bounds",
		s.SkippedMalformedBlockfaces, s.SkippedMalformedRegulations, s.SkippedOutOfBounds)
	log.Printf("data quality: %d unparseable day ranges, %d unrecognized types, %d empty types, %d low-confidence sides",
		s.UnparseableDays, s.UnparseableTypes, s.SkippedEmptyTypes, s.LowConfidenceSides)

	types := make([]models.RegulationType, 0, len(s.RecordsByType))
	for t := range s.RecordsByType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		log.Printf("  %-18s %d", t, s.RecordsByType[t])
	}
	log.Printf("output: %s", out)
}
