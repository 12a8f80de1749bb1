// Package pipeline sequences the full conversion: load geometry, resolve
// sides, match regulations to blockfaces, normalize and finalize records,
// and write the canonical output document atomically.
package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/fikei/curbmatch/internal/geo"
	"github.com/fikei/curbmatch/internal/match"
	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/regulation"
	"github.com/fikei/curbmatch/internal/sides"
	"github.com/fikei/curbmatch/internal/source"
	"github.com/fikei/curbmatch/internal/streets"
)

// Options configures one conversion run. SweepingPath and MeteredPath are
// optional supplementary datasets; empty means not provided.
type Options struct {
	BlockfacesPath  string
	RegulationsPath string
	SweepingPath    string
	MeteredPath     string
	OutputPath      string

	Bounds                  *models.BoundingBox
	BufferMeters            float64
	SideConfidenceThreshold float64
	Workers                 int

	// Now supplies the generation timestamp; defaults to time.Now. The
	// matching and ordering logic never reads the clock, only the output
	// metadata does.
	Now func() time.Time
}

// DefaultBufferMeters is the matching buffer radius when no override is
// given.
const DefaultBufferMeters = 15.0

// Run executes the pipeline and writes the output document. The returned
// document is the same value that was written. Individual malformed or
// unmatched features never fail the run; only unreadable inputs or an
// unwritable output do.
func Run(ctx context.Context, opts Options) (*models.Document, error) {
	if opts.BufferMeters <= 0 {
		opts.BufferMeters = DefaultBufferMeters
	}
	if opts.SideConfidenceThreshold <= 0 {
		opts.SideConfidenceThreshold = sides.DefaultConfidenceThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var stats models.RunStatistics
	stats.RecordsByType = map[models.RegulationType]int{}

	regs, loadStats, err := source.LoadRegulations(opts.RegulationsPath, source.KindParking)
	if err != nil {
		return nil, err
	}
	stats.SkippedMalformedRegulations += loadStats.Malformed
	log.Printf("loaded %d parking regulations (%d skipped)", loadStats.Loaded, loadStats.Malformed)

	if opts.SweepingPath != "" {
		sweeping, st, err := source.LoadRegulations(opts.SweepingPath, source.KindSweeping)
		if err != nil {
			return nil, err
		}
		stats.SkippedMalformedRegulations += st.Malformed
		regs = append(regs, sweeping...)
		log.Printf("loaded %d street sweeping schedules (%d skipped)", st.Loaded, st.Malformed)
	}
	if opts.MeteredPath != "" {
		metered, st, err := source.LoadRegulations(opts.MeteredPath, source.KindMetered)
		if err != nil {
			return nil, err
		}
		stats.SkippedMalformedRegulations += st.Malformed
		regs = append(regs, metered...)
		log.Printf("loaded %d metered blockfaces (%d skipped)", st.Loaded, st.Malformed)
	}
	stats.RegulationsLoaded = len(regs)
	if len(regs) == 0 {
		return nil, errors.New("no regulations loaded")
	}

	faces, bfStats, err := source.LoadBlockfaces(opts.BlockfacesPath, opts.Bounds)
	if err != nil {
		return nil, err
	}
	stats.SkippedMalformedBlockfaces = bfStats.Malformed
	stats.SkippedOutOfBounds = bfStats.OutOfBounds
	stats.BlockfacesTotal = len(faces)
	log.Printf("loaded %d blockfaces (%d malformed, %d out of bounds)",
		len(faces), bfStats.Malformed, bfStats.OutOfBounds)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bufferDegrees := geo.BufferDegrees(opts.BufferMeters)
	resolver := sides.New(opts.SideConfidenceThreshold, bufferDegrees)

	for _, bf := range faces {
		bf.Side = resolver.BlockfaceSide(bf).Side
	}

	matcher := &match.Matcher{
		BufferDegrees: bufferDegrees,
		Resolver:      resolver,
		Workers:       opts.Workers,
	}
	result := matcher.Match(regs, faces)
	stats.RegulationsMatched = result.Matched
	stats.RegulationsUnmatched = result.UnmatchedCount
	stats.LowConfidenceSides = result.LowConfidenceSides
	log.Printf("matched %d/%d regulations (%d unmatched)",
		result.Matched, len(regs), result.UnmatchedCount)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Extraction walks regulations in input order so each blockface
	// accumulates records deterministically.
	extractor := regulation.NewExtractor(regulation.DefaultSynonyms())
	pending := make([][]models.RegulationRecord, len(faces))
	for i, reg := range regs {
		target := result.Assignment[i]
		if target == match.Unmatched {
			continue
		}
		records, issues := extractor.Extract(reg)
		if issues.EmptyType {
			stats.SkippedEmptyTypes++
			continue
		}
		if issues.UnknownType {
			stats.UnparseableTypes++
		}
		if issues.DaysError != nil {
			stats.UnparseableDays++
		}
		pending[target] = append(pending[target], records...)
	}

	priorities := regulation.DefaultPriorities()
	blockfaces := make([]models.Blockface, 0, len(faces))
	for i, bf := range faces {
		final, collapsed := regulation.Finalize(pending[i], priorities)
		stats.DuplicatesCollapsed += collapsed

		street := bf.Location.Street
		if street == streets.UnknownStreet {
			street = backfillStreet(final, street)
		}

		if len(final) > 0 {
			stats.BlockfacesWithRegulations++
		} else {
			stats.BlockfacesWithoutRegulations++
		}
		for _, rec := range final {
			stats.RecordsByType[rec.Type]++
		}
		if final == nil {
			final = []models.RegulationRecord{}
		}

		blockfaces = append(blockfaces, models.Blockface{
			ID:          bf.ID,
			Street:      street,
			FromStreet:  bf.Location.From,
			ToStreet:    bf.Location.To,
			Side:        bf.Side,
			Geometry:    geojson.NewGeometry(bf.Line),
			Regulations: final,
		})
	}

	doc := &models.Document{
		Version:     models.DocumentVersion,
		GeneratedAt: opts.Now().UTC().Format(time.RFC3339),
		Parameters: models.Parameters{
			BufferMeters:  opts.BufferMeters,
			BufferDegrees: bufferDegrees,
			Bounds:        opts.Bounds,
		},
		Statistics: stats,
		Blockfaces: blockfaces,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.OutputPath != "" {
		if err := WriteDocument(opts.OutputPath, doc); err != nil {
			return nil, err
		}
		log.Printf("wrote %d blockfaces to %s", len(blockfaces), opts.OutputPath)
	}
	return doc, nil
}

// backfillStreet takes the first normalized source street carried by a
// finalized record (sweeping schedules know their corridor) when the
// blockface itself had none.
func backfillStreet(records []models.RegulationRecord, fallback string) string {
	for _, rec := range records {
		if rec.SourceStreet != "" {
			return regulation.NormalizeSourceStreet(rec.SourceStreet)
		}
	}
	return fallback
}
