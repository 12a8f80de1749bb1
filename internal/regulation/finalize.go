package regulation

import (
	"sort"

	"github.com/fikei/curbmatch/internal/models"
)

// Finalize deduplicates a blockface's record list and orders it by the
// priority table, most restrictive first, ties broken by type name so the
// same input always yields the same order. Only exact-key duplicates
// collapse; no type is ever dropped. Idempotent. Returns the surviving
// records and the number of duplicates removed.
func Finalize(records []models.RegulationRecord, priorities map[models.RegulationType]int) ([]models.RegulationRecord, int) {
	seen := make(map[string]bool, len(records))
	out := make([]models.RegulationRecord, 0, len(records))
	for _, rec := range records {
		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	collapsed := len(records) - len(out)

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := rank(out[i].Type, priorities), rank(out[j].Type, priorities)
		if pi != pj {
			return pi < pj
		}
		return out[i].Type < out[j].Type
	})
	return out, collapsed
}

// rank treats any type missing from the table as least restrictive.
func rank(t models.RegulationType, priorities map[models.RegulationType]int) int {
	if p, ok := priorities[t]; ok {
		return p
	}
	return 99
}
