// Package regulation normalizes raw regulation attributes into canonical
// RegulationRecords and finalizes each blockface's record list through
// deduplication and priority ordering.
package regulation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fikei/curbmatch/internal/models"
	"github.com/fikei/curbmatch/internal/source"
	"github.com/fikei/curbmatch/internal/streets"
)

// UnparseableDaysError marks a day-range string no known pattern covers.
// The owning record is still produced, with nil enforcement days.
type UnparseableDaysError struct {
	Raw string
}

func (e *UnparseableDaysError) Error() string {
	return fmt.Sprintf("unparseable day range %q", e.Raw)
}

// Issues collects the recoverable problems one raw regulation produced.
type Issues struct {
	EmptyType   bool
	UnknownType bool
	DaysError   *UnparseableDaysError
}

// Extractor classifies raw regulations. Tables are injected so tests can
// override them; use DefaultSynonyms for production runs.
type Extractor struct {
	synonyms map[string]models.RegulationType
}

// NewExtractor builds an Extractor over the given synonym table.
func NewExtractor(synonyms map[string]models.RegulationType) *Extractor {
	return &Extractor{synonyms: synonyms}
}

// Extract maps one raw regulation onto zero or more normalized records.
// A single raw record expands into several when the source models mutually
// exclusive rule variants (pay-or-permit, time limit with permit zones).
// An empty type string yields no records and sets Issues.EmptyType.
func (e *Extractor) Extract(reg *source.Regulation) ([]models.RegulationRecord, Issues) {
	switch reg.Kind {
	case source.KindSweeping:
		return []models.RegulationRecord{sweepingRecord(reg)}, Issues{}
	case source.KindMetered:
		return []models.RegulationRecord{meteredRecord()}, Issues{}
	default:
		return e.extractParking(reg)
	}
}

func (e *Extractor) extractParking(reg *source.Regulation) ([]models.RegulationRecord, Issues) {
	var issues Issues

	raw := strings.ToLower(strings.TrimSpace(reg.RegulationText))
	if raw == "" {
		issues.EmptyType = true
		return nil, issues
	}
	typ, known := e.synonyms[raw]
	if !known {
		typ = models.TypeOther
		issues.UnknownType = true
	}

	days, daysErr := ParseDays(reg.Days)
	if daysErr != nil {
		issues.DaysError = daysErr
	}
	start := ParseClock(reg.HoursBegin)
	end := ParseClock(reg.HoursEnd)
	limit := limitMinutes(reg.HourLimit)
	conditions := optional(reg.Exceptions)
	zones := reg.PermitAreas

	base := models.RegulationRecord{
		EnforcementDays:   days,
		EnforcementStart:  start,
		EnforcementEnd:    end,
		SpecialConditions: conditions,
	}

	switch {
	case payPermitVariants[raw]:
		metered := base
		metered.Type = models.TypeMetered
		metered.TimeLimitMinutes = limit

		permit := base
		permit.Type = models.TypeResidentialPermit
		permit.PermitZones = zones
		permit.PermitZone = firstZone(zones)
		return []models.RegulationRecord{metered, permit}, issues

	case typ == models.TypeTimeLimit && len(zones) > 0:
		limited := base
		limited.Type = models.TypeTimeLimit
		limited.TimeLimitMinutes = limit

		permit := base
		permit.Type = models.TypeResidentialPermit
		permit.PermitZones = zones
		permit.PermitZone = firstZone(zones)
		permit.SpecialConditions = prefixConditions("Exempt from time limits", conditions)
		return []models.RegulationRecord{limited, permit}, issues

	default:
		rec := base
		rec.Type = typ
		rec.TimeLimitMinutes = limit
		rec.PermitZones = zones
		rec.PermitZone = firstZone(zones)
		return []models.RegulationRecord{rec}, issues
	}
}

func sweepingRecord(reg *source.Regulation) models.RegulationRecord {
	var days []string
	if day, ok := dayTokens[strings.ToUpper(strings.TrimSpace(reg.Weekday))]; ok {
		days = []string{day}
	}

	start := clockFromHour(reg.FromHour)
	end := clockFromHour(reg.ToHour)
	conditions := weekPattern(reg.Weeks)

	return models.RegulationRecord{
		Type:              models.TypeStreetCleaning,
		EnforcementDays:   days,
		EnforcementStart:  start,
		EnforcementEnd:    end,
		SpecialConditions: &conditions,
		SourceStreet:      strings.TrimSpace(reg.Corridor),
	}
}

func meteredRecord() models.RegulationRecord {
	conditions := "Metered parking - rates vary by location and time"
	start, end := "09:00", "18:00"
	return models.RegulationRecord{
		Type:              models.TypeMetered,
		EnforcementDays:   append([]string(nil), weekdayOrder...),
		EnforcementStart:  &start,
		EnforcementEnd:    &end,
		SpecialConditions: &conditions,
	}
}

// ParseDays expands a day-range string ("M-F", "M-Sa", "Tu/Th", "Mon,Thu",
// "DAILY") into ordered canonical weekday names. Empty input is nil with no
// error; anything outside the known patterns returns an
// UnparseableDaysError.
func ParseDays(raw string) ([]string, *UnparseableDaysError) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return nil, nil
	}
	if s == "DAILY" {
		return append([]string(nil), weekdayOrder...), nil
	}

	if from, to, ok := strings.Cut(s, "-"); ok && !strings.ContainsAny(from+to, "/, ") {
		start, okFrom := dayTokens[strings.TrimSpace(from)]
		stop, okTo := dayTokens[strings.TrimSpace(to)]
		if okFrom && okTo {
			return expandRange(start, stop), nil
		}
		return nil, &UnparseableDaysError{Raw: raw}
	}

	var days []string
	seen := map[string]bool{}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == ',' || r == ' '
	})
	for _, tok := range fields {
		day, ok := dayTokens[tok]
		if !ok {
			return nil, &UnparseableDaysError{Raw: raw}
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, &UnparseableDaysError{Raw: raw}
	}
	return days, nil
}

func expandRange(start, stop string) []string {
	var si, ei int
	for i, d := range weekdayOrder {
		if d == start {
			si = i
		}
		if d == stop {
			ei = i
		}
	}
	var days []string
	for i := si; ; i = (i + 1) % len(weekdayOrder) {
		days = append(days, weekdayOrder[i])
		if i == ei {
			break
		}
	}
	return days
}

// ParseClock converts source hour encodings ("900", "1800", "2400", "9")
// into "HH:MM". 24:00 wraps to midnight. Unparseable input is nil.
func ParseClock(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if _, err := strconv.Atoi(s); err != nil {
		return nil
	}
	switch len(s) {
	case 1:
		s = "0" + s + "00"
	case 2:
		s += "00"
	case 3:
		s = "0" + s
	}
	hours, err := strconv.Atoi(s[:len(s)-2])
	if err != nil {
		return nil
	}
	minutes, err := strconv.Atoi(s[len(s)-2:])
	if err != nil {
		return nil
	}
	if hours >= 24 {
		hours = 0
	}
	out := fmt.Sprintf("%02d:%02d", hours, minutes)
	return &out
}

func clockFromHour(h *int) *string {
	if h == nil {
		return nil
	}
	out := fmt.Sprintf("%02d:00", *h)
	return &out
}

// limitMinutes converts an hour limit to minutes. Zero and negative limits
// mean "not applicable", never zero minutes.
func limitMinutes(hours *float64) *int {
	if hours == nil || *hours <= 0 {
		return nil
	}
	m := int(*hours * 60)
	return &m
}

// weekPattern renders the week1-week5 bits of a sweeping schedule into a
// human-readable note.
func weekPattern(weeks [5]bool) string {
	names := []string{"1st", "2nd", "3rd", "4th", "5th"}
	var active []string
	for i, on := range weeks {
		if on {
			active = append(active, names[i])
		}
	}
	switch {
	case len(active) == 5:
		return "Street cleaning every week"
	case len(active) == 0:
		return "Street cleaning (schedule TBD)"
	case equalSets(active, []string{"1st", "3rd"}) || equalSets(active, []string{"1st", "3rd", "5th"}):
		return "Street cleaning on odd weeks"
	case equalSets(active, []string{"2nd", "4th"}):
		return "Street cleaning on even weeks"
	case len(active) == 1:
		return fmt.Sprintf("Street cleaning %s week of month", active[0])
	default:
		listed := strings.Join(active[:len(active)-1], ", ") + " and " + active[len(active)-1]
		return fmt.Sprintf("Street cleaning %s week of month", listed)
	}
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := map[string]bool{}
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// NormalizeSourceStreet canonicalizes a backfill street name from a
// regulation source field.
func NormalizeSourceStreet(raw string) string {
	return streets.Normalize(raw)
}

func firstZone(zones []string) *string {
	if len(zones) == 0 {
		return nil
	}
	z := zones[0]
	return &z
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func prefixConditions(prefix string, existing *string) *string {
	if existing == nil {
		return &prefix
	}
	combined := prefix + ". " + *existing
	return &combined
}
