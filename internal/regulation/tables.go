package regulation

import "github.com/fikei/curbmatch/internal/models"

// DefaultSynonyms maps lowercased, trimmed source regulation-type strings
// onto canonical types. The source data carries typos and variant spellings;
// they all belong here rather than in scattered contains-checks.
func DefaultSynonyms() map[string]models.RegulationType {
	return map[string]models.RegulationType{
		"time limited":           models.TypeTimeLimit,
		"time limit":             models.TypeTimeLimit,
		"residential permit":     models.TypeResidentialPermit,
		"no parking any time":    models.TypeNoParking,
		"no parking anytime":     models.TypeNoParking,
		"street cleaning":        models.TypeStreetCleaning,
		"metered parking":        models.TypeMetered,
		"pay or permit":          models.TypeMetered, // expands, see Extract
		"paid + permit":          models.TypeMetered, // expands, see Extract
		"tow-away zone":          models.TypeTowAway,
		"tow away":               models.TypeTowAway,
		"loading zone":           models.TypeLoadingZone,
		"no oversized vehicles":  models.TypeOther,
		"government permit only": models.TypeOther,
	}
}

// payPermitVariants are the raw type strings that model two mutually
// exclusive rules (pay, or hold a permit) and expand into a metered record
// plus a residentialPermit record.
var payPermitVariants = map[string]bool{
	"pay or permit": true,
	"paid + permit": true,
}

// DefaultPriorities is the fixed restrictiveness ranking used to order a
// blockface's regulations, 1 being the most restrictive.
func DefaultPriorities() map[models.RegulationType]int {
	return map[models.RegulationType]int{
		models.TypeNoParking:         1,
		models.TypeTowAway:           2,
		models.TypeStreetCleaning:    3,
		models.TypeMetered:           4,
		models.TypeTimeLimit:         5,
		models.TypeResidentialPermit: 6,
		models.TypeLoadingZone:       7,
		models.TypeOther:             8,
	}
}

// weekdayOrder fixes the canonical week for day-range expansion.
var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// dayTokens maps every accepted day spelling to its canonical name.
var dayTokens = map[string]string{
	"M": "monday", "MON": "monday", "MONDAY": "monday",
	"TU": "tuesday", "TUE": "tuesday", "TUES": "tuesday", "TUESDAY": "tuesday",
	"W": "wednesday", "WED": "wednesday", "WEDNESDAY": "wednesday",
	"TH": "thursday", "THU": "thursday", "THUR": "thursday", "THURS": "thursday", "THURSDAY": "thursday",
	"F": "friday", "FRI": "friday", "FRIDAY": "friday",
	"SA": "saturday", "SAT": "saturday", "SATURDAY": "saturday",
	"SU": "sunday", "SUN": "sunday", "SUNDAY": "sunday",
}
