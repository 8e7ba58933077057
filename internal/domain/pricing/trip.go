package pricing

import (
	"strings"
	"time"
)

type Coverage string

const (
	CoverageDomestic  Coverage = "Domestic"
	CoverageSchengen  Coverage = "Schengen"
	CoverageWorldwide Coverage = "Worldwide"
)

type TripType string

const (
	TripSingle      TripType = "SingleTrip"
	TripAnnualMulti TripType = "AnnualMultiTrip"
)

type Cover string

const (
	CoverIndividual Cover = "Individual"
	CoverFamily     Cover = "Family"
	CoverGroup      Cover = "Group"
)

// Trip holds the traveller-supplied parameters a premium is priced from.
// Start and End are calendar dates; the time of day is ignored.
type Trip struct {
	Coverage  Coverage
	TripType  TripType
	Start     time.Time
	End       time.Time
	Cover     Cover
	Travelers int
}

// Days returns the inclusive number of calendar days between Start and End.
func (t Trip) Days() int {
	start := civilDate(t.Start)
	end := civilDate(t.End)
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func (t Trip) Validate() error {
	if t.Travelers < 1 {
		return invalidTrip("travelers must be at least 1")
	}
	if t.Start.IsZero() || t.End.IsZero() {
		return invalidTrip("start and end dates are required")
	}
	if civilDate(t.End).Before(civilDate(t.Start)) {
		return invalidTrip("end date is before start date")
	}
	return nil
}

// ParseTripType accepts the canonical names plus the labels used by the booking form.
func ParseTripType(raw string) TripType {
	switch normalizeLabel(raw) {
	case "annualmultitrip", "annualmultitrips", "annual":
		return TripAnnualMulti
	default:
		return TripSingle
	}
}

func ParseCover(raw string) Cover {
	switch normalizeLabel(raw) {
	case "family":
		return CoverFamily
	case "group":
		return CoverGroup
	default:
		return CoverIndividual
	}
}

// ParseCoverage keeps unknown regions verbatim; they price at the base rate.
func ParseCoverage(raw string) Coverage {
	switch normalizeLabel(raw) {
	case "worldwide":
		return CoverageWorldwide
	case "schengen":
		return CoverageSchengen
	case "domestic":
		return CoverageDomestic
	default:
		return Coverage(strings.TrimSpace(raw))
	}
}

func normalizeLabel(raw string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
