package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"travelquote/internal/domain/shared/money"
)

var (
	ErrInvalidTrip  = errors.New("pricing: invalid trip parameters")
	ErrNegativeBase = errors.New("pricing: base price cannot be negative")
)

// maxDurationDays caps single-trip duration at ten weeks.
const maxDurationDays = 70

var (
	worldwideFactor = decimal.RequireFromString("1.5")
	schengenFactor  = decimal.RequireFromString("1.2")
	annualFactor    = decimal.NewFromInt(4)
	daysPerWeek     = decimal.NewFromInt(7)
	familyStep      = decimal.RequireFromString("0.2")
	familyCap       = decimal.RequireFromString("1.8")
	groupStep       = decimal.RequireFromString("0.25")
	groupCap        = decimal.RequireFromString("2.5")
	one             = decimal.NewFromInt(1)
)

// ComputePremium prices a trip from a base price. The product stays exact
// until the single division by seven, which rounds half-up to the currency
// minor unit.
func ComputePremium(base money.Money, trip Trip) (money.Money, error) {
	if base.IsNegative() {
		return money.Money{}, ErrNegativeBase
	}
	scaled, err := weeklyMultiplier(trip)
	if err != nil {
		return money.Money{}, err
	}
	amount := base.Decimal().Mul(scaled).DivRound(daysPerWeek, 0)
	return money.Money{Amount: amount.IntPart(), Currency: base.Currency}, nil
}

// Multiplier returns the combined coverage, duration and traveler factor.
// Single trips shorter than the cap are not a finite decimal; the value is
// for display and ComputePremium does not use it.
func Multiplier(trip Trip) (decimal.Decimal, error) {
	scaled, err := weeklyMultiplier(trip)
	if err != nil {
		return decimal.Zero, err
	}
	return scaled.Div(daysPerWeek), nil
}

// weeklyMultiplier is the combined factor times seven. Every term is a finite
// decimal, so the product is exact.
func weeklyMultiplier(trip Trip) (decimal.Decimal, error) {
	if err := trip.Validate(); err != nil {
		return decimal.Zero, err
	}
	m := coverageFactor(trip.Coverage)
	m = m.Mul(durationDays(trip))
	m = m.Mul(travelerFactor(trip.Cover, trip.Travelers))
	return m, nil
}

func coverageFactor(c Coverage) decimal.Decimal {
	switch c {
	case CoverageWorldwide:
		return worldwideFactor
	case CoverageSchengen:
		return schengenFactor
	default:
		return one
	}
}

// durationDays is the duration factor in days: single trips count calendar
// days capped at ten weeks, annual policies a flat four weeks.
func durationDays(trip Trip) decimal.Decimal {
	if trip.TripType == TripAnnualMulti {
		return annualFactor.Mul(daysPerWeek)
	}
	days := min(trip.Days(), maxDurationDays)
	return decimal.NewFromInt(int64(days))
}

func travelerFactor(cover Cover, travelers int) decimal.Decimal {
	n := decimal.NewFromInt(int64(travelers))
	switch cover {
	case CoverFamily:
		return decimal.Min(familyCap, one.Add(familyStep.Mul(n)))
	case CoverGroup:
		return decimal.Min(groupCap, one.Add(groupStep.Mul(n)))
	default:
		return n
	}
}

func invalidTrip(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTrip, reason)
}
