package service

import "math"

// FeePolicy computes the platform's cut of a passenger payment: a
// percentage of the amount plus a fixed component, rounded to the
// currency's minor unit.
type FeePolicy struct {
	Percent float64
	Fixed   float64
}

// Split divides amount into the platform fee and the driver's share.
// Arithmetic is done in integer cents so fee + driverAmount == amount
// exactly, with no float drift.
func (p FeePolicy) Split(amount float64) (fee, driverAmount float64) {
	amountCents := toCents(amount)
	feeCents := int64(math.Round(float64(amountCents)*p.Percent/100)) + toCents(p.Fixed)

	if feeCents < 0 {
		feeCents = 0
	}
	if feeCents > amountCents {
		feeCents = amountCents
	}

	return fromCents(feeCents), fromCents(amountCents - feeCents)
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}
